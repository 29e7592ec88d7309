package automation

import (
	"slices"
	"time"

	"github.com/nerrad567/rundown-core/internal/rundown"
)

// AdvanceKind says which branch of Advance ran.
type AdvanceKind int

const (
	// AdvanceNone means nothing was promoted (end of rundown or empty rundown).
	AdvanceNone AdvanceKind = iota
	// AdvanceManual means an armed manual item was promoted to the live set.
	AdvanceManual
	// AdvanceLive means a regular item became LIVE.
	AdvanceLive
	// AdvanceCleared means LIVE had left the tree with nothing after it, and
	// the regular pointers were cleared.
	AdvanceCleared
)

// AdvanceResult describes what an Advance call changed.
type AdvanceResult struct {
	Kind AdvanceKind
	// LiveID is the new LIVE item for AdvanceLive.
	LiveID string
	// PreviousLiveID is the LIVE item before the call, if any.
	PreviousLiveID string
	// ManualItemID is the promoted manual item for AdvanceManual.
	ManualItemID string
	// ManualAdded is false when the promoted manual item was already live.
	ManualAdded bool
	// Transition is the armed transition consumed by this call.
	Transition string
	// Resumed is set when the call cleared a stopped session.
	Resumed bool
}

// State is a copy of the machine's pointers and flags.
type State struct {
	Stopped             bool      `json:"stopped"`
	Paused              bool      `json:"paused"`
	LiveID              string    `json:"live_id,omitempty"`
	PreviewID           string    `json:"preview_id,omitempty"`
	ArmedTransition     string    `json:"armed_transition,omitempty"`
	ArmedManualButtonID string    `json:"armed_manual_button_id,omitempty"`
	LiveManualItemIDs   []string  `json:"live_manual_item_ids"`
	SessionStartedAt    time.Time `json:"session_started_at,omitempty"`
}

// IsManualLive reports whether id is in the live manual set.
func (s State) IsManualLive(id string) bool {
	return slices.Contains(s.LiveManualItemIDs, id)
}

// Machine owns the LIVE and PREVIEW pointers, the stopped and paused flags,
// the armed slots and the set of live manual items. It knows nothing about
// time except the session start; the Engine drives timers from its results.
//
// Every operation is total. Ids that are not in the current Index are
// ignored, and the next Advance resynchronises from the tree.
//
// Thread Safety: not safe for concurrent use. The Runner serialises access.
type Machine struct {
	idx *rundown.Index

	stopped   bool
	paused    bool
	liveID    string
	previewID string
	// livePos is the position in the current tree of the last item that
	// was LIVE, or -1. It survives a manual promotion. After a rebuild that
	// removed LIVE it points at the nearest surviving item before it, so
	// Advance and the audio replay carry on from the same place.
	livePos int

	armedTransition string
	armedManual     string

	liveManual      map[string]struct{}
	liveManualOrder []string

	startedAt time.Time
}

// NewMachine creates a machine over idx in the reset state.
func NewMachine(idx *rundown.Index) *Machine {
	if idx == nil {
		idx = rundown.Build(nil)
	}
	return &Machine{
		idx:        idx,
		livePos:    -1,
		liveManual: make(map[string]struct{}),
	}
}

// Advance is the single "go to next" operation. Priority order:
//
//  1. an armed manual button is promoted into the live manual set and the
//     regular pointers are cleared;
//  2. PREVIEW is promoted to LIVE and PREVIEW moves to the item after it;
//  3. with no session started, the first item goes LIVE;
//  4. otherwise the item after LIVE goes LIVE directly.
//
// The armed transition is consumed by every call. Advancing a stopped
// session clears the stopped flag first.
func (m *Machine) Advance(now time.Time) AdvanceResult {
	res := AdvanceResult{
		PreviousLiveID: m.liveID,
		Transition:     m.armedTransition,
	}
	m.armedTransition = ""

	if m.stopped {
		m.stopped = false
		res.Resumed = true
	}

	// 1. Armed manual button. A stale id is dropped and we fall through.
	if m.armedManual != "" {
		id := m.armedManual
		m.armedManual = ""
		if _, ok := m.idx.ManualItem(id); ok {
			if m.liveID != "" {
				if p, ok := m.idx.Position(m.liveID); ok {
					m.livePos = p
				}
			}
			m.liveID = ""
			m.previewID = ""
			res.Kind = AdvanceManual
			res.ManualItemID = id
			res.ManualAdded = m.addManual(id)
			return res
		}
	}

	// 2. Promote PREVIEW.
	if m.previewID != "" {
		if p, ok := m.idx.Position(m.previewID); ok {
			m.setLive(p, now)
			res.Kind = AdvanceLive
			res.LiveID = m.liveID
			return res
		}
		m.previewID = ""
	}

	// 3. Session not started.
	if m.liveID == "" && m.livePos < 0 {
		if m.idx.Len() == 0 {
			return res
		}
		m.setLive(0, now)
		res.Kind = AdvanceLive
		res.LiveID = m.liveID
		return res
	}

	// 4. Step past LIVE. A LIVE that left the tree is replaced by whatever
	// now follows its surviving predecessor.
	next := m.livePos + 1
	if next >= m.idx.Len() {
		if m.liveID != "" && !m.liveInTree() {
			m.liveID = ""
			m.previewID = ""
			res.Kind = AdvanceCleared
		}
		return res
	}
	m.setLive(next, now)
	res.Kind = AdvanceLive
	res.LiveID = m.liveID
	return res
}

func (m *Machine) liveInTree() bool {
	_, ok := m.idx.Position(m.liveID)
	return ok
}

// setLive moves LIVE to position p and PREVIEW to the item after it.
func (m *Machine) setLive(p int, now time.Time) {
	item, _ := m.idx.At(p)
	m.liveID = item.ID
	m.livePos = p
	m.previewID = ""
	if next, ok := m.idx.At(p + 1); ok {
		m.previewID = next.ID
	}
	if m.startedAt.IsZero() {
		m.startedAt = now
	}
}

// Stop toggles the stopped flag. Entering the stopped state resets every
// pointer, slot, set and flag; leaving it changes nothing else. It returns
// the new value of the flag.
func (m *Machine) Stop() bool {
	if m.stopped {
		m.stopped = false
		return false
	}
	m.stopped = true
	m.paused = false
	m.liveID = ""
	m.previewID = ""
	m.livePos = -1
	m.armedTransition = ""
	m.armedManual = ""
	m.liveManual = make(map[string]struct{})
	m.liveManualOrder = nil
	m.startedAt = time.Time{}
	return true
}

// Pause sets the paused flag. It reports whether the flag changed.
func (m *Machine) Pause() bool {
	if m.paused || m.stopped {
		return false
	}
	m.paused = true
	return true
}

// Resume clears the paused flag. It reports whether the flag changed.
func (m *Machine) Resume() bool {
	if !m.paused {
		return false
	}
	m.paused = false
	return true
}

// ArmTransition arms a named transition for the next Advance.
func (m *Machine) ArmTransition(name string) {
	m.armedTransition = name
}

// ClearArmedTransition clears the armed transition.
func (m *Machine) ClearArmedTransition() {
	m.armedTransition = ""
}

// ArmManualButton arms a manual item for promotion by the next Advance.
// Unknown ids are ignored. It reports whether the slot changed.
func (m *Machine) ArmManualButton(id string) bool {
	if _, ok := m.idx.ManualItem(id); !ok {
		return false
	}
	m.armedManual = id
	return true
}

// ClearArmedManualButton clears the armed manual button.
func (m *Machine) ClearArmedManualButton() {
	m.armedManual = ""
}

// ToggleManualItem adds id to the live manual set or removes it. Unknown
// ids are ignored. It returns the new membership and whether anything changed.
func (m *Machine) ToggleManualItem(id string) (live, changed bool) {
	if _, ok := m.liveManual[id]; ok {
		m.removeManual(id)
		return false, true
	}
	if _, ok := m.idx.ManualItem(id); !ok {
		return false, false
	}
	m.addManual(id)
	return true, true
}

func (m *Machine) addManual(id string) bool {
	if _, ok := m.liveManual[id]; ok {
		return false
	}
	m.liveManual[id] = struct{}{}
	m.liveManualOrder = append(m.liveManualOrder, id)
	return true
}

func (m *Machine) removeManual(id string) {
	delete(m.liveManual, id)
	for i, v := range m.liveManualOrder {
		if v == id {
			m.liveManualOrder = append(m.liveManualOrder[:i], m.liveManualOrder[i+1:]...)
			return
		}
	}
}

// SetIndex swaps in a rebuilt Index. PREVIEW is recomputed from LIVE. A LIVE
// item that left the tree stays reported until the next Advance, and PREVIEW
// is cleared. Manual ids and the armed button that no longer exist are
// dropped; the dropped manual ids are returned in live order.
func (m *Machine) SetIndex(idx *rundown.Index) []string {
	if idx == nil {
		idx = rundown.Build(nil)
	}
	old := m.idx
	m.idx = idx

	if p, ok := idx.Position(m.liveID); ok && m.liveID != "" {
		m.livePos = p
		m.previewID = ""
		if next, ok := idx.At(p + 1); ok {
			m.previewID = next.ID
		}
	} else {
		m.livePos = survivingPosition(old, idx, m.livePos)
		if m.liveID != "" {
			m.previewID = ""
		} else if _, ok := idx.Position(m.previewID); !ok {
			m.previewID = ""
		}
	}

	if m.armedManual != "" {
		if _, ok := idx.ManualItem(m.armedManual); !ok {
			m.armedManual = ""
		}
	}

	var dropped []string
	for _, id := range append([]string(nil), m.liveManualOrder...) {
		if _, ok := idx.ManualItem(id); !ok {
			m.removeManual(id)
			dropped = append(dropped, id)
		}
	}
	return dropped
}

// survivingPosition maps position pos of old onto idx: the position of the
// item there, or of the nearest item before it that idx still holds.
func survivingPosition(old, idx *rundown.Index, pos int) int {
	for i := pos; i >= 0; i-- {
		item, ok := old.At(i)
		if !ok {
			continue
		}
		if p, ok := idx.Position(item.ID); ok {
			return p
		}
	}
	return -1
}

// State returns a copy of the machine state.
func (m *Machine) State() State {
	return State{
		Stopped:             m.stopped,
		Paused:              m.paused,
		LiveID:              m.liveID,
		PreviewID:           m.previewID,
		ArmedTransition:     m.armedTransition,
		ArmedManualButtonID: m.armedManual,
		LiveManualItemIDs:   m.LiveManualItems(),
		SessionStartedAt:    m.startedAt,
	}
}

// LiveID returns the LIVE item id, or "".
func (m *Machine) LiveID() string { return m.liveID }

// PreviewID returns the PREVIEW item id, or "".
func (m *Machine) PreviewID() string { return m.previewID }

// LastPosition returns the navigable position the regular sequence has
// reached: LIVE, or the last item on air while LIVE is empty or has left
// the tree. It is -1 before the first Advance and after Stop.
func (m *Machine) LastPosition() int { return m.livePos }

// Paused reports whether the session is paused.
func (m *Machine) Paused() bool { return m.paused }

// Stopped reports whether the session is stopped.
func (m *Machine) Stopped() bool { return m.stopped }

// IsManualLive reports whether a manual item is in the live set.
func (m *Machine) IsManualLive(id string) bool {
	_, ok := m.liveManual[id]
	return ok
}

// LiveManualItems returns the live manual item ids in the order they went live.
func (m *Machine) LiveManualItems() []string {
	out := make([]string, len(m.liveManualOrder))
	copy(out, m.liveManualOrder)
	return out
}
