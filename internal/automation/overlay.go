package automation

import (
	"time"

	"github.com/nerrad567/rundown-core/internal/rundown"
)

// OverlayPhase is the runtime state of one overlay.
type OverlayPhase string

const (
	PhaseAbsent  OverlayPhase = "absent"
	PhaseWaiting OverlayPhase = "waiting"
	PhaseLive    OverlayPhase = "live"
)

// Reasons attached to overlay events.
const (
	ReasonInPoint       = "in_point"
	ReasonExpired       = "expired"
	ReasonParentChanged = "parent_changed"
	ReasonSegmentEnd    = "segment_end"
	ReasonForced        = "forced"
	ReasonToggled       = "toggled"
	ReasonReset         = "reset"
	ReasonRemoved       = "removed_from_rundown"
)

// OverlayState is a read-only view of one overlay for snapshots.
type OverlayState struct {
	ID        string                `json:"id"`
	Title     string                `json:"title,omitempty"`
	ParentID  string                `json:"parent_id,omitempty"`
	SegmentID string                `json:"segment_id,omitempty"`
	Kind      rundown.OverlayKind   `json:"kind"`
	Policy    rundown.OverlayPolicy `json:"policy,omitempty"`
	Phase     OverlayPhase          `json:"phase"`
	// RemainingSeconds counts down to the in point while waiting and to the
	// out point while live under auto_out. It is zero otherwise.
	RemainingSeconds float64   `json:"remaining_seconds"`
	LiveSince        time.Time `json:"live_since,omitempty"`
}

// OverlayEvent reports an overlay going in or out.
type OverlayEvent struct {
	ID       string
	Title    string
	ParentID string
	Phase    OverlayPhase
	Reason   string
	Manual   bool
}

type overlayEntry struct {
	id        string
	title     string
	parentID  string
	segmentID string
	kind      rundown.OverlayKind
	policy    rundown.OverlayPolicy
	inPoint   time.Duration
	duration  time.Duration
	phase     OverlayPhase
	liveAt    time.Time
}

func (e *overlayEntry) state(now, parentAt time.Time) OverlayState {
	s := OverlayState{
		ID:        e.id,
		Title:     e.title,
		ParentID:  e.parentID,
		SegmentID: e.segmentID,
		Kind:      e.kind,
		Policy:    e.policy,
		Phase:     e.phase,
	}
	switch {
	case e.phase == PhaseWaiting:
		s.RemainingSeconds = positiveSeconds(e.inPoint - now.Sub(parentAt))
	case e.phase == PhaseLive && e.kind == rundown.OverlayAuto && e.policy == rundown.PolicyAutoOut:
		s.RemainingSeconds = positiveSeconds(e.duration - now.Sub(e.liveAt))
	}
	if e.phase == PhaseLive {
		s.LiveSince = e.liveAt
	}
	return s
}

func (e *overlayEntry) event(phase OverlayPhase, reason string) OverlayEvent {
	return OverlayEvent{
		ID:       e.id,
		Title:    e.title,
		ParentID: e.parentID,
		Phase:    phase,
		Reason:   reason,
		Manual:   e.kind == rundown.OverlayManual,
	}
}

// OverlayEngine runs the automatic overlays attached to the LIVE item and
// the manually toggled overlays.
//
// Automatic overlays are armed when their parent goes LIVE and share one
// clock: the time since the parent went LIVE. Waiting overlays go live at
// their in point; auto_out overlays come out after their duration. Live
// leave_in_local overlays survive parent changes within their segment and
// leave_in_global overlays survive until ForceRemove.
//
// Manual overlays have no clock. They persist across parent changes until
// toggled off or force-removed.
type OverlayEngine struct {
	parentID string
	parentAt time.Time

	auto   []*overlayEntry
	manual []*overlayEntry
}

// NewOverlayEngine creates an empty overlay engine.
func NewOverlayEngine() *OverlayEngine {
	return &OverlayEngine{}
}

// OnParentLive discards the previous parent's automatic overlays, arms the
// automatic overlays that follow parentID and evaluates them at now.
func (o *OverlayEngine) OnParentLive(idx *rundown.Index, parentID string, now time.Time) []OverlayEvent {
	segmentID, _ := idx.SegmentOf(parentID)

	var events []OverlayEvent
	kept := o.auto[:0]
	for _, e := range o.auto {
		if e.phase == PhaseLive {
			switch {
			case e.policy == rundown.PolicyLeaveInGlobal:
				kept = append(kept, e)
				continue
			case e.policy == rundown.PolicyLeaveInLocal && e.segmentID == segmentID:
				kept = append(kept, e)
				continue
			case e.policy == rundown.PolicyLeaveInLocal:
				events = append(events, e.event(PhaseAbsent, ReasonSegmentEnd))
				continue
			}
			events = append(events, e.event(PhaseAbsent, ReasonParentChanged))
		}
	}
	o.auto = kept

	o.parentID = parentID
	o.parentAt = now

	for _, item := range idx.FollowingOverlays(parentID) {
		if o.findAuto(item.ID) >= 0 {
			continue
		}
		o.auto = append(o.auto, &overlayEntry{
			id:        item.ID,
			title:     item.Title,
			parentID:  parentID,
			segmentID: segmentID,
			kind:      rundown.OverlayAuto,
			policy:    item.Overlay.Policy,
			inPoint:   seconds(item.Overlay.InPointSeconds),
			duration:  seconds(item.Overlay.DurationSeconds),
			phase:     PhaseWaiting,
		})
	}

	return append(events, o.Tick(now)...)
}

// Tick advances every automatic overlay to now. A waiting overlay that goes
// live in this call is first checked for expiry on the next call.
func (o *OverlayEngine) Tick(now time.Time) []OverlayEvent {
	var events []OverlayEvent
	elapsed := now.Sub(o.parentAt)

	kept := o.auto[:0]
	for _, e := range o.auto {
		switch {
		case e.phase == PhaseWaiting:
			if e.inPoint-elapsed <= 0 {
				e.phase = PhaseLive
				e.liveAt = now
				events = append(events, e.event(PhaseLive, ReasonInPoint))
			}
		case e.phase == PhaseLive && e.policy == rundown.PolicyAutoOut:
			if e.duration-now.Sub(e.liveAt) <= 0 {
				events = append(events, e.event(PhaseAbsent, ReasonExpired))
				continue
			}
		}
		kept = append(kept, e)
	}
	o.auto = kept
	return events
}

// ForceRemove takes any overlay out immediately, automatic or manual.
func (o *OverlayEngine) ForceRemove(id string) (OverlayEvent, bool) {
	if i := o.findAuto(id); i >= 0 {
		e := o.auto[i]
		o.auto = append(o.auto[:i], o.auto[i+1:]...)
		return e.event(PhaseAbsent, ReasonForced), true
	}
	if i := o.findManual(id); i >= 0 {
		e := o.manual[i]
		o.manual = append(o.manual[:i], o.manual[i+1:]...)
		return e.event(PhaseAbsent, ReasonForced), true
	}
	return OverlayEvent{}, false
}

// ToggleManual flips a manual overlay between absent and live.
func (o *OverlayEngine) ToggleManual(id, title string, now time.Time) OverlayEvent {
	if i := o.findManual(id); i >= 0 {
		e := o.manual[i]
		o.manual = append(o.manual[:i], o.manual[i+1:]...)
		return e.event(PhaseAbsent, ReasonToggled)
	}
	e := &overlayEntry{
		id:     id,
		title:  title,
		kind:   rundown.OverlayManual,
		phase:  PhaseLive,
		liveAt: now,
	}
	o.manual = append(o.manual, e)
	return e.event(PhaseLive, ReasonToggled)
}

// Reset removes every overlay.
func (o *OverlayEngine) Reset() []OverlayEvent {
	var events []OverlayEvent
	for _, e := range o.auto {
		if e.phase == PhaseLive {
			events = append(events, e.event(PhaseAbsent, ReasonReset))
		}
	}
	for _, e := range o.manual {
		events = append(events, e.event(PhaseAbsent, ReasonReset))
	}
	*o = OverlayEngine{}
	return events
}

// Prune drops overlays whose items are no longer in idx.
func (o *OverlayEngine) Prune(idx *rundown.Index) []OverlayEvent {
	var events []OverlayEvent
	exists := func(id string) bool {
		if _, ok := idx.Item(id); ok {
			return true
		}
		_, ok := idx.ManualItem(id)
		return ok
	}

	kept := o.auto[:0]
	for _, e := range o.auto {
		if exists(e.id) {
			kept = append(kept, e)
			continue
		}
		if e.phase == PhaseLive {
			events = append(events, e.event(PhaseAbsent, ReasonRemoved))
		}
	}
	o.auto = kept

	keptManual := o.manual[:0]
	for _, e := range o.manual {
		if exists(e.id) {
			keptManual = append(keptManual, e)
			continue
		}
		events = append(events, e.event(PhaseAbsent, ReasonRemoved))
	}
	o.manual = keptManual
	return events
}

// Phase returns the current phase of an overlay.
func (o *OverlayEngine) Phase(id string) OverlayPhase {
	if i := o.findAuto(id); i >= 0 {
		return o.auto[i].phase
	}
	if o.findManual(id) >= 0 {
		return PhaseLive
	}
	return PhaseAbsent
}

// States returns automatic overlays in arming order, then manual overlays
// in toggle order.
func (o *OverlayEngine) States(now time.Time) []OverlayState {
	out := make([]OverlayState, 0, len(o.auto)+len(o.manual))
	for _, e := range o.auto {
		out = append(out, e.state(now, o.parentAt))
	}
	for _, e := range o.manual {
		out = append(out, e.state(now, o.parentAt))
	}
	return out
}

// ParentID returns the item whose overlays are currently armed.
func (o *OverlayEngine) ParentID() string { return o.parentID }

func (o *OverlayEngine) findAuto(id string) int {
	for i, e := range o.auto {
		if e.id == id {
			return i
		}
	}
	return -1
}

func (o *OverlayEngine) findManual(id string) int {
	for i, e := range o.manual {
		if e.id == id {
			return i
		}
	}
	return -1
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func positiveSeconds(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return d.Seconds()
}
