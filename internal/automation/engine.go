package automation

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/nerrad567/rundown-core/internal/rundown"
)

// Logger defines the logging interface used by the Engine, Runner and
// Dispatcher.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// EventType names a playout event recorded in the as-run log.
type EventType string

const (
	EventLive           EventType = "live"
	EventManualOn       EventType = "manual_on"
	EventManualOff      EventType = "manual_off"
	EventOverlayIn      EventType = "overlay_in"
	EventOverlayOut     EventType = "overlay_out"
	EventStopped        EventType = "stopped"
	EventReady          EventType = "ready"
	EventPaused         EventType = "paused"
	EventResumed        EventType = "resumed"
	EventRundownChanged EventType = "rundown_changed"
)

// Event is one playout transition.
type Event struct {
	Type   EventType `json:"type"`
	ItemID string    `json:"item_id,omitempty"`
	Title  string    `json:"title,omitempty"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// Options configures a new Engine.
type Options struct {
	// SessionID identifies the control session; generated when empty.
	SessionID string
	Logger    Logger
}

// Engine is one control session over a rundown. It ties the Machine, the
// auto-advance Timer and the OverlayEngine together and queues the
// commands and events each transition produces.
//
// The Engine never reads the clock. Every operation takes now, and Tick is
// driven from outside: by the Runner in production, by hand in tests.
//
// Thread Safety: not safe for concurrent use. The Runner owns the Engine
// and serialises ticks and operator events.
type Engine struct {
	sessionID string
	show      *rundown.Show
	idx       *rundown.Index

	machine  *Machine
	timer    Timer
	overlays *OverlayEngine

	commands []Command
	events   []Event

	revision uint64
	display  []int
	disposed bool

	logger Logger
}

// New creates a session over show. A nil show means the rundown could not
// be fetched, and no session is created.
func New(show *rundown.Show, opts Options) (*Engine, error) {
	if show == nil {
		return nil, fmt.Errorf("%w: no rundown loaded", ErrSessionUnavailable)
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	if opts.SessionID == "" {
		opts.SessionID = GenerateID()
	}

	idx := rundown.Build(show)
	e := &Engine{
		sessionID: opts.SessionID,
		show:      show,
		idx:       idx,
		machine:   NewMachine(idx),
		overlays:  NewOverlayEngine(),
		logger:    opts.Logger,
	}
	e.logger.Info("playout session created",
		"session_id", e.sessionID,
		"show_id", show.ID,
		"items", idx.Len(),
	)
	return e, nil
}

// Dispose ends the session. Timers and overlays are cancelled and every
// later operation is a no-op.
func (e *Engine) Dispose() {
	if e.disposed {
		return
	}
	e.timer.Cancel()
	e.overlays.Reset()
	e.disposed = true
	e.logger.Info("playout session disposed", "session_id", e.sessionID)
}

// Advance goes to the next item, see Machine.Advance.
func (e *Engine) Advance(now time.Time) {
	if e.disposed {
		return
	}
	before := e.ActiveAudio()
	res := e.machine.Advance(now)

	if res.Resumed {
		e.emit(Event{Type: EventReady, At: now})
	}

	switch res.Kind {
	case AdvanceManual:
		e.timer.Cancel()
		if res.ManualAdded {
			e.manualChanged(e.idx, res.ManualItemID, true, before, now)
		}
		e.logger.Info("manual item promoted",
			"session_id", e.sessionID,
			"item_id", res.ManualItemID,
		)

	case AdvanceLive:
		item, _ := e.idx.Item(res.LiveID)
		e.timer.Start(item, now, e.machine.Paused())
		e.emit(Event{Type: EventLive, ItemID: item.ID, Title: item.Title, Detail: res.Transition, At: now})
		e.overlayEvents(e.overlays.OnParentLive(e.idx, item.ID, now), now)
		e.logger.Info("item live",
			"session_id", e.sessionID,
			"item_id", item.ID,
			"kind", item.Kind.String(),
			"preview_id", e.machine.PreviewID(),
			"transition", res.Transition,
		)

	case AdvanceCleared:
		e.timer.Cancel()
		e.logger.Info("removed live item cleared",
			"session_id", e.sessionID,
			"item_id", res.PreviousLiveID,
		)

	default:
		e.logger.Debug("advance: nothing to promote", "session_id", e.sessionID)
	}
	e.changed()
}

// Stop toggles the stopped state. Stopping mutes or stops every live manual
// audio cue, cancels the timer and removes every overlay.
func (e *Engine) Stop(now time.Time) {
	if e.disposed {
		return
	}

	if e.machine.Stopped() {
		e.machine.Stop()
		e.emit(Event{Type: EventReady, At: now})
		e.changed()
		return
	}

	before := e.ActiveAudio()
	for _, id := range e.machine.LiveManualItems() {
		e.manualChanged(e.idx, id, false, before, now)
	}
	e.machine.Stop()
	e.timer.Cancel()
	e.overlayEvents(e.overlays.Reset(), now)
	e.emit(Event{Type: EventStopped, At: now})
	e.logger.Info("session stopped", "session_id", e.sessionID)
	e.changed()
}

// Pause freezes the auto-advance timer.
func (e *Engine) Pause(now time.Time) {
	if e.disposed || !e.machine.Pause() {
		return
	}
	e.timer.Pause(now)
	e.emit(Event{Type: EventPaused, ItemID: e.timer.ItemID(), At: now})
	e.changed()
}

// Resume restarts a frozen timer for exactly its remaining time.
func (e *Engine) Resume(now time.Time) {
	if e.disposed || !e.machine.Resume() {
		return
	}
	e.timer.Resume(now)
	e.emit(Event{Type: EventResumed, ItemID: e.timer.ItemID(), At: now})
	e.changed()
}

// TogglePause pauses a running session or resumes a paused one.
func (e *Engine) TogglePause(now time.Time) {
	if e.machine.Paused() {
		e.Resume(now)
		return
	}
	e.Pause(now)
}

// ArmTransition arms a transition for the next Advance.
func (e *Engine) ArmTransition(name string) {
	if e.disposed {
		return
	}
	e.machine.ArmTransition(name)
	e.changed()
}

// ClearArmedTransition clears the armed transition.
func (e *Engine) ClearArmedTransition() {
	if e.disposed {
		return
	}
	e.machine.ClearArmedTransition()
	e.changed()
}

// ArmManualButton arms a manual item for the next Advance.
func (e *Engine) ArmManualButton(id string) {
	if e.disposed {
		return
	}
	if e.machine.ArmManualButton(id) {
		e.changed()
	}
}

// ClearArmedManualButton clears the armed manual button.
func (e *Engine) ClearArmedManualButton() {
	if e.disposed {
		return
	}
	e.machine.ClearArmedManualButton()
	e.changed()
}

// ToggleManualItem flips a manual item in or out of the live set and
// queues its audio command, if it has one.
func (e *Engine) ToggleManualItem(id string, now time.Time) {
	if e.disposed {
		return
	}
	before := e.ActiveAudio()
	on, changed := e.machine.ToggleManualItem(id)
	if !changed {
		e.logger.Debug("manual toggle ignored", "item_id", id)
		return
	}
	e.manualChanged(e.idx, id, on, before, now)
	e.changed()
}

// ToggleOverlay flips a manual overlay. An overlay inside a manual block is
// toggled through the live manual set; a live automatic overlay is taken out.
func (e *Engine) ToggleOverlay(id string, now time.Time) {
	if e.disposed {
		return
	}
	if mi, ok := e.idx.ManualItem(id); ok && mi.Kind == rundown.KindOverlay {
		e.ToggleManualItem(id, now)
		return
	}
	if item, ok := e.idx.Item(id); ok && item.Kind == rundown.KindOverlay && !item.IsAutoOverlay() {
		e.overlayEvents([]OverlayEvent{e.overlays.ToggleManual(id, item.Title, now)}, now)
		e.changed()
		return
	}
	if e.overlays.Phase(id) != PhaseAbsent {
		e.RemoveOverlay(id, now)
	}
}

// RemoveOverlay takes an overlay out immediately. This is how leave_in
// overlays are removed.
func (e *Engine) RemoveOverlay(id string, now time.Time) {
	if e.disposed {
		return
	}
	if e.machine.IsManualLive(id) {
		e.ToggleManualItem(id, now)
		return
	}
	if ev, ok := e.overlays.ForceRemove(id); ok {
		e.overlayEvents([]OverlayEvent{ev}, now)
		e.changed()
	}
}

// Tick drives the overlay clock and the auto-advance timer. An expired
// timer advances within this call.
func (e *Engine) Tick(now time.Time) {
	if e.disposed {
		return
	}
	before := len(e.events)

	e.overlayEvents(e.overlays.Tick(now), now)
	if e.timer.Tick(now) {
		e.logger.Debug("auto-advance fired", "session_id", e.sessionID, "item_id", e.machine.LiveID())
		e.Advance(now)
	}

	display := e.displayKey(now)
	if len(e.events) != before || !slices.Equal(display, e.display) {
		e.display = display
		e.revision++
	}
}

// SetRundown swaps in a changed rundown. The index is rebuilt, PREVIEW is
// recomputed from LIVE, and state for items that no longer exist is dropped.
// A LIVE item that was removed stays reported until the next Advance.
func (e *Engine) SetRundown(show *rundown.Show, now time.Time) {
	if e.disposed || show == nil {
		return
	}
	oldIdx := e.idx
	before := e.ActiveAudio()

	idx := rundown.Build(show)
	dropped := e.machine.SetIndex(idx)
	for _, id := range dropped {
		e.manualChanged(oldIdx, id, false, before, now)
	}

	e.show = show
	e.idx = idx
	e.overlayEvents(e.overlays.Prune(idx), now)

	if id := e.timer.ItemID(); id != "" {
		if _, ok := idx.Position(id); !ok {
			e.timer.Cancel()
		}
	}

	e.emit(Event{Type: EventRundownChanged, Detail: show.ID, At: now})
	e.logger.Info("rundown changed",
		"session_id", e.sessionID,
		"show_id", show.ID,
		"items", idx.Len(),
		"live_id", e.machine.LiveID(),
		"preview_id", e.machine.PreviewID(),
		"dropped_manual", len(dropped),
	)
	e.changed()
}

// ActiveAudio resolves the active audio for the current pointers. The
// regular sequence is replayed through the last position on air, so a
// manual promotion or an edit that removed LIVE keeps its tracks.
func (e *Engine) ActiveAudio() ActiveAudio {
	return ResolveThrough(e.idx, e.machine.LastPosition(), e.machine.LiveManualItems())
}

// State returns the machine state.
func (e *Engine) State() State {
	return e.machine.State()
}

// Index returns the current rundown index.
func (e *Engine) Index() *rundown.Index {
	return e.idx
}

// Timer returns the auto-advance timer for inspection.
func (e *Engine) Timer() *Timer {
	return &e.timer
}

// Overlays returns the overlay engine for inspection.
func (e *Engine) Overlays() *OverlayEngine {
	return e.overlays
}

// SessionID returns the session identifier.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Revision increases whenever anything visible in a Snapshot changes.
func (e *Engine) Revision() uint64 {
	return e.revision
}

// Flush returns and clears the queued commands and events.
func (e *Engine) Flush() ([]Command, []Event) {
	cmds, evs := e.commands, e.events
	e.commands, e.events = nil, nil
	return cmds, evs
}

// manualChanged queues the audio command, overlay change and event for a
// manual item going on or off. idx is the index the item is found in.
func (e *Engine) manualChanged(idx *rundown.Index, id string, on bool, before ActiveAudio, now time.Time) {
	mi, ok := idx.ManualItem(id)
	if !ok {
		return
	}

	if cmd, ok := manualAudioCommand(mi, on, before, now); ok {
		e.commands = append(e.commands, cmd)
		e.logger.Debug("audio command queued", "type", cmd.Type, "item_id", id)
	}

	if mi.Kind == rundown.KindOverlay && (e.overlays.Phase(id) == PhaseLive) != on {
		e.overlayEvents([]OverlayEvent{e.overlays.ToggleManual(id, mi.Title, now)}, now)
	}

	typ := EventManualOff
	if on {
		typ = EventManualOn
	}
	e.emit(Event{Type: typ, ItemID: id, Title: mi.Title, At: now})
}

func (e *Engine) overlayEvents(evs []OverlayEvent, now time.Time) {
	for _, ev := range evs {
		typ := EventOverlayOut
		if ev.Phase == PhaseLive {
			typ = EventOverlayIn
		}
		e.emit(Event{Type: typ, ItemID: ev.ID, Title: ev.Title, Detail: ev.Reason, At: now})
	}
}

func (e *Engine) emit(ev Event) {
	e.events = append(e.events, ev)
}

func (e *Engine) changed() {
	e.revision++
}

// displayKey is the whole-second countdown state shown to operators.
func (e *Engine) displayKey(now time.Time) []int {
	key := []int{e.timer.RemainingSeconds(now)}
	for _, s := range e.overlays.States(now) {
		key = append(key, int(math.Ceil(s.RemainingSeconds)))
	}
	return key
}
