package automation

import (
	"time"

	"github.com/nerrad567/rundown-core/internal/rundown"
)

// ItemRef is the part of an item a control surface shows.
type ItemRef struct {
	ID              string                 `json:"id"`
	Title           string                 `json:"title,omitempty"`
	Kind            rundown.Kind           `json:"kind"`
	AutomationMode  rundown.AutomationMode `json:"automation_mode"`
	DurationSeconds float64                `json:"duration_seconds"`
	SegmentID       string                 `json:"segment_id,omitempty"`
}

// TimerState is the auto-advance countdown as shown to operators.
type TimerState struct {
	ItemID           string  `json:"item_id"`
	RemainingSeconds int     `json:"remaining_seconds"`
	DurationSeconds  float64 `json:"duration_seconds"`
	Paused           bool    `json:"paused"`
}

// Snapshot is the complete observable state of a session at one instant.
type Snapshot struct {
	SessionID string `json:"session_id"`
	ShowID    string `json:"show_id"`
	ShowName  string `json:"show_name,omitempty"`
	Revision  uint64 `json:"revision"`

	Stopped bool     `json:"stopped"`
	Paused  bool     `json:"paused"`
	Live    *ItemRef `json:"live,omitempty"`
	Preview *ItemRef `json:"preview,omitempty"`

	ArmedTransition     string   `json:"armed_transition,omitempty"`
	ArmedManualButtonID string   `json:"armed_manual_button_id,omitempty"`
	LiveManualItemIDs   []string `json:"live_manual_item_ids"`

	Timer    *TimerState    `json:"timer,omitempty"`
	Overlays []OverlayState `json:"overlays"`
	Audio    ActiveAudio    `json:"audio"`

	SessionElapsedSeconds float64   `json:"session_elapsed_seconds"`
	At                    time.Time `json:"at"`
}

// Snapshot captures the session state at now.
func (e *Engine) Snapshot(now time.Time) Snapshot {
	st := e.machine.State()
	snap := Snapshot{
		SessionID:           e.sessionID,
		ShowID:              e.show.ID,
		ShowName:            e.show.Name,
		Revision:            e.revision,
		Stopped:             st.Stopped,
		Paused:              st.Paused,
		Live:                e.itemRef(st.LiveID),
		Preview:             e.itemRef(st.PreviewID),
		ArmedTransition:     st.ArmedTransition,
		ArmedManualButtonID: st.ArmedManualButtonID,
		LiveManualItemIDs:   st.LiveManualItemIDs,
		Overlays:            e.overlays.States(now),
		Audio:               e.ActiveAudio(),
		At:                  now,
	}
	if e.timer.Active() {
		snap.Timer = &TimerState{
			ItemID:           e.timer.ItemID(),
			RemainingSeconds: e.timer.RemainingSeconds(now),
			DurationSeconds:  e.timer.Duration().Seconds(),
			Paused:           e.timer.Paused(),
		}
	}
	if !st.SessionStartedAt.IsZero() {
		snap.SessionElapsedSeconds = now.Sub(st.SessionStartedAt).Seconds()
	}
	return snap
}

// itemRef describes id, or returns nil for an empty id. A LIVE item that
// left the tree keeps its id with no detail.
func (e *Engine) itemRef(id string) *ItemRef {
	if id == "" {
		return nil
	}
	item, ok := e.idx.Item(id)
	if !ok {
		return &ItemRef{ID: id}
	}
	seg, _ := e.idx.SegmentOf(id)
	return &ItemRef{
		ID:              item.ID,
		Title:           item.Title,
		Kind:            item.Kind,
		AutomationMode:  item.AutomationMode,
		DurationSeconds: item.AutomationDurationSeconds,
		SegmentID:       seg,
	}
}
