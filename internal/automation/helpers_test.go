package automation

import (
	"testing"
	"time"

	"github.com/nerrad567/rundown-core/internal/rundown"
)

// ─── Fixtures ───────────────────────────────────────────────────────────────

var t0 = time.Date(2026, 10, 19, 6, 0, 0, 0, time.UTC)

// at returns t0 plus d.
func at(d time.Duration) time.Time {
	return t0.Add(d)
}

func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func manualItem(id string, kind rundown.Kind) rundown.Item {
	return rundown.Item{ID: id, Title: id, Kind: kind, AutomationMode: rundown.AutomationManual}
}

func autoItem(id string, kind rundown.Kind, duration float64) rundown.Item {
	return rundown.Item{
		ID:                        id,
		Title:                     id,
		Kind:                      kind,
		AutomationMode:            rundown.AutomationAuto,
		AutomationDurationSeconds: duration,
	}
}

func withAudio(item rundown.Item, cue *rundown.AudioCue) rundown.Item {
	item.Kind = rundown.KindAudioCue
	item.Audio = cue
	return item
}

func micCue(itemID, sourceID string, volume float64) *rundown.AudioCue {
	return &rundown.AudioCue{
		Mode:       rundown.AudioNew,
		SourceType: rundown.SourceMic,
		SourceID:   sourceID,
		SourceName: sourceID,
		Volume:     volume,
		TrackID:    rundown.DefaultTrackID(itemID),
		Valid:      true,
	}
}

func mediaCue(trackID, mediaID string, volume float64) *rundown.AudioCue {
	return &rundown.AudioCue{
		Mode:       rundown.AudioNew,
		SourceType: rundown.SourceMedia,
		SourceID:   mediaID,
		SourceName: mediaID,
		MediaPath:  "/media/" + mediaID + ".wav",
		Volume:     volume,
		TrackID:    trackID,
		Valid:      true,
	}
}

func existingCue(trackID string, action rundown.AudioAction, target float64) *rundown.AudioCue {
	return &rundown.AudioCue{
		Mode:                rundown.AudioExisting,
		TrackID:             trackID,
		Action:              action,
		TargetVolume:        target,
		FadeDurationSeconds: 2,
		Valid:               true,
	}
}

func overlayItem(id string, inPoint, duration float64, policy rundown.OverlayPolicy) rundown.Item {
	return rundown.Item{
		ID:    id,
		Title: id,
		Kind:  rundown.KindOverlay,
		Overlay: &rundown.Overlay{
			Kind:            rundown.OverlayAuto,
			InPointSeconds:  inPoint,
			DurationSeconds: duration,
			Policy:          policy,
		},
	}
}

func manualBlock(id string, children ...rundown.ManualItem) rundown.Item {
	return rundown.Item{ID: id, Title: id, Kind: rundown.KindManualBlock, ManualItems: children}
}

func manualAudio(id string, cue *rundown.AudioCue) rundown.ManualItem {
	return rundown.ManualItem{ID: id, Title: id, Kind: rundown.KindAudioCue, Audio: cue}
}

func manualOverlay(id string) rundown.ManualItem {
	return rundown.ManualItem{
		ID:      id,
		Title:   id,
		Kind:    rundown.KindOverlay,
		Overlay: &rundown.Overlay{Kind: rundown.OverlayManual, Policy: rundown.PolicyAutoOut},
	}
}

// showOf puts items in a single segment and group.
func showOf(items ...rundown.Item) *rundown.Show {
	return &rundown.Show{
		ID:   "show",
		Name: "Test Show",
		Segments: []rundown.Segment{{
			ID:     "seg-1",
			Groups: []rundown.Group{{ID: "grp-1", Items: items}},
		}},
	}
}

// showOfSegments puts each slice of items in its own segment.
func showOfSegments(segments ...[]rundown.Item) *rundown.Show {
	show := &rundown.Show{ID: "show", Name: "Test Show"}
	for i, items := range segments {
		id := "seg-" + string(rune('1'+i))
		show.Segments = append(show.Segments, rundown.Segment{
			ID:     id,
			Groups: []rundown.Group{{ID: id + "-grp", Items: items}},
		})
	}
	return show
}

func newTestEngine(t *testing.T, show *rundown.Show) *Engine {
	t.Helper()
	e, err := New(show, Options{SessionID: "test-session"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func eventTypes(evs []Event) []EventType {
	out := make([]EventType, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.Type)
	}
	return out
}
