package automation

import (
	"github.com/nerrad567/rundown-core/internal/rundown"
)

// Track is one active audio source.
type Track struct {
	TrackID              string   `json:"track_id"`
	ID                   string   `json:"id"`
	Name                 string   `json:"name,omitempty"`
	Volume               float64  `json:"volume"`
	MediaPath            string   `json:"media_path,omitempty"`
	MediaDurationSeconds *float64 `json:"media_duration_seconds,omitempty"`
	StartedAtItemID      string   `json:"started_at_item_id,omitempty"`
}

// ActiveAudio is the derived set of live microphones and media tracks, each
// in the order the tracks were first started.
type ActiveAudio struct {
	Mics  []Track `json:"mics"`
	Media []Track `json:"media"`
}

// Find returns the track with trackID and whether it is a microphone.
func (a ActiveAudio) Find(trackID string) (track Track, mic bool, ok bool) {
	for _, t := range a.Mics {
		if t.TrackID == trackID {
			return t, true, true
		}
	}
	for _, t := range a.Media {
		if t.TrackID == trackID {
			return t, false, true
		}
	}
	return Track{}, false, false
}

// Len returns the number of active tracks.
func (a ActiveAudio) Len() int {
	return len(a.Mics) + len(a.Media)
}

// Resolve replays the rundown to answer "what audio is live now".
//
// Audio cues in the navigable sequence are applied in order up to and
// including liveID. Then the live manual items are applied in document
// order, except that a manual cue never replaces a track that already
// exists. Invalid cues and actions on unknown tracks contribute nothing.
//
// Resolve is pure. It is re-run on every change rather than patched.
func Resolve(idx *rundown.Index, liveID string, liveManual []string) ActiveAudio {
	pos := -1
	if liveID != "" {
		if p, ok := idx.Position(liveID); ok {
			pos = p
		}
	}
	return ResolveThrough(idx, pos, liveManual)
}

// ResolveThrough is Resolve with the regular replay ending at navigable
// position pos, inclusive. A negative pos applies no regular cues.
func ResolveThrough(idx *rundown.Index, pos int, liveManual []string) ActiveAudio {
	acc := newAudioAccumulator()

	for i, item := range idx.Items() {
		if i > pos {
			break
		}
		if item.Kind == rundown.KindAudioCue {
			acc.apply(item.ID, item.Audio, false)
		}
	}

	if len(liveManual) > 0 {
		live := make(map[string]struct{}, len(liveManual))
		for _, id := range liveManual {
			live[id] = struct{}{}
		}
		for _, block := range idx.ManualBlocks() {
			for i := range block.ManualItems {
				mi := &block.ManualItems[i]
				if _, ok := live[mi.ID]; !ok || mi.Kind != rundown.KindAudioCue {
					continue
				}
				acc.apply(mi.ID, mi.Audio, true)
			}
		}
	}

	return acc.result()
}

type audioEntry struct {
	track Track
	mic   bool
}

type audioAccumulator struct {
	tracks map[string]*audioEntry
	order  []string
}

func newAudioAccumulator() *audioAccumulator {
	return &audioAccumulator{tracks: make(map[string]*audioEntry)}
}

func (a *audioAccumulator) apply(itemID string, cue *rundown.AudioCue, manual bool) {
	if cue == nil || !cue.Valid {
		return
	}

	switch cue.Mode {
	case rundown.AudioNew:
		if _, exists := a.tracks[cue.TrackID]; exists && manual {
			return
		}
		t := Track{
			TrackID: cue.TrackID,
			ID:      cue.SourceID,
			Name:    cue.SourceName,
			Volume:  cue.Volume,
		}
		mic := cue.SourceType == rundown.SourceMic
		if !mic {
			t.MediaPath = cue.MediaPath
			t.MediaDurationSeconds = cue.MediaDurationSeconds
			t.StartedAtItemID = itemID
		}
		a.upsert(t, mic)

	case rundown.AudioExisting:
		entry, ok := a.tracks[cue.TrackID]
		if !ok {
			return
		}
		switch cue.Action {
		case rundown.ActionStop, rundown.ActionFadeOut:
			a.remove(cue.TrackID)
		case rundown.ActionAdjust, rundown.ActionFadeTo:
			entry.track.Volume = cue.TargetVolume
		}
	}
}

func (a *audioAccumulator) upsert(t Track, mic bool) {
	if entry, ok := a.tracks[t.TrackID]; ok {
		entry.track = t
		entry.mic = mic
		return
	}
	a.tracks[t.TrackID] = &audioEntry{track: t, mic: mic}
	a.order = append(a.order, t.TrackID)
}

func (a *audioAccumulator) remove(trackID string) {
	delete(a.tracks, trackID)
	for i, id := range a.order {
		if id == trackID {
			a.order = append(a.order[:i], a.order[i+1:]...)
			return
		}
	}
}

func (a *audioAccumulator) result() ActiveAudio {
	out := ActiveAudio{Mics: []Track{}, Media: []Track{}}
	for _, id := range a.order {
		entry := a.tracks[id]
		if entry.mic {
			out.Mics = append(out.Mics, entry.track)
		} else {
			out.Media = append(out.Media, entry.track)
		}
	}
	return out
}
