package rundown

import (
	"errors"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"AudioCue", KindAudioCue},
		{"audio-cue", KindAudioCue},
		{"audio_cue", KindAudioCue},
		{"AUDIO CUE", KindAudioCue},
		{"PresenterNote", KindPresenterNote},
		{"presenter_note", KindPresenterNote},
		{"manual-block", KindManualBlock},
		{"Overlay", KindOverlay},
		{"lower_third", KindGraphic},
		{"Video", KindVideo},
		{"still", KindImage},
		{"camera", KindCue},
		{"", KindCue},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseKind(tt.in); got != tt.want {
				t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseItemAutomationDefaults(t *testing.T) {
	auto := "auto"
	dur := 7.0
	neg := -3.0

	tests := []struct {
		name          string
		item          DocumentItem
		wantMode      AutomationMode
		wantDuration  float64
		wantDefaulted bool
	}{
		{
			name:          "no automation settings",
			item:          DocumentItem{ID: "a", Type: "graphic"},
			wantMode:      AutomationManual,
			wantDuration:  DefaultDurationSeconds,
			wantDefaulted: true,
		},
		{
			name:         "mode without duration",
			item:         DocumentItem{ID: "a", Type: "graphic", AutomationMode: &auto},
			wantMode:     AutomationAuto,
			wantDuration: 0,
		},
		{
			name:         "duration without mode",
			item:         DocumentItem{ID: "a", Type: "graphic", AutomationDurationSeconds: &dur},
			wantMode:     AutomationManual,
			wantDuration: 7,
		},
		{
			name:         "negative duration clamps",
			item:         DocumentItem{ID: "a", Type: "graphic", AutomationMode: &auto, AutomationDurationSeconds: &neg},
			wantMode:     AutomationAuto,
			wantDuration: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseItem(tt.item)
			if got.AutomationMode != tt.wantMode {
				t.Errorf("AutomationMode = %q, want %q", got.AutomationMode, tt.wantMode)
			}
			if got.AutomationDurationSeconds != tt.wantDuration {
				t.Errorf("AutomationDurationSeconds = %v, want %v", got.AutomationDurationSeconds, tt.wantDuration)
			}
			if got.DurationDefaulted != tt.wantDefaulted {
				t.Errorf("DurationDefaulted = %v, want %v", got.DurationDefaulted, tt.wantDefaulted)
			}
		})
	}
}

func TestParseAudioCue(t *testing.T) {
	tests := []struct {
		name      string
		data      map[string]any
		wantMode  AudioMode
		wantTrack string
		wantVol   float64
		wantValid bool
	}{
		{
			name:      "new mic",
			data:      map[string]any{"mode": "new", "sourceType": "mic", "sourceId": "m1", "volume": 80},
			wantMode:  AudioNew,
			wantTrack: "track_cue",
			wantVol:   80,
			wantValid: true,
		},
		{
			name:      "mode inferred from source type",
			data:      map[string]any{"sourceType": "Media", "mediaId": "clip", "trackId": "t9"},
			wantMode:  AudioNew,
			wantTrack: "t9",
			wantVol:   100,
			wantValid: true,
		},
		{
			name:      "new without source type",
			data:      map[string]any{"mode": "new", "sourceId": "m1"},
			wantMode:  AudioNew,
			wantTrack: "track_cue",
			wantVol:   100,
			wantValid: false,
		},
		{
			name:      "existing fade",
			data:      map[string]any{"mode": "existing", "trackId": "t1", "action": "fade-to", "targetVolume": 20.0},
			wantMode:  AudioExisting,
			wantTrack: "t1",
			wantVol:   100,
			wantValid: true,
		},
		{
			name:      "existing without action",
			data:      map[string]any{"mode": "existing", "trackId": "t1"},
			wantMode:  AudioExisting,
			wantTrack: "t1",
			wantVol:   100,
			wantValid: false,
		},
		{
			name:      "volume clamps",
			data:      map[string]any{"mode": "new", "sourceType": "mic", "sourceId": "m1", "volume": "250"},
			wantMode:  AudioNew,
			wantTrack: "track_cue",
			wantVol:   100,
			wantValid: true,
		},
		{
			name:      "no payload",
			data:      nil,
			wantMode:  "",
			wantTrack: "",
			wantVol:   100,
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cue := parseAudioCue("cue", tt.data)
			if cue.Mode != tt.wantMode {
				t.Errorf("Mode = %q, want %q", cue.Mode, tt.wantMode)
			}
			if cue.TrackID != tt.wantTrack {
				t.Errorf("TrackID = %q, want %q", cue.TrackID, tt.wantTrack)
			}
			if cue.Volume != tt.wantVol {
				t.Errorf("Volume = %v, want %v", cue.Volume, tt.wantVol)
			}
			if cue.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", cue.Valid, tt.wantValid)
			}
		})
	}
}

func TestParseOverlay(t *testing.T) {
	o := parseOverlay(nil)
	if o.Kind != OverlayAuto || o.Policy != PolicyAutoOut {
		t.Errorf("defaults = %+v, want auto/auto_out", o)
	}

	o = parseOverlay(map[string]any{
		"overlayType":      "Manual",
		"automationPolicy": "leave-in-global",
		"inPointSeconds":   2,
		"durationSeconds":  -1,
	})
	if o.Kind != OverlayManual {
		t.Errorf("Kind = %q, want manual", o.Kind)
	}
	if o.Policy != PolicyLeaveInGlobal {
		t.Errorf("Policy = %q, want leave_in_global", o.Policy)
	}
	if o.InPointSeconds != 2 || o.DurationSeconds != 0 {
		t.Errorf("timing = %v/%v, want 2/0", o.InPointSeconds, o.DurationSeconds)
	}
}

func TestParseManualBlock(t *testing.T) {
	show, err := LoadFile("testdata/morning.yaml")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	block := show.Segments[1].Groups[0].Items[0]
	if block.Kind != KindManualBlock {
		t.Fatalf("Kind = %v, want manual_block", block.Kind)
	}
	if len(block.ManualItems) != 2 {
		t.Fatalf("ManualItems = %d, want 2", len(block.ManualItems))
	}

	sting := block.ManualItems[0]
	if sting.Kind != KindAudioCue || sting.Audio == nil || !sting.Audio.Valid {
		t.Errorf("sting = %+v, want valid audio cue", sting)
	}
	if sting.Audio.MediaPath != "/media/sting.wav" {
		t.Errorf("MediaPath = %q", sting.Audio.MediaPath)
	}

	bug := block.ManualItems[1]
	if bug.Overlay == nil || bug.Overlay.Kind != OverlayManual {
		t.Errorf("bug overlay = %+v, want manual kind", bug.Overlay)
	}
}

func TestParseRejectsDuplicateIDs(t *testing.T) {
	doc := &Document{
		ID: "dup",
		Segments: []DocumentSegment{{
			ID: "s",
			Groups: []DocumentGroup{{
				ID: "g",
				Items: []DocumentItem{
					{ID: "a", Type: "graphic"},
					{ID: "a", Type: "video"},
				},
			}},
		}},
	}

	_, err := Parse(doc)
	if !errors.Is(err, ErrInvalidShow) {
		t.Errorf("Parse() error = %v, want ErrInvalidShow", err)
	}
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode([]byte("segments: [unclosed"))
	if !errors.Is(err, ErrInvalidShow) {
		t.Errorf("Decode() error = %v, want ErrInvalidShow", err)
	}
}
