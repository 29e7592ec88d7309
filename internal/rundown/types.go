package rundown

import (
	"fmt"
	"time"
)

// DefaultDurationSeconds is shown for items whose document carries no
// automation settings at all. It is a display value only.
const DefaultDurationSeconds = 10

// Kind identifies the variant of an Item or ManualItem.
type Kind int

const (
	// KindCue is a regular cue whose type has no dedicated handling.
	KindCue Kind = iota
	KindGraphic
	KindVideo
	KindImage
	KindAudioCue
	KindPresenterNote
	KindManualBlock
	KindOverlay
)

var kindNames = map[Kind]string{
	KindCue:           "cue",
	KindGraphic:       "graphic",
	KindVideo:         "video",
	KindImage:         "image",
	KindAudioCue:      "audio_cue",
	KindPresenterNote: "presenter_note",
	KindManualBlock:   "manual_block",
	KindOverlay:       "overlay",
}

// String returns the canonical snake_case name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using the same
// normalisation as document parsing.
func (k *Kind) UnmarshalText(text []byte) error {
	*k = ParseKind(string(text))
	return nil
}

// IsRegularCue reports whether the kind is an ordinary playable cue.
func (k Kind) IsRegularCue() bool {
	switch k {
	case KindCue, KindGraphic, KindVideo, KindImage, KindAudioCue:
		return true
	default:
		return false
	}
}

// ExecutesInstantly reports whether going LIVE is the whole effect of an
// item of this kind. Audio cues fire a command and are done.
func (k Kind) ExecutesInstantly() bool {
	return k == KindAudioCue
}

// AutomationMode controls whether an item advances itself.
type AutomationMode string

const (
	AutomationAuto   AutomationMode = "auto"
	AutomationManual AutomationMode = "manual"
)

// OverlayKind separates parent-driven overlays from operator-toggled ones.
type OverlayKind string

const (
	OverlayAuto   OverlayKind = "auto"
	OverlayManual OverlayKind = "manual"
)

// OverlayPolicy decides how a live automatic overlay is taken out.
type OverlayPolicy string

const (
	PolicyAutoOut       OverlayPolicy = "auto_out"        // removed after DurationSeconds
	PolicyLeaveInLocal  OverlayPolicy = "leave_in_local"  // removed at the segment boundary
	PolicyLeaveInGlobal OverlayPolicy = "leave_in_global" // removed only by the operator
)

// AudioMode says whether an audio cue starts a track or modifies one.
type AudioMode string

const (
	AudioNew      AudioMode = "new"
	AudioExisting AudioMode = "existing"
)

// SourceType is the kind of audio source a new track plays.
type SourceType string

const (
	SourceMic   SourceType = "mic"
	SourceMedia SourceType = "media"
)

// AudioAction is the change an existing-mode audio cue applies to a track.
type AudioAction string

const (
	ActionAdjust  AudioAction = "adjust"
	ActionFadeTo  AudioAction = "fade_to"
	ActionFadeOut AudioAction = "fade_out"
	ActionStop    AudioAction = "stop"
)

// Show is the root of a rundown tree.
type Show struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Segments  []Segment `json:"segments"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Segment is a top-level block of a show.
type Segment struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Groups []Group `json:"groups"`
}

// Group is an ordered run of items inside a segment.
type Group struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Item is one cue of the rundown. Exactly one of Audio, Overlay or
// ManualItems is meaningful, selected by Kind.
type Item struct {
	ID       string `json:"id"`
	Title    string `json:"title,omitempty"`
	Kind     Kind   `json:"kind"`
	TypeName string `json:"type_name,omitempty"` // type string as authored

	AutomationMode            AutomationMode `json:"automation_mode"`
	AutomationDurationSeconds float64        `json:"automation_duration_seconds"`
	// DurationDefaulted is set when the document had no automation settings
	// and the duration is DefaultDurationSeconds for display only.
	DurationDefaulted bool `json:"duration_defaulted,omitempty"`

	Audio       *AudioCue      `json:"audio,omitempty"`
	Overlay     *Overlay       `json:"overlay,omitempty"`
	ManualItems []ManualItem   `json:"manual_items,omitempty"`
	Payload     map[string]any `json:"payload,omitempty"`
}

// IsAuto reports whether the item advances itself.
func (i Item) IsAuto() bool {
	return i.AutomationMode == AutomationAuto
}

// IsAutoOverlay reports whether the item is an overlay driven by its parent.
func (i Item) IsAutoOverlay() bool {
	return i.Kind == KindOverlay && i.Overlay != nil && i.Overlay.Kind == OverlayAuto
}

// Navigable reports whether the item may occupy the LIVE or PREVIEW pointer.
func (i Item) Navigable() bool {
	switch {
	case i.Kind == KindPresenterNote, i.Kind == KindManualBlock:
		return false
	case i.IsAutoOverlay():
		return false
	default:
		return true
	}
}

// ManualItem is a child of a manual block. It is only reachable through the
// manual toggle/arm operations, never through advance.
type ManualItem struct {
	ID       string         `json:"id"`
	Title    string         `json:"title,omitempty"`
	Kind     Kind           `json:"kind"`
	TypeName string         `json:"type_name,omitempty"`
	Audio    *AudioCue      `json:"audio,omitempty"`
	Overlay  *Overlay       `json:"overlay,omitempty"`
	Payload  map[string]any `json:"payload,omitempty"`
}

// Overlay is the automation payload of an overlay item.
type Overlay struct {
	Kind            OverlayKind   `json:"overlay_kind"`
	InPointSeconds  float64       `json:"in_point_seconds"`
	DurationSeconds float64       `json:"duration_seconds"`
	Policy          OverlayPolicy `json:"automation_policy"`
}

// AudioCue is the payload of an audio cue. Fields are read according to Mode.
type AudioCue struct {
	Mode AudioMode `json:"mode"`

	// Mode new.
	SourceType           SourceType `json:"source_type,omitempty"`
	SourceID             string     `json:"source_id,omitempty"`
	SourceName           string     `json:"source_name,omitempty"`
	Volume               float64    `json:"volume"`
	FadeInSeconds        float64    `json:"fade_in_seconds,omitempty"`
	FadeOutSeconds       float64    `json:"fade_out_seconds,omitempty"`
	MediaDurationSeconds *float64   `json:"media_duration_seconds,omitempty"`
	MediaPath            string     `json:"media_path,omitempty"`

	// Both modes. Defaults to track_<itemId> for new tracks.
	TrackID string `json:"track_id"`

	// Mode existing.
	Action              AudioAction `json:"action,omitempty"`
	TargetVolume        float64     `json:"target_volume,omitempty"`
	FadeDurationSeconds float64     `json:"fade_duration_seconds,omitempty"`

	// Valid is false when required fields were missing; such cues contribute
	// nothing to the active audio state.
	Valid bool `json:"valid"`
}

// DefaultTrackID returns the track id a new-mode cue uses when none is set.
func DefaultTrackID(itemID string) string {
	return "track_" + itemID
}
