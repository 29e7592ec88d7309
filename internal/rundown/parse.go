package rundown

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Document is the rundown as fetched from a backend or file: loosely typed,
// camelCase, with a kind-specific "data" object per item. JSON is valid YAML,
// so both formats decode through Decode.
type Document struct {
	ID        string            `json:"id" yaml:"id"`
	Name      string            `json:"name" yaml:"name"`
	UpdatedAt string            `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
	Segments  []DocumentSegment `json:"segments" yaml:"segments"`
}

// DocumentSegment is a segment as it appears in a Document.
type DocumentSegment struct {
	ID     string          `json:"id" yaml:"id"`
	Name   string          `json:"name" yaml:"name"`
	Groups []DocumentGroup `json:"groups" yaml:"groups"`
}

// DocumentGroup is a group as it appears in a Document.
type DocumentGroup struct {
	ID    string         `json:"id" yaml:"id"`
	Name  string         `json:"name" yaml:"name"`
	Items []DocumentItem `json:"items" yaml:"items"`
}

// DocumentItem is an item as it appears in a Document. Type may also be
// supplied as Kind; either spelling is accepted.
type DocumentItem struct {
	ID                        string         `json:"id" yaml:"id"`
	Type                      string         `json:"type,omitempty" yaml:"type,omitempty"`
	Kind                      string         `json:"kind,omitempty" yaml:"kind,omitempty"`
	Title                     string         `json:"title,omitempty" yaml:"title,omitempty"`
	AutomationMode            *string        `json:"automationMode,omitempty" yaml:"automationMode,omitempty"`
	AutomationDurationSeconds *float64       `json:"automationDurationSeconds,omitempty" yaml:"automationDurationSeconds,omitempty"`
	Data                      map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// Decode reads a JSON or YAML rundown document.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decoding document: %w", ErrInvalidShow, err)
	}
	return &doc, nil
}

// Parse converts a Document into a typed Show. Item kinds and payloads are
// resolved here once. Malformed payloads are kept but marked invalid rather
// than failing the whole document.
func Parse(doc *Document) (*Show, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrInvalidShow)
	}

	show := &Show{
		ID:       doc.ID,
		Name:     doc.Name,
		Segments: make([]Segment, 0, len(doc.Segments)),
	}
	if doc.UpdatedAt != "" {
		if t, err := time.Parse(time.RFC3339, doc.UpdatedAt); err == nil {
			show.UpdatedAt = t
		}
	}

	for _, ds := range doc.Segments {
		seg := Segment{ID: ds.ID, Name: ds.Name, Groups: make([]Group, 0, len(ds.Groups))}
		for _, dg := range ds.Groups {
			grp := Group{ID: dg.ID, Name: dg.Name, Items: make([]Item, 0, len(dg.Items))}
			for _, di := range dg.Items {
				grp.Items = append(grp.Items, parseItem(di))
			}
			seg.Groups = append(seg.Groups, grp)
		}
		show.Segments = append(show.Segments, seg)
	}

	if err := ValidateShow(show); err != nil {
		return nil, err
	}
	return show, nil
}

// parseItem resolves a single document item.
func parseItem(di DocumentItem) Item {
	typeName := di.Type
	if typeName == "" {
		typeName = di.Kind
	}

	item := Item{
		ID:       di.ID,
		Title:    di.Title,
		Kind:     ParseKind(typeName),
		TypeName: typeName,
		Payload:  di.Data,
	}

	// Missing mode means manual. Missing duration is a display default only
	// when no automation settings exist at all.
	item.AutomationMode = AutomationManual
	if di.AutomationMode != nil {
		item.AutomationMode = parseAutomationMode(*di.AutomationMode)
	}
	switch {
	case di.AutomationDurationSeconds != nil:
		item.AutomationDurationSeconds = clampNonNegative(*di.AutomationDurationSeconds)
	case di.AutomationMode == nil:
		item.AutomationDurationSeconds = DefaultDurationSeconds
		item.DurationDefaulted = true
	}

	switch item.Kind {
	case KindAudioCue:
		item.Audio = parseAudioCue(di.ID, di.Data)
	case KindOverlay:
		item.Overlay = parseOverlay(di.Data)
	case KindManualBlock:
		item.ManualItems = parseManualItems(di.Data)
	}
	return item
}

// parseManualItems reads the children of a manual block from data.items.
func parseManualItems(data map[string]any) []ManualItem {
	raw, ok := data["items"].([]any)
	if !ok {
		return nil
	}

	items := make([]ManualItem, 0, len(raw))
	for _, entry := range raw {
		m, ok := toStringMap(entry)
		if !ok {
			continue
		}
		id := stringField(m, "id")
		if id == "" {
			continue
		}
		typeName := stringField(m, "type")
		if typeName == "" {
			typeName = stringField(m, "kind")
		}
		childData, _ := toStringMap(m["data"])

		mi := ManualItem{
			ID:       id,
			Title:    stringField(m, "title"),
			Kind:     ParseKind(typeName),
			TypeName: typeName,
			Payload:  childData,
		}
		switch mi.Kind {
		case KindAudioCue:
			mi.Audio = parseAudioCue(id, childData)
		case KindOverlay:
			mi.Overlay = parseOverlay(childData)
			// Anything inside a manual block is operator-driven.
			mi.Overlay.Kind = OverlayManual
		}
		items = append(items, mi)
	}
	return items
}

// parseAudioCue reads an audio cue payload. Required fields that are missing
// leave Valid false.
func parseAudioCue(itemID string, data map[string]any) *AudioCue {
	cue := &AudioCue{
		Mode:                AudioMode(normalizeType(stringField(data, "mode"))),
		SourceType:          SourceType(normalizeType(stringField(data, "sourceType"))),
		SourceID:            stringField(data, "sourceId"),
		SourceName:          stringField(data, "sourceName"),
		MediaPath:           stringField(data, "mediaPath"),
		TrackID:             stringField(data, "trackId"),
		Action:              parseAudioAction(stringField(data, "action")),
		FadeInSeconds:       clampNonNegative(numberField(data, "fadeInSeconds", 0)),
		FadeOutSeconds:      clampNonNegative(numberField(data, "fadeOutSeconds", 0)),
		FadeDurationSeconds: clampNonNegative(numberField(data, "fadeDurationSeconds", 0)),
		Volume:              clampVolume(numberField(data, "volume", 100)),
		TargetVolume:        clampVolume(numberField(data, "targetVolume", 0)),
	}
	if cue.SourceID == "" {
		cue.SourceID = stringField(data, "mediaId")
	}
	if d, ok := lookupNumber(data, "mediaDurationSeconds"); ok {
		d = clampNonNegative(d)
		cue.MediaDurationSeconds = &d
	}

	// A cue naming a source but no mode is a new track.
	if cue.Mode == "" && cue.SourceType != "" {
		cue.Mode = AudioNew
	}

	switch cue.Mode {
	case AudioNew:
		if cue.TrackID == "" {
			cue.TrackID = DefaultTrackID(itemID)
		}
		cue.Valid = (cue.SourceType == SourceMic || cue.SourceType == SourceMedia) && cue.SourceID != ""
	case AudioExisting:
		cue.Valid = cue.TrackID != "" && cue.Action != ""
	}
	return cue
}

// parseOverlay reads an overlay payload, defaulting to an automatic overlay
// that takes itself out.
func parseOverlay(data map[string]any) *Overlay {
	o := &Overlay{
		Kind:            OverlayAuto,
		InPointSeconds:  clampNonNegative(numberField(data, "inPointSeconds", 0)),
		DurationSeconds: clampNonNegative(numberField(data, "durationSeconds", 0)),
		Policy:          PolicyAutoOut,
	}

	kind := stringField(data, "overlayKind")
	if kind == "" {
		kind = stringField(data, "overlayType")
	}
	if normalizeType(kind) == "manual" {
		o.Kind = OverlayManual
	}

	switch normalizeType(stringField(data, "automationPolicy")) {
	case "leaveinlocal":
		o.Policy = PolicyLeaveInLocal
	case "leaveinglobal":
		o.Policy = PolicyLeaveInGlobal
	}
	return o
}

// ParseKind maps an authored type string to a Kind. Matching ignores case
// and punctuation, so "AudioCue", "audio-cue" and "audio_cue" are equal.
func ParseKind(typeName string) Kind {
	switch normalizeType(typeName) {
	case "audiocue", "audio":
		return KindAudioCue
	case "presenternote", "note", "notes":
		return KindPresenterNote
	case "manualblock", "manual":
		return KindManualBlock
	case "overlay", "graphicoverlay":
		return KindOverlay
	case "graphic", "graphics", "lowerthird":
		return KindGraphic
	case "video", "clip":
		return KindVideo
	case "image", "still":
		return KindImage
	default:
		return KindCue
	}
}

func parseAutomationMode(s string) AutomationMode {
	switch normalizeType(s) {
	case "auto", "automatic":
		return AutomationAuto
	default:
		return AutomationManual
	}
}

func parseAudioAction(s string) AudioAction {
	switch normalizeType(s) {
	case "adjust":
		return ActionAdjust
	case "fadeto":
		return ActionFadeTo
	case "fadeout":
		return ActionFadeOut
	case "stop":
		return ActionStop
	default:
		return ""
	}
}

// normalizeType lowercases s and drops everything that is not a letter or digit.
func normalizeType(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func numberField(m map[string]any, key string, def float64) float64 {
	if v, ok := lookupNumber(m, key); ok {
		return v
	}
	return def
}

// lookupNumber accepts the numeric shapes produced by both JSON and YAML decoding.
func lookupNumber(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func clampVolume(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
