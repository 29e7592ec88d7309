package rundown

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func loadMorning(t *testing.T) *Index {
	t.Helper()
	show, err := LoadFile("testdata/morning.yaml")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	return Build(show)
}

func navigableIDs(x *Index) []string {
	ids := make([]string, 0, x.Len())
	for _, item := range x.Items() {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestBuildNavigableSequence(t *testing.T) {
	x := loadMorning(t)

	// note-1, lower-third (auto overlay) and stingers (manual block) are skipped.
	want := []string{"title", "host-mic", "intro", "headlines"}
	if diff := cmp.Diff(want, navigableIDs(x)); diff != "" {
		t.Errorf("navigable sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	show, err := LoadFile("testdata/morning.yaml")
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	first := navigableIDs(Build(show))
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, navigableIDs(Build(show))); diff != "" {
			t.Fatalf("build %d differs (-first +got):\n%s", i, diff)
		}
	}
}

func TestBuildKeepsManualOverlays(t *testing.T) {
	show := &Show{Segments: []Segment{{ID: "s", Groups: []Group{{ID: "g", Items: []Item{
		{ID: "a", Kind: KindGraphic},
		{ID: "o-auto", Kind: KindOverlay, Overlay: &Overlay{Kind: OverlayAuto}},
		{ID: "o-manual", Kind: KindOverlay, Overlay: &Overlay{Kind: OverlayManual}},
	}}}}}}

	want := []string{"a", "o-manual"}
	if diff := cmp.Diff(want, navigableIDs(Build(show))); diff != "" {
		t.Errorf("navigable sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestIndexLookups(t *testing.T) {
	x := loadMorning(t)

	if p, ok := x.Position("intro"); !ok || p != 2 {
		t.Errorf("Position(intro) = %d, %v; want 2, true", p, ok)
	}
	if _, ok := x.Position("note-1"); ok {
		t.Error("Position(note-1) found, want not navigable")
	}
	if next, ok := x.Next("title"); !ok || next.ID != "host-mic" {
		t.Errorf("Next(title) = %v, %v; want host-mic", next, ok)
	}
	if _, ok := x.Next("headlines"); ok {
		t.Error("Next(headlines) found, want end of sequence")
	}
	if _, ok := x.Next("ghost"); ok {
		t.Error("Next(ghost) found, want false")
	}
	if _, ok := x.At(-1); ok {
		t.Error("At(-1) found")
	}
	if item, ok := x.Item("note-1"); !ok || item.Kind != KindPresenterNote {
		t.Errorf("Item(note-1) = %v, %v", item, ok)
	}
	if seg, ok := x.SegmentOf("headlines"); !ok || seg != "seg-news" {
		t.Errorf("SegmentOf(headlines) = %q, %v", seg, ok)
	}
	if mi, ok := x.ManualItem("sting-1"); !ok || mi.Kind != KindAudioCue {
		t.Errorf("ManualItem(sting-1) = %v, %v", mi, ok)
	}
	if parent, ok := x.ManualBlockOf("bug"); !ok || parent != "stingers" {
		t.Errorf("ManualBlockOf(bug) = %q, %v", parent, ok)
	}
	if got := len(x.ManualBlocks()); got != 1 {
		t.Errorf("ManualBlocks() = %d, want 1", got)
	}
}

func TestFollowingOverlays(t *testing.T) {
	show := &Show{Segments: []Segment{{ID: "s", Groups: []Group{{ID: "g", Items: []Item{
		{ID: "parent", Kind: KindVideo},
		{ID: "o1", Kind: KindOverlay, Overlay: &Overlay{Kind: OverlayAuto}},
		{ID: "m1", Kind: KindOverlay, Overlay: &Overlay{Kind: OverlayManual}},
		{ID: "o2", Kind: KindOverlay, Overlay: &Overlay{Kind: OverlayAuto}},
		{ID: "next", Kind: KindGraphic},
		{ID: "o3", Kind: KindOverlay, Overlay: &Overlay{Kind: OverlayAuto}},
	}}}}}}
	x := Build(show)

	var got []string
	for _, o := range x.FollowingOverlays("parent") {
		got = append(got, o.ID)
	}
	if diff := cmp.Diff([]string{"o1", "o2"}, got); diff != "" {
		t.Errorf("FollowingOverlays mismatch (-want +got):\n%s", diff)
	}
	if got := x.FollowingOverlays("o3"); len(got) != 0 {
		t.Errorf("FollowingOverlays(o3) = %v, want none", got)
	}
	if got := x.FollowingOverlays("ghost"); got != nil {
		t.Errorf("FollowingOverlays(ghost) = %v, want nil", got)
	}
}

func TestBuildNilShow(t *testing.T) {
	x := Build(nil)
	if x.Len() != 0 {
		t.Errorf("Len() = %d, want 0", x.Len())
	}
	if _, ok := x.Item("a"); ok {
		t.Error("Item() found on empty index")
	}
}
