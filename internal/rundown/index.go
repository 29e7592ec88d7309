package rundown

// Index is the flattened, read-only view of a Show. It is built once per
// rundown version and never patched; rebuild it when the tree changes.
//
// An Index is immutable after Build and safe for concurrent readers.
type Index struct {
	show *Show

	navigable []*Item
	position  map[string]int

	items   map[string]*Item
	segment map[string]string
	loc     map[string]itemLoc

	manualBlocks []*Item
	manualItems  map[string]*ManualItem
	manualParent map[string]string
}

type itemLoc struct {
	seg, grp, idx int
}

// Build flattens show depth-first, segment-major, group-minor, preserving
// document order. The navigable sequence leaves out presenter notes, manual
// blocks and automatic overlays. A nil show yields an empty Index.
func Build(show *Show) *Index {
	idx := &Index{
		show:         show,
		position:     make(map[string]int),
		items:        make(map[string]*Item),
		segment:      make(map[string]string),
		loc:          make(map[string]itemLoc),
		manualItems:  make(map[string]*ManualItem),
		manualParent: make(map[string]string),
	}
	if show == nil {
		return idx
	}

	for si := range show.Segments {
		seg := &show.Segments[si]
		for gi := range seg.Groups {
			grp := &seg.Groups[gi]
			for ii := range grp.Items {
				item := &grp.Items[ii]
				idx.items[item.ID] = item
				idx.segment[item.ID] = seg.ID
				idx.loc[item.ID] = itemLoc{seg: si, grp: gi, idx: ii}

				if item.Kind == KindManualBlock {
					idx.manualBlocks = append(idx.manualBlocks, item)
					for mi := range item.ManualItems {
						child := &item.ManualItems[mi]
						idx.manualItems[child.ID] = child
						idx.manualParent[child.ID] = item.ID
					}
				}

				if !item.Navigable() {
					continue
				}
				if _, dup := idx.position[item.ID]; dup {
					continue
				}
				idx.position[item.ID] = len(idx.navigable)
				idx.navigable = append(idx.navigable, item)
			}
		}
	}
	return idx
}

// Show returns the tree the Index was built from.
func (x *Index) Show() *Show {
	return x.show
}

// Len returns the number of navigable items.
func (x *Index) Len() int {
	return len(x.navigable)
}

// Items returns the navigable sequence. The slice is shared; do not modify it.
func (x *Index) Items() []*Item {
	return x.navigable
}

// At returns the navigable item at position i.
func (x *Index) At(i int) (*Item, bool) {
	if i < 0 || i >= len(x.navigable) {
		return nil, false
	}
	return x.navigable[i], true
}

// Position returns the position of id in the navigable sequence.
func (x *Index) Position(id string) (int, bool) {
	p, ok := x.position[id]
	return p, ok
}

// Next returns the navigable item immediately after id.
func (x *Index) Next(id string) (*Item, bool) {
	p, ok := x.position[id]
	if !ok {
		return nil, false
	}
	return x.At(p + 1)
}

// Item looks up any top-level item by id, navigable or not.
func (x *Index) Item(id string) (*Item, bool) {
	item, ok := x.items[id]
	return item, ok
}

// ManualBlocks returns the manual block containers in document order.
func (x *Index) ManualBlocks() []*Item {
	return x.manualBlocks
}

// ManualItem looks up a child of a manual block by id.
func (x *Index) ManualItem(id string) (*ManualItem, bool) {
	mi, ok := x.manualItems[id]
	return mi, ok
}

// ManualBlockOf returns the id of the manual block holding a manual item.
func (x *Index) ManualBlockOf(id string) (string, bool) {
	parent, ok := x.manualParent[id]
	return parent, ok
}

// SegmentOf returns the id of the segment that holds the item.
func (x *Index) SegmentOf(id string) (string, bool) {
	seg, ok := x.segment[id]
	return seg, ok
}

// FollowingOverlays returns the automatic overlays that directly follow id
// within its group. The run ends at the first sibling that is not an
// overlay; manual overlays inside the run are skipped.
func (x *Index) FollowingOverlays(id string) []*Item {
	l, ok := x.loc[id]
	if !ok {
		return nil
	}
	siblings := x.show.Segments[l.seg].Groups[l.grp].Items

	var out []*Item
	for i := l.idx + 1; i < len(siblings); i++ {
		sib := &siblings[i]
		if sib.Kind != KindOverlay {
			break
		}
		if sib.IsAutoOverlay() {
			out = append(out, sib)
		}
	}
	return out
}
