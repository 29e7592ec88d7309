// Package rundown holds the broadcast rundown model and its canonical index.
//
// A rundown is a tree: Show → Segment[] → Group[] → Item[]. Array order is
// the only execution order; there is no separate sequencing field.
//
// Documents arrive from a file or the database as loosely typed JSON/YAML
// (see Document). Parse turns a Document into a Show exactly once, resolving
// every item's type string into a Kind and every payload into typed fields.
// Nothing downstream compares type strings again.
//
// Build flattens a Show into an Index: the navigable sequence that the LIVE
// and PREVIEW pointers walk, plus lookups for manual blocks, overlays and
// segments.
//
//	doc, err := rundown.Decode(data)
//	show, err := rundown.Parse(doc)
//	idx := rundown.Build(show)
//	next, ok := idx.Next(liveID)
//
// # Thread Safety
//
// Show values are not copied on read; treat a parsed Show and its Index as
// immutable. Build and Parse are pure and may be called from any goroutine.
package rundown
