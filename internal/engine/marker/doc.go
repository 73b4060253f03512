// Package marker provides self-adjusting ranges over a buffer.
//
// A [Layer] subscribes to a [buffer.Buffer] and moves every [Marker] it owns
// through each applied edit, so a marker keeps pointing at the same text
// while the surrounding document changes:
//
//	layer := marker.NewLayer(buf)
//	m, _ := layer.Mark(r)
//	buf.Insert(0, "// header\n")
//	m.Range() // shifted one line down
//
// Markers follow the offset transform rules used for cursors: an insertion
// at the start of a marker is included in it, as is an insertion at its end.
//
// # Invalidation
//
// Edits that destroy the marked text make a marker invalid. Which edits count
// is chosen per layer with [WithInvalidation]; the default,
// [InvalidateOverlap], invalidates a marker when an edit crosses one of its
// boundaries or replaces it entirely. Edits strictly inside a marker leave it
// valid, which lets regions nest.
//
// # Ownership
//
// A marker has exactly one owner, which must call [Marker.Destroy] when it is
// done with it. Destroyed markers are removed from the layer and no longer move.
package marker
