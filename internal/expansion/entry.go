package expansion

import "github.com/dshills/unfold/internal/engine/buffer"

// Marker is a live range handle over a document.
// It adjusts itself as the document is edited; the set never recomputes
// ranges on its own.
type Marker interface {
	Range() buffer.PointRange
	ContainsPoint(p buffer.Point) bool
	ContainsRange(r buffer.PointRange) bool
	IsValid() bool
	Destroy()
}

// Entry is a single expansion: the marker over the expanded text, the text
// it replaced, and where the cursor was when the expansion happened.
type Entry struct {
	marker           Marker
	originalText     string
	originalLocation buffer.Point
	destroyed        bool
}

func newEntry(m Marker, originalText string, originalLocation buffer.Point) *Entry {
	return &Entry{
		marker:           m,
		originalText:     originalText,
		originalLocation: originalLocation,
	}
}

// Marker returns the handle owned by the entry.
func (e *Entry) Marker() Marker {
	return e.marker
}

// OriginalText returns the text that existed before the expansion.
func (e *Entry) OriginalText() string {
	return e.originalText
}

// OriginalLocation returns the cursor position to restore on unexpand.
func (e *Entry) OriginalLocation() buffer.Point {
	return e.originalLocation
}

// Range returns the current range of the expansion.
// It moves with edits to the document, so do not cache it.
func (e *Entry) Range() buffer.PointRange {
	return e.marker.Range()
}

// Start returns the starting point of the expansion.
func (e *Entry) Start() buffer.Point {
	return e.Range().Start
}

// Top returns the first row of the expansion.
func (e *Entry) Top() uint32 {
	return e.Start().Line
}

// Bottom returns the last row of the expansion.
func (e *Entry) Bottom() uint32 {
	return e.Range().End.Line
}

// Contains returns true if the expansion's range covers other's entirely.
func (e *Entry) Contains(other *Entry) bool {
	return e.marker.ContainsRange(other.Range())
}

// ContainsPoint returns true if p lies inside the expansion.
func (e *Entry) ContainsPoint(p buffer.Point) bool {
	return e.marker.ContainsPoint(p)
}

// IsDestroyed returns true once the entry has left its set.
func (e *Entry) IsDestroyed() bool {
	return e.destroyed
}

// Release destroys the marker of an entry handed back by Set.Remove.
// Callers restore the original text first, then release. Releasing twice is a no-op.
func (e *Entry) Release() {
	e.destroy()
}

func (e *Entry) destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true
	e.marker.Destroy()
}
