package marker

import (
	"github.com/google/uuid"

	"github.com/dshills/unfold/internal/engine/buffer"
)

// Marker is a live range over a buffer that follows edits made elsewhere.
// It is created by a Layer and stays registered there until destroyed.
type Marker struct {
	id    uuid.UUID
	layer *Layer

	// Guarded by layer.mu.
	r         buffer.Range
	valid     bool
	destroyed bool
}

// ID returns the marker's unique identifier.
func (m *Marker) ID() uuid.UUID {
	return m.id
}

// Offsets returns the marker's current byte range.
func (m *Marker) Offsets() buffer.Range {
	m.layer.mu.Lock()
	defer m.layer.mu.Unlock()
	return m.r
}

// Range returns the marker's current range.
// The range moves as the buffer is edited, so callers must not cache it.
func (m *Marker) Range() buffer.PointRange {
	r := m.Offsets()
	buf := m.layer.buf
	return buffer.PointRange{
		Start: buf.OffsetToPoint(r.Start),
		End:   buf.OffsetToPoint(r.End),
	}
}

// Start returns the start of the marker's range.
func (m *Marker) Start() buffer.Point {
	return m.Range().Start
}

// End returns the end of the marker's range.
func (m *Marker) End() buffer.Point {
	return m.Range().End
}

// ContainsPoint returns true if p lies within the range, endpoints included.
func (m *Marker) ContainsPoint(p buffer.Point) bool {
	return m.Range().Covers(p)
}

// ContainsRange returns true if r lies entirely within the marker's range.
func (m *Marker) ContainsRange(r buffer.PointRange) bool {
	return m.Range().ContainsRange(r)
}

// IsValid returns false once an edit has invalidated the marked text or
// the marker has been destroyed.
func (m *Marker) IsValid() bool {
	m.layer.mu.Lock()
	defer m.layer.mu.Unlock()
	return m.valid && !m.destroyed
}

// IsDestroyed returns true once the marker has been released.
func (m *Marker) IsDestroyed() bool {
	m.layer.mu.Lock()
	defer m.layer.mu.Unlock()
	return m.destroyed
}

// Destroy releases the marker. It stops tracking edits and is removed
// from its layer. Destroying a marker twice is a no-op.
func (m *Marker) Destroy() {
	m.layer.mu.Lock()
	defer m.layer.mu.Unlock()

	if m.destroyed {
		return
	}
	m.destroyed = true
	delete(m.layer.markers, m.id)
}
