package marker

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/unfold/internal/engine/buffer"
)

// LayerOption configures a Layer.
type LayerOption func(*Layer)

// WithInvalidation sets the invalidation strategy for markers created by the layer.
func WithInvalidation(inv Invalidation) LayerOption {
	return func(l *Layer) {
		l.invalidation = inv
	}
}

// Layer owns the markers of one buffer and keeps them in sync with its edits.
// All operations are thread-safe.
type Layer struct {
	mu           sync.Mutex
	buf          *buffer.Buffer
	markers      map[uuid.UUID]*Marker
	invalidation Invalidation
	unsubscribe  func()
	closed       bool
}

// NewLayer creates a marker layer attached to buf.
func NewLayer(buf *buffer.Buffer, opts ...LayerOption) *Layer {
	l := &Layer{
		buf:     buf,
		markers: make(map[uuid.UUID]*Marker),
	}

	for _, opt := range opts {
		opt(l)
	}

	l.unsubscribe = buf.Subscribe(l.handleEdit)
	return l
}

// Buffer returns the buffer the layer tracks.
func (l *Layer) Buffer() *buffer.Buffer {
	return l.buf
}

// Invalidation returns the layer's invalidation strategy.
func (l *Layer) Invalidation() Invalidation {
	return l.invalidation
}

// Mark creates a marker over r. The range is clipped to the buffer.
func (l *Layer) Mark(r buffer.PointRange) (*Marker, error) {
	start := l.buf.PointToOffset(r.Start)
	end := l.buf.PointToOffset(r.End)
	if start > end {
		return nil, buffer.ErrRangeInvalid
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrLayerClosed
	}

	m := &Marker{
		id:    uuid.New(),
		layer: l,
		r:     buffer.Range{Start: start, End: end},
		valid: true,
	}
	l.markers[m.id] = m
	return m, nil
}

// Get returns the live marker with the given ID.
func (l *Layer) Get(id uuid.UUID) (*Marker, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.markers[id]
	return m, ok
}

// Len returns the number of live markers.
func (l *Layer) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.markers)
}

// Clear destroys every marker in the layer.
func (l *Layer) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.clearLocked()
}

func (l *Layer) clearLocked() {
	for id, m := range l.markers {
		m.destroyed = true
		delete(l.markers, id)
	}
}

// Close destroys every marker and stops tracking the buffer.
// Calling Close more than once is safe.
func (l *Layer) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	l.unsubscribe()
	l.clearLocked()
}

// handleEdit moves every marker through an applied edit.
func (l *Layer) handleEdit(res buffer.EditResult) {
	edit := res.Edit()

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, m := range l.markers {
		if m.valid && l.invalidation.invalidates(m.r, edit.Range) {
			m.valid = false
		}
		m.r = transformRange(m.r, edit)
	}
}
