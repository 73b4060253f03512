// Package document ties a text buffer to the expansions made in it.
//
// A Document owns a buffer, the marker layer tracking it, and the expansion
// set indexing those markers. Expand replaces a call site with its expansion
// and records it; Unexpand finds the expansion under a point and restores the
// text it replaced. Closing a document undoes every remaining expansion
// unless the document was opened with WithRetain.
package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/unfold/internal/engine/buffer"
	"github.com/dshills/unfold/internal/engine/marker"
	"github.com/dshills/unfold/internal/expansion"
	"github.com/dshills/unfold/internal/logging"
)

// Location is a 1-indexed file position, as external tools report it.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as file:line:column.
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Document is an open file with its active expansions.
// All methods are thread-safe.
type Document struct {
	mu sync.Mutex

	id     uuid.UUID
	path   string
	buf    *buffer.Buffer
	layer  *marker.Layer
	set    *expansion.Set
	cursor buffer.Point
	retain bool
	logger *logging.Logger

	// initial is the normalized text the document was created with.
	initial string
	crlf    bool

	modified bool
	closed   bool
}

// New creates a document holding content. The path may be empty for
// scratch documents.
func New(path, content string, opts ...Option) *Document {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	buf := buffer.NewBufferFromString(content, buffer.WithTabWidth(o.tabWidth))
	id := uuid.New()

	return &Document{
		initial: buf.Text(),
		crlf:    strings.Contains(content, "\r\n"),
		id:      id,
		path:    path,
		buf:     buf,
		layer:   marker.NewLayer(buf, marker.WithInvalidation(o.invalidation)),
		set:     expansion.NewSet(),
		retain:  o.retain,
		logger: o.logger.WithComponent("document").WithFields(map[string]any{
			"doc":  id.String()[:8],
			"file": displayName(path),
		}),
	}
}

func displayName(path string) string {
	if path == "" {
		return "Untitled"
	}
	return filepath.Base(path)
}

// ID returns the document's session identifier.
func (d *Document) ID() uuid.UUID {
	return d.id
}

// Path returns the document's file path.
func (d *Document) Path() string {
	return d.path
}

// Name returns the display name of the document.
func (d *Document) Name() string {
	return displayName(d.path)
}

// Text returns the full document content.
func (d *Document) Text() string {
	return d.buf.Text()
}

// FileText returns the content with the line endings the document was
// created with.
func (d *Document) FileText() string {
	text := d.buf.Text()
	if d.crlf {
		return strings.ReplaceAll(text, "\n", "\r\n")
	}
	return text
}

// HasChanges returns true if the text differs from what the document was
// created with. Undoing every expansion brings it back to false.
func (d *Document) HasChanges() bool {
	return d.buf.Text() != d.initial
}

// Buffer returns the underlying buffer.
func (d *Document) Buffer() *buffer.Buffer {
	return d.buf
}

// IsModified returns true if the text changed since the document was opened.
func (d *Document) IsModified() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.modified
}

// IsClosed returns true once Close has been called.
func (d *Document) IsClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Retain returns whether expansions are kept when the document closes.
func (d *Document) Retain() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.retain
}

// SetRetain changes whether expansions are kept when the document closes.
func (d *Document) SetRetain(retain bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.retain = retain
}

// Cursor returns the cursor position.
func (d *Document) Cursor() buffer.Point {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cursor
}

// SetCursor moves the cursor, clipping it to the document.
func (d *Document) SetCursor(p buffer.Point) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cursor = d.buf.ClipPoint(p)
}

// CursorLocation returns the cursor as a 1-indexed location.
func (d *Document) CursorLocation() Location {
	c := d.Cursor()
	return Location{
		File:   d.path,
		Line:   int(c.Line) + 1,
		Column: int(c.Column) + 1,
	}
}

// PointFromLocation converts a 1-indexed line and column to a point.
func PointFromLocation(line, column int) (buffer.Point, error) {
	if line < 1 || column < 1 {
		return buffer.Point{}, fmt.Errorf("%w: %d:%d", ErrInvalidLocation, line, column)
	}
	return buffer.NewPoint(uint32(line-1), uint32(column-1)), nil
}

// Expand replaces the text in call with expandedText and records the
// expansion. The cursor position at the time of the call is remembered so
// Unexpand can put it back, and the cursor moves to the start of the
// expanded text.
//
// The call range must lie strictly inside an existing expansion or outside
// all of them.
func (d *Document) Expand(call buffer.PointRange, expandedText string) (*expansion.Entry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrClosed
	}
	if !call.IsValid() || !d.buf.IsValidPoint(call.Start) || !d.buf.IsValidPoint(call.End) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRange, call)
	}
	if err := d.checkNestingLocked(call); err != nil {
		return nil, err
	}

	originalText := d.buf.TextInRange(call)
	location := d.cursor

	expanded, err := d.buf.ReplaceRange(call, expandedText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	d.modified = true

	m, err := d.layer.Mark(expanded)
	if err != nil {
		return nil, err
	}

	entry := d.set.Add(m, originalText, location)
	d.cursor = expanded.Start

	d.logger.Debug("expanded %s into %s", call, expanded)
	return entry, nil
}

// checkNestingLocked rejects ranges that would break the nesting of
// expansions (must hold lock).
func (d *Document) checkNestingLocked(call buffer.PointRange) error {
	for _, e := range d.set.Entries() {
		r := e.Range()
		// Text inserted at a marker boundary would grow the marker.
		if call.IsEmpty() && (call.Start == r.Start || call.Start == r.End) {
			return fmt.Errorf("%w: %s touches %s", ErrOverlapsExpansion, call, r)
		}
		disjoint := !call.End.After(r.Start) || !call.Start.Before(r.End)
		inside := r.ContainsRange(call) && call != r
		if !disjoint && !inside {
			return fmt.Errorf("%w: %s crosses %s", ErrOverlapsExpansion, call, r)
		}
	}
	return nil
}

// Unexpand undoes the innermost expansion covering p, restoring the text it
// replaced and the cursor position from before the expansion. Expansions
// nested inside it are dropped along with their text.
//
// It reports false when there is no expansion at p; that is not an error.
func (d *Document) Unexpand(p buffer.Point) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false, ErrClosed
	}

	entry, ok := d.set.Remove(p)
	if !ok {
		d.logger.Info("nothing to unexpand here %s", p)
		return false, nil
	}

	if err := d.restoreLocked(entry); err != nil {
		return false, NewOperationError("unexpand", d.path, err)
	}
	return true, nil
}

// UnexpandAtCursor undoes the innermost expansion covering the cursor.
func (d *Document) UnexpandAtCursor() (bool, error) {
	return d.Unexpand(d.Cursor())
}

// restoreLocked puts an entry's original text back and releases its
// marker (must hold lock). Text whose marker was invalidated by other edits
// is left alone.
func (d *Document) restoreLocked(entry *expansion.Entry) error {
	defer entry.Release()

	if !entry.Marker().IsValid() {
		d.logger.Warn("expansion at %s no longer matches its text, dropping it", entry.Start())
		return nil
	}

	r := entry.Range()
	if _, err := d.buf.ReplaceRange(r, entry.OriginalText()); err != nil {
		return err
	}
	d.modified = true
	d.cursor = d.buf.ClipPoint(entry.OriginalLocation())

	d.logger.Debug("unexpanded %s", r)
	return nil
}

// ExpansionAt returns the innermost expansion covering p.
func (d *Document) ExpansionAt(p buffer.Point) (*expansion.Entry, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.set.Find(p)
}

// Expansions returns the active expansions ordered by start row.
func (d *Document) Expansions() []*expansion.Entry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.set.Entries()
}

// Discard drops every expansion without touching the text.
func (d *Document) Discard() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.set.Clear()
}

// Close ends the document's session. Unless the document retains its
// expansions, each one is undone first so the text matches what it was
// before expanding. Closing twice is a no-op.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	var errs []error
	if !d.retain {
		for !d.set.IsEmpty() {
			first := d.set.Entries()[0]
			entry, ok := d.set.Remove(first.Start())
			if !ok {
				errs = append(errs, fmt.Errorf("expansion at %s not found", first.Start()))
				break
			}
			if err := d.restoreLocked(entry); err != nil {
				errs = append(errs, err)
			}
		}
	}

	d.set.Clear()
	d.layer.Close()

	d.logger.Debug("closed")
	if err := errors.Join(errs...); err != nil {
		return NewOperationError("close", d.path, err)
	}
	return nil
}
