package buffer

import (
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
)

// Subscriber is called after every successful edit.
type Subscriber func(EditResult)

type subscription struct {
	id uint64
	fn Subscriber
}

// Buffer holds the text of one document.
// It provides the primary interface for text manipulation.
// All methods are thread-safe.
type Buffer struct {
	mu         sync.RWMutex
	text       string
	lineStarts []ByteOffset // byte offset of the first byte of every line
	revisionID RevisionID
	tabWidth   int

	subMu   sync.Mutex
	subs    []subscription
	nextSub uint64
}

// NewBuffer creates a new empty buffer.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		lineStarts: []ByteOffset{0},
		revisionID: NewRevisionID(),
		tabWidth:   4,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// NewBufferFromString creates a buffer with initial content.
func NewBufferFromString(s string, opts ...Option) *Buffer {
	b := NewBuffer(opts...)
	b.setTextLocked(normalizeLineEndings(s))
	return b
}

// NewBufferFromReader creates a buffer from an io.Reader.
func NewBufferFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	// Read all content first so CRLF pairs split across reads are normalized.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewBufferFromString(string(data), opts...), nil
}

// normalizeLineEndings converts CRLF and CR line endings to LF.
func normalizeLineEndings(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// setTextLocked replaces the content and rebuilds the line index (must hold lock).
func (b *Buffer) setTextLocked(s string) {
	b.text = s
	starts := make([]ByteOffset, 1, strings.Count(s, "\n")+1)
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			starts = append(starts, ByteOffset(i+1))
		}
	}
	b.lineStarts = starts
}

// Read Operations

// Text returns the full buffer content as a string.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

// TextRange returns text in the given byte range.
// Out-of-range bounds are clamped.
func (b *Buffer) TextRange(start, end ByteOffset) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	start = b.clampOffsetLocked(start)
	end = b.clampOffsetLocked(end)
	if start >= end {
		return ""
	}
	return b.text[start:end]
}

// TextInRange returns the text covered by a point range.
func (b *Buffer) TextInRange(r PointRange) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	start := b.pointToOffsetLocked(r.Start)
	end := b.pointToOffsetLocked(r.End)
	if start >= end {
		return ""
	}
	return b.text[start:end]
}

// Len returns the total byte length of the buffer.
func (b *Buffer) Len() ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return ByteOffset(len(b.text))
}

// LineCount returns the number of lines.
// An empty buffer has one (empty) line.
func (b *Buffer) LineCount() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return uint32(len(b.lineStarts))
}

// LineText returns the text of a specific line (without newline).
func (b *Buffer) LineText(line uint32) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if int(line) >= len(b.lineStarts) {
		return ""
	}
	return b.text[b.lineStarts[line]:b.lineEndLocked(line)]
}

// LineLen returns the length of a specific line in bytes (without newline).
func (b *Buffer) LineLen(line uint32) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if int(line) >= len(b.lineStarts) {
		return 0
	}
	return int(b.lineEndLocked(line) - b.lineStarts[line])
}

// lineEndLocked returns the offset just before the newline ending line (must hold lock).
func (b *Buffer) lineEndLocked(line uint32) ByteOffset {
	if int(line)+1 < len(b.lineStarts) {
		return b.lineStarts[line+1] - 1
	}
	return ByteOffset(len(b.text))
}

func (b *Buffer) clampOffsetLocked(offset ByteOffset) ByteOffset {
	if offset < 0 {
		return 0
	}
	if n := ByteOffset(len(b.text)); offset > n {
		return n
	}
	return offset
}

// Coordinate Conversion

// OffsetToPoint converts a byte offset to line/column.
// Offsets outside the buffer are clamped.
func (b *Buffer) OffsetToPoint(offset ByteOffset) Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.offsetToPointLocked(offset)
}

func (b *Buffer) offsetToPointLocked(offset ByteOffset) Point {
	offset = b.clampOffsetLocked(offset)
	// Last line whose start is <= offset.
	line := sort.Search(len(b.lineStarts), func(i int) bool {
		return b.lineStarts[i] > offset
	}) - 1
	return Point{Line: uint32(line), Column: uint32(offset - b.lineStarts[line])}
}

// PointToOffset converts line/column to byte offset.
// Lines past the end map to the buffer length; columns past the end of
// a line map to the end of that line.
func (b *Buffer) PointToOffset(point Point) ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.pointToOffsetLocked(point)
}

func (b *Buffer) pointToOffsetLocked(point Point) ByteOffset {
	if int(point.Line) >= len(b.lineStarts) {
		return ByteOffset(len(b.text))
	}
	start := b.lineStarts[point.Line]
	end := b.lineEndLocked(point.Line)
	if offset := start + ByteOffset(point.Column); offset < end {
		return offset
	}
	return end
}

// ClipPoint returns the nearest valid point to p.
func (b *Buffer) ClipPoint(p Point) Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.offsetToPointLocked(b.pointToOffsetLocked(p))
}

// IsValidPoint returns true if p addresses an existing position.
func (b *Buffer) IsValidPoint(p Point) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if int(p.Line) >= len(b.lineStarts) {
		return false
	}
	return b.lineStarts[p.Line]+ByteOffset(p.Column) <= b.lineEndLocked(p.Line)
}

// Write Operations

// Insert inserts text at the given offset.
// Returns the end position of the inserted text.
func (b *Buffer) Insert(offset ByteOffset, text string) (ByteOffset, error) {
	res, err := b.ApplyEdit(NewInsert(offset, text))
	if err != nil {
		if errors.Is(err, ErrRangeInvalid) {
			return 0, ErrOffsetOutOfRange
		}
		return 0, err
	}
	return res.NewRange.End, nil
}

// Delete removes text in the given range.
func (b *Buffer) Delete(start, end ByteOffset) error {
	_, err := b.ApplyEdit(NewDelete(start, end))
	return err
}

// Replace replaces text in the given range with new text.
// Returns the end position of the replacement text.
func (b *Buffer) Replace(start, end ByteOffset, text string) (ByteOffset, error) {
	res, err := b.ApplyEdit(NewEdit(NewRange(start, end), text))
	if err != nil {
		return 0, err
	}
	return res.NewRange.End, nil
}

// ReplaceRange replaces the text covered by a point range.
// Returns the point range now occupied by the new text.
func (b *Buffer) ReplaceRange(r PointRange, text string) (PointRange, error) {
	if !r.IsValid() || !b.IsValidPoint(r.Start) || !b.IsValidPoint(r.End) {
		return PointRange{}, ErrRangeInvalid
	}
	b.mu.RLock()
	start := b.pointToOffsetLocked(r.Start)
	end := b.pointToOffsetLocked(r.End)
	b.mu.RUnlock()

	res, err := b.ApplyEdit(NewEdit(NewRange(start, end), text))
	if err != nil {
		return PointRange{}, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	return PointRange{
		Start: b.offsetToPointLocked(res.NewRange.Start),
		End:   b.offsetToPointLocked(res.NewRange.End),
	}, nil
}

// ApplyEdit applies a single edit to the buffer and notifies subscribers.
func (b *Buffer) ApplyEdit(edit Edit) (EditResult, error) {
	b.mu.Lock()

	if edit.Range.Start < 0 || edit.Range.Start > edit.Range.End ||
		edit.Range.End > ByteOffset(len(b.text)) {
		b.mu.Unlock()
		return EditResult{}, ErrRangeInvalid
	}

	oldText := b.text[edit.Range.Start:edit.Range.End]
	text := normalizeLineEndings(edit.NewText)
	b.setTextLocked(b.text[:edit.Range.Start] + text + b.text[edit.Range.End:])
	b.revisionID = NewRevisionID()

	res := EditResult{
		OldRange: edit.Range,
		NewRange: Range{Start: edit.Range.Start, End: edit.Range.Start + ByteOffset(len(text))},
		OldText:  oldText,
		NewText:  text,
		Delta:    int64(len(text)) - int64(edit.Range.Len()),
		Revision: b.revisionID,
	}
	b.mu.Unlock()

	b.notify(res)
	return res, nil
}

// Subscriptions

// Subscribe registers fn to be called after every successful edit.
// The returned function removes the subscription; calling it twice is safe.
func (b *Buffer) Subscribe(fn Subscriber) (unsubscribe func()) {
	b.subMu.Lock()
	b.nextSub++
	id := b.nextSub
	b.subs = append(b.subs, subscription{id: id, fn: fn})
	b.subMu.Unlock()

	return func() {
		b.subMu.Lock()
		defer b.subMu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// notify calls subscribers in registration order.
func (b *Buffer) notify(res EditResult) {
	b.subMu.Lock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.subMu.Unlock()

	for _, s := range subs {
		s.fn(res)
	}
}

// Buffer State

// RevisionID returns the current revision ID.
func (b *Buffer) RevisionID() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revisionID
}

// IsEmpty returns true if the buffer is empty.
func (b *Buffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.text) == 0
}

// TabWidth returns the buffer's tab width.
func (b *Buffer) TabWidth() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tabWidth
}
