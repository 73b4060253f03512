package marker

import "github.com/dshills/unfold/internal/engine/buffer"

// transformOffset updates an offset after an edit.
//
// Transformation rules:
//   - If edit is entirely before offset: adjust offset by the edit's delta
//   - If edit is an insertion exactly at offset: stay when sticky, else move past it
//   - If edit starts at or after offset: offset unchanged
//   - If edit spans offset: move offset to end of new text
func transformOffset(offset buffer.ByteOffset, edit buffer.Edit, sticky bool) buffer.ByteOffset {
	// For insertions at exactly the offset position
	if edit.Range.Start == offset && edit.Range.IsEmpty() {
		if sticky {
			return offset
		}
		return offset + buffer.ByteOffset(len(edit.NewText))
	}

	// Edit is entirely before offset: adjust by delta
	if edit.Range.End <= offset {
		return offset + edit.Delta()
	}

	// Edit starts at or after offset: no change needed
	if edit.Range.Start >= offset {
		return offset
	}

	// Edit spans offset: move to end of new text
	return edit.Range.Start + buffer.ByteOffset(len(edit.NewText))
}

// transformRange moves a marker's offsets through an edit.
// The start stays put for insertions at the start so that text typed at
// the front of a region joins it; the end moves with insertions at the end.
func transformRange(r buffer.Range, edit buffer.Edit) buffer.Range {
	start := transformOffset(r.Start, edit, true)
	end := transformOffset(r.End, edit, false)
	if start > end {
		start, end = end, start
	}
	return buffer.Range{Start: start, End: end}
}
