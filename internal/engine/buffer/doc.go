// Package buffer provides the thread-safe text buffer that hosts expansions.
//
// The buffer package provides:
//
//   - Thread-safe read/write access via sync.RWMutex
//   - Coordinate conversion between byte offsets and line/column positions
//   - Line ending normalization (all input is stored with LF endings)
//   - Revision tracking for change management
//   - Edit subscriptions, used by marker layers to keep ranges in sync
//
// Basic usage:
//
//	buf := buffer.NewBufferFromString("int x = square(2);")
//
//	// Replace a call with its definition
//	r := buffer.NewPointRange(buffer.NewPoint(0, 8), buffer.NewPoint(0, 17))
//	buf.ReplaceRange(r, "2 * 2")
//
//	// Observe edits
//	unsubscribe := buf.Subscribe(func(res buffer.EditResult) {
//	    fmt.Println(res.OldRange, "->", res.NewRange)
//	})
//	defer unsubscribe()
//
// Position Types:
//
//   - ByteOffset: Raw byte position in the buffer
//   - Point: Line and column position (0-indexed, column in bytes)
//   - PointRange: A pair of Points; Contains is half-open, Covers is closed
//
// Thread Safety:
//
// All Buffer methods are thread-safe. Subscribers are invoked synchronously
// after the write lock is released, so they may read from the buffer.
package buffer
