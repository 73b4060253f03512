package document

import (
	"errors"
	"fmt"
)

// Document errors.
var (
	// ErrClosed indicates the document has been closed.
	ErrClosed = errors.New("document is closed")

	// ErrInvalidRange indicates a range outside the document or with end before start.
	ErrInvalidRange = errors.New("invalid range")

	// ErrOverlapsExpansion indicates a new expansion would cross or cover an
	// existing one instead of lying strictly inside it or outside it.
	ErrOverlapsExpansion = errors.New("expansion overlaps an existing expansion")

	// ErrInvalidLocation indicates a 1-indexed location with a zero line or column.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrDocumentNotFound indicates a document was not found.
	ErrDocumentNotFound = errors.New("document not found")
)

// OperationError represents an error that occurred during a specific operation.
type OperationError struct {
	Op     string // Operation name (e.g., "open", "close", "unexpand")
	Target string // Target of the operation (e.g., file path)
	Err    error  // Underlying error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{
		Op:     op,
		Target: target,
		Err:    err,
	}
}

func (e *OperationError) Error() string {
	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	return e.Err
}
