package script

import (
	"errors"
	"fmt"
)

// Script errors.
var (
	// ErrUnknownOp indicates a step with an unsupported op.
	ErrUnknownOp = errors.New("unknown op")

	// ErrMissingField indicates a step lacks a field its op requires.
	ErrMissingField = errors.New("missing field")
)

// StepError reports a failure in a single step.
type StepError struct {
	Index int // Zero-based position of the step
	Op    string
	Err   error
}

func (e *StepError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("step %d: %v", e.Index+1, e.Err)
	}
	return fmt.Sprintf("step %d (%s): %v", e.Index+1, e.Op, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
