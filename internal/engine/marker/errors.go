package marker

import "errors"

// Errors returned by marker operations.
var (
	// ErrLayerClosed indicates the layer no longer tracks its buffer.
	ErrLayerClosed = errors.New("marker layer is closed")

	// ErrUnknownInvalidation indicates an unrecognized invalidation strategy name.
	ErrUnknownInvalidation = errors.New("unknown invalidation strategy")
)
