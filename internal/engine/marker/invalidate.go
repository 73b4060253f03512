package marker

import (
	"fmt"

	"github.com/dshills/unfold/internal/engine/buffer"
)

// Invalidation decides which edits make a marker invalid.
// An invalid marker keeps tracking its offsets but reports IsValid() == false,
// signalling that the text it marked no longer exists as it was.
type Invalidation uint8

const (
	// InvalidateOverlap invalidates when an edit spans the marker's start or
	// end boundary, or surrounds the marker.
	InvalidateOverlap Invalidation = iota
	// InvalidateNever never invalidates.
	InvalidateNever
	// InvalidateSurround invalidates only when an edit covers the whole marker.
	InvalidateSurround
	// InvalidateInside invalidates on any edit touching the marker's interior.
	InvalidateInside
)

// String returns the configuration name of the strategy.
func (i Invalidation) String() string {
	switch i {
	case InvalidateOverlap:
		return "overlap"
	case InvalidateNever:
		return "never"
	case InvalidateSurround:
		return "surround"
	case InvalidateInside:
		return "inside"
	default:
		return "unknown"
	}
}

// ParseInvalidation parses a strategy name as written in configuration.
func ParseInvalidation(s string) (Invalidation, error) {
	switch s {
	case "overlap", "":
		return InvalidateOverlap, nil
	case "never":
		return InvalidateNever, nil
	case "surround":
		return InvalidateSurround, nil
	case "inside":
		return InvalidateInside, nil
	default:
		return InvalidateOverlap, fmt.Errorf("%w: %q", ErrUnknownInvalidation, s)
	}
}

// invalidates reports whether edit invalidates a marker spanning r.
// Offsets are those before the edit was applied.
func (i Invalidation) invalidates(r buffer.Range, edit buffer.Range) bool {
	surrounds := !edit.IsEmpty() && edit.Start <= r.Start && edit.End >= r.End
	switch i {
	case InvalidateNever:
		return false
	case InvalidateSurround:
		return surrounds
	case InvalidateOverlap:
		return surrounds || spansBoundary(r.Start, edit) || spansBoundary(r.End, edit)
	case InvalidateInside:
		if surrounds || edit.Overlaps(r) {
			return true
		}
		return edit.IsEmpty() && edit.Start > r.Start && edit.Start < r.End
	default:
		return false
	}
}

func spansBoundary(offset buffer.ByteOffset, edit buffer.Range) bool {
	return edit.Start < offset && edit.End > offset
}
