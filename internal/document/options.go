package document

import (
	"github.com/dshills/unfold/internal/engine/marker"
	"github.com/dshills/unfold/internal/logging"
)

// Option configures a Document.
type Option func(*options)

type options struct {
	logger       *logging.Logger
	invalidation marker.Invalidation
	retain       bool
	tabWidth     int
}

func defaultOptions() options {
	return options{
		logger:       logging.Nop(),
		invalidation: marker.InvalidateOverlap,
		tabWidth:     4,
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithInvalidation sets the invalidation strategy of expansion markers.
func WithInvalidation(inv marker.Invalidation) Option {
	return func(o *options) {
		o.invalidation = inv
	}
}

// WithRetain keeps expanded text in place when the document is closed.
func WithRetain(retain bool) Option {
	return func(o *options) {
		o.retain = retain
	}
}

// WithTabWidth sets the tab width of the document's buffer.
func WithTabWidth(width int) Option {
	return func(o *options) {
		o.tabWidth = width
	}
}
