package engine

import (
	"github.com/gogpu/compose"
	"github.com/gogpu/compose/change"
	"github.com/gogpu/compose/outline"
)

// Option configures an Engine.
type Option func(*Engine)

// WithSink sets the sink receiving one batch per pass. Without a sink the
// records are discarded after each pass.
func WithSink(s change.Sink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithTextLayouter sets the collaborator laying out text nodes. Without
// one, text nodes have no geometry.
func WithTextLayouter(t outline.TextLayouter) Option {
	return func(e *Engine) { e.text = t }
}

// WithResolutionScale sets the ratio of device pixels to user units used
// when flattening curves for strokes. Default: 1.
func WithResolutionScale(s float64) Option {
	return func(e *Engine) {
		if s > 0 {
			e.resolution = s
		}
	}
}

// WithFlattenTolerance sets the maximum flattening error of stroke
// outlines in device pixels. Default: compose.DefaultTolerance.
func WithFlattenTolerance(tol float64) Option {
	return func(e *Engine) {
		if tol > 0 {
			e.tolerance = tol
		}
	}
}

// WithMiterLimit sets the miter limit of stroke joins. Default: 4.
func WithMiterLimit(limit float64) Option {
	return func(e *Engine) {
		if limit >= 1 {
			e.miterLimit = limit
		}
	}
}

// WithCanvas sets the width, height and viewBox of the root svg element.
func WithCanvas(size compose.Size) Option {
	return func(e *Engine) { e.canvas = size.Clamp() }
}

// WithStrictInvariants makes element tree invariant violations panic.
func WithStrictInvariants() Option {
	return func(e *Engine) { e.strict = true }
}
