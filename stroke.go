package compose

import (
	"github.com/gogpu/compose/internal/stroke"
)

// LineCap is the shape of open subpath endpoints.
type LineCap int

const (
	// LineCapButt ends the stroke exactly at the endpoint.
	LineCapButt LineCap = iota
	// LineCapSquare extends the stroke by half its width.
	LineCapSquare
)

// LineJoin is the shape of the outer side of a corner.
type LineJoin int

const (
	// LineJoinMiter extends the edges until they meet, bounded by MiterLimit.
	LineJoinMiter LineJoin = iota
	// LineJoinBevel cuts corners with a straight line.
	LineJoinBevel
)

// Stroke defines the style for stroking paths.
type Stroke struct {
	// Width is the line width in user units.
	Width float64

	// Cap is the shape of open subpath endpoints. Default: LineCapButt
	Cap LineCap

	// Join is the shape of line joins. Default: LineJoinMiter
	Join LineJoin

	// MiterLimit is the limit for miter joins before they become bevels.
	// Default: 4.0 (matches SVG)
	MiterLimit float64
}

// DefaultStroke returns a Stroke with default settings: a 1-unit line with
// butt caps and miter joins.
func DefaultStroke() Stroke {
	return Stroke{
		Width:      1.0,
		Cap:        LineCapButt,
		Join:       LineJoinMiter,
		MiterLimit: 4.0,
	}
}

// WithWidth returns a copy of the Stroke with the given width.
func (s Stroke) WithWidth(w float64) Stroke {
	s.Width = w
	return s
}

// StrokeOutline derives the stroke outline of a fill outline: a closed path
// that, filled with the nonzero rule, covers the band of the given width
// centered on fill's edges.
//
// resolutionScale is the ratio of device pixels to user units; larger
// scales flatten curves more finely. StrokeOutline returns nil when fill is
// nil or empty or when the width is not positive. Calling it twice with the
// same arguments yields identical path data.
func StrokeOutline(fill *Path, s Stroke, resolutionScale float64) *Path {
	if fill.IsEmpty() || !(s.Width > 0) {
		return nil
	}
	if !(resolutionScale > 0) {
		resolutionScale = 1
	}

	flat := fill.Flatten(DefaultTolerance / resolutionScale)
	lines := make([]stroke.Polyline, 0, len(flat))
	for _, pl := range flat {
		pts := make([]stroke.Point, len(pl.Points))
		for i, p := range pl.Points {
			pts[i] = stroke.Point(p)
		}
		lines = append(lines, stroke.Polyline{Points: pts, Closed: pl.Closed})
	}

	e := stroke.NewExpander(stroke.Style{
		Width:      s.Width,
		Cap:        stroke.LineCap(s.Cap),
		Join:       stroke.LineJoin(s.Join),
		MiterLimit: s.MiterLimit,
	})
	contours := e.Expand(lines)
	if len(contours) == 0 {
		return nil
	}

	out := NewPath()
	for _, c := range contours {
		for i, p := range c {
			if i == 0 {
				out.MoveTo(p.X, p.Y)
			} else {
				out.LineTo(p.X, p.Y)
			}
		}
		out.Close()
	}
	return out
}
