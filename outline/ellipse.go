package outline

import (
	"math"

	"github.com/gogpu/compose"
)

// kappa is the cubic Bezier control distance for a quarter circle.
const kappa = 0.5522847498

// Ellipse returns an ellipse inscribed in the node box.
//
// A sweep of at least 2π, or start == end, is a full ellipse made of four
// cubic curves. Any other sweep is an arc from start to end: a pie slice
// closed through the center, or a ring segment when innerRatio > 0. A full
// ellipse with innerRatio > 0 gets an inner ellipse wound the other way,
// which leaves a hole under the nonzero rule.
func Ellipse(start, end, innerRatio float64, size compose.Size) *compose.Path {
	if size.IsEmpty() {
		return nil
	}
	rx, ry := size.Width/2, size.Height/2
	c := compose.Pt(rx, ry)
	inner := math.Max(0, math.Min(1, innerRatio))
	if math.IsNaN(innerRatio) {
		inner = 0
	}

	p := compose.NewPath()
	sweep := end - start
	if start == end || math.Abs(sweep) >= 2*math.Pi {
		fullEllipse(p, c, rx, ry, false)
		if inner > 0 {
			fullEllipse(p, c, rx*inner, ry*inner, true)
		}
		return p
	}

	at := func(angle, ratio float64) compose.Point {
		return compose.Pt(c.X+rx*ratio*math.Cos(angle), c.Y+ry*ratio*math.Sin(angle))
	}
	large := math.Abs(sweep) >= math.Pi
	clockwise := start <= end

	s := at(start, 1)
	e := at(end, 1)
	p.MoveTo(s.X, s.Y)
	p.ArcTo(rx, ry, 0, large, clockwise, e.X, e.Y)
	// With no inner radius the inner arc collapses onto the center.
	ie := at(end, inner)
	is := at(start, inner)
	p.LineTo(ie.X, ie.Y)
	p.ArcTo(rx*inner, ry*inner, 0, large, !clockwise, is.X, is.Y)
	p.Close()
	return p
}

// fullEllipse appends a closed ellipse starting at angle 0, clockwise in
// y-down coordinates unless reverse is set.
func fullEllipse(p *compose.Path, c compose.Point, rx, ry float64, reverse bool) {
	kx, ky := rx*kappa, ry*kappa
	if !reverse {
		p.MoveTo(c.X+rx, c.Y)
		p.CubicTo(c.X+rx, c.Y+ky, c.X+kx, c.Y+ry, c.X, c.Y+ry)
		p.CubicTo(c.X-kx, c.Y+ry, c.X-rx, c.Y+ky, c.X-rx, c.Y)
		p.CubicTo(c.X-rx, c.Y-ky, c.X-kx, c.Y-ry, c.X, c.Y-ry)
		p.CubicTo(c.X+kx, c.Y-ry, c.X+rx, c.Y-ky, c.X+rx, c.Y)
	} else {
		p.MoveTo(c.X+rx, c.Y)
		p.CubicTo(c.X+rx, c.Y-ky, c.X+kx, c.Y-ry, c.X, c.Y-ry)
		p.CubicTo(c.X-kx, c.Y-ry, c.X-rx, c.Y-ky, c.X-rx, c.Y)
		p.CubicTo(c.X-rx, c.Y+ky, c.X-kx, c.Y+ry, c.X, c.Y+ry)
		p.CubicTo(c.X+kx, c.Y+ry, c.X+rx, c.Y+ky, c.X+rx, c.Y)
	}
	p.Close()
}
