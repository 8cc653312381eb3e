package outline

import (
	"math"

	"github.com/gogpu/compose"
)

// vertex returns the point at angle on the ellipse inscribed in size,
// scaled by ratio.
func vertex(size compose.Size, angle, ratio float64) compose.Point {
	rx, ry := size.Width/2, size.Height/2
	return compose.Pt(rx+rx*ratio*math.Cos(angle), ry+ry*ratio*math.Sin(angle))
}

// Star returns a star with n outer points inscribed in the node box. The
// first outer vertex points straight up; inner vertices sit halfway
// between, at innerRatio of the outer radius. n < 3 yields nil.
func Star(n int, innerRatio float64, size compose.Size) *compose.Path {
	if n < 3 || size.IsEmpty() {
		return nil
	}
	step := 2 * math.Pi / float64(n)
	p := compose.NewPath()
	first := vertex(size, -math.Pi/2, 1)
	p.MoveTo(first.X, first.Y)
	for i := 0; i < n; i++ {
		a := step*float64(i) - math.Pi/2
		if i > 0 {
			o := vertex(size, a, 1)
			p.LineTo(o.X, o.Y)
		}
		in := vertex(size, a+math.Pi/float64(n), innerRatio)
		p.LineTo(in.X, in.Y)
	}
	p.LineTo(first.X, first.Y)
	p.Close()
	return p
}

// Polygon returns a regular polygon with n vertices inscribed in the node
// box, the first pointing straight up. n < 3 yields nil.
func Polygon(n int, size compose.Size) *compose.Path {
	if n < 3 || size.IsEmpty() {
		return nil
	}
	step := 2 * math.Pi / float64(n)
	p := compose.NewPath()
	for i := 0; i < n; i++ {
		v := vertex(size, step*float64(i)-math.Pi/2, 1)
		if i == 0 {
			p.MoveTo(v.X, v.Y)
		} else {
			p.LineTo(v.X, v.Y)
		}
	}
	p.Close()
	return p
}
