package outline

import (
	"math"

	"github.com/gogpu/compose"
)

// ClampRadii returns the effective corner radii (top-left, top-right,
// bottom-right, bottom-left): each is limited to half the smaller side,
// and negative or NaN radii become zero.
func ClampRadii(radii [4]float64, size compose.Size) [4]float64 {
	limit := size.Min() / 2
	var out [4]float64
	for i, r := range radii {
		if r > 0 {
			out[i] = math.Min(r, limit)
		}
	}
	return out
}

// Rectangle returns a rectangle with optionally rounded corners, walked
// clockwise from the end of the top-left corner. Rounded corners are
// quadratic curves; square corners add no curve. The path is always
// closed.
func Rectangle(radii [4]float64, size compose.Size) *compose.Path {
	if size.IsEmpty() {
		return nil
	}
	w, h := size.Width, size.Height
	r := ClampRadii(radii, size)
	tl, tr, br, bl := r[0], r[1], r[2], r[3]

	p := compose.NewPath()
	p.MoveTo(tl, 0)
	p.LineTo(w-tr, 0)
	if tr > 0 {
		p.QuadraticTo(w, 0, w, tr)
	}
	p.LineTo(w, h-br)
	if br > 0 {
		p.QuadraticTo(w, h, w-br, h)
	}
	p.LineTo(bl, h)
	if bl > 0 {
		p.QuadraticTo(0, h, 0, h-bl)
	}
	p.LineTo(0, tl)
	if tl > 0 {
		p.QuadraticTo(0, 0, tl, 0)
	}
	p.Close()
	return p
}
