package stroke

import "math"

// Point represents a 2D point (internal copy to avoid import cycle).
type Point struct {
	X, Y float64
}

func (p Point) add(v Point) Point       { return Point{X: p.X + v.X, Y: p.Y + v.Y} }
func (p Point) sub(v Point) Point       { return Point{X: p.X - v.X, Y: p.Y - v.Y} }
func (p Point) scale(s float64) Point   { return Point{X: p.X * s, Y: p.Y * s} }
func (p Point) neg() Point              { return Point{X: -p.X, Y: -p.Y} }
func (p Point) dot(v Point) float64     { return p.X*v.X + p.Y*v.Y }
func (p Point) cross(v Point) float64   { return p.X*v.Y - p.Y*v.X }
func (p Point) perp() Point             { return Point{X: -p.Y, Y: p.X} }
func (p Point) length() float64         { return math.Hypot(p.X, p.Y) }
func (p Point) approxEq(q Point) bool   { return math.Abs(p.X-q.X) < epsilon && math.Abs(p.Y-q.Y) < epsilon }
func (p Point) normalize() (Point, bool) {
	l := p.length()
	if l < epsilon {
		return Point{}, false
	}
	return Point{X: p.X / l, Y: p.Y / l}, true
}

const epsilon = 1e-9

// LineCap specifies the shape of open subpath endpoints.
type LineCap int

const (
	// LineCapButt ends the stroke exactly at the endpoint.
	LineCapButt LineCap = iota
	// LineCapSquare extends the stroke by half its width beyond the endpoint.
	LineCapSquare
)

// LineJoin specifies the shape of the outer side of a corner.
type LineJoin int

const (
	// LineJoinMiter extends both edges until they meet, falling back to a
	// bevel beyond the miter limit.
	LineJoinMiter LineJoin = iota
	// LineJoinBevel connects the edges with a straight line.
	LineJoinBevel
)

// Style defines the stroke parameters used for expansion.
type Style struct {
	Width      float64
	Cap        LineCap
	Join       LineJoin
	MiterLimit float64
}

// Polyline is a flattened subpath.
type Polyline struct {
	Points []Point
	Closed bool
}

// Contour is a closed output ring.
type Contour []Point

// Expander converts polylines into stroke contours. An Expander is not safe
// for concurrent use; it reuses its builders between calls.
type Expander struct {
	style    Style
	halfW    float64
	forward  []Point
	backward []Point
}

// NewExpander creates an expander for the given style. A miter limit below
// one is replaced by the SVG default of 4.
func NewExpander(style Style) *Expander {
	if style.MiterLimit < 1 {
		style.MiterLimit = 4
	}
	return &Expander{style: style, halfW: style.Width / 2}
}

// Expand converts the polylines into closed contours. It returns nil when
// the width is not positive or no polyline has any length.
func (e *Expander) Expand(lines []Polyline) []Contour {
	if !(e.halfW > 0) {
		return nil
	}
	var out []Contour
	for _, pl := range lines {
		out = e.expandOne(out, pl)
	}
	return out
}

func (e *Expander) expandOne(out []Contour, pl Polyline) []Contour {
	pts := dedupe(pl.Points, pl.Closed)
	closed := pl.Closed && len(pts) >= 3
	if len(pts) < 2 {
		return out
	}

	n := len(pts)
	segs := n - 1
	if closed {
		segs = n
	}
	tangents := make([]Point, segs)
	for i := 0; i < segs; i++ {
		t, _ := pts[(i+1)%n].sub(pts[i]).normalize()
		tangents[i] = t
	}

	e.forward = e.forward[:0]
	e.backward = e.backward[:0]

	if closed {
		for i := 0; i < n; i++ {
			e.doJoin(pts[i], tangents[(i+n-1)%n], tangents[i])
		}
		fwd := append(Contour(nil), e.forward...)
		back := make(Contour, 0, len(e.backward))
		for i := len(e.backward) - 1; i >= 0; i-- {
			back = append(back, e.backward[i])
		}
		return append(out, fwd, back)
	}

	e.startCap(pts[0], tangents[0])
	for i := 1; i < n-1; i++ {
		e.doJoin(pts[i], tangents[i-1], tangents[i])
	}
	e.endCap(pts[n-1], tangents[n-2])

	ring := append(Contour(nil), e.forward...)
	for i := len(e.backward) - 1; i >= 0; i-- {
		ring = append(ring, e.backward[i])
	}
	return append(out, ring)
}

func (e *Expander) normal(t Point) Point {
	return t.perp().scale(e.halfW)
}

func (e *Expander) startCap(p, t Point) {
	norm := e.normal(t)
	if e.style.Cap == LineCapSquare {
		p = p.sub(t.scale(e.halfW))
	}
	e.forward = append(e.forward, p.add(norm.neg()))
	e.backward = append(e.backward, p.add(norm))
}

func (e *Expander) endCap(p, t Point) {
	norm := e.normal(t)
	if e.style.Cap == LineCapSquare {
		p = p.add(t.scale(e.halfW))
	}
	e.forward = append(e.forward, p.add(norm.neg()))
	e.backward = append(e.backward, p.add(norm))
}

// doJoin emits the offset points around the vertex p where the incoming
// tangent t0 meets the outgoing tangent t1.
func (e *Expander) doJoin(p, t0, t1 Point) {
	n0 := e.normal(t0)
	n1 := e.normal(t1)
	cross := t0.cross(t1)
	dot := t0.dot(t1)

	if math.Abs(cross) < epsilon && dot > 0 {
		e.forward = append(e.forward, p.add(n1.neg()))
		e.backward = append(e.backward, p.add(n1))
		return
	}

	if cross > 0 {
		// Turn toward the backward side: forward is the outer side.
		e.forward = e.outerJoin(e.forward, p, n0.neg(), n1.neg(), dot)
		e.backward = append(e.backward, p.add(n0), p, p.add(n1))
		return
	}
	e.backward = e.outerJoin(e.backward, p, n0, n1, dot)
	e.forward = append(e.forward, p.add(n0.neg()), p, p.add(n1.neg()))
}

// outerJoin appends the outer side of a corner: a miter point when allowed
// by the join style and miter limit, otherwise a bevel.
func (e *Expander) outerJoin(dst []Point, p, a, b Point, dot float64) []Point {
	if e.style.Join == LineJoinMiter {
		cosHalf := math.Sqrt(math.Max(0, (1+dot)/2))
		if cosHalf > epsilon && 1/cosHalf <= e.style.MiterLimit {
			if dir, ok := a.add(b).normalize(); ok {
				return append(dst, p.add(dir.scale(e.halfW/cosHalf)))
			}
		}
	}
	return append(dst, p.add(a), p.add(b))
}

// dedupe drops consecutive duplicate points and, for closed polylines,
// a trailing point equal to the first one.
func dedupe(pts []Point, closed bool) []Point {
	out := make([]Point, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && out[len(out)-1].approxEq(p) {
			continue
		}
		out = append(out, p)
	}
	if closed && len(out) > 1 && out[0].approxEq(out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}
