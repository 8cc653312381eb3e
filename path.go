package compose

// PathElement represents a single element in a path.
type PathElement interface {
	isPathElement()
}

// MoveTo moves to a point without drawing.
type MoveTo struct {
	Point Point
}

func (MoveTo) isPathElement() {}

// LineTo draws a line to a point.
type LineTo struct {
	Point Point
}

func (LineTo) isPathElement() {}

// QuadTo draws a quadratic Bezier curve.
type QuadTo struct {
	Control Point
	Point   Point
}

func (QuadTo) isPathElement() {}

// CubicTo draws a cubic Bezier curve.
type CubicTo struct {
	Control1 Point
	Control2 Point
	Point    Point
}

func (CubicTo) isPathElement() {}

// ArcTo draws an elliptical arc in SVG endpoint parameterization.
// Rotation is in degrees, matching the SVG "A" command.
type ArcTo struct {
	Rx, Ry   float64
	Rotation float64
	LargeArc bool
	Sweep    bool
	Point    Point
}

func (ArcTo) isPathElement() {}

// Close closes the current subpath.
type Close struct{}

func (Close) isPathElement() {}

// Path represents a vector path.
//
// A Path is a value owned by whoever built it; generators return fresh
// paths and the scene stores them without sharing.
type Path struct {
	elements []PathElement
	start    Point // Starting point of current subpath
	current  Point // Current point
}

// NewPath creates a new empty path.
func NewPath() *Path {
	return &Path{
		elements: make([]PathElement, 0, 16),
	}
}

// MoveTo moves to a point without drawing.
func (p *Path) MoveTo(x, y float64) {
	pt := Pt(x, y)
	p.elements = append(p.elements, MoveTo{Point: pt})
	p.start = pt
	p.current = pt
}

// LineTo draws a line to a point.
func (p *Path) LineTo(x, y float64) {
	pt := Pt(x, y)
	p.elements = append(p.elements, LineTo{Point: pt})
	p.current = pt
}

// QuadraticTo draws a quadratic Bezier curve.
func (p *Path) QuadraticTo(cx, cy, x, y float64) {
	pt := Pt(x, y)
	p.elements = append(p.elements, QuadTo{Control: Pt(cx, cy), Point: pt})
	p.current = pt
}

// CubicTo draws a cubic Bezier curve.
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	pt := Pt(x, y)
	p.elements = append(p.elements, CubicTo{
		Control1: Pt(c1x, c1y),
		Control2: Pt(c2x, c2y),
		Point:    pt,
	})
	p.current = pt
}

// ArcTo draws an elliptical arc from the current point to (x, y).
func (p *Path) ArcTo(rx, ry, rotation float64, largeArc, sweep bool, x, y float64) {
	pt := Pt(x, y)
	p.elements = append(p.elements, ArcTo{
		Rx:       rx,
		Ry:       ry,
		Rotation: rotation,
		LargeArc: largeArc,
		Sweep:    sweep,
		Point:    pt,
	})
	p.current = pt
}

// Close closes the current subpath by drawing a line to the start point.
func (p *Path) Close() {
	p.elements = append(p.elements, Close{})
	p.current = p.start
}

// Elements returns the path elements.
func (p *Path) Elements() []PathElement {
	return p.elements
}

// Len returns the number of elements in the path.
func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return len(p.elements)
}

// IsEmpty reports whether the path has no elements. A nil path is empty.
func (p *Path) IsEmpty() bool {
	return p == nil || len(p.elements) == 0
}

// CurrentPoint returns the current point.
func (p *Path) CurrentPoint() Point {
	return p.current
}

// Clone creates a deep copy of the path.
func (p *Path) Clone() *Path {
	if p == nil {
		return nil
	}
	result := NewPath()
	result.elements = make([]PathElement, len(p.elements))
	copy(result.elements, p.elements)
	result.start = p.start
	result.current = p.current
	return result
}

// Transform applies a transformation matrix to all points in the path.
// Arc radii are scaled by the matrix's axis lengths, which is exact for
// translations, rotations and axis-aligned scales.
func (p *Path) Transform(m Matrix) *Path {
	result := NewPath()
	sx := Pt(m.A, m.D).Length()
	sy := Pt(m.B, m.E).Length()
	for _, elem := range p.elements {
		switch e := elem.(type) {
		case MoveTo:
			pt := m.TransformPoint(e.Point)
			result.MoveTo(pt.X, pt.Y)
		case LineTo:
			pt := m.TransformPoint(e.Point)
			result.LineTo(pt.X, pt.Y)
		case QuadTo:
			ctrl := m.TransformPoint(e.Control)
			pt := m.TransformPoint(e.Point)
			result.QuadraticTo(ctrl.X, ctrl.Y, pt.X, pt.Y)
		case CubicTo:
			ctrl1 := m.TransformPoint(e.Control1)
			ctrl2 := m.TransformPoint(e.Control2)
			pt := m.TransformPoint(e.Point)
			result.CubicTo(ctrl1.X, ctrl1.Y, ctrl2.X, ctrl2.Y, pt.X, pt.Y)
		case ArcTo:
			pt := m.TransformPoint(e.Point)
			sweep := e.Sweep
			if m.A*m.E-m.B*m.D < 0 {
				sweep = !sweep
			}
			result.ArcTo(e.Rx*sx, e.Ry*sy, e.Rotation, e.LargeArc, sweep, pt.X, pt.Y)
		case Close:
			result.Close()
		}
	}
	return result
}

// Count returns how many elements of the same concrete type as kind the
// path contains, e.g. p.Count(LineTo{}).
func (p *Path) Count(kind PathElement) int {
	if p == nil {
		return 0
	}
	n := 0
	for _, el := range p.elements {
		if sameKind(el, kind) {
			n++
		}
	}
	return n
}

func sameKind(a, b PathElement) bool {
	switch a.(type) {
	case MoveTo:
		_, ok := b.(MoveTo)
		return ok
	case LineTo:
		_, ok := b.(LineTo)
		return ok
	case QuadTo:
		_, ok := b.(QuadTo)
		return ok
	case CubicTo:
		_, ok := b.(CubicTo)
		return ok
	case ArcTo:
		_, ok := b.(ArcTo)
		return ok
	case Close:
		_, ok := b.(Close)
		return ok
	}
	return false
}

// endPoint returns the end point of a path element. Close has none and
// reports ok=false.
func endPoint(el PathElement) (Point, bool) {
	switch e := el.(type) {
	case MoveTo:
		return e.Point, true
	case LineTo:
		return e.Point, true
	case QuadTo:
		return e.Point, true
	case CubicTo:
		return e.Point, true
	case ArcTo:
		return e.Point, true
	}
	return Point{}, false
}
