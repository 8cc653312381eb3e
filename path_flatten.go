package compose

import "math"

// DefaultTolerance is the default maximum distance, in user units, between
// a curve and its flattened polyline.
const DefaultTolerance = 0.25

// Polyline is one flattened subpath.
type Polyline struct {
	Points []Point
	Closed bool
}

// Flatten converts the path into polylines, one per subpath, replacing
// curves and arcs by line segments no further than tolerance from the
// original geometry.
func (p *Path) Flatten(tolerance float64) []Polyline {
	if p.IsEmpty() {
		return nil
	}
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	var (
		out     []Polyline
		cur     []Point
		current Point
		start   Point
	)
	flush := func(closed bool) {
		if len(cur) > 1 {
			out = append(out, Polyline{Points: cur, Closed: closed})
		}
		cur = nil
	}

	for _, elem := range p.elements {
		switch e := elem.(type) {
		case MoveTo:
			flush(false)
			current, start = e.Point, e.Point
			cur = []Point{current}
		case LineTo:
			if cur == nil {
				cur = []Point{current}
			}
			cur = append(cur, e.Point)
			current = e.Point
		case QuadTo:
			if cur == nil {
				cur = []Point{current}
			}
			cur = flattenQuad(cur, current, e.Control, e.Point, tolerance)
			current = e.Point
		case CubicTo:
			if cur == nil {
				cur = []Point{current}
			}
			cur = flattenCubic(cur, current, e.Control1, e.Control2, e.Point, tolerance)
			current = e.Point
		case ArcTo:
			if cur == nil {
				cur = []Point{current}
			}
			cur = flattenArc(cur, current, e, tolerance)
			current = e.Point
		case Close:
			flush(true)
			current = start
		}
	}
	flush(false)
	return out
}

func flattenQuad(dst []Point, p0, p1, p2 Point, tolerance float64) []Point {
	if distanceToLine(p1, p0, p2) < tolerance {
		return append(dst, p2)
	}
	q0 := p0.Lerp(p1, 0.5)
	q1 := p1.Lerp(p2, 0.5)
	q2 := q0.Lerp(q1, 0.5)
	dst = flattenQuad(dst, p0, q0, q2, tolerance)
	return flattenQuad(dst, q2, q1, p2, tolerance)
}

func flattenCubic(dst []Point, p0, p1, p2, p3 Point, tolerance float64) []Point {
	if math.Max(distanceToLine(p1, p0, p3), distanceToLine(p2, p0, p3)) < tolerance {
		return append(dst, p3)
	}
	// de Casteljau subdivision
	q0 := p0.Lerp(p1, 0.5)
	q1 := p1.Lerp(p2, 0.5)
	q2 := p2.Lerp(p3, 0.5)
	r0 := q0.Lerp(q1, 0.5)
	r1 := q1.Lerp(q2, 0.5)
	s := r0.Lerp(r1, 0.5)
	dst = flattenCubic(dst, p0, q0, r0, s, tolerance)
	return flattenCubic(dst, s, r1, q2, p3, tolerance)
}

// flattenArc samples an endpoint-parameterized arc after converting it to
// center form (SVG 1.1 implementation notes, F.6.5).
func flattenArc(dst []Point, from Point, a ArcTo, tolerance float64) []Point {
	c, rx, ry, theta, delta, ok := ArcCenter(from, a)
	if !ok {
		return append(dst, a.Point)
	}
	r := math.Max(rx, ry)
	step := math.Pi / 2
	if tolerance < r {
		step = 2 * math.Acos(1-tolerance/r)
	}
	n := int(math.Ceil(math.Abs(delta) / step))
	if n < 1 {
		n = 1
	}
	phi := a.Rotation * math.Pi / 180
	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	for i := 1; i < n; i++ {
		t := theta + delta*float64(i)/float64(n)
		x := rx * math.Cos(t)
		y := ry * math.Sin(t)
		dst = append(dst, Point{
			X: c.X + cosPhi*x - sinPhi*y,
			Y: c.Y + sinPhi*x + cosPhi*y,
		})
	}
	return append(dst, a.Point)
}

// ArcCenter converts an arc from endpoint to center parameterization.
// It returns the center, the (possibly enlarged) radii, the start angle and
// the signed sweep angle. ok is false for arcs that degenerate to a line.
func ArcCenter(from Point, a ArcTo) (center Point, rx, ry, theta, delta float64, ok bool) {
	rx, ry = math.Abs(a.Rx), math.Abs(a.Ry)
	if rx == 0 || ry == 0 || from == a.Point {
		return Point{}, 0, 0, 0, 0, false
	}
	phi := a.Rotation * math.Pi / 180
	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)

	dx := (from.X - a.Point.X) / 2
	dy := (from.Y - a.Point.Y) / 2
	x1 := cosPhi*dx + sinPhi*dy
	y1 := -sinPhi*dx + cosPhi*dy

	// Scale radii up when no ellipse passes through both points.
	if lambda := (x1*x1)/(rx*rx) + (y1*y1)/(ry*ry); lambda > 1 {
		s := math.Sqrt(lambda)
		rx *= s
		ry *= s
	}

	num := rx*rx*ry*ry - rx*rx*y1*y1 - ry*ry*x1*x1
	den := rx*rx*y1*y1 + ry*ry*x1*x1
	coef := 0.0
	if num > 0 && den > 0 {
		coef = math.Sqrt(num / den)
	}
	if a.LargeArc == a.Sweep {
		coef = -coef
	}
	cx1 := coef * rx * y1 / ry
	cy1 := -coef * ry * x1 / rx

	center = Point{
		X: cosPhi*cx1 - sinPhi*cy1 + (from.X+a.Point.X)/2,
		Y: sinPhi*cx1 + cosPhi*cy1 + (from.Y+a.Point.Y)/2,
	}

	theta = vectorAngle(1, 0, (x1-cx1)/rx, (y1-cy1)/ry)
	delta = vectorAngle((x1-cx1)/rx, (y1-cy1)/ry, (-x1-cx1)/rx, (-y1-cy1)/ry)
	if !a.Sweep && delta > 0 {
		delta -= 2 * math.Pi
	} else if a.Sweep && delta < 0 {
		delta += 2 * math.Pi
	}
	return center, rx, ry, theta, delta, true
}

func vectorAngle(ux, uy, vx, vy float64) float64 {
	return math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
}

// distanceToLine calculates the perpendicular distance from point p to
// line segment (a, b).
func distanceToLine(p, a, b Point) float64 {
	ab := b.Sub(a)
	abLen := ab.Length()
	if abLen < 1e-10 {
		return p.Distance(a)
	}
	ap := p.Sub(a)
	t := (ap.X*ab.X + ap.Y*ab.Y) / (abLen * abLen)
	if t < 0 {
		return p.Distance(a)
	}
	if t > 1 {
		return p.Distance(b)
	}
	return p.Distance(a.Add(ab.Mul(t)))
}
