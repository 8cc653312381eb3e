package compose

import (
	"math"
	"strings"
)

// Matrix represents a 2D affine transformation matrix.
// It uses a 2x3 matrix in row-major order:
//
//	| a  b  c |
//	| d  e  f |
//
// This represents the transformation:
//
//	x' = a*x + b*y + c
//	y' = d*x + e*y + f
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transformation matrix.
func Identity() Matrix {
	return Matrix{
		A: 1, B: 0, C: 0,
		D: 0, E: 1, F: 0,
	}
}

// Translate creates a translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{
		A: 1, B: 0, C: x,
		D: 0, E: 1, F: y,
	}
}

// Scale creates a scaling matrix.
func Scale(x, y float64) Matrix {
	return Matrix{
		A: x, B: 0, C: 0,
		D: 0, E: y, F: 0,
	}
}

// Rotate creates a rotation matrix (angle in radians).
func Rotate(angle float64) Matrix {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Matrix{
		A: cos, B: -sin, C: 0,
		D: sin, E: cos, F: 0,
	}
}

// NodeTransform returns the placement of a node with the given top-left
// translation, rotation in degrees around its center, and size.
func NodeTransform(x, y, degrees float64, size Size) Matrix {
	if degrees == 0 {
		return Translate(x, y)
	}
	cx, cy := size.Width/2, size.Height/2
	return Translate(x+cx, y+cy).
		Multiply(Rotate(degrees * math.Pi / 180)).
		Multiply(Translate(-cx, -cy))
}

// Multiply multiplies two matrices (m * other).
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// TransformPoint applies the transformation to a point.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// IsIdentity returns true if the matrix is the identity matrix.
func (m Matrix) IsIdentity() bool {
	return m.A == 1 && m.B == 0 && m.C == 0 &&
		m.D == 0 && m.E == 1 && m.F == 0
}

// IsTranslation returns true if the matrix is only a translation.
func (m Matrix) IsTranslation() bool {
	return m.A == 1 && m.B == 0 && m.D == 0 && m.E == 1
}

// SVG formats the matrix as an SVG transform attribute value.
// Pure translations use the shorter translate() form.
func (m Matrix) SVG() string {
	var sb strings.Builder
	if m.IsTranslation() {
		sb.WriteString("translate(")
		sb.WriteString(FormatNumber(m.C))
		sb.WriteByte(' ')
		sb.WriteString(FormatNumber(m.F))
		sb.WriteByte(')')
		return sb.String()
	}
	sb.WriteString("matrix(")
	for i, v := range [6]float64{m.A, m.D, m.B, m.E, m.C, m.F} {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(FormatNumber(v))
	}
	sb.WriteByte(')')
	return sb.String()
}
