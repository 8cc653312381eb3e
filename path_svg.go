package compose

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	pstrconv "github.com/tdewolff/parse/v2/strconv"
)

// ErrBadPathData is returned by ParseSVGPath for malformed path data.
var ErrBadPathData = errors.New("compose: bad path data")

// numberPrecision is the number of decimals kept when formatting numbers
// for SVG attributes. Fixed precision keeps the output byte-identical for
// identical geometry.
const numberPrecision = 3

// FormatNumber formats v for an SVG attribute with at most three decimals,
// no trailing zeros and no negative zero.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	pow := math.Pow10(numberPrecision)
	v = math.Round(v*pow) / pow
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SVG returns the path in SVG path data format, suitable for a "d"
// attribute. A nil path yields the empty string.
func (p *Path) SVG() string {
	if p.IsEmpty() {
		return ""
	}
	var sb strings.Builder
	num := func(vs ...float64) {
		for i, v := range vs {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(FormatNumber(v))
		}
	}
	for _, elem := range p.elements {
		switch e := elem.(type) {
		case MoveTo:
			sb.WriteByte('M')
			num(e.Point.X, e.Point.Y)
		case LineTo:
			sb.WriteByte('L')
			num(e.Point.X, e.Point.Y)
		case QuadTo:
			sb.WriteByte('Q')
			num(e.Control.X, e.Control.Y, e.Point.X, e.Point.Y)
		case CubicTo:
			sb.WriteByte('C')
			num(e.Control1.X, e.Control1.Y, e.Control2.X, e.Control2.Y, e.Point.X, e.Point.Y)
		case ArcTo:
			sb.WriteByte('A')
			num(e.Rx, e.Ry, e.Rotation)
			sb.WriteByte(' ')
			sb.WriteString(flag(e.LargeArc))
			sb.WriteByte(' ')
			sb.WriteString(flag(e.Sweep))
			sb.WriteByte(' ')
			num(e.Point.X, e.Point.Y)
		case Close:
			sb.WriteByte('Z')
		}
	}
	return sb.String()
}

// String implements fmt.Stringer using the SVG path data format.
func (p *Path) String() string {
	return p.SVG()
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// argCount is the number of numeric arguments per path command.
var argCount = map[byte]int{
	'M': 2, 'L': 2, 'H': 1, 'V': 1, 'C': 6, 'S': 4, 'Q': 4, 'T': 2, 'A': 7, 'Z': 0,
}

// ParseSVGPath parses SVG path data ("M0 0L10 0Z") into a Path. Absolute
// and relative forms of every SVG command are supported; smooth curves and
// horizontal/vertical lines are expanded to their explicit equivalents.
func ParseSVGPath(s string) (*Path, error) {
	p := NewPath()
	b := []byte(s)
	i := skipSeparators(b, 0)
	if i == len(b) {
		return p, nil
	}
	if !isCommand(b[i]) {
		return nil, fmt.Errorf("%w: path must start with a command at position %d", ErrBadPathData, i+1)
	}

	var (
		f               [7]float64
		cur, start      Point
		lastCtrl        Point
		prevCmd         byte
		cmd             byte
		haveCurrentPath bool
	)
	for {
		i = skipSeparators(b, i)
		if i >= len(b) {
			break
		}
		if isCommand(b[i]) {
			cmd = b[i]
			i++
		} else if cmd == 0 || cmd == 'Z' || cmd == 'z' {
			return nil, fmt.Errorf("%w: unexpected %q at position %d", ErrBadPathData, b[i], i+1)
		}

		upper := cmd &^ 0x20
		n := argCount[upper]
		for j := 0; j < n; j++ {
			i = skipSeparators(b, i)
			if upper == 'A' && (j == 3 || j == 4) {
				if i >= len(b) || (b[i] != '0' && b[i] != '1') {
					return nil, fmt.Errorf("%w: arc flag expected at position %d", ErrBadPathData, i+1)
				}
				f[j] = float64(b[i] - '0')
				i++
				continue
			}
			v, k := pstrconv.ParseFloat(b[i:])
			if k == 0 {
				return nil, fmt.Errorf("%w: number expected after %q at position %d", ErrBadPathData, cmd, i+1)
			}
			f[j] = v
			i += k
		}

		rel := cmd != upper
		abs := func(x, y float64) Point {
			if rel {
				return Point{X: cur.X + x, Y: cur.Y + y}
			}
			return Point{X: x, Y: y}
		}
		if !haveCurrentPath && upper != 'M' {
			p.MoveTo(cur.X, cur.Y)
		}
		haveCurrentPath = true

		switch upper {
		case 'M':
			cur = abs(f[0], f[1])
			start = cur
			p.MoveTo(cur.X, cur.Y)
			// Subsequent coordinate pairs are implicit line-tos.
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'L':
			cur = abs(f[0], f[1])
			p.LineTo(cur.X, cur.Y)
		case 'H':
			if rel {
				cur.X += f[0]
			} else {
				cur.X = f[0]
			}
			p.LineTo(cur.X, cur.Y)
		case 'V':
			if rel {
				cur.Y += f[0]
			} else {
				cur.Y = f[0]
			}
			p.LineTo(cur.X, cur.Y)
		case 'C':
			c1, c2, end := abs(f[0], f[1]), abs(f[2], f[3]), abs(f[4], f[5])
			p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, end.X, end.Y)
			lastCtrl, cur = c2, end
		case 'S':
			c1 := cur
			if pu := prevCmd &^ 0x20; pu == 'C' || pu == 'S' {
				c1 = cur.Mul(2).Sub(lastCtrl)
			}
			c2, end := abs(f[0], f[1]), abs(f[2], f[3])
			p.CubicTo(c1.X, c1.Y, c2.X, c2.Y, end.X, end.Y)
			lastCtrl, cur = c2, end
		case 'Q':
			c, end := abs(f[0], f[1]), abs(f[2], f[3])
			p.QuadraticTo(c.X, c.Y, end.X, end.Y)
			lastCtrl, cur = c, end
		case 'T':
			c := cur
			if pu := prevCmd &^ 0x20; pu == 'Q' || pu == 'T' {
				c = cur.Mul(2).Sub(lastCtrl)
			}
			end := abs(f[0], f[1])
			p.QuadraticTo(c.X, c.Y, end.X, end.Y)
			lastCtrl, cur = c, end
		case 'A':
			end := abs(f[5], f[6])
			p.ArcTo(f[0], f[1], f[2], f[3] == 1, f[4] == 1, end.X, end.Y)
			cur = end
		case 'Z':
			p.Close()
			cur = start
		}
		prevCmd = upper
	}
	return p, nil
}

func isCommand(c byte) bool {
	_, ok := argCount[c&^0x20]
	return ok && (c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z')
}

func skipSeparators(b []byte, i int) int {
	for i < len(b) {
		switch b[i] {
		case ' ', ',', '\t', '\n', '\r', '\f':
			i++
		default:
			return i
		}
	}
	return i
}
