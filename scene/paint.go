package scene

import (
	"fmt"
	"math"

	"github.com/gogpu/compose"
)

// Color is a non-premultiplied color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// Hex creates a color from a hex string.
// Supports formats: "RGB", "RGBA", "RRGGBB", "RRGGBBAA", with or without
// a leading '#'. Anything else yields opaque black.
func Hex(hex string) Color {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b uint32
	a := uint32(255)

	switch len(hex) {
	case 3:
		r, g, b = parseHex(hex[0:1])*17, parseHex(hex[1:2])*17, parseHex(hex[2:3])*17
	case 4:
		r, g, b, a = parseHex(hex[0:1])*17, parseHex(hex[1:2])*17, parseHex(hex[2:3])*17, parseHex(hex[3:4])*17
	case 6:
		r, g, b = parseHex(hex[0:2]), parseHex(hex[2:4]), parseHex(hex[4:6])
	case 8:
		r, g, b, a = parseHex(hex[0:2]), parseHex(hex[2:4]), parseHex(hex[4:6]), parseHex(hex[6:8])
	default:
		return Color{A: 1}
	}

	return Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: float64(a) / 255,
	}
}

func parseHex(s string) uint32 {
	var v uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		v *= 16
		switch {
		case '0' <= c && c <= '9':
			v += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			v += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			v += uint32(c - 'A' + 10)
		default:
			return 0
		}
	}
	return v
}

// Hex formats the color channels as "#rrggbb". Alpha is carried
// separately in SVG (fill-opacity, stop-opacity).
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", to255(c.R), to255(c.G), to255(c.B))
}

func to255(x float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, x)) * 255))
}

// Common colors
var (
	Black = RGB(0, 0, 0)
	White = RGB(1, 1, 1)
)

// PaintKind selects which of a Paint's fields is in use.
type PaintKind uint8

const (
	PaintSolid PaintKind = iota
	PaintGradient
	PaintImage
)

func (k PaintKind) String() string {
	switch k {
	case PaintSolid:
		return "solid"
	case PaintGradient:
		return "gradient"
	case PaintImage:
		return "image"
	}
	return fmt.Sprintf("PaintKind(%d)", k)
}

// GradientKind is the geometry of a gradient.
type GradientKind uint8

const (
	GradientLinear GradientKind = iota
	GradientRadial
)

// Stop is a gradient color stop; Offset is in [0, 1].
type Stop struct {
	Offset float64
	Color  Color
}

// Gradient points are fractions of the node box: (0,0) is the top-left
// corner, (1,1) the bottom-right. A linear gradient runs from Start to
// End; a radial gradient is centered on Start and reaches End.
type Gradient struct {
	Kind  GradientKind
	Start compose.Point
	End   compose.Point
	Stops []Stop
}

// ScaleMode fits an image into the node box.
type ScaleMode uint8

const (
	// ScaleFill covers the box, cropping the overflow.
	ScaleFill ScaleMode = iota
	// ScaleFit fits the whole image inside the box.
	ScaleFit
	// ScaleStretch distorts the image to the box.
	ScaleStretch
	// ScaleTile repeats the image at its intrinsic size.
	ScaleTile
)

// Image is an external image asset. Width and Height are its intrinsic
// size in user units.
type Image struct {
	Href   string
	Width  float64
	Height float64
	Mode   ScaleMode
}

// Paint is what a style paints with. ID, Style and Version are assigned
// by the store; values passed in mutations only use the other fields.
type Paint struct {
	ID    PaintID
	Style StyleID

	Kind     PaintKind
	Color    Color
	Gradient Gradient
	Image    Image

	// Version is the store clock at the last write.
	Version uint64
}

// Solid returns a solid color paint.
func Solid(c Color) Paint {
	return Paint{Kind: PaintSolid, Color: c}
}

// LinearGradient returns a linear gradient paint from start to end.
func LinearGradient(start, end compose.Point, stops ...Stop) Paint {
	return Paint{Kind: PaintGradient, Gradient: Gradient{Kind: GradientLinear, Start: start, End: end, Stops: stops}}
}

// RadialGradient returns a radial gradient paint centered on center and
// reaching edge.
func RadialGradient(center, edge compose.Point, stops ...Stop) Paint {
	return Paint{Kind: PaintGradient, Gradient: Gradient{Kind: GradientRadial, Start: center, End: edge, Stops: stops}}
}

// ImagePaint returns an image paint.
func ImagePaint(img Image) Paint {
	return Paint{Kind: PaintImage, Image: img}
}

// value strips the store-assigned fields so paints can be compared by
// content.
func (p Paint) value() Paint {
	p.ID, p.Style, p.Version = PaintID{}, StyleID{}, 0
	p.Gradient.Stops = append([]Stop(nil), p.Gradient.Stops...)
	return p
}
