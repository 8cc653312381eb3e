package scene

import (
	"fmt"

	"github.com/gogpu/compose"
)

// Kind is the shape kind of a node.
type Kind uint8

const (
	KindRectangle Kind = iota
	KindEllipse
	KindStar
	KindPolygon
	KindText
	KindVector
	KindFrame
	KindGroup
)

var kindNames = [...]string{
	KindRectangle: "rectangle",
	KindEllipse:   "ellipse",
	KindStar:      "star",
	KindPolygon:   "polygon",
	KindText:      "text",
	KindVector:    "vector",
	KindFrame:     "frame",
	KindGroup:     "group",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsContainer reports whether nodes of this kind may have children.
func (k Kind) IsContainer() bool {
	return k == KindFrame || k == KindGroup
}

// Shape holds the kind-specific parameters of a node. The set of
// implementations is closed: Rectangle, Ellipse, Star, Polygon, Text,
// Vector, Frame and Group.
type Shape interface {
	Kind() Kind
	isShape()
}

// Rectangle corner radii are ordered top-left, top-right, bottom-right,
// bottom-left. Radii are clamped when the outline is generated, not when
// they are stored.
type Rectangle struct {
	Radii [4]float64
}

// Ellipse angles are in radians, measured clockwise from the positive x
// axis. Start == 0 and End == 2π (or any sweep of at least 2π) is a full
// ellipse; InnerRatio > 0 cuts a hole of that fraction of the radii.
type Ellipse struct {
	Start      float64
	End        float64
	InnerRatio float64
}

// Star has Points outer vertices; inner vertices sit at InnerRatio of the
// outer radius.
type Star struct {
	Points     int
	InnerRatio float64
}

// Polygon is a regular polygon with Points vertices.
type Polygon struct {
	Points int
}

// Align is the horizontal alignment of text lines.
type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Wrap is the line-wrapping mode of a text node.
type Wrap uint8

const (
	// WrapNone breaks lines only at explicit newlines.
	WrapNone Wrap = iota
	// WrapWord additionally breaks at spaces to fit the node width.
	WrapWord
)

// Span overrides the font of the byte range [Start, End) of the content.
// Zero fields inherit from the Text.
type Span struct {
	Start, End int
	Font       string
	Size       float64
}

// Text is laid out by the text collaborator. Font is an opaque font id.
type Text struct {
	Content    string
	Spans      []Span
	Align      Align
	Wrap       Wrap
	Font       string
	FontSize   float64
	LineHeight float64 // multiple of the font size; 0 means 1.2
}

// Vector is an imported outline. Path coordinates are relative to Base,
// the node size the path was authored at; the outline is the path
// rescaled per axis to the current size. A zero Base is filled in from
// the first size the node is observed with.
type Vector struct {
	Path *compose.Path
	Base compose.Size
}

// VectorFromSVG parses SVG path data into a Vector.
func VectorFromSVG(d string) (Vector, error) {
	p, err := compose.ParseSVGPath(d)
	if err != nil {
		return Vector{}, err
	}
	return Vector{Path: p}, nil
}

// Frame is a container with its own background outline.
type Frame struct {
	ClipContent bool
	Radii       [4]float64
}

// Group is a container without geometry of its own.
type Group struct{}

func (Rectangle) Kind() Kind { return KindRectangle }
func (Ellipse) Kind() Kind   { return KindEllipse }
func (Star) Kind() Kind      { return KindStar }
func (Polygon) Kind() Kind   { return KindPolygon }
func (Text) Kind() Kind      { return KindText }
func (Vector) Kind() Kind    { return KindVector }
func (Frame) Kind() Kind     { return KindFrame }
func (Group) Kind() Kind     { return KindGroup }

func (Rectangle) isShape() {}
func (Ellipse) isShape()   {}
func (Star) isShape()      {}
func (Polygon) isShape()   {}
func (Text) isShape()      {}
func (Vector) isShape()    {}
func (Frame) isShape()     {}
func (Group) isShape()     {}

// cloneShape copies the slices and paths a shape owns so the store never
// shares them with the caller.
func cloneShape(s Shape) Shape {
	switch v := s.(type) {
	case Text:
		v.Spans = append([]Span(nil), v.Spans...)
		return v
	case Vector:
		v.Path = v.Path.Clone()
		return v
	}
	return s
}
