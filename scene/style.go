package scene

import (
	"fmt"

	"github.com/gogpu/compose"
)

// StyleKind is the role of a style on its node.
type StyleKind uint8

const (
	StyleFill StyleKind = iota
	StyleStroke
	StyleDropShadow
)

func (k StyleKind) String() string {
	switch k {
	case StyleFill:
		return "fill"
	case StyleStroke:
		return "stroke"
	case StyleDropShadow:
		return "drop-shadow"
	}
	return fmt.Sprintf("StyleKind(%d)", k)
}

// Shadow is the geometry of a drop shadow. The shadow color comes from the
// style's paint, which must be solid.
type Shadow struct {
	DX, DY float64
	Blur   float64
}

// Style is one layer of a node's appearance. A node paints its styles in
// list order, so later styles of the same kind are on top.
type Style struct {
	ID    StyleID
	Node  NodeID
	Kind  StyleKind
	Paint PaintID

	// Stroke parameters; only used by StyleStroke.
	Width float64
	Join  compose.LineJoin
	Cap   compose.LineCap

	// Shadow parameters; only used by StyleDropShadow.
	Shadow Shadow

	Visible bool
	Opacity float64

	// Version is the store clock at the last write to any field above
	// or to the linked paint.
	Version uint64
}

// Stroke returns the stroke parameters of the style with the given miter
// limit.
func (s *Style) Stroke(miterLimit float64) compose.Stroke {
	return compose.Stroke{Width: s.Width, Cap: s.Cap, Join: s.Join, MiterLimit: miterLimit}
}
