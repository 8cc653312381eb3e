package outline

import (
	"github.com/gogpu/compose"
	"github.com/gogpu/compose/scene"
)

// TextLayouter lays out a text node inside a container of the given size
// and returns the path of all visible glyphs, or nil.
type TextLayouter interface {
	LayoutText(t scene.Text, size compose.Size) *compose.Path
}

// Generate returns the outline of shape at size, or nil when the shape has
// no geometry. Groups never have an outline; frames use their background
// rectangle.
func Generate(shape scene.Shape, size compose.Size, text TextLayouter) *compose.Path {
	switch s := shape.(type) {
	case scene.Rectangle:
		return Rectangle(s.Radii, size)
	case scene.Frame:
		return Rectangle(s.Radii, size)
	case scene.Ellipse:
		return Ellipse(s.Start, s.End, s.InnerRatio, size)
	case scene.Star:
		return Star(s.Points, s.InnerRatio, size)
	case scene.Polygon:
		return Polygon(s.Points, size)
	case scene.Vector:
		return Vector(s.Path, s.Base, size)
	case scene.Text:
		if text == nil {
			return nil
		}
		return text.LayoutText(s, size)
	}
	return nil
}
