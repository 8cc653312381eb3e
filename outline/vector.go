package outline

import "github.com/gogpu/compose"

// Vector rescales an imported path from its base size to size, per axis.
// An axis whose base is zero is not scaled, so the first observed size
// leaves the path as authored.
func Vector(path *compose.Path, base, size compose.Size) *compose.Path {
	if path.IsEmpty() {
		return nil
	}
	sx, sy := 1.0, 1.0
	if base.Width > 0 {
		sx = size.Width / base.Width
	}
	if base.Height > 0 {
		sy = size.Height / base.Height
	}
	if sx == 1 && sy == 1 {
		return path.Clone()
	}
	return path.Transform(compose.Scale(sx, sy))
}
