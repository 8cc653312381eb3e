package engine

import (
	"slices"
	"strings"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/scene"
	"github.com/gogpu/compose/svgdom"
)

// styleBinding is the path and paint server of one style.
type styleBinding struct {
	path svgdom.ID // fill and stroke styles

	// server is a gradient, pattern or filter in defs. inner is the
	// pattern's <image> or the filter's <feDropShadow>; stops are the
	// gradient's <stop> children.
	server    svgdom.ID
	serverTag string
	inner     svgdom.ID
	stops     []svgdom.ID

	version    uint64
	outlineGen uint64
}

// strokeScale is the resolution scale handed to the stroke generator,
// adjusted so the configured tolerance holds in device pixels.
func (e *Engine) strokeScale() float64 {
	return e.resolution * compose.DefaultTolerance / e.tolerance
}

// syncStyles reconciles the node's style list: removed styles lose their
// elements, changed styles are regenerated, and paths are ordered by
// style order within the fill and stroke groups.
func (e *Engine) syncStyles(n *scene.Node, b *nodeBinding) {
	for _, id := range b.styles {
		if !slices.Contains(n.Styles, id) {
			e.unbindStyle(id, true)
		}
	}

	var fills, strokes []svgdom.ID
	var filters []string
	for _, id := range n.Styles {
		st, ok := e.store.Style(id)
		if !ok {
			continue
		}
		sb := e.styles[id]
		if sb == nil {
			sb = &styleBinding{}
			e.styles[id] = sb
		}
		if sb.version != st.Version || sb.outlineGen != b.outlineGen {
			e.syncStyle(n, b, st, sb)
			sb.version, sb.outlineGen = st.Version, b.outlineGen
		}

		switch {
		case st.Kind == scene.StyleDropShadow:
			if st.Visible && sb.server != 0 {
				filters = append(filters, url(sb.server))
			}
		case sb.path == 0:
		case st.Kind == scene.StyleFill:
			fills = append(fills, sb.path)
		default:
			strokes = append(strokes, sb.path)
		}
	}
	e.order(b.fills, fills)
	e.order(b.strokes, strokes)

	if len(filters) > 0 {
		e.tree.SetAttribute(b.body, "filter", strings.Join(filters, " "))
	} else {
		e.tree.RemoveAttribute(b.body, "filter")
	}
	b.styles = slices.Clone(n.Styles)
}

func (e *Engine) syncStyle(n *scene.Node, b *nodeBinding, st *scene.Style, sb *styleBinding) {
	p, ok := e.store.Paint(st.Paint)
	if !ok {
		return
	}
	if st.Kind == scene.StyleDropShadow {
		e.syncShadow(st, p, sb)
		return
	}

	var d string
	group := b.fills
	if st.Kind == scene.StyleFill {
		d = b.outline.SVG()
	} else {
		group = b.strokes
		d = compose.StrokeOutline(b.outline, st.Stroke(e.miterLimit), e.strokeScale()).SVG()
	}

	t := e.tree
	if d == "" {
		if sb.path != 0 {
			t.DeleteElement(sb.path)
			sb.path = 0
		}
		e.dropServer(sb)
		return
	}
	if sb.path == 0 {
		sb.path = t.CreateElement("path")
		t.AppendChild(group, sb.path)
	}
	t.SetAttribute(sb.path, "d", d)
	e.applyPaint(sb, st, p, n.Size)
	if st.Visible {
		t.RemoveAttribute(sb.path, "display")
	} else {
		t.SetAttribute(sb.path, "display", "none")
	}
}

// applyPaint sets the fill of the style's path, creating or updating the
// paint server it references.
func (e *Engine) applyPaint(sb *styleBinding, st *scene.Style, p *scene.Paint, size compose.Size) {
	t := e.tree
	opacity := st.Opacity
	switch p.Kind {
	case scene.PaintGradient:
		e.syncGradient(sb, p.Gradient, size)
		t.SetAttribute(sb.path, "fill", url(sb.server))
	case scene.PaintImage:
		e.syncPattern(sb, p.Image, size)
		t.SetAttribute(sb.path, "fill", url(sb.server))
	default:
		e.dropServer(sb)
		t.SetAttribute(sb.path, "fill", p.Color.Hex())
		opacity *= p.Color.A
	}
	if opacity < 1 {
		t.SetAttribute(sb.path, "fill-opacity", compose.FormatNumber(opacity))
	} else {
		t.RemoveAttribute(sb.path, "fill-opacity")
	}
}

func (e *Engine) syncGradient(sb *styleBinding, g scene.Gradient, size compose.Size) {
	t := e.tree
	at := func(p compose.Point) compose.Point {
		return compose.Pt(p.X*size.Width, p.Y*size.Height)
	}
	start, end := at(g.Start), at(g.End)
	num := compose.FormatNumber

	if g.Kind == scene.GradientRadial {
		srv := e.ensureServer(sb, "radialGradient")
		t.SetAttribute(srv, "cx", num(start.X))
		t.SetAttribute(srv, "cy", num(start.Y))
		t.SetAttribute(srv, "r", num(start.Distance(end)))
	} else {
		srv := e.ensureServer(sb, "linearGradient")
		t.SetAttribute(srv, "x1", num(start.X))
		t.SetAttribute(srv, "y1", num(start.Y))
		t.SetAttribute(srv, "x2", num(end.X))
		t.SetAttribute(srv, "y2", num(end.Y))
	}
	t.SetAttribute(sb.server, "gradientUnits", "userSpaceOnUse")

	for len(sb.stops) > len(g.Stops) {
		last := len(sb.stops) - 1
		t.DeleteElement(sb.stops[last])
		sb.stops = sb.stops[:last]
	}
	for len(sb.stops) < len(g.Stops) {
		s := t.CreateElement("stop")
		t.AppendChild(sb.server, s)
		sb.stops = append(sb.stops, s)
	}
	for i, stop := range g.Stops {
		s := sb.stops[i]
		t.SetAttribute(s, "offset", num(stop.Offset))
		t.SetAttribute(s, "stop-color", stop.Color.Hex())
		if stop.Color.A < 1 {
			t.SetAttribute(s, "stop-opacity", num(stop.Color.A))
		} else {
			t.RemoveAttribute(s, "stop-opacity")
		}
	}
}

// syncPattern fits an image into the node box. Tiled images repeat at
// their intrinsic size; the other modes use one tile covering the box.
func (e *Engine) syncPattern(sb *styleBinding, img scene.Image, size compose.Size) {
	t := e.tree
	srv := e.ensureServer(sb, "pattern")
	if sb.inner == 0 {
		sb.inner = t.CreateElement("image")
		t.AppendChild(srv, sb.inner)
	}

	tile := size
	aspect := "xMidYMid slice"
	switch img.Mode {
	case scene.ScaleFit:
		aspect = "xMidYMid meet"
	case scene.ScaleStretch:
		aspect = "none"
	case scene.ScaleTile:
		aspect = "none"
		if img.Width > 0 && img.Height > 0 {
			tile = compose.Sz(img.Width, img.Height)
		}
	}
	w, h := compose.FormatNumber(tile.Width), compose.FormatNumber(tile.Height)

	t.SetAttribute(srv, "patternUnits", "userSpaceOnUse")
	t.SetAttribute(srv, "width", w)
	t.SetAttribute(srv, "height", h)
	t.SetAttribute(sb.inner, "href", img.Href)
	t.SetAttribute(sb.inner, "width", w)
	t.SetAttribute(sb.inner, "height", h)
	t.SetAttribute(sb.inner, "preserveAspectRatio", aspect)
}

// syncShadow keeps a drop-shadow filter in defs. The shadow color is the
// style's solid paint.
func (e *Engine) syncShadow(st *scene.Style, p *scene.Paint, sb *styleBinding) {
	t := e.tree
	srv := e.ensureServer(sb, "filter")
	if sb.inner == 0 {
		t.SetAttribute(srv, "x", "-50%")
		t.SetAttribute(srv, "y", "-50%")
		t.SetAttribute(srv, "width", "200%")
		t.SetAttribute(srv, "height", "200%")
		sb.inner = t.CreateElement("feDropShadow")
		t.AppendChild(srv, sb.inner)
	}
	num := compose.FormatNumber
	t.SetAttribute(sb.inner, "dx", num(st.Shadow.DX))
	t.SetAttribute(sb.inner, "dy", num(st.Shadow.DY))
	t.SetAttribute(sb.inner, "stdDeviation", num(st.Shadow.Blur/2))
	t.SetAttribute(sb.inner, "flood-color", p.Color.Hex())
	t.SetAttribute(sb.inner, "flood-opacity", num(p.Color.A*st.Opacity))
}

// ensureServer returns the style's paint server, replacing it when the
// tag differs.
func (e *Engine) ensureServer(sb *styleBinding, tag string) svgdom.ID {
	if sb.server != 0 && sb.serverTag == tag {
		return sb.server
	}
	e.dropServer(sb)
	sb.server = e.tree.CreateElement(tag)
	sb.serverTag = tag
	e.tree.SetAttribute(sb.server, "id", ref(sb.server))
	e.tree.AppendChild(e.defs, sb.server)
	return sb.server
}

func (e *Engine) dropServer(sb *styleBinding) {
	if sb.server == 0 {
		return
	}
	e.tree.DeleteElement(sb.server)
	sb.server, sb.serverTag, sb.inner, sb.stops = 0, "", 0, nil
}

// unbindStyle forgets a style. Its path is deleted when deletePath is
// set; otherwise it vanishes with the node's wrapper.
func (e *Engine) unbindStyle(id scene.StyleID, deletePath bool) {
	sb := e.styles[id]
	if sb == nil {
		return
	}
	delete(e.styles, id)
	if deletePath && sb.path != 0 {
		e.tree.DeleteElement(sb.path)
	}
	e.dropServer(sb)
}
