package engine

import (
	"fmt"
	"slices"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/outline"
	"github.com/gogpu/compose/scene"
	"github.com/gogpu/compose/svgdom"
)

// nodeBinding is the element group mirroring one node, with the versions
// it was last synced at.
type nodeBinding struct {
	wrapper  svgdom.ID
	body     svgdom.ID
	fills    svgdom.ID
	strokes  svgdom.ID
	children svgdom.ID // containers only

	clip     svgdom.ID // <clipPath> in defs
	clipPath svgdom.ID

	outline    *compose.Path
	outlineGen uint64
	styles     []scene.StyleID

	shapeV, sizeV, childrenV, parentV uint64
}

func ref(id svgdom.ID) string {
	return fmt.Sprintf("el-%d", id)
}

func url(id svgdom.ID) string {
	return "url(#" + ref(id) + ")"
}

// syncNode brings n's elements up to date and reports whether the node
// was bound in this call. Leaves without geometry stay unbound.
func (e *Engine) syncNode(n *scene.Node, rep *Report) bool {
	b := e.nodes[n.ID]
	fresh := false
	if b == nil || n.Versions.Shape != b.shapeV || n.Versions.Size != b.sizeV {
		path := outline.Generate(n.Shape, n.Size, e.text)
		rep.Regenerated++
		if b == nil {
			if path.IsEmpty() && !n.Kind().IsContainer() {
				return false
			}
			b = e.bind(n)
			fresh = true
		}
		b.outline = path
		b.outlineGen++
		b.shapeV, b.sizeV = n.Versions.Shape, n.Versions.Size
	}

	t := e.tree
	if m := n.Transform(); m.IsIdentity() {
		t.RemoveAttribute(b.wrapper, "transform")
	} else {
		t.SetAttribute(b.wrapper, "transform", m.SVG())
	}
	if n.Opacity < 1 {
		t.SetAttribute(b.wrapper, "opacity", compose.FormatNumber(n.Opacity))
	} else {
		t.RemoveAttribute(b.wrapper, "opacity")
	}
	if n.Visible {
		t.RemoveAttribute(b.wrapper, "display")
	} else {
		t.SetAttribute(b.wrapper, "display", "none")
	}

	if n.Kind().IsContainer() {
		e.syncContainer(n, b)
	} else if b.children != 0 {
		e.dropContainer(b)
	}
	e.syncStyles(n, b)
	b.childrenV, b.parentV = n.Versions.Children, n.Versions.Parent
	return fresh
}

// bind creates the fixed element group of a node. The wrapper is placed
// by syncChildren.
func (e *Engine) bind(n *scene.Node) *nodeBinding {
	t := e.tree
	b := &nodeBinding{
		wrapper: t.CreateElement("g"),
		body:    t.CreateElement("g"),
		fills:   t.CreateElement("g"),
		strokes: t.CreateElement("g"),
	}
	t.SetAttribute(b.wrapper, "data-node", n.ID.String())
	t.AppendChild(b.wrapper, b.body)
	t.AppendChild(b.body, b.fills)
	t.AppendChild(b.body, b.strokes)
	e.nodes[n.ID] = b
	return b
}

// syncContainer creates the children group on first use and keeps the
// frame clip in step with the outline.
func (e *Engine) syncContainer(n *scene.Node, b *nodeBinding) {
	t := e.tree
	if b.children == 0 {
		b.children = t.CreateElement("g")
		t.AppendChild(b.wrapper, b.children)
	}

	f, ok := n.Shape.(scene.Frame)
	if !ok || !f.ClipContent {
		e.dropClip(b)
		return
	}
	if b.clip == 0 {
		b.clip = t.CreateElement("clipPath")
		t.SetAttribute(b.clip, "id", ref(b.clip))
		t.AppendChild(e.defs, b.clip)
		b.clipPath = t.CreateElement("path")
		t.AppendChild(b.clip, b.clipPath)
	}
	if d := b.outline.SVG(); d != "" {
		t.SetAttribute(b.clipPath, "d", d)
	} else {
		t.RemoveAttribute(b.clipPath, "d")
	}
	t.SetAttribute(b.children, "clip-path", url(b.clip))
}

func (e *Engine) dropClip(b *nodeBinding) {
	if b.clip == 0 {
		return
	}
	e.tree.DeleteElement(b.clip)
	b.clip, b.clipPath = 0, 0
	if b.children != 0 {
		e.tree.RemoveAttribute(b.children, "clip-path")
	}
}

// dropContainer removes the children group and clip of a node that has
// become a leaf. A container with children cannot become a leaf, so the
// group is empty.
func (e *Engine) dropContainer(b *nodeBinding) {
	e.dropClip(b)
	e.tree.DeleteElement(b.children)
	b.children = 0
}

// syncChildren orders the wrappers of parent's bound children to match
// scene order. Scene index 0 is topmost and so is placed last.
func (e *Engine) syncChildren(parent scene.NodeID) {
	group := e.root
	if !parent.IsZero() {
		n, ok := e.store.Node(parent)
		if !ok || n.Deleted() {
			return
		}
		b := e.nodes[parent]
		if b == nil || b.children == 0 {
			return
		}
		group = b.children
	}

	ids := e.store.Children(parent)
	want := make([]svgdom.ID, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		if b := e.nodes[ids[i]]; b != nil {
			want = append(want, b.wrapper)
		}
	}
	e.order(group, want)
}

// order places want at the front of group's children, in order.
func (e *Engine) order(group svgdom.ID, want []svgdom.ID) {
	el, ok := e.tree.Element(group)
	if !ok {
		return
	}
	for pos, id := range want {
		cur := el.Children()
		if pos < len(cur) && cur[pos] == id {
			continue
		}
		e.tree.InsertChild(group, id, pos)
	}
}

// unbind releases the elements of a deleted subtree. group is the
// element n's wrapper is expected in; a wrapper found anywhere else, or
// any wrapper when group is 0, is deleted explicitly.
func (e *Engine) unbind(n *scene.Node, group svgdom.ID) {
	next := group
	if b := e.nodes[n.ID]; b != nil {
		delete(e.nodes, n.ID)
		for _, id := range b.styles {
			e.unbindStyle(id, false)
		}
		if b.clip != 0 {
			e.tree.DeleteElement(b.clip)
		}
		if el, ok := e.tree.Element(b.wrapper); ok && (group == 0 || el.Parent() != group) {
			e.tree.DeleteElement(b.wrapper)
		}
		next = b.children
	}
	for _, c := range slices.Clone(n.Children) {
		if cn, ok := e.store.Node(c); ok {
			e.unbind(cn, next)
		}
	}
}
