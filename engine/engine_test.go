package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/change"
	"github.com/gogpu/compose/outline"
	"github.com/gogpu/compose/scene"
	"github.com/gogpu/compose/svgdom"
)

// harness drives an engine whose batches go to a replica and are kept for
// inspection. Every pass checks the replica against the element tree.
type harness struct {
	t       *testing.T
	e       *Engine
	replica *change.Replica
	batches []change.Batch
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{t: t, replica: change.NewReplica()}
	keep := change.NewCallback(func(_ context.Context, b change.Batch) error {
		h.batches = append(h.batches, b)
		return nil
	})
	opts = append([]Option{WithSink(change.NewMulti(h.replica, keep)), WithStrictInvariants()}, opts...)
	h.e = New(opts...)
	h.update()
	return h
}

func (h *harness) update(ms ...scene.Mutation) Report {
	h.t.Helper()
	rep, err := h.e.Update(context.Background(), ms...)
	require.NoError(h.t, err)
	require.Equal(h.t, h.e.ToSVGString(), h.replica.SVG(), "replica diverged from the element tree")
	return rep
}

// last returns the records of the most recent pass, or nil when it
// flushed nothing.
func (h *harness) last(rep Report) []change.Record {
	if rep.Seq == 0 {
		return nil
	}
	return h.batches[len(h.batches)-1].Records
}

func (h *harness) node(id scene.NodeID) *nodeBinding {
	h.t.Helper()
	b := h.e.nodes[id]
	require.NotNil(h.t, b, "node %s is not bound", id)
	return b
}

func (h *harness) element(id svgdom.ID) *svgdom.Element {
	h.t.Helper()
	el, ok := h.e.tree.Element(id)
	require.True(h.t, ok, "element %d does not exist", id)
	return el
}

func (h *harness) attr(id svgdom.ID, key string) string {
	h.t.Helper()
	v, _ := h.element(id).Attr(key)
	return v
}

func (h *harness) rect(id scene.NodeID, parent scene.NodeID, size compose.Size) scene.CreateNode {
	return scene.CreateNode{ID: id, Parent: parent, Index: -1, Shape: scene.Rectangle{}, Size: size}
}

func (h *harness) fill(id scene.StyleID, node scene.NodeID, p scene.Paint) scene.SetStyle {
	return scene.SetStyle{ID: id, Node: node, Kind: scene.StyleFill, Paint: &p}
}

func TestFirstPassFlushesDocument(t *testing.T) {
	h := newHarness(t, WithCanvas(compose.Sz(200, 100)))
	require.Len(t, h.batches, 1)
	assert.Equal(t, uint64(1), h.batches[0].Seq)
	assert.Equal(t,
		`<svg xmlns="http://www.w3.org/2000/svg" width="200" height="100" viewBox="0 0 200 100"><defs/><g/></svg>`,
		h.e.ToSVGString())

	rep := h.update()
	assert.Zero(t, rep.Seq, "an empty pass flushes nothing")
	assert.Len(t, h.batches, 1)
}

func TestRectangleFill(t *testing.T) {
	h := newHarness(t)
	s := h.e.Store()
	r, fill := s.Reserve(), s.ReserveStyle()

	rep := h.update(
		scene.CreateNode{ID: r, Shape: scene.Rectangle{}, X: 10, Y: 20, Size: compose.Sz(100, 50)},
		h.fill(fill, r, scene.Solid(scene.Hex("#ff0000"))),
	)
	assert.Equal(t, 2, rep.Applied)
	assert.Equal(t, 1, rep.Regenerated)

	b := h.node(r)
	assert.Equal(t, "translate(10 20)", h.attr(b.wrapper, "transform"))
	assert.Equal(t, r.String(), h.attr(b.wrapper, "data-node"))

	path := h.e.styles[fill].path
	want := outline.Generate(scene.Rectangle{}, compose.Sz(100, 50), nil).SVG()
	assert.Equal(t, want, h.attr(path, "d"))
	assert.Equal(t, "#ff0000", h.attr(path, "fill"))
	assert.Equal(t, b.fills, h.element(path).Parent())
	assert.Equal(t, b.wrapper, h.element(b.body).Parent())
	assert.Equal(t, h.e.root, h.element(b.wrapper).Parent())
}

func TestStrokeWidthChangeUpdatesOnlyStrokePath(t *testing.T) {
	h := newHarness(t)
	s := h.e.Store()
	r, fill, stroke := s.Reserve(), s.ReserveStyle(), s.ReserveStyle()

	h.update(
		h.rect(r, scene.NodeID{}, compose.Sz(100, 100)),
		h.fill(fill, r, scene.Solid(scene.Hex("#00ff00"))),
		scene.SetStyle{ID: stroke, Node: r, Kind: scene.StyleStroke, Width: scene.Ptr(2.0)},
	)
	strokePath := h.e.styles[stroke].path
	require.NotZero(t, strokePath)

	rep := h.update(scene.SetStyle{ID: stroke, Width: scene.Ptr(4.0)})
	recs := h.last(rep)
	require.Len(t, recs, 1)
	assert.Equal(t, change.AttributeUpdated, recs[0].Kind)
	assert.Equal(t, strokePath, recs[0].Element)
	assert.Equal(t, "d", recs[0].Key)
	assert.Zero(t, rep.Regenerated, "the fill outline is not regenerated")

	fillOutline := outline.Generate(scene.Rectangle{}, compose.Sz(100, 100), nil)
	want := compose.StrokeOutline(fillOutline, compose.Stroke{Width: 4, MiterLimit: 4}, 1).SVG()
	assert.Equal(t, want, recs[0].Value)
}

func TestSiblingCreationOrder(t *testing.T) {
	h := newHarness(t)
	s := h.e.Store()
	a, b := s.Reserve(), s.Reserve()

	rep := h.update(
		scene.CreateNode{ID: a, Index: 0, Shape: scene.Rectangle{}, Size: compose.Sz(10, 10)},
		scene.CreateNode{ID: b, Index: 1, Shape: scene.Rectangle{}, Size: compose.Sz(10, 10)},
	)
	require.Equal(t, []scene.NodeID{a, b}, s.Roots())

	wa, wb := h.node(a).wrapper, h.node(b).wrapper
	pos := map[svgdom.ID]int{}
	for i, r := range h.last(rep) {
		if r.Kind == change.ElementCreated {
			pos[r.Element] = i
		}
	}
	require.Contains(t, pos, wa)
	require.Contains(t, pos, wb)
	assert.Less(t, pos[wb], pos[wa], "index 1 is created before index 0")

	// Index 0 is topmost, so it paints last.
	assert.Equal(t, []svgdom.ID{wb, wa}, h.element(h.e.root).Children())
}

func TestStaleReferencesAreDropped(t *testing.T) {
	h := newHarness(t)
	s := h.e.Store()
	r, never := s.Reserve(), s.Reserve()

	h.update(h.rect(r, scene.NodeID{}, compose.Sz(10, 10)))
	rep := h.update(
		scene.DeleteNode{ID: r},
		scene.MoveNode{ID: r, DX: 1},
		scene.DeleteNode{ID: never},
	)
	assert.Equal(t, 1, rep.Applied)
	require.Len(t, rep.Dropped, 2)
	for _, d := range rep.Dropped {
		assert.ErrorIs(t, d.Err, scene.ErrStaleReference)
	}
	assert.Equal(t, "MoveNode", rep.Dropped[0].Mutation.Op())
	assert.Equal(t, 3, h.e.tree.Len(), "only the document elements remain")
}

func TestDegenerateLeafHasNoElements(t *testing.T) {
	h := newHarness(t)
	s := h.e.Store()
	r, fill := s.Reserve(), s.ReserveStyle()

	rep := h.update(
		h.rect(r, scene.NodeID{}, compose.Sz(0, 10)),
		h.fill(fill, r, scene.Solid(scene.Black)),
	)
	assert.Zero(t, rep.Seq)
	assert.Nil(t, h.e.nodes[r])

	h.update(scene.ResizeNode{ID: r, Size: compose.Sz(10, 10)})
	b := h.node(r)
	assert.Equal(t, h.e.root, h.element(b.wrapper).Parent())
	assert.NotZero(t, h.e.styles[fill].path)

	// Losing the geometry again removes the path but keeps the group.
	rep = h.update(scene.ResizeNode{ID: r, Size: compose.Sz(10, 0)})
	recs := h.last(rep)
	require.Len(t, recs, 1)
	assert.Equal(t, change.ElementDeleted, recs[0].Kind)
	assert.Zero(t, h.e.styles[fill].path)
	assert.Empty(t, h.element(b.fills).Children())
}

func TestDeleteCascade(t *testing.T) {
	h := newHarness(t)
	s := h.e.Store()
	frame, child, fill := s.Reserve(), s.Reserve(), s.ReserveStyle()

	h.update(
		scene.CreateNode{ID: frame, Shape: scene.Frame{ClipContent: true}, Size: compose.Sz(100, 100)},
		h.rect(child, frame, compose.Sz(20, 20)),
		h.fill(fill, child, scene.LinearGradient(compose.Pt(0, 0), compose.Pt(1, 0),
			scene.Stop{Offset: 0, Color: scene.Black},
			scene.Stop{Offset: 1, Color: scene.White})),
	)
	fb := h.node(frame)
	require.NotZero(t, fb.clip)
	assert.Equal(t, fb.children, h.element(h.node(child).wrapper).Parent())
	grad := h.e.styles[fill].server
	assert.Equal(t, []svgdom.ID{fb.clip, grad}, h.element(h.e.defs).Children())

	rep := h.update(scene.DeleteNode{ID: frame})
	var deleted []svgdom.ID
	for _, r := range h.last(rep) {
		require.Equal(t, change.ElementDeleted, r.Kind)
		deleted = append(deleted, r.Element)
	}
	assert.ElementsMatch(t, []svgdom.ID{fb.wrapper, fb.clip, grad}, deleted)
	assert.Empty(t, h.e.nodes)
	assert.Empty(t, h.e.styles)
	assert.Equal(t, 3, h.e.tree.Len())
	assert.Zero(t, s.Len())
}

func TestReorderAndReparent(t *testing.T) {
	h := newHarness(t)
	s := h.e.Store()
	a, b, c, frame := s.Reserve(), s.Reserve(), s.Reserve(), s.Reserve()

	h.update(
		h.rect(a, scene.NodeID{}, compose.Sz(10, 10)),
		h.rect(b, scene.NodeID{}, compose.Sz(10, 10)),
		h.rect(c, scene.NodeID{}, compose.Sz(10, 10)),
	)
	wa, wb, wc := h.node(a).wrapper, h.node(b).wrapper, h.node(c).wrapper
	assert.Equal(t, []svgdom.ID{wc, wb, wa}, h.element(h.e.root).Children())

	h.update(scene.ReparentNode{ID: a, Index: 2})
	assert.Equal(t, []scene.NodeID{b, c, a}, s.Roots())
	assert.Equal(t, []svgdom.ID{wa, wc, wb}, h.element(h.e.root).Children())

	h.update(
		scene.CreateNode{ID: frame, Shape: scene.Group{}, Index: 0},
		scene.ReparentNode{ID: c, Parent: frame},
		scene.ReparentNode{ID: b, Parent: frame},
	)
	// Both moved under index 0, so b ends up topmost.
	fb := h.node(frame)
	assert.Equal(t, []scene.NodeID{b, c}, s.Children(frame))
	assert.Equal(t, []svgdom.ID{wc, wb}, h.element(fb.children).Children())
	assert.Equal(t, []svgdom.ID{wa, fb.wrapper}, h.element(h.e.root).Children())
	assert.Equal(t, 4, h.element(wb).Level())
}

func TestMoveOutOfDeletedContainer(t *testing.T) {
	h := newHarness(t)
	s := h.e.Store()
	g, keep, drop := s.Reserve(), s.Reserve(), s.Reserve()

	h.update(
		scene.CreateNode{ID: g, Shape: scene.Group{}},
		h.rect(keep, g, compose.Sz(10, 10)),
		h.rect(drop, g, compose.Sz(10, 10)),
	)
	wk := h.node(keep).wrapper

	h.update(
		scene.ReparentNode{ID: keep},
		scene.DeleteNode{ID: g},
	)
	assert.Equal(t, []svgdom.ID{wk}, h.element(h.e.root).Children())
	assert.Len(t, h.e.nodes, 1)
}

func TestMoveIntoDeletedContainer(t *testing.T) {
	h := newHarness(t)
	s := h.e.Store()
	r, g := s.Reserve(), s.Reserve()

	h.update(h.rect(r, scene.NodeID{}, compose.Sz(10, 10)))
	h.update(
		scene.CreateNode{ID: g, Shape: scene.Group{}},
		scene.ReparentNode{ID: r, Parent: g},
		scene.DeleteNode{ID: g},
	)
	assert.Empty(t, h.element(h.e.root).Children())
	assert.Empty(t, h.e.nodes)
	assert.Equal(t, 3, h.e.tree.Len())
}

func TestPaintServers(t *testing.T) {
	h := newHarness(t)
	s := h.e.Store()
	r, fill := s.Reserve(), s.ReserveStyle()

	h.update(
		h.rect(r, scene.NodeID{}, compose.Sz(200, 100)),
		h.fill(fill, r, scene.LinearGradient(compose.Pt(0, 0), compose.Pt(1, 1),
			scene.Stop{Offset: 0, Color: scene.Hex("#ff000080")},
			scene.Stop{Offset: 1, Color: scene.White})),
	)
	sb := h.e.styles[fill]
	require.NotZero(t, sb.server)
	assert.Equal(t, "url(#"+ref(sb.server)+")", h.attr(sb.path, "fill"))
	assert.Equal(t, "linearGradient", h.element(sb.server).Tag())
	assert.Equal(t, "200", h.attr(sb.server, "x2"))
	assert.Equal(t, "100", h.attr(sb.server, "y2"))
	require.Len(t, sb.stops, 2)
	assert.Equal(t, "#ff0000", h.attr(sb.stops[0], "stop-color"))
	assert.NotEmpty(t, h.attr(sb.stops[0], "stop-opacity"))

	// Gradient sizing follows the node.
	h.update(scene.ResizeNode{ID: r, Size: compose.Sz(50, 50)})
	assert.Equal(t, "50", h.attr(sb.server, "x2"))

	h.update(scene.SetStyle{ID: fill, Paint: scene.Ptr(scene.ImagePaint(scene.Image{
		Href: "tile.png", Width: 8, Height: 4, Mode: scene.ScaleTile,
	}))})
	require.Equal(t, "pattern", h.element(sb.server).Tag())
	assert.Equal(t, "8", h.attr(sb.server, "width"))
	assert.Equal(t, "tile.png", h.attr(sb.inner, "href"))
	assert.Equal(t, "none", h.attr(sb.inner, "preserveAspectRatio"))

	h.update(scene.SetStyle{ID: fill, Paint: scene.Ptr(scene.Solid(scene.White)), Opacity: scene.Ptr(0.5)})
	assert.Zero(t, sb.server)
	assert.Equal(t, "#ffffff", h.attr(sb.path, "fill"))
	assert.Equal(t, "0.5", h.attr(sb.path, "fill-opacity"))
	assert.Empty(t, h.element(h.e.defs).Children())
}

func TestDropShadow(t *testing.T) {
	h := newHarness(t)
	s := h.e.Store()
	r, shadow := s.Reserve(), s.ReserveStyle()

	h.update(
		h.rect(r, scene.NodeID{}, compose.Sz(10, 10)),
		scene.SetStyle{ID: shadow, Node: r, Kind: scene.StyleDropShadow,
			Shadow: &scene.Shadow{DX: 2, DY: 3, Blur: 4}},
	)
	sb := h.e.styles[shadow]
	require.NotZero(t, sb.server)
	assert.Zero(t, sb.path)
	assert.Equal(t, "filter", h.element(sb.server).Tag())
	assert.Equal(t, "2", h.attr(sb.inner, "stdDeviation"))
	assert.Equal(t, "url(#"+ref(sb.server)+")", h.attr(h.node(r).body, "filter"))

	h.update(scene.SetStyle{ID: shadow, Visible: scene.Ptr(false)})
	_, ok := h.element(h.node(r).body).Attr("filter")
	assert.False(t, ok)

	h.update(scene.DeleteStyle{ID: shadow})
	assert.Empty(t, h.element(h.e.defs).Children())
	assert.Empty(t, h.e.styles)
}

func TestStyleOrderAndRemoval(t *testing.T) {
	h := newHarness(t)
	s := h.e.Store()
	r, f1, f2 := s.Reserve(), s.ReserveStyle(), s.ReserveStyle()

	h.update(
		h.rect(r, scene.NodeID{}, compose.Sz(10, 10)),
		h.fill(f1, r, scene.Solid(scene.Black)),
		h.fill(f2, r, scene.Solid(scene.White)),
	)
	b := h.node(r)
	p1, p2 := h.e.styles[f1].path, h.e.styles[f2].path
	assert.Equal(t, []svgdom.ID{p1, p2}, h.element(b.fills).Children())

	h.update(scene.SetStyle{ID: f1, Visible: scene.Ptr(false)})
	assert.Equal(t, "none", h.attr(p1, "display"))

	rep := h.update(scene.DeleteStyle{ID: f1})
	recs := h.last(rep)
	require.Len(t, recs, 1)
	assert.Equal(t, change.ElementDeleted, recs[0].Kind)
	assert.Equal(t, p1, recs[0].Element)
	assert.Equal(t, []svgdom.ID{p2}, h.element(b.fills).Children())
}

func TestNodeAppearance(t *testing.T) {
	h := newHarness(t)
	s := h.e.Store()
	r := s.Reserve()

	h.update(h.rect(r, scene.NodeID{}, compose.Sz(10, 10)))
	w := h.node(r).wrapper
	_, ok := h.element(w).Attr("transform")
	assert.False(t, ok, "identity transforms are omitted")

	h.update(
		scene.SetVisible{ID: r, Visible: false},
		scene.SetOpacity{ID: r, Opacity: 0.25},
		scene.SetRotation{ID: r, Degrees: 90},
	)
	assert.Equal(t, "none", h.attr(w, "display"))
	assert.Equal(t, "0.25", h.attr(w, "opacity"))
	n, _ := s.Node(r)
	assert.Equal(t, n.Transform().SVG(), h.attr(w, "transform"))

	h.update(scene.SetVisible{ID: r, Visible: true}, scene.SetOpacity{ID: r, Opacity: 1})
	_, ok = h.element(w).Attr("display")
	assert.False(t, ok)
	_, ok = h.element(w).Attr("opacity")
	assert.False(t, ok)
}

func TestFrameClipFollowsShape(t *testing.T) {
	h := newHarness(t)
	s := h.e.Store()
	f := s.Reserve()

	h.update(scene.CreateNode{ID: f, Shape: scene.Frame{ClipContent: true}, Size: compose.Sz(40, 30)})
	b := h.node(f)
	require.NotZero(t, b.clip)
	assert.Equal(t, "url(#"+ref(b.clip)+")", h.attr(b.children, "clip-path"))
	assert.Equal(t, b.outline.SVG(), h.attr(b.clipPath, "d"))

	rep := h.update(scene.ResizeNode{ID: f, Size: compose.Sz(80, 30)})
	assert.Equal(t, 1, rep.Regenerated)
	assert.Equal(t, b.outline.SVG(), h.attr(b.clipPath, "d"))

	h.update(scene.SetShape{ID: f, Shape: scene.Frame{}})
	assert.Zero(t, b.clip)
	_, ok := h.element(b.children).Attr("clip-path")
	assert.False(t, ok)
	assert.Empty(t, h.element(h.e.defs).Children())
}

func TestFrameBecomesLeaf(t *testing.T) {
	h := newHarness(t)
	s := h.e.Store()
	f := s.Reserve()

	h.update(scene.CreateNode{ID: f, Shape: scene.Frame{ClipContent: true}, Size: compose.Sz(10, 10)})
	b := h.node(f)
	require.NotZero(t, b.clip)
	children := b.children

	h.update(scene.SetShape{ID: f, Shape: scene.Rectangle{}})
	assert.Zero(t, b.clip)
	assert.Zero(t, b.children)
	_, ok := h.e.tree.Element(children)
	assert.False(t, ok)
	assert.Empty(t, h.element(h.e.defs).Children())
	assert.Equal(t, []svgdom.ID{b.body}, h.element(b.wrapper).Children())
	assert.NotContains(t, h.e.ToSVGString(), "clip-path")

	h.update(scene.SetShape{ID: f, Shape: scene.Frame{ClipContent: true}})
	require.NotZero(t, b.clip)
	assert.Equal(t, []svgdom.ID{b.body, b.children}, h.element(b.wrapper).Children())
	assert.Equal(t, b.outline.SVG(), h.attr(b.clipPath, "d"))
}

func TestPlacementCheck(t *testing.T) {
	h := newHarness(t)
	r := h.e.Store().Reserve()
	h.update(h.rect(r, scene.NodeID{}, compose.Sz(10, 10)))
	assert.NotPanics(t, h.e.checkPlacement)

	h.e.tree.AppendChild(h.e.defs, h.node(r).wrapper)
	assert.Panics(t, h.e.checkPlacement)
}

type boxText struct{}

// LayoutText returns one 10x10 box per byte of content.
func (boxText) LayoutText(t scene.Text, _ compose.Size) *compose.Path {
	if t.Content == "" {
		return nil
	}
	p := compose.NewPath()
	for i := range len(t.Content) {
		x := float64(i * 10)
		p.MoveTo(x, 0)
		p.LineTo(x+10, 0)
		p.LineTo(x+10, 10)
		p.LineTo(x, 10)
		p.Close()
	}
	return p
}

func TestTextNodes(t *testing.T) {
	h := newHarness(t, WithTextLayouter(boxText{}))
	s := h.e.Store()
	txt, fill := s.Reserve(), s.ReserveStyle()

	h.update(
		scene.CreateNode{ID: txt, Shape: scene.Text{Content: "ab"}, Size: compose.Sz(100, 20)},
		h.fill(fill, txt, scene.Solid(scene.Black)),
	)
	path := h.e.styles[fill].path
	before := h.attr(path, "d")
	require.NotEmpty(t, before)

	rep := h.update(scene.SetText{ID: txt, Content: "abc"})
	recs := h.last(rep)
	require.Len(t, recs, 1)
	assert.Equal(t, change.AttributeUpdated, recs[0].Kind)
	assert.NotEqual(t, before, recs[0].Value)

	h.update(scene.SetText{ID: txt, Content: ""})
	assert.Zero(t, h.e.styles[fill].path)
}

func TestContainerResizeVisitsChildren(t *testing.T) {
	h := newHarness(t)
	s := h.e.Store()
	f, child := s.Reserve(), s.Reserve()

	h.update(
		scene.CreateNode{ID: f, Shape: scene.Frame{}, Size: compose.Sz(100, 100)},
		h.rect(child, f, compose.Sz(10, 10)),
	)
	rep := h.update(scene.ResizeNode{ID: f, Size: compose.Sz(50, 50)})
	assert.Equal(t, 1, rep.Regenerated, "children keep their outlines")
	for _, r := range h.last(rep) {
		assert.NotEqual(t, h.node(child).wrapper, r.Element)
	}
}

func TestSinkErrorIsReturned(t *testing.T) {
	boom := errors.New("boom")
	e := New(WithSink(change.NewCallback(func(context.Context, change.Batch) error { return boom })))

	rep, err := e.Update(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, uint64(1), rep.Seq)

	// The next pass is numbered after the rejected one.
	r := e.Store().Reserve()
	rep, err = e.Update(context.Background(), scene.CreateNode{ID: r, Shape: scene.Group{}})
	require.Error(t, err)
	assert.Equal(t, uint64(2), rep.Seq)
	require.NoError(t, e.Close())
}

func TestStrokeScale(t *testing.T) {
	e := New(WithResolutionScale(2), WithFlattenTolerance(0.5))
	assert.InDelta(t, 1.0, e.strokeScale(), 1e-12)

	e = New(WithResolutionScale(-1), WithFlattenTolerance(0), WithMiterLimit(0.5))
	assert.Equal(t, 1.0, e.resolution)
	assert.Equal(t, compose.DefaultTolerance, e.tolerance)
	assert.Equal(t, 4.0, e.miterLimit)
}
