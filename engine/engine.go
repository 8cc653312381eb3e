package engine

import (
	"context"
	"fmt"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/change"
	"github.com/gogpu/compose/outline"
	"github.com/gogpu/compose/scene"
	"github.com/gogpu/compose/svgdom"
)

// Dropped is a mutation rejected during a pass.
type Dropped struct {
	Mutation scene.Mutation
	Err      error
}

// Report summarizes one update pass.
type Report struct {
	// Seq is the sequence number of the flushed batch, or 0 when the pass
	// produced no records.
	Seq         uint64
	Applied     int
	Dropped     []Dropped
	Regenerated int // outlines generated
	Records     int // records flushed
}

// Engine owns a scene store and the SVG element tree mirroring it. It is
// not safe for concurrent use: callers serialize Update calls.
type Engine struct {
	store *scene.Store
	tree  *svgdom.Tree
	queue change.Queue
	sink  change.Sink
	text  outline.TextLayouter

	resolution float64
	tolerance  float64
	miterLimit float64
	canvas     compose.Size
	strict     bool

	seq             uint64
	svg, defs, root svgdom.ID
	nodes           map[scene.NodeID]*nodeBinding
	styles          map[scene.StyleID]*styleBinding
	rootsSeen       uint64
}

// New creates an engine with an empty scene. The root svg, defs and scene
// group elements are flushed by the first Update.
func New(opts ...Option) *Engine {
	e := &Engine{
		store:      scene.New(),
		resolution: 1,
		tolerance:  compose.DefaultTolerance,
		miterLimit: 4,
		nodes:      make(map[scene.NodeID]*nodeBinding),
		styles:     make(map[scene.StyleID]*styleBinding),
	}
	for _, opt := range opts {
		opt(e)
	}

	var treeOpts []svgdom.Option
	if e.strict {
		treeOpts = append(treeOpts, svgdom.WithStrictInvariants())
	}
	e.tree = svgdom.New(treeOpts...)
	e.svg = e.tree.CreateElement("svg")
	e.tree.SetAttribute(e.svg, "xmlns", "http://www.w3.org/2000/svg")
	if !e.canvas.IsEmpty() {
		w, h := compose.FormatNumber(e.canvas.Width), compose.FormatNumber(e.canvas.Height)
		e.tree.SetAttribute(e.svg, "width", w)
		e.tree.SetAttribute(e.svg, "height", h)
		e.tree.SetAttribute(e.svg, "viewBox", "0 0 "+w+" "+h)
	}
	e.defs = e.tree.CreateElement("defs")
	e.tree.AppendChild(e.svg, e.defs)
	e.root = e.tree.CreateElement("g")
	e.tree.AppendChild(e.svg, e.root)
	return e
}

// Store returns the scene store. Ids for CreateNode and SetStyle are
// reserved from it; all writes go through Update.
func (e *Engine) Store() *scene.Store {
	return e.store
}

// Seq returns the sequence number of the last flushed batch.
func (e *Engine) Seq() uint64 {
	return e.seq
}

// ToSVGString serializes the current element tree.
func (e *Engine) ToSVGString() string {
	return e.tree.ToSVGString()
}

// Close closes the sink.
func (e *Engine) Close() error {
	if e.sink == nil {
		return nil
	}
	return e.sink.Close()
}

// Update runs one pass: it applies mutations in order, brings the element
// tree up to date and flushes the resulting records to the sink as one
// batch. Invalid or stale mutations are dropped and listed in the report;
// the only error returned is the sink's.
func (e *Engine) Update(ctx context.Context, mutations ...scene.Mutation) (Report, error) {
	var rep Report
	for _, m := range mutations {
		if err := e.store.Apply(m); err != nil {
			compose.Logger().Warn("engine: mutation dropped", "op", m.Op(), "err", err)
			rep.Dropped = append(rep.Dropped, Dropped{Mutation: m, Err: err})
			continue
		}
		rep.Applied++
	}

	e.reconcile(&rep)
	e.store.Sweep()
	if e.strict {
		e.checkPlacement()
	}

	e.queue.Push(e.tree.Drain()...)
	records := e.queue.Drain()
	rep.Records = len(records)
	if len(records) > 0 {
		e.seq++
		rep.Seq = e.seq
		if e.sink != nil {
			if err := e.sink.Send(ctx, change.NewBatch(e.seq, records)); err != nil {
				compose.Logger().Warn("engine: batch rejected", "seq", e.seq, "err", err)
				return rep, fmt.Errorf("engine: flush batch %d: %w", e.seq, err)
			}
		}
	}

	compose.Logger().Debug("engine: pass",
		"seq", rep.Seq,
		"applied", rep.Applied,
		"dropped", len(rep.Dropped),
		"regenerated", rep.Regenerated,
		"records", rep.Records)
	return rep, nil
}

// checkPlacement panics unless every bound node's wrapper sits in the
// children group of its parent, or in the root group for top-level nodes.
func (e *Engine) checkPlacement() {
	e.store.Walk(func(n *scene.Node, _ int) bool {
		b := e.nodes[n.ID]
		if b == nil {
			return true
		}
		group := e.root
		if !n.Parent.IsZero() {
			pb := e.nodes[n.Parent]
			if pb == nil {
				panic(fmt.Sprintf("engine: node %s is bound under unbound parent %s", n.ID, n.Parent))
			}
			group = pb.children
		}
		el, ok := e.tree.Element(b.wrapper)
		if !ok || el.Parent() != group {
			panic(fmt.Sprintf("engine: wrapper of node %s is not in group %d", n.ID, group))
		}
		return true
	})
}

// reconcile brings the element tree up to date with the store. Touched
// nodes are visited breadth-first; a resized container pushes its
// children. Sibling order is fixed after every touched node is bound, and
// deleted nodes are unbound last.
func (e *Engine) reconcile(rep *Report) {
	work := e.store.TakeTouched()
	seen := make(map[scene.NodeID]struct{}, len(work))
	var (
		deleted  []*scene.Node
		reorder  []scene.NodeID
		reorders = make(map[scene.NodeID]struct{})
	)
	markOrder := func(parent scene.NodeID) {
		if _, ok := reorders[parent]; !ok {
			reorders[parent] = struct{}{}
			reorder = append(reorder, parent)
		}
	}

	for i := 0; i < len(work); i++ {
		id := work[i]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		n, ok := e.store.Node(id)
		if !ok {
			continue
		}
		if n.Deleted() {
			deleted = append(deleted, n)
			continue
		}

		b := e.nodes[id]
		if b != nil && n.Kind().IsContainer() && n.Versions.Size != b.sizeV {
			work = append(work, n.Children...)
		}
		if b != nil {
			if n.Versions.Children != b.childrenV {
				markOrder(id)
			}
			if n.Versions.Parent != b.parentV {
				markOrder(n.Parent)
			}
		}

		fresh := e.syncNode(n, rep)
		if fresh {
			markOrder(n.Parent)
			if n.Kind().IsContainer() {
				markOrder(id)
			}
		}
	}

	if v := e.store.RootsVersion(); v != e.rootsSeen {
		e.rootsSeen = v
		markOrder(scene.NodeID{})
	}
	for _, parent := range reorder {
		e.syncChildren(parent)
	}
	for _, n := range deleted {
		e.unbind(n, 0)
	}
}
