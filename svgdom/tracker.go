package svgdom

import (
	"slices"

	"cogentcore.org/core/base/keylist"

	"github.com/gogpu/compose/change"
)

// baseline is the value a key had when the pass started.
type baseline struct {
	value string
	set   bool
}

// tracker records what happened to one element during the current pass.
type tracker struct {
	el      *Element
	created bool
	deleted bool

	// appended is set when the element got a new parent or position.
	appended bool

	// attrs and styles hold the baseline of every touched key, in
	// first-touch order. Unused for elements created this pass.
	attrs  keylist.List[string, baseline]
	styles keylist.List[string, baseline]

	// children is the child list as the consumer knew it, captured on the
	// first structural change to this element.
	children        []*Element
	childrenTouched bool

	// Position key captured at deletion.
	level, index int
}

func (t *Tree) track(e *Element) *tracker {
	tr, ok := t.trackers[e.id]
	if !ok {
		tr = &tracker{el: e}
		t.trackers[e.id] = tr
		t.touched = append(t.touched, e.id)
	}
	return tr
}

func (t *Tree) trackChildren(e *Element) {
	tr := t.track(e)
	if !tr.childrenTouched {
		tr.childrenTouched = true
		tr.children = slices.Clone(e.children)
	}
}

func (tr *tracker) rememberAttr(key, value string, set bool) {
	if tr.created {
		return
	}
	if _, ok := tr.attrs.AtTry(key); !ok {
		tr.attrs.Set(key, baseline{value: value, set: set})
	}
}

func (tr *tracker) rememberStyle(key, value string, set bool) {
	if tr.created {
		return
	}
	if _, ok := tr.styles.AtTry(key); !ok {
		tr.styles.Set(key, baseline{value: value, set: set})
	}
}

// Pending returns the number of elements touched since the last Drain.
func (t *Tree) Pending() int {
	return len(t.trackers)
}

// Drain returns the records of the current pass, annotated with position
// keys, in the order the elements were first touched, and starts a new
// pass. The records still need to be ordered by a change.Queue.
func (t *Tree) Drain() []change.Record {
	var out []change.Record
	for _, id := range t.touched {
		tr, ok := t.trackers[id]
		if !ok {
			continue
		}
		out = tr.records(t, out)
	}
	t.trackers = make(map[ID]*tracker)
	t.touched = nil
	return out
}

func (tr *tracker) records(t *Tree, out []change.Record) []change.Record {
	e := tr.el
	if tr.deleted {
		if tr.created {
			out = append(out, created(e, tr.level, tr.index))
		}
		return append(out, change.Record{Kind: change.ElementDeleted, Element: e.id, Level: tr.level, Index: tr.index})
	}

	level, index := e.level, e.Index()
	at := func(r change.Record) change.Record {
		r.Element, r.Level, r.Index = e.id, level, index
		return r
	}

	if tr.created {
		out = append(out, created(e, level, index))
	} else {
		out = diff(out, &tr.attrs, &e.attrs, change.AttributeUpdated, change.AttributeRemoved, at)
		out = diff(out, &tr.styles, &e.styles, change.StyleUpdated, change.StyleRemoved, at)
	}
	if tr.appended && e.parent != nil {
		out = append(out, at(change.Record{Kind: change.ElementAppended, Parent: e.parent.id}))
	}
	if tr.childrenTouched && !slices.Equal(tr.consumerOrder(t), e.children) {
		out = append(out, change.Record{
			Kind:     change.ChildrenReordered,
			Element:  e.id,
			Children: e.Children(),
			Level:    level + 1,
			Index:    -1,
		})
	}
	return out
}

// consumerOrder predicts the child list a consumer ends up with after
// applying this pass's removals and appends without any reordering:
// surviving earlier children keep their order and appended children follow
// in flush order, which is document order.
func (tr *tracker) consumerOrder(t *Tree) []*Element {
	e := tr.el
	moved := func(c *Element) bool {
		ct, ok := t.trackers[c.id]
		return ok && ct.appended
	}
	var order []*Element
	for _, c := range tr.children {
		if c.parent == e && !moved(c) {
			order = append(order, c)
		}
	}
	for _, c := range e.children {
		if moved(c) {
			order = append(order, c)
		}
	}
	return order
}

func created(e *Element, level, index int) change.Record {
	return change.Record{
		Kind:    change.ElementCreated,
		Element: e.id,
		Tag:     e.tag,
		Attrs:   e.Attrs(),
		Styles:  e.Styles(),
		Level:   level,
		Index:   index,
	}
}

func diff(out []change.Record, base *keylist.List[string, baseline], cur *keylist.List[string, string],
	updated, removed change.Kind, at func(change.Record) change.Record) []change.Record {
	for i, key := range base.Keys {
		b := base.Values[i]
		v, ok := cur.AtTry(key)
		switch {
		case ok && (!b.set || b.value != v):
			out = append(out, at(change.Record{Kind: updated, Key: key, Value: v}))
		case !ok && b.set:
			out = append(out, at(change.Record{Kind: removed, Key: key}))
		}
	}
	return out
}
