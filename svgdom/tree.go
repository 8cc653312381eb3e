package svgdom

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/internal/markup"
)

// Option configures a Tree.
type Option func(*Tree)

// WithStrictInvariants makes invariant violations panic instead of being
// logged and ignored.
func WithStrictInvariants() Option {
	return func(t *Tree) { t.strict = true }
}

// Tree is an SVG element tree with change tracking. It is not safe for
// concurrent use.
type Tree struct {
	elements map[ID]*Element
	roots    []*Element // parentless elements in creation order
	lastID   ID
	strict   bool

	trackers map[ID]*tracker
	touched  []ID
}

// New creates an empty tree.
func New(opts ...Option) *Tree {
	t := &Tree{
		elements: make(map[ID]*Element),
		trackers: make(map[ID]*tracker),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Len returns the number of elements.
func (t *Tree) Len() int {
	return len(t.elements)
}

// Element returns the element with the given id.
func (t *Tree) Element(id ID) (*Element, bool) {
	e, ok := t.elements[id]
	return e, ok
}

// CreateElement creates a parentless element and returns its id. Ids
// increase monotonically.
func (t *Tree) CreateElement(tag string) ID {
	t.lastID++
	e := &Element{id: t.lastID, tag: tag}
	t.elements[e.id] = e
	t.roots = append(t.roots, e)
	t.track(e).created = true
	return e.id
}

// AppendChild makes child the last child of parent, moving it if it
// already has a parent.
func (t *Tree) AppendChild(parent, child ID) {
	p := t.lookup("AppendChild", parent)
	if p == nil {
		return
	}
	t.insert(p, child, len(p.children))
}

// InsertChild places child at document position pos among parent's
// children; pos is clamped to the valid range.
func (t *Tree) InsertChild(parent, child ID, pos int) {
	p := t.lookup("InsertChild", parent)
	if p == nil {
		return
	}
	t.insert(p, child, pos)
}

func (t *Tree) insert(p *Element, child ID, pos int) {
	c := t.lookup("AppendChild", child)
	if c == nil {
		return
	}
	if c.isAncestorOf(p) {
		t.violation("AppendChild: element %d is an ancestor of %d", c.id, p.id)
		return
	}
	if c.parent == p {
		cur := slices.Index(p.children, c)
		if pos >= len(p.children) {
			pos = len(p.children) - 1
		}
		if cur == max(pos, 0) {
			return
		}
	}

	t.trackChildren(p)
	t.detach(c)
	pos = max(0, min(pos, len(p.children)))
	p.children = slices.Insert(p.children, pos, c)
	c.parent = p
	c.setLevel(p.level + 1)
	t.track(c).appended = true
}

// detach unlinks e from its parent or from the roots.
func (t *Tree) detach(e *Element) {
	if e.parent == nil {
		t.roots = slices.DeleteFunc(t.roots, func(r *Element) bool { return r == e })
		return
	}
	t.trackChildren(e.parent)
	e.parent.children = slices.DeleteFunc(e.parent.children, func(c *Element) bool { return c == e })
	e.parent = nil
}

// SetAttribute sets an attribute. Setting the current value is a no-op.
func (t *Tree) SetAttribute(id ID, key, value string) {
	e := t.lookup("SetAttribute", id)
	if e == nil {
		return
	}
	cur, ok := e.attrs.AtTry(key)
	if ok && cur == value {
		return
	}
	t.track(e).rememberAttr(key, cur, ok)
	e.attrs.Set(key, value)
}

// RemoveAttribute removes an attribute if it is set.
func (t *Tree) RemoveAttribute(id ID, key string) {
	e := t.lookup("RemoveAttribute", id)
	if e == nil {
		return
	}
	cur, ok := e.attrs.AtTry(key)
	if !ok {
		return
	}
	t.track(e).rememberAttr(key, cur, true)
	e.attrs.DeleteByKey(key)
}

// SetStyle sets a style property. Setting the current value is a no-op.
func (t *Tree) SetStyle(id ID, key, value string) {
	e := t.lookup("SetStyle", id)
	if e == nil {
		return
	}
	cur, ok := e.styles.AtTry(key)
	if ok && cur == value {
		return
	}
	t.track(e).rememberStyle(key, cur, ok)
	e.styles.Set(key, value)
}

// RemoveStyle removes a style property if it is set.
func (t *Tree) RemoveStyle(id ID, key string) {
	e := t.lookup("RemoveStyle", id)
	if e == nil {
		return
	}
	cur, ok := e.styles.AtTry(key)
	if !ok {
		return
	}
	t.track(e).rememberStyle(key, cur, true)
	e.styles.DeleteByKey(key)
}

// DeleteElement removes an element and its subtree. Pending changes of the
// descendants are discarded; only the element itself is reported.
func (t *Tree) DeleteElement(id ID) {
	e := t.lookup("DeleteElement", id)
	if e == nil {
		return
	}
	tr := t.track(e)
	tr.deleted = true
	tr.level, tr.index = e.level, e.Index()
	t.detach(e)
	delete(t.elements, e.id)
	for _, c := range e.children {
		t.forget(c)
	}
}

// forget drops a descendant of a deleted element. A descendant moved into
// the subtree during this pass still sits elsewhere on the consumer side,
// so it is reported as deleted on its own.
func (t *Tree) forget(e *Element) {
	delete(t.elements, e.id)
	if tr, ok := t.trackers[e.id]; ok && tr.appended && !tr.created {
		tr.deleted = true
		tr.level, tr.index = e.level, e.Index()
	} else {
		delete(t.trackers, e.id)
	}
	for _, c := range e.children {
		t.forget(c)
	}
}

func (t *Tree) lookup(op string, id ID) *Element {
	e, ok := t.elements[id]
	if !ok {
		t.violation("%s: element %d does not exist", op, id)
		return nil
	}
	return e
}

func (t *Tree) violation(format string, args ...any) {
	msg := "svgdom: " + fmt.Sprintf(format, args...)
	if t.strict {
		panic(msg)
	}
	compose.Logger().Error(msg)
}

// ToSVGString renders every parentless element, in creation order.
func (t *Tree) ToSVGString() string {
	var sb strings.Builder
	for _, r := range t.roots {
		write(&sb, r)
	}
	return sb.String()
}

func write(sb *strings.Builder, e *Element) {
	markup.Start(sb, e.tag, &e.attrs, &e.styles, len(e.children) == 0)
	if len(e.children) == 0 {
		return
	}
	for _, c := range e.children {
		write(sb, c)
	}
	markup.End(sb, e.tag)
}
