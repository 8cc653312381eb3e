package svgdom

import (
	"slices"

	"cogentcore.org/core/base/keylist"

	"github.com/gogpu/compose/change"
)

// ID identifies an element. Ids are never reused.
type ID = change.ElementID

// Element is one SVG element. Elements are owned by their Tree and are
// read-only outside of it.
type Element struct {
	id       ID
	tag      string
	attrs    keylist.List[string, string]
	styles   keylist.List[string, string]
	parent   *Element
	children []*Element
	level    int
}

// ID returns the element id.
func (e *Element) ID() ID { return e.id }

// Tag returns the element name.
func (e *Element) Tag() string { return e.tag }

// Level returns the depth of the element; parentless elements are at 0.
func (e *Element) Level() int { return e.level }

// Attr returns the value of an attribute.
func (e *Element) Attr(key string) (string, bool) { return e.attrs.AtTry(key) }

// Style returns the value of a style property.
func (e *Element) Style(key string) (string, bool) { return e.styles.AtTry(key) }

// Attrs returns the attributes in insertion order.
func (e *Element) Attrs() []change.Attr { return pairs(&e.attrs) }

// Styles returns the style properties in insertion order.
func (e *Element) Styles() []change.Attr { return pairs(&e.styles) }

// Parent returns the parent id, or 0 for a parentless element.
func (e *Element) Parent() ID {
	if e.parent == nil {
		return 0
	}
	return e.parent.id
}

// Children returns the child ids in document order.
func (e *Element) Children() []ID {
	ids := make([]ID, len(e.children))
	for i, c := range e.children {
		ids[i] = c.id
	}
	return ids
}

// Index returns the position of the element among its siblings counted
// from the last one: the topmost child has index 0.
func (e *Element) Index() int {
	if e.parent == nil {
		return 0
	}
	siblings := e.parent.children
	return len(siblings) - 1 - slices.Index(siblings, e)
}

func (e *Element) isAncestorOf(o *Element) bool {
	for p := o; p != nil; p = p.parent {
		if p == e {
			return true
		}
	}
	return false
}

func (e *Element) setLevel(level int) {
	e.level = level
	for _, c := range e.children {
		c.setLevel(level + 1)
	}
}

func pairs(l *keylist.List[string, string]) []change.Attr {
	if l.Len() == 0 {
		return nil
	}
	out := make([]change.Attr, l.Len())
	for i, k := range l.Keys {
		out[i] = change.Attr{Key: k, Value: l.Values[i]}
	}
	return out
}
