package change

import (
	"fmt"
)

// ElementID identifies an element of the SVG element tree. Zero is never
// allocated.
type ElementID uint64

// Kind is the type of a change record.
type Kind uint8

const (
	// ElementCreated carries the tag and the full attribute and style
	// snapshot of a new element.
	ElementCreated Kind = iota + 1
	// ElementDeleted removes an element together with its subtree. It is
	// a no-op when the element is already gone.
	ElementDeleted
	// ElementAppended appends Element as the last child of Parent, moving
	// it if it already has a parent.
	ElementAppended
	// AttributeUpdated sets attribute Key to Value.
	AttributeUpdated
	// AttributeRemoved removes attribute Key.
	AttributeRemoved
	// StyleUpdated sets style property Key to Value.
	StyleUpdated
	// StyleRemoved removes style property Key.
	StyleRemoved
	// ChildrenReordered moves the listed children, in order, to the end
	// of Element's child list.
	ChildrenReordered
)

var kindNames = [...]string{
	ElementCreated:    "element_created",
	ElementDeleted:    "element_deleted",
	ElementAppended:   "element_appended",
	AttributeUpdated:  "attribute_updated",
	AttributeRemoved:  "attribute_removed",
	StyleUpdated:      "style_updated",
	StyleRemoved:      "style_removed",
	ChildrenReordered: "children_reordered",
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if int(k) >= len(kindNames) || kindNames[k] == "" {
		return nil, fmt.Errorf("change: unknown kind %d", uint8(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name != "" && name == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("change: unknown kind %q", b)
}

// Attr is a key/value pair of an element snapshot.
type Attr struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Record is one structural, attribute or style delta to one element.
type Record struct {
	Kind    Kind      `json:"kind"`
	Element ElementID `json:"element"`

	// Tag, Attrs and Styles are set on ElementCreated.
	Tag    string `json:"tag,omitempty"`
	Attrs  []Attr `json:"attrs,omitempty"`
	Styles []Attr `json:"styles,omitempty"`

	// Parent is set on ElementAppended.
	Parent ElementID `json:"parent,omitempty"`

	// Key and Value are set on attribute and style records; Value is empty
	// for removals.
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`

	// Children is set on ChildrenReordered.
	Children []ElementID `json:"children,omitempty"`

	// Level and Index are the position key used for ordering.
	Level int `json:"-"`
	Index int `json:"-"`
}

// String returns a compact description used in logs and test failures.
func (r Record) String() string {
	switch r.Kind {
	case ElementCreated:
		return fmt.Sprintf("%s(%d <%s>)", r.Kind, r.Element, r.Tag)
	case ElementAppended:
		return fmt.Sprintf("%s(%d -> %d)", r.Kind, r.Element, r.Parent)
	case AttributeUpdated, StyleUpdated:
		return fmt.Sprintf("%s(%d %s=%q)", r.Kind, r.Element, r.Key, r.Value)
	case AttributeRemoved, StyleRemoved:
		return fmt.Sprintf("%s(%d %s)", r.Kind, r.Element, r.Key)
	case ChildrenReordered:
		return fmt.Sprintf("%s(%d %v)", r.Kind, r.Element, r.Children)
	}
	return fmt.Sprintf("%s(%d)", r.Kind, r.Element)
}
