package change

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"cogentcore.org/core/base/keylist"

	"github.com/gogpu/compose/internal/markup"
)

var (
	// ErrOrdering is returned by Replica when a record references an
	// element that does not exist at that point of the batch.
	ErrOrdering = errors.New("change: ordering violation")

	// ErrSequenceGap is returned by Replica when a batch does not follow
	// the previous one.
	ErrSequenceGap = errors.New("change: sequence gap")
)

// ReplicaElement is an element of a Replica.
type ReplicaElement struct {
	Tag      string
	Attrs    keylist.List[string, string]
	Styles   keylist.List[string, string]
	Parent   ElementID
	Children []ElementID
}

func (e *ReplicaElement) clone() *ReplicaElement {
	c := &ReplicaElement{Tag: e.Tag, Parent: e.Parent, Children: slices.Clone(e.Children)}
	copyList(&c.Attrs, &e.Attrs)
	copyList(&c.Styles, &e.Styles)
	return c
}

func copyList(dst, src *keylist.List[string, string]) {
	for i, k := range src.Keys {
		dst.Set(k, src.Values[i])
	}
}

// Replica applies batches to an in-memory element mirror, the way a DOM
// patcher would, and rejects any batch it cannot apply in order. A
// rejected batch leaves the mirror unchanged.
type Replica struct {
	mu       sync.Mutex
	elements map[ElementID]*ReplicaElement
	order    []ElementID // creation order, for roots
	seq      uint64
	closed   bool
}

// NewReplica creates an empty replica.
func NewReplica() *Replica {
	return &Replica{elements: make(map[ElementID]*ReplicaElement)}
}

func (r *Replica) Send(_ context.Context, batch Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrSinkClosed
	}
	if r.seq != 0 && batch.Seq != r.seq+1 {
		return fmt.Errorf("%w: got %d after %d", ErrSequenceGap, batch.Seq, r.seq)
	}

	work := &Replica{elements: make(map[ElementID]*ReplicaElement, len(r.elements)), order: slices.Clone(r.order)}
	for id, e := range r.elements {
		work.elements[id] = e.clone()
	}
	for i, rec := range batch.Records {
		if err := work.apply(rec); err != nil {
			return fmt.Errorf("change: batch %d record %d %s: %w", batch.Seq, i, rec, err)
		}
	}
	r.elements, r.order, r.seq = work.elements, work.order, batch.Seq
	return nil
}

func (r *Replica) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *Replica) apply(rec Record) error {
	if rec.Kind == ElementCreated {
		if _, ok := r.elements[rec.Element]; ok {
			return fmt.Errorf("%w: element %d created twice", ErrOrdering, rec.Element)
		}
		e := &ReplicaElement{Tag: rec.Tag}
		for _, a := range rec.Attrs {
			e.Attrs.Set(a.Key, a.Value)
		}
		for _, s := range rec.Styles {
			e.Styles.Set(s.Key, s.Value)
		}
		r.elements[rec.Element] = e
		r.order = append(r.order, rec.Element)
		return nil
	}

	e, ok := r.elements[rec.Element]
	if !ok {
		if rec.Kind == ElementDeleted {
			return nil
		}
		return fmt.Errorf("%w: unknown element %d", ErrOrdering, rec.Element)
	}
	switch rec.Kind {
	case ElementDeleted:
		r.detach(rec.Element, e)
		r.remove(rec.Element)
	case ElementAppended:
		p, ok := r.elements[rec.Parent]
		if !ok {
			return fmt.Errorf("%w: append to unknown parent %d", ErrOrdering, rec.Parent)
		}
		for a := rec.Parent; a != 0; a = r.elements[a].Parent {
			if a == rec.Element {
				return fmt.Errorf("%w: element %d appended into its own subtree", ErrOrdering, rec.Element)
			}
		}
		r.detach(rec.Element, e)
		e.Parent = rec.Parent
		p.Children = append(p.Children, rec.Element)
	case AttributeUpdated:
		e.Attrs.Set(rec.Key, rec.Value)
	case AttributeRemoved:
		if !e.Attrs.DeleteByKey(rec.Key) {
			return fmt.Errorf("%w: element %d has no attribute %q", ErrOrdering, rec.Element, rec.Key)
		}
	case StyleUpdated:
		e.Styles.Set(rec.Key, rec.Value)
	case StyleRemoved:
		if !e.Styles.DeleteByKey(rec.Key) {
			return fmt.Errorf("%w: element %d has no style %q", ErrOrdering, rec.Element, rec.Key)
		}
	case ChildrenReordered:
		listed := make(map[ElementID]bool, len(rec.Children))
		for _, c := range rec.Children {
			if !slices.Contains(e.Children, c) {
				return fmt.Errorf("%w: %d is not a child of %d", ErrOrdering, c, rec.Element)
			}
			listed[c] = true
		}
		rest := slices.DeleteFunc(slices.Clone(e.Children), func(c ElementID) bool { return listed[c] })
		e.Children = append(rest, rec.Children...)
	default:
		return fmt.Errorf("change: unknown record kind %d", rec.Kind)
	}
	return nil
}

func (r *Replica) detach(id ElementID, e *ReplicaElement) {
	if p, ok := r.elements[e.Parent]; ok {
		p.Children = slices.DeleteFunc(p.Children, func(c ElementID) bool { return c == id })
	}
	e.Parent = 0
}

func (r *Replica) remove(id ElementID) {
	e := r.elements[id]
	for _, c := range e.Children {
		r.remove(c)
	}
	delete(r.elements, id)
	r.order = slices.DeleteFunc(r.order, func(o ElementID) bool { return o == id })
}

// Seq returns the sequence number of the last applied batch.
func (r *Replica) Seq() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}

// Len returns the number of elements in the mirror.
func (r *Replica) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.elements)
}

// Element returns a copy of an element of the mirror.
func (r *Replica) Element(id ElementID) (ReplicaElement, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.elements[id]
	if !ok {
		return ReplicaElement{}, false
	}
	return *e.clone(), true
}

// IDs returns the ids of all elements in ascending order.
func (r *Replica) IDs() []ElementID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Sorted(maps.Keys(r.elements))
}

// SVG renders every parentless element, in creation order.
func (r *Replica) SVG() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sb strings.Builder
	for _, id := range r.order {
		if r.elements[id].Parent == 0 {
			r.write(&sb, id)
		}
	}
	return sb.String()
}

func (r *Replica) write(sb *strings.Builder, id ElementID) {
	e := r.elements[id]
	markup.Start(sb, e.Tag, &e.Attrs, &e.Styles, len(e.Children) == 0)
	if len(e.Children) == 0 {
		return
	}
	for _, c := range e.Children {
		r.write(sb, c)
	}
	markup.End(sb, e.Tag)
}
