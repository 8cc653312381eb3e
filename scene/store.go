package scene

// Store owns all nodes, styles and paints. It is not safe for concurrent
// use; the engine that owns it serializes access.
type Store struct {
	nodes  arena[*Node]
	styles arena[*Style]
	paints arena[*Paint]

	roots        []NodeID
	rootsVersion uint64

	clock      uint64
	touched    []NodeID
	touchedSet map[NodeID]struct{}
}

// New creates an empty store.
func New() *Store {
	return &Store{touchedSet: make(map[NodeID]struct{})}
}

// Reserve allocates a node id for a later CreateNode.
func (s *Store) Reserve() NodeID {
	return NodeID{s.nodes.reserve()}
}

// ReserveStyle allocates a style id for a later SetStyle.
func (s *Store) ReserveStyle() StyleID {
	return StyleID{s.styles.reserve()}
}

// Node returns the node with the given id. Nodes marked for deletion are
// still returned until the next Sweep; check Deleted.
func (s *Store) Node(id NodeID) (*Node, bool) {
	return s.nodes.peek(id.Ref)
}

// Style returns the style with the given id, including styles marked for
// deletion until the next Sweep.
func (s *Store) Style(id StyleID) (*Style, bool) {
	return s.styles.peek(id.Ref)
}

// Paint returns the paint with the given id, including paints marked for
// deletion until the next Sweep.
func (s *Store) Paint(id PaintID) (*Paint, bool) {
	return s.paints.peek(id.Ref)
}

// Roots returns the top-level nodes in scene order (index 0 is topmost).
func (s *Store) Roots() []NodeID {
	return s.roots
}

// RootsVersion is the store clock at the last change to Roots.
func (s *Store) RootsVersion() uint64 {
	return s.rootsVersion
}

// Children returns the children of parent, or the roots for the zero id.
func (s *Store) Children(parent NodeID) []NodeID {
	if parent.IsZero() {
		return s.roots
	}
	if n, ok := s.nodes.peek(parent.Ref); ok {
		return n.Children
	}
	return nil
}

// Len returns the number of live nodes, including nodes marked for
// deletion but not yet swept.
func (s *Store) Len() int {
	return s.nodes.live
}

// Walk visits the live nodes depth-first in scene order, top-level nodes
// first. fn returns false to skip a node's children.
func (s *Store) Walk(fn func(n *Node, depth int) bool) {
	var visit func(ids []NodeID, depth int)
	visit = func(ids []NodeID, depth int) {
		for _, id := range ids {
			n, ok := s.nodes.get(id.Ref)
			if !ok {
				continue
			}
			if fn(n, depth) {
				visit(n.Children, depth+1)
			}
		}
	}
	visit(s.roots, 0)
}

// TakeTouched returns the nodes written since the previous call, in
// first-touch order, and resets the list.
func (s *Store) TakeTouched() []NodeID {
	out := s.touched
	s.touched = nil
	clear(s.touchedSet)
	return out
}

// Sweep frees every entity marked for deletion and returns the number of
// nodes freed. Ids of freed entities go stale.
func (s *Store) Sweep() int {
	s.paints.sweep()
	s.styles.sweep()
	return s.nodes.sweep()
}

func (s *Store) tick() uint64 {
	s.clock++
	return s.clock
}

func (s *Store) touch(id NodeID) {
	if id.IsZero() {
		return
	}
	if _, ok := s.touchedSet[id]; ok {
		return
	}
	s.touchedSet[id] = struct{}{}
	s.touched = append(s.touched, id)
}

func (s *Store) node(op string, id NodeID) (*Node, error) {
	n, ok := s.nodes.get(id.Ref)
	if !ok {
		return nil, stale(op, id.Ref)
	}
	return n, nil
}

func (s *Store) style(op string, id StyleID) (*Style, error) {
	st, ok := s.styles.get(id.Ref)
	if !ok {
		return nil, stale(op, id.Ref)
	}
	return st, nil
}

// attach inserts id into parent's children (or the roots) at index.
func (s *Store) attach(parent NodeID, id NodeID, index int, v uint64) {
	if parent.IsZero() {
		s.roots = insertAt(s.roots, index, id)
		s.rootsVersion = v
		return
	}
	p, _ := s.nodes.get(parent.Ref)
	p.Children = insertAt(p.Children, index, id)
	p.Versions.Children = v
	s.touch(parent)
}

func (s *Store) detach(n *Node, v uint64) {
	if n.Parent.IsZero() {
		s.roots = removeValue(s.roots, n.ID)
		s.rootsVersion = v
		return
	}
	if p, ok := s.nodes.peek(n.Parent.Ref); ok {
		p.Children = removeValue(p.Children, n.ID)
		p.Versions.Children = v
		s.touch(n.Parent)
	}
}

// markSubtree is the mark phase of deletion: a breadth-first walk that
// flags the subtree rooted at root together with its styles and paints.
func (s *Store) markSubtree(root *Node) {
	queue := []NodeID{root.ID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n, ok := s.nodes.get(id.Ref)
		if !ok {
			continue
		}
		n.deleted = true
		s.nodes.mark(id.Ref)
		for _, st := range n.Styles {
			s.markStyle(st)
		}
		queue = append(queue, n.Children...)
	}
}

func (s *Store) markStyle(id StyleID) {
	st, ok := s.styles.get(id.Ref)
	if !ok {
		return
	}
	s.paints.mark(st.Paint.Ref)
	s.styles.mark(id.Ref)
}

// isAncestor reports whether a is an ancestor of (or equal to) b.
func (s *Store) isAncestor(a, b NodeID) bool {
	for cur := b; !cur.IsZero(); {
		if cur == a {
			return true
		}
		n, ok := s.nodes.peek(cur.Ref)
		if !ok {
			return false
		}
		cur = n.Parent
	}
	return false
}
