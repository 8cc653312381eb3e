package scene

import (
	"math"

	"github.com/gogpu/compose"
)

// Mutation is a typed write to the store. The set of mutations is closed.
type Mutation interface {
	// Op returns the mutation name used in errors and logs.
	Op() string
	apply(s *Store) error
}

// Apply applies m. On error the store is unchanged.
func (s *Store) Apply(m Mutation) error {
	return m.apply(s)
}

// Ptr returns a pointer to v, for the optional fields of SetStyle.
func Ptr[T any](v T) *T {
	return &v
}

// CreateNode makes the reserved id live. The node starts visible and
// opaque, and is inserted into Parent's children at Index (0 is topmost;
// a negative or out-of-range Index appends it at the bottom).
type CreateNode struct {
	ID       NodeID
	Parent   NodeID
	Index    int
	Name     string
	Shape    Shape
	X, Y     float64
	Rotation float64
	Size     compose.Size
}

// DeleteNode deletes a node with its descendants, styles and paints.
type DeleteNode struct {
	ID NodeID
}

// ResizeNode sets the size of a node. Negative components are clamped to
// zero.
type ResizeNode struct {
	ID   NodeID
	Size compose.Size
}

// MoveNode translates a node by (DX, DY).
type MoveNode struct {
	ID     NodeID
	DX, DY float64
}

// SetRotation sets a node's rotation in degrees.
type SetRotation struct {
	ID      NodeID
	Degrees float64
}

// SetShape replaces a node's shape parameters. A container with children
// cannot become a leaf.
type SetShape struct {
	ID    NodeID
	Shape Shape
}

// SetVisible shows or hides a node.
type SetVisible struct {
	ID      NodeID
	Visible bool
}

// SetOpacity sets a node's opacity, clamped to [0, 1].
type SetOpacity struct {
	ID      NodeID
	Opacity float64
}

// ReparentNode moves a node under Parent at Index (see CreateNode).
type ReparentNode struct {
	ID     NodeID
	Parent NodeID
	Index  int
}

// SetText replaces the content of a text node.
type SetText struct {
	ID      NodeID
	Content string
}

// SetStyle creates or updates a style. If ID is reserved, a style of Kind
// is created on Node, appended on top of its existing styles, with
// defaults for every nil field: solid black paint, width 1, visible,
// opacity 1. If ID is live, non-nil fields are written and Node and Kind
// are ignored.
type SetStyle struct {
	ID   StyleID
	Node NodeID
	Kind StyleKind

	Paint   *Paint
	Width   *float64
	Join    *compose.LineJoin
	Cap     *compose.LineCap
	Shadow  *Shadow
	Visible *bool
	Opacity *float64
}

// DeleteStyle removes a style and its paint from their node.
type DeleteStyle struct {
	ID StyleID
}

func (CreateNode) Op() string   { return "CreateNode" }
func (DeleteNode) Op() string   { return "DeleteNode" }
func (ResizeNode) Op() string   { return "ResizeNode" }
func (MoveNode) Op() string     { return "MoveNode" }
func (SetRotation) Op() string  { return "SetRotation" }
func (SetShape) Op() string     { return "SetShape" }
func (SetVisible) Op() string   { return "SetVisible" }
func (SetOpacity) Op() string   { return "SetOpacity" }
func (ReparentNode) Op() string { return "ReparentNode" }
func (SetText) Op() string      { return "SetText" }
func (SetStyle) Op() string     { return "SetStyle" }
func (DeleteStyle) Op() string  { return "DeleteStyle" }

func (m CreateNode) apply(s *Store) error {
	if s.nodes.state(m.ID.Ref) != slotReserved {
		return stale(m.Op(), m.ID.Ref)
	}
	if m.Shape == nil {
		return invalid(m.Op(), "node %s has no shape", m.ID)
	}
	if err := s.checkParent(m.Op(), m.Parent); err != nil {
		return err
	}

	v := s.tick()
	size := m.Size.Clamp()
	shape, _ := withBase(cloneShape(m.Shape), size)
	n := &Node{
		ID:       m.ID,
		Name:     m.Name,
		Shape:    shape,
		X:        m.X,
		Y:        m.Y,
		Rotation: m.Rotation,
		Size:     size,
		Visible:  true,
		Opacity:  1,
		Parent:   m.Parent,
		Versions: Versions{
			Shape: v, Size: v, Transform: v, Appearance: v,
			Children: v, Styles: v, Parent: v,
		},
	}
	s.nodes.fill(m.ID.Ref, n)
	s.attach(m.Parent, m.ID, m.Index, v)
	s.touch(m.ID)
	return nil
}

func (m DeleteNode) apply(s *Store) error {
	n, err := s.node(m.Op(), m.ID)
	if err != nil {
		return err
	}
	s.detach(n, s.tick())
	s.markSubtree(n)
	s.touch(m.ID)
	return nil
}

func (m ResizeNode) apply(s *Store) error {
	n, err := s.node(m.Op(), m.ID)
	if err != nil {
		return err
	}
	size := m.Size.Clamp()
	if size == n.Size {
		return nil
	}
	v := s.tick()
	n.Size = size
	n.Versions.Size = v
	if shape, changed := withBase(n.Shape, size); changed {
		n.Shape = shape
		n.Versions.Shape = v
	}
	s.touch(m.ID)
	return nil
}

func (m MoveNode) apply(s *Store) error {
	n, err := s.node(m.Op(), m.ID)
	if err != nil {
		return err
	}
	if m.DX == 0 && m.DY == 0 {
		return nil
	}
	n.X += m.DX
	n.Y += m.DY
	n.Versions.Transform = s.tick()
	s.touch(m.ID)
	return nil
}

func (m SetRotation) apply(s *Store) error {
	n, err := s.node(m.Op(), m.ID)
	if err != nil {
		return err
	}
	if math.IsNaN(m.Degrees) || math.IsInf(m.Degrees, 0) {
		return invalid(m.Op(), "rotation %v", m.Degrees)
	}
	if m.Degrees == n.Rotation {
		return nil
	}
	n.Rotation = m.Degrees
	n.Versions.Transform = s.tick()
	s.touch(m.ID)
	return nil
}

func (m SetShape) apply(s *Store) error {
	n, err := s.node(m.Op(), m.ID)
	if err != nil {
		return err
	}
	if m.Shape == nil {
		return invalid(m.Op(), "node %s: nil shape", m.ID)
	}
	if len(n.Children) > 0 && !m.Shape.Kind().IsContainer() {
		return invalid(m.Op(), "node %s has children and cannot become a %s", m.ID, m.Shape.Kind())
	}
	n.Shape, _ = withBase(cloneShape(m.Shape), n.Size)
	n.Versions.Shape = s.tick()
	s.touch(m.ID)
	return nil
}

func (m SetVisible) apply(s *Store) error {
	n, err := s.node(m.Op(), m.ID)
	if err != nil {
		return err
	}
	if n.Visible == m.Visible {
		return nil
	}
	n.Visible = m.Visible
	n.Versions.Appearance = s.tick()
	s.touch(m.ID)
	return nil
}

func (m SetOpacity) apply(s *Store) error {
	n, err := s.node(m.Op(), m.ID)
	if err != nil {
		return err
	}
	if math.IsNaN(m.Opacity) {
		return invalid(m.Op(), "opacity NaN")
	}
	o := math.Max(0, math.Min(1, m.Opacity))
	if o == n.Opacity {
		return nil
	}
	n.Opacity = o
	n.Versions.Appearance = s.tick()
	s.touch(m.ID)
	return nil
}

func (m ReparentNode) apply(s *Store) error {
	n, err := s.node(m.Op(), m.ID)
	if err != nil {
		return err
	}
	if err := s.checkParent(m.Op(), m.Parent); err != nil {
		return err
	}
	if !m.Parent.IsZero() && s.isAncestor(m.ID, m.Parent) {
		return invalid(m.Op(), "node %s cannot move under its own descendant %s", m.ID, m.Parent)
	}
	v := s.tick()
	s.detach(n, v)
	n.Parent = m.Parent
	n.Versions.Parent = v
	s.attach(m.Parent, m.ID, m.Index, v)
	s.touch(m.ID)
	return nil
}

func (m SetText) apply(s *Store) error {
	n, err := s.node(m.Op(), m.ID)
	if err != nil {
		return err
	}
	t, ok := n.Shape.(Text)
	if !ok {
		return invalid(m.Op(), "node %s is a %s", m.ID, n.Kind())
	}
	if t.Content == m.Content {
		return nil
	}
	t.Content = m.Content
	n.Shape = t
	n.Versions.Shape = s.tick()
	s.touch(m.ID)
	return nil
}

func (m SetStyle) apply(s *Store) error {
	switch s.styles.state(m.ID.Ref) {
	case slotReserved:
		return m.create(s)
	case slotLive:
		return m.update(s)
	}
	return stale(m.Op(), m.ID.Ref)
}

func (m SetStyle) create(s *Store) error {
	n, err := s.node(m.Op(), m.Node)
	if err != nil {
		return err
	}
	st := &Style{
		ID:      m.ID,
		Node:    m.Node,
		Kind:    m.Kind,
		Width:   1,
		Visible: true,
		Opacity: 1,
	}
	paint := Solid(Black)
	if m.Paint != nil {
		paint = m.Paint.value()
	}
	if err := m.patch(st, paint); err != nil {
		return err
	}

	v := s.tick()
	pid := PaintID{s.paints.reserve()}
	paint.ID, paint.Style, paint.Version = pid, m.ID, v
	s.paints.fill(pid.Ref, &paint)
	st.Paint = pid
	st.Version = v
	s.styles.fill(m.ID.Ref, st)

	n.Styles = append(n.Styles, m.ID)
	n.Versions.Styles = v
	s.touch(m.Node)
	return nil
}

func (m SetStyle) update(s *Store) error {
	st, err := s.style(m.Op(), m.ID)
	if err != nil {
		return err
	}
	p, ok := s.paints.get(st.Paint.Ref)
	if !ok {
		return stale(m.Op(), st.Paint.Ref)
	}
	paint := *p
	if m.Paint != nil {
		paint = m.Paint.value()
	}
	next := *st
	if err := m.patch(&next, paint); err != nil {
		return err
	}

	v := s.tick()
	next.Version = v
	*st = next
	if m.Paint != nil {
		paint.ID, paint.Style, paint.Version = p.ID, p.Style, v
		*p = paint
	}
	s.touch(st.Node)
	return nil
}

// patch writes the non-nil fields into st and validates the result.
func (m SetStyle) patch(st *Style, paint Paint) error {
	if m.Width != nil {
		st.Width = *m.Width
	}
	if m.Join != nil {
		st.Join = *m.Join
	}
	if m.Cap != nil {
		st.Cap = *m.Cap
	}
	if m.Shadow != nil {
		st.Shadow = *m.Shadow
	}
	if m.Visible != nil {
		st.Visible = *m.Visible
	}
	if m.Opacity != nil {
		st.Opacity = math.Max(0, math.Min(1, *m.Opacity))
	}

	switch {
	case st.Kind > StyleDropShadow:
		return invalid(m.Op(), "unknown style kind %d", st.Kind)
	case st.Width < 0 || math.IsNaN(st.Width):
		return invalid(m.Op(), "stroke width %v", st.Width)
	case st.Kind == StyleDropShadow && paint.Kind != PaintSolid:
		return invalid(m.Op(), "drop shadow needs a solid paint, got %s", paint.Kind)
	case st.Shadow.Blur < 0:
		return invalid(m.Op(), "shadow blur %v", st.Shadow.Blur)
	}
	return nil
}

func (m DeleteStyle) apply(s *Store) error {
	st, err := s.style(m.Op(), m.ID)
	if err != nil {
		return err
	}
	v := s.tick()
	if n, ok := s.nodes.peek(st.Node.Ref); ok {
		n.Styles = removeValue(n.Styles, m.ID)
		n.Versions.Styles = v
	}
	s.markStyle(m.ID)
	s.touch(st.Node)
	return nil
}

func (s *Store) checkParent(op string, parent NodeID) error {
	if parent.IsZero() {
		return nil
	}
	p, err := s.node(op, parent)
	if err != nil {
		return err
	}
	if !p.Kind().IsContainer() {
		return invalid(op, "parent %s is a %s, not a container", parent, p.Kind())
	}
	return nil
}

// withBase fills in the base size of a vector shape on first observation.
func withBase(shape Shape, size compose.Size) (Shape, bool) {
	if v, ok := shape.(Vector); ok && v.Base == (compose.Size{}) && size != (compose.Size{}) {
		v.Base = size
		return v, true
	}
	return shape, false
}
