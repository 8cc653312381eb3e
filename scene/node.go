package scene

import "github.com/gogpu/compose"

// Versions holds the store clock at the last write to each node component.
type Versions struct {
	Shape      uint64 // shape kind or parameters
	Size       uint64
	Transform  uint64 // position or rotation
	Appearance uint64 // visibility or opacity
	Children   uint64 // membership or order of Children
	Styles     uint64 // membership or order of Styles
	Parent     uint64
}

// Node is a design node.
type Node struct {
	ID    NodeID
	Name  string
	Shape Shape

	// X and Y place the node's top-left corner in its parent's space.
	X, Y float64
	// Rotation is in degrees, clockwise around the node center.
	Rotation float64
	Size     compose.Size

	Visible bool
	Opacity float64

	// Parent is the zero NodeID for top-level nodes.
	Parent NodeID
	// Children are in scene order: index 0 is the topmost.
	Children []NodeID
	Styles   []StyleID

	Versions Versions

	deleted bool
}

// Kind returns the kind of the node's shape.
func (n *Node) Kind() Kind {
	return n.Shape.Kind()
}

// Transform returns the node's placement in its parent's space.
func (n *Node) Transform() compose.Matrix {
	return compose.NodeTransform(n.X, n.Y, n.Rotation, n.Size)
}

// Deleted reports whether the node has been marked for deletion.
func (n *Node) Deleted() bool {
	return n.deleted
}

// ChildIndex returns the position of child in n.Children, or -1.
func (n *Node) ChildIndex(child NodeID) int {
	return indexOf(n.Children, child)
}

func indexOf[T comparable](list []T, v T) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return -1
}

func insertAt[T any](list []T, i int, v T) []T {
	if i < 0 || i > len(list) {
		i = len(list)
	}
	list = append(list, v)
	copy(list[i+1:], list[i:])
	list[i] = v
	return list
}

func removeValue[T comparable](list []T, v T) []T {
	if i := indexOf(list, v); i >= 0 {
		return append(list[:i], list[i+1:]...)
	}
	return list
}
