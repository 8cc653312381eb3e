package scene

import "fmt"

// Ref is a generational arena index. The zero Ref never resolves.
type Ref struct {
	Index uint32
	Gen   uint32
}

// IsZero reports whether r is the zero Ref.
func (r Ref) IsZero() bool {
	return r.Gen == 0
}

// String formats r as "<index>v<generation>".
func (r Ref) String() string {
	return fmt.Sprintf("%dv%d", r.Index, r.Gen)
}

// NodeID identifies a node. The zero NodeID denotes the scene root.
type NodeID struct{ Ref }

// StyleID identifies a style.
type StyleID struct{ Ref }

// PaintID identifies a paint.
type PaintID struct{ Ref }

type slotState uint8

const (
	slotFree slotState = iota
	slotReserved
	slotLive
	slotMarked
)

type slot[T any] struct {
	gen   uint32
	state slotState
	val   T
}

// arena stores values addressed by generational refs. Freed indices are
// reused with a bumped generation, so refs to freed values go stale.
type arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

func (a *arena[T]) reserve() Ref {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, slot[T]{})
		idx = uint32(len(a.slots) - 1)
	}
	s := &a.slots[idx]
	s.gen++
	s.state = slotReserved
	return Ref{Index: idx, Gen: s.gen}
}

func (a *arena[T]) slot(r Ref) *slot[T] {
	if r.Gen == 0 || int(r.Index) >= len(a.slots) {
		return nil
	}
	s := &a.slots[r.Index]
	if s.gen != r.Gen || s.state == slotFree {
		return nil
	}
	return s
}

func (a *arena[T]) state(r Ref) slotState {
	if s := a.slot(r); s != nil {
		return s.state
	}
	return slotFree
}

// fill turns a reserved slot into a live one.
func (a *arena[T]) fill(r Ref, v T) bool {
	s := a.slot(r)
	if s == nil || s.state != slotReserved {
		return false
	}
	s.val = v
	s.state = slotLive
	a.live++
	return true
}

// get returns live values only.
func (a *arena[T]) get(r Ref) (T, bool) {
	s := a.slot(r)
	if s == nil || s.state != slotLive {
		var zero T
		return zero, false
	}
	return s.val, true
}

// peek returns live and marked values.
func (a *arena[T]) peek(r Ref) (T, bool) {
	s := a.slot(r)
	if s == nil || (s.state != slotLive && s.state != slotMarked) {
		var zero T
		return zero, false
	}
	return s.val, true
}

func (a *arena[T]) mark(r Ref) bool {
	s := a.slot(r)
	if s == nil || s.state != slotLive {
		return false
	}
	s.state = slotMarked
	return true
}

// sweep frees every marked slot and returns how many were freed.
func (a *arena[T]) sweep() int {
	n := 0
	for i := range a.slots {
		s := &a.slots[i]
		if s.state != slotMarked {
			continue
		}
		var zero T
		s.val = zero
		s.state = slotFree
		a.free = append(a.free, uint32(i))
		a.live--
		n++
	}
	return n
}
