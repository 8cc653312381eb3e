package scene

import (
	"errors"
	"fmt"
)

var (
	// ErrStaleReference is returned when a mutation names an entity that
	// does not exist, was deleted, or was never reserved.
	ErrStaleReference = errors.New("scene: stale reference")

	// ErrInvalidMutation is returned when a mutation is well-addressed but
	// cannot be applied, e.g. a child added to a rectangle.
	ErrInvalidMutation = errors.New("scene: invalid mutation")
)

// StaleReferenceError reports the mutation and the id that failed to
// resolve.
type StaleReferenceError struct {
	Op  string
	Ref Ref
}

func (e *StaleReferenceError) Error() string {
	return fmt.Sprintf("scene: %s: stale reference %s", e.Op, e.Ref)
}

// Unwrap returns ErrStaleReference.
func (e *StaleReferenceError) Unwrap() error {
	return ErrStaleReference
}

func stale(op string, r Ref) error {
	return &StaleReferenceError{Op: op, Ref: r}
}

func invalid(op, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidMutation, op, fmt.Sprintf(format, args...))
}
