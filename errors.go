package glitter

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrSingularMatrix is returned when inverting a matrix whose determinant
	// magnitude is below InvertEpsilon.
	ErrSingularMatrix = errors.New("glitter: cannot invert a matrix with a zero determinant")
	// ErrZeroLength is returned when normalizing a vector shorter than Epsilon.
	ErrZeroLength = errors.New("glitter: cannot normalize a zero-length vector")
	// ErrStackUnderflow is returned by Matrix4Stack.Pop on an empty stack.
	ErrStackUnderflow = errors.New("glitter: tried to pop off an empty matrix stack")
	// ErrUnrelatedSpaces matches every *UnrelatedSpacesError.
	ErrUnrelatedSpaces = errors.New("glitter: unrelated coordinate spaces")
	// ErrBindingSize matches every *BindingSizeError.
	ErrBindingSize = errors.New("glitter: binding size mismatch")
	// ErrConcurrentModification is returned when the live particle collection
	// is structurally modified while it is being iterated.
	ErrConcurrentModification = errors.New("glitter: particle collection modified during iteration")
	// ErrSystemFull is returned by AddParticle when MaxParticles is reached.
	ErrSystemFull = errors.New("glitter: particle system is full")
)

// UnrelatedSpacesError reports a conversion between two coordinate spaces
// that share no common ancestor.
type UnrelatedSpacesError struct {
	A, B CoordinateSpace
}

func (e *UnrelatedSpacesError) Error() string {
	return fmt.Sprintf("glitter: unrelated coordinate spaces %s and %s", spaceLabel(e.A), spaceLabel(e.B))
}

// Is lets errors.Is match ErrUnrelatedSpaces.
func (e *UnrelatedSpacesError) Is(target error) bool {
	return target == ErrUnrelatedSpaces
}

// BindingSizeError reports a binding whose declared size does not match what
// a module requires.
type BindingSizeError struct {
	Name     string
	Expected int
	Actual   int
}

func (e *BindingSizeError) Error() string {
	return fmt.Sprintf("glitter: binding %q has size %d, expected %d", e.Name, e.Actual, e.Expected)
}

// Is lets errors.Is match ErrBindingSize.
func (e *BindingSizeError) Is(target error) bool {
	return target == ErrBindingSize
}

// UnevenStackError reports mismatched pushes and pops on a Matrix4Stack.
type UnevenStackError struct {
	Message  string
	Expected int
	Actual   int
}

func (e *UnevenStackError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("glitter: expected a stack depth of %d, but the stack depth was %d", e.Expected, e.Actual)
	}
	return fmt.Sprintf("glitter: %s (expected %d, actually %d)", e.Message, e.Expected, e.Actual)
}

func spaceLabel(s CoordinateSpace) string {
	if s == nil {
		return "<nil>"
	}
	if str, ok := s.(fmt.Stringer); ok {
		return str.String()
	}
	return fmt.Sprintf("%T(%p)", s, s)
}
