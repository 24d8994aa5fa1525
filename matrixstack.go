package glitter

// maxSpareFrames caps how many unused frames the stack keeps above its depth.
const maxSpareFrames = 10

// Matrix4Stack is a MutableMatrix4 with a save/restore stack. The zero value
// is not usable; create one with NewMatrix4Stack.
type Matrix4Stack struct {
	MutableMatrix4
	frames []Matrix4
	depth  int
}

// NewMatrix4Stack returns a stack whose current matrix is the identity.
func NewMatrix4Stack() *Matrix4Stack {
	s := &Matrix4Stack{}
	s.SetIdentity()
	return s
}

// Depth returns the number of saved states.
func (s *Matrix4Stack) Depth() int {
	return s.depth
}

// Push saves the current matrix.
func (s *Matrix4Stack) Push() {
	if s.depth == len(s.frames) {
		s.frames = append(s.frames, Matrix4{})
	}
	s.frames[s.depth] = s.Frozen()
	s.depth++
}

// Pop restores the most recently pushed matrix.
func (s *Matrix4Stack) Pop() error {
	if s.depth == 0 {
		return ErrStackUnderflow
	}
	s.depth--
	s.Set(s.frames[s.depth])
	if len(s.frames)-s.depth > maxSpareFrames {
		s.frames = s.frames[:len(s.frames)-1]
	}
	return nil
}

// AssertDepth returns an *UnevenStackError when the depth differs from
// expected. message may be empty.
//
//	depth := stack.Depth()
//	thing.Render(stack)
//	if err := stack.AssertDepth(depth, "thing.Render"); err != nil { ... }
func (s *Matrix4Stack) AssertDepth(expected int, message string) error {
	if s.depth == expected {
		return nil
	}
	return &UnevenStackError{Message: message, Expected: expected, Actual: s.depth}
}

// Unwind pops until the depth is at most target. Used to recover after an
// uneven render pass.
func (s *Matrix4Stack) Unwind(target int) {
	for s.depth > target {
		_ = s.Pop()
	}
}
