package glitter

import "math"

// Space is a concrete CoordinateSpace for nested layout. Its transform to the
// parent is built from its local properties and cached until a setter (or
// MarkDirty) invalidates it.
//
// Composition order:
//
//	Translate(-PivotX, -PivotY) -> Scale -> Skew -> Rotate -> Translate(X, Y)
type Space struct {
	Name string

	parent   CoordinateSpace
	children []*Space

	X, Y         float64
	ScaleX       float64
	ScaleY       float64
	Rotation     float64
	SkewX, SkewY float64
	PivotX       float64
	PivotY       float64

	transform Matrix3
	inverse   Matrix3
	dirty     bool
}

var _ CoordinateSpace = (*Space)(nil)

// NewSpace creates a root space with an identity transform.
func NewSpace(name string) *Space {
	return &Space{Name: name, ScaleX: 1, ScaleY: 1, dirty: true}
}

func (s *Space) String() string {
	return "Space(" + s.Name + ")"
}

// ParentSpace implements CoordinateSpace.
func (s *Space) ParentSpace() CoordinateSpace {
	return s.parent
}

// Transform implements CoordinateSpace.
func (s *Space) Transform() Matrix3 {
	s.refresh()
	return s.transform
}

// InverseTransform implements CoordinateSpace. It never fails: zero scales
// and degenerate skews collapse to zero instead of being inverted.
func (s *Space) InverseTransform() Matrix3 {
	s.refresh()
	return s.inverse
}

func (s *Space) refresh() {
	if !s.dirty {
		return
	}
	s.transform = computeLocalTransform(s)
	s.inverse = computeInverseTransform(s)
	s.dirty = false
}

// computeLocalTransform builds T(X,Y)·R·K·S·T(-pivot).
func computeLocalTransform(s *Space) Matrix3 {
	sin, cos := math.Sincos(s.Rotation)

	var tanSkewX, tanSkewY float64
	if s.SkewX != 0 {
		tanSkewX = math.Tan(s.SkewX)
	}
	if s.SkewY != 0 {
		tanSkewY = math.Tan(s.SkewY)
	}

	// After Scale * Translate(-pivot), then Skew:
	a := s.ScaleX
	b := tanSkewY * s.ScaleX
	c := tanSkewX * s.ScaleY
	d := s.ScaleY
	preTx := -s.PivotX*s.ScaleX - tanSkewX*s.PivotY*s.ScaleY
	preTy := -tanSkewY*s.PivotX*s.ScaleX - s.PivotY*s.ScaleY

	// After Rotate, then Translate(X, Y):
	return Matrix3FromRows(
		cos*a-sin*b, cos*c-sin*d, cos*preTx-sin*preTy+s.X,
		sin*a+cos*b, sin*c+cos*d, sin*preTx+cos*preTy+s.Y,
		0, 0, 1,
	)
}

// computeInverseTransform builds T(pivot)·S⁻¹·K⁻¹·R⁻¹·T(-X,-Y) from the
// individual inverse steps.
func computeInverseTransform(s *Space) Matrix3 {
	var tanSkewX, tanSkewY float64
	if s.SkewX != 0 {
		tanSkewX = math.Tan(s.SkewX)
	}
	if s.SkewY != 0 {
		tanSkewY = math.Tan(s.SkewY)
	}
	var skewInv Matrix3
	if det := 1 - tanSkewX*tanSkewY; math.Abs(det) >= InvertEpsilon {
		skewInv = Matrix3FromRows(
			1/det, -tanSkewX/det, 0,
			-tanSkewY/det, 1/det, 0,
			0, 0, 1,
		)
	} else {
		skewInv = Scaling3(0, 0)
	}

	var m MutableMatrix3
	m.SetIdentity()
	m.Translate(s.PivotX, s.PivotY)
	m.Scale(safeReciprocal(s.ScaleX), safeReciprocal(s.ScaleY))
	m.MulInPlace(skewInv)
	m.Rotate(-s.Rotation)
	m.Translate(-s.X, -s.Y)
	return m.Freeze()
}

// safeReciprocal returns 1/v, or 0 when v is 0.
func safeReciprocal(v float64) float64 {
	if v == 0 {
		return 0
	}
	return 1 / v
}

// --- Hierarchy ---

// AddChild attaches child to s, detaching it from any previous parent.
func (s *Space) AddChild(child *Space) {
	child.detach()
	child.parent = s
	s.children = append(s.children, child)
}

// RemoveChild detaches child from s. The child becomes a root until it is
// explicitly reparented.
func (s *Space) RemoveChild(child *Space) {
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// SetParent attaches s under an arbitrary CoordinateSpace, such as
// ScreenSpace. Passing nil makes s a root.
func (s *Space) SetParent(parent CoordinateSpace) {
	if p, ok := parent.(*Space); ok {
		if p == nil {
			s.detach()
			return
		}
		p.AddChild(s)
		return
	}
	s.detach()
	s.parent = parent
}

// Children returns the child list. The returned slice MUST NOT be mutated.
func (s *Space) Children() []*Space {
	return s.children
}

func (s *Space) detach() {
	if p, ok := s.parent.(*Space); ok {
		p.RemoveChild(s)
	}
	s.parent = nil
}

// --- Transform property setters ---

// SetPosition sets X and Y and marks the space dirty.
func (s *Space) SetPosition(x, y float64) {
	s.X = x
	s.Y = y
	s.dirty = true
}

// SetScale sets ScaleX and ScaleY and marks the space dirty.
func (s *Space) SetScale(sx, sy float64) {
	s.ScaleX = sx
	s.ScaleY = sy
	s.dirty = true
}

// SetRotation sets the rotation (in radians) and marks the space dirty.
func (s *Space) SetRotation(r float64) {
	s.Rotation = r
	s.dirty = true
}

// SetSkew sets SkewX and SkewY and marks the space dirty.
func (s *Space) SetSkew(sx, sy float64) {
	s.SkewX = sx
	s.SkewY = sy
	s.dirty = true
}

// SetPivot sets PivotX and PivotY and marks the space dirty.
func (s *Space) SetPivot(px, py float64) {
	s.PivotX = px
	s.PivotY = py
	s.dirty = true
}

// MarkDirty forces the cached transforms to be rebuilt on next use. Call it
// after setting fields directly.
func (s *Space) MarkDirty() {
	s.dirty = true
}

// --- Coordinate conversion ---

// ConvertPointTo maps p from s into other.
func (s *Space) ConvertPointTo(p Vec2, other CoordinateSpace) (Vec2, error) {
	return ConvertPoint(p, s, other)
}

// ConvertPointFrom maps p from other into s.
func (s *Space) ConvertPointFrom(p Vec2, other CoordinateSpace) (Vec2, error) {
	return ConvertPoint(p, other, s)
}

// ConvertRectTo maps r from s into the smallest bounding rect in other.
func (s *Space) ConvertRectTo(r Rect, other CoordinateSpace) (Rect, error) {
	return ConvertRect(r, s, other)
}

// ConvertRectFrom maps r from other into the smallest bounding rect in s.
func (s *Space) ConvertRectFrom(r Rect, other CoordinateSpace) (Rect, error) {
	return ConvertRect(r, other, s)
}
