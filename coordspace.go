package glitter

import "math"

// CoordinateSpace is a node in a tree of 2D spaces. Each space knows how to
// map its points into its parent's space and back.
//
// Implementations must be comparable by identity (pointer types): ancestor
// lookups use interface equality.
type CoordinateSpace interface {
	// ParentSpace returns the parent space, or nil for a root. A space does
	// not own its parent.
	ParentSpace() CoordinateSpace
	// Transform maps points in this space to the parent space.
	Transform() Matrix3
	// InverseTransform maps points in the parent space to this space. It
	// should be built by composing inverse steps rather than by inverting
	// Transform, so zero scales degrade instead of failing.
	InverseTransform() Matrix3
}

type rootSpace struct {
	name string
}

func (*rootSpace) ParentSpace() CoordinateSpace { return nil }
func (*rootSpace) Transform() Matrix3           { return Identity3() }
func (*rootSpace) InverseTransform() Matrix3    { return Identity3() }
func (r *rootSpace) String() string             { return r.name }

// ScreenSpace is the uppermost space of a UI tree. Converting a point to
// ScreenSpace gives its objective location on the display.
var ScreenSpace CoordinateSpace = &rootSpace{name: "ScreenSpace"}

// ConversionMatrix returns a matrix M such that M·p maps a point p in from
// into the corresponding point in to. It fails with *UnrelatedSpacesError
// when the two spaces share no ancestor.
func ConversionMatrix(from, to CoordinateSpace) (Matrix3, error) {
	if from == nil || to == nil {
		return Matrix3{}, &UnrelatedSpacesError{A: from, B: to}
	}
	if from == to {
		return Identity3(), nil
	}
	if to == from.ParentSpace() {
		return from.Transform(), nil
	}
	if to.ParentSpace() == from {
		return to.InverseTransform(), nil
	}

	lca := lowestCommonAncestor(from, to)
	if lca == nil {
		return Matrix3{}, &UnrelatedSpacesError{A: from, B: to}
	}
	if lca == to {
		return matrixToAncestor(from, to), nil
	}
	if lca == from {
		return matrixFromAncestor(to, from), nil
	}

	var m MutableMatrix3
	m.SetIdentity()
	m.MulInPlace(matrixFromAncestor(to, lca))
	m.MulInPlace(matrixToAncestor(from, lca))
	return m.Freeze(), nil
}

// lowestCommonAncestor returns the nearest space that is an ancestor of (or
// equal to) both a and b.
func lowestCommonAncestor(a, b CoordinateSpace) CoordinateSpace {
	// Straight-line relationships first, walking both chains in lockstep so
	// short distances resolve quickly.
	aAncestor := a.ParentSpace()
	bAncestor := b.ParentSpace()
	for aAncestor != nil || bAncestor != nil {
		if aAncestor == b {
			return b
		}
		if bAncestor == a {
			return a
		}
		if aAncestor != nil {
			aAncestor = aAncestor.ParentSpace()
		}
		if bAncestor != nil {
			bAncestor = bAncestor.ParentSpace()
		}
	}

	ancestors := make(map[CoordinateSpace]struct{})
	for s := a.ParentSpace(); s != nil; s = s.ParentSpace() {
		ancestors[s] = struct{}{}
	}
	for s := b.ParentSpace(); s != nil; s = s.ParentSpace() {
		if _, ok := ancestors[s]; ok {
			return s
		}
	}
	return nil
}

// matrixToAncestor composes child→parent transforms from space up to
// ancestor: T_top ··· T_parent · T_space.
func matrixToAncestor(space, ancestor CoordinateSpace) Matrix3 {
	var m MutableMatrix3
	m.SetIdentity()
	for s := space; s != ancestor && s != nil; s = s.ParentSpace() {
		m.PreMulInPlace(s.Transform())
	}
	return m.Freeze()
}

// matrixFromAncestor composes parent→child inverse transforms from ancestor
// down to space: I_space · I_parent ··· I_top.
func matrixFromAncestor(space, ancestor CoordinateSpace) Matrix3 {
	var m MutableMatrix3
	m.SetIdentity()
	for s := space; s != ancestor && s != nil; s = s.ParentSpace() {
		m.MulInPlace(s.InverseTransform())
	}
	return m.Freeze()
}

// ConvertPoint maps a point in from into to.
func ConvertPoint(p Vec2, from, to CoordinateSpace) (Vec2, error) {
	m, err := ConversionMatrix(from, to)
	if err != nil {
		return Vec2{}, err
	}
	return m.TransformPoint(p), nil
}

// ConvertOffset maps an offset in from into the equivalent offset in to.
func ConvertOffset(d Vec2, from, to CoordinateSpace) (Vec2, error) {
	m, err := ConversionMatrix(from, to)
	if err != nil {
		return Vec2{}, err
	}
	return m.TransformDelta(d), nil
}

// ConvertRect maps a rect in from to the smallest axis-aligned rect around it
// in to.
//
// This is not reversible: under rotation the result contains the source
// rect's image rather than equalling it.
func ConvertRect(r Rect, from, to CoordinateSpace) (Rect, error) {
	m, err := ConversionMatrix(from, to)
	if err != nil {
		return Rect{}, err
	}
	return boundingRect(m, r), nil
}

func boundingRect(m Matrix3, r Rect) Rect {
	lo, hi := r.Min(), r.Max()
	corners := [4]Vec2{
		m.TransformPoint(lo),
		m.TransformPoint(hi),
		m.TransformPoint(Vec2{lo.X, hi.Y}),
		m.TransformPoint(Vec2{hi.X, lo.Y}),
	}
	lo, hi = corners[0], corners[0]
	for _, c := range corners[1:] {
		lo = Vec2{math.Min(lo.X, c.X), math.Min(lo.Y, c.Y)}
		hi = Vec2{math.Max(hi.X, c.X), math.Max(hi.Y, c.Y)}
	}
	return RectFromPoints(lo, hi)
}

// ConvertPointToParent maps p into s's parent space, or returns p unchanged
// when s has no parent.
func ConvertPointToParent(s CoordinateSpace, p Vec2) Vec2 {
	if s.ParentSpace() == nil {
		return p
	}
	return s.Transform().TransformPoint(p)
}

// ConvertPointFromParent maps p from s's parent space into s, or returns p
// unchanged when s has no parent.
func ConvertPointFromParent(s CoordinateSpace, p Vec2) Vec2 {
	if s.ParentSpace() == nil {
		return p
	}
	return s.InverseTransform().TransformPoint(p)
}

// ConvertRectToParent is ConvertRect into s's parent space. Not reversible.
func ConvertRectToParent(s CoordinateSpace, r Rect) Rect {
	if s.ParentSpace() == nil {
		return r
	}
	return boundingRect(s.Transform(), r)
}

// ConvertRectFromParent is ConvertRect from s's parent space. Not reversible.
func ConvertRectFromParent(s CoordinateSpace, r Rect) Rect {
	if s.ParentSpace() == nil {
		return r
	}
	return boundingRect(s.InverseTransform(), r)
}
