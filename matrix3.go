package glitter

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// InvertEpsilon is the smallest determinant magnitude Invert accepts (2^-52).
const InvertEpsilon = 0x1p-52

// Matrix3Reader is the read-only view shared by Matrix3 and MutableMatrix3.
type Matrix3Reader interface {
	// At returns the element at the given row and column.
	At(row, col int) float64
	// Frozen returns an immutable copy.
	Frozen() Matrix3
}

// Matrix3 is an immutable 3×3 matrix. It represents 2D affine transforms
// (and general 3D linear maps) acting on column vectors: M.Transform(p) is
// M·p, and A.Mul(B) applies B first.
//
// The zero value is the zero matrix; use Identity3 for the identity.
type Matrix3 struct {
	m mgl64.Mat3
}

var (
	_ Matrix3Reader = Matrix3{}
	_ Matrix3Reader = (*MutableMatrix3)(nil)
)

// Identity3 returns the 3×3 identity matrix.
func Identity3() Matrix3 { return Matrix3{mgl64.Ident3()} }

// Matrix3FromRows builds a matrix from nine row-major values.
func Matrix3FromRows(
	m00, m01, m02,
	m10, m11, m12,
	m20, m21, m22 float64,
) Matrix3 {
	return Matrix3{mgl64.Mat3FromRows(
		mgl64.Vec3{m00, m01, m02},
		mgl64.Vec3{m10, m11, m12},
		mgl64.Vec3{m20, m21, m22},
	)}
}

// Translation3 returns a 2D translation.
func Translation3(x, y float64) Matrix3 { return Matrix3{mgl64.Translate2D(x, y)} }

// Scaling3 returns a 2D scale.
func Scaling3(x, y float64) Matrix3 { return Matrix3{mgl64.Scale2D(x, y)} }

// Rotation3 returns a counter-clockwise 2D rotation by rad radians.
func Rotation3(rad float64) Matrix3 { return Matrix3{mgl64.HomogRotate2D(rad)} }

// At returns the element at row, col.
func (m Matrix3) At(row, col int) float64 { return m.m.At(row, col) }

// Frozen returns m.
func (m Matrix3) Frozen() Matrix3 { return m }

// Mutable returns a mutable copy of m.
func (m Matrix3) Mutable() *MutableMatrix3 { return &MutableMatrix3{m: m.m} }

// Mul returns m·o.
func (m Matrix3) Mul(o Matrix3Reader) Matrix3 { return Matrix3{m.m.Mul3(o.Frozen().m)} }

// Add returns m + o.
func (m Matrix3) Add(o Matrix3Reader) Matrix3 { return Matrix3{m.m.Add(o.Frozen().m)} }

// Sub returns m - o.
func (m Matrix3) Sub(o Matrix3Reader) Matrix3 { return Matrix3{m.m.Sub(o.Frozen().m)} }

// Scale returns m with every element multiplied by s.
func (m Matrix3) Scale(s float64) Matrix3 { return Matrix3{m.m.Mul(s)} }

// Transpose returns the transpose of m.
func (m Matrix3) Transpose() Matrix3 { return Matrix3{m.m.Transpose()} }

// Determinant returns the determinant of m.
func (m Matrix3) Determinant() float64 { return m.m.Det() }

// Invert returns the inverse of m, or ErrSingularMatrix when the determinant
// magnitude is below InvertEpsilon.
func (m Matrix3) Invert() (Matrix3, error) {
	if math.Abs(m.m.Det()) < InvertEpsilon {
		return Matrix3{}, ErrSingularMatrix
	}
	return Matrix3{m.m.Inv()}, nil
}

// Translate returns Translation3(x, y)·m.
func (m Matrix3) Translate(x, y float64) Matrix3 {
	return Matrix3{mgl64.Translate2D(x, y).Mul3(m.m)}
}

// TransformPoint applies m to the affine point (p.X, p.Y, 1).
func (m Matrix3) TransformPoint(p Vec2) Vec2 {
	r := m.m.Mul3x1(mgl64.Vec3{p.X, p.Y, 1})
	return Vec2{r[0], r[1]}
}

// TransformDelta applies m to the offset (d.X, d.Y, 0), ignoring translation.
func (m Matrix3) TransformDelta(d Vec2) Vec2 {
	r := m.m.Mul3x1(mgl64.Vec3{d.X, d.Y, 0})
	return Vec2{r[0], r[1]}
}

// Transform applies m to v as a full linear map.
func (m Matrix3) Transform(v Vec3) Vec3 {
	return vec3FromMgl(m.m.Mul3x1(v.mgl()))
}

// ApproxEqual reports whether every element is within tol of o's.
func (m Matrix3) ApproxEqual(o Matrix3Reader, tol float64) bool {
	om := o.Frozen().m
	for i := range m.m {
		if math.Abs(m.m[i]-om[i]) > tol {
			return false
		}
	}
	return true
}

func (m Matrix3) String() string {
	return fmt.Sprintf("[%g %g %g; %g %g %g; %g %g %g]",
		m.At(0, 0), m.At(0, 1), m.At(0, 2),
		m.At(1, 0), m.At(1, 1), m.At(1, 2),
		m.At(2, 0), m.At(2, 1), m.At(2, 2))
}

// MutableMatrix3 is a 3×3 matrix that composes in place. Used for transform
// chains where allocating an immutable result per step is wasteful. The zero
// value is the zero matrix; call SetIdentity first when accumulating.
type MutableMatrix3 struct {
	m mgl64.Mat3
}

// NewMutableMatrix3 returns a mutable identity matrix.
func NewMutableMatrix3() *MutableMatrix3 { return &MutableMatrix3{m: mgl64.Ident3()} }

// At returns the element at row, col.
func (m *MutableMatrix3) At(row, col int) float64 { return m.m.At(row, col) }

// Frozen returns an immutable snapshot of m.
func (m *MutableMatrix3) Frozen() Matrix3 { return Matrix3{m.m} }

// Freeze is an alias of Frozen that reads better at the end of a chain.
func (m *MutableMatrix3) Freeze() Matrix3 { return Matrix3{m.m} }

// Set copies o into m.
func (m *MutableMatrix3) Set(o Matrix3Reader) *MutableMatrix3 {
	m.m = o.Frozen().m
	return m
}

// SetAt sets a single element.
func (m *MutableMatrix3) SetAt(row, col int, v float64) *MutableMatrix3 {
	m.m.Set(row, col, v)
	return m
}

// SetIdentity resets m to the identity.
func (m *MutableMatrix3) SetIdentity() *MutableMatrix3 {
	m.m = mgl64.Ident3()
	return m
}

// MulInPlace sets m = m·o.
func (m *MutableMatrix3) MulInPlace(o Matrix3Reader) *MutableMatrix3 {
	m.m = m.m.Mul3(o.Frozen().m)
	return m
}

// PreMulInPlace sets m = o·m.
func (m *MutableMatrix3) PreMulInPlace(o Matrix3Reader) *MutableMatrix3 {
	m.m = o.Frozen().m.Mul3(m.m)
	return m
}

// Translate sets m = m·Translation3(x, y).
func (m *MutableMatrix3) Translate(x, y float64) *MutableMatrix3 {
	m.m = m.m.Mul3(mgl64.Translate2D(x, y))
	return m
}

// Scale sets m = m·Scaling3(x, y).
func (m *MutableMatrix3) Scale(x, y float64) *MutableMatrix3 {
	m.m = m.m.Mul3(mgl64.Scale2D(x, y))
	return m
}

// Rotate sets m = m·Rotation3(rad).
func (m *MutableMatrix3) Rotate(rad float64) *MutableMatrix3 {
	m.m = m.m.Mul3(mgl64.HomogRotate2D(rad))
	return m
}
