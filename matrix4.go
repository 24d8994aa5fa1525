package glitter

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Matrix4Reader is the read-only view shared by Matrix4 and MutableMatrix4.
type Matrix4Reader interface {
	At(row, col int) float64
	Frozen() Matrix4
}

// Matrix4 is an immutable 4×4 matrix for 3D affine transforms, using the
// same column-vector convention as Matrix3.
type Matrix4 struct {
	m mgl64.Mat4
}

var (
	_ Matrix4Reader = Matrix4{}
	_ Matrix4Reader = (*MutableMatrix4)(nil)
)

// Identity4 returns the 4×4 identity matrix.
func Identity4() Matrix4 { return Matrix4{mgl64.Ident4()} }

// Matrix4FromRows builds a matrix from four rows.
func Matrix4FromRows(r0, r1, r2, r3 [4]float64) Matrix4 {
	return Matrix4{mgl64.Mat4FromRows(mgl64.Vec4(r0), mgl64.Vec4(r1), mgl64.Vec4(r2), mgl64.Vec4(r3))}
}

// Translation4 returns a 3D translation.
func Translation4(v Vec3) Matrix4 { return Matrix4{mgl64.Translate3D(v.X, v.Y, v.Z)} }

// Scaling4 returns a 3D scale.
func Scaling4(v Vec3) Matrix4 { return Matrix4{mgl64.Scale3D(v.X, v.Y, v.Z)} }

// Rotation4 returns a rotation of rad radians around axis. The axis does not
// need to be normalized; a zero axis yields ErrZeroLength.
func Rotation4(rad float64, axis Vec3) (Matrix4, error) {
	n, err := axis.Normalize()
	if err != nil {
		return Matrix4{}, err
	}
	return Matrix4{mgl64.HomogRotate3D(rad, n.mgl())}, nil
}

// At returns the element at row, col.
func (m Matrix4) At(row, col int) float64 { return m.m.At(row, col) }

// Frozen returns m.
func (m Matrix4) Frozen() Matrix4 { return m }

// Mutable returns a mutable copy of m.
func (m Matrix4) Mutable() *MutableMatrix4 { return &MutableMatrix4{m: m.m} }

// Mul returns m·o.
func (m Matrix4) Mul(o Matrix4Reader) Matrix4 { return Matrix4{m.m.Mul4(o.Frozen().m)} }

// Transpose returns the transpose of m.
func (m Matrix4) Transpose() Matrix4 { return Matrix4{m.m.Transpose()} }

// Determinant returns the determinant of m.
func (m Matrix4) Determinant() float64 { return m.m.Det() }

// Invert returns the inverse of m, or ErrSingularMatrix.
func (m Matrix4) Invert() (Matrix4, error) {
	if math.Abs(m.m.Det()) < InvertEpsilon {
		return Matrix4{}, ErrSingularMatrix
	}
	return Matrix4{m.m.Inv()}, nil
}

// TransformPoint applies m to the affine point (p, 1).
func (m Matrix4) TransformPoint(p Vec3) Vec3 {
	r := m.m.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	return Vec3{r[0], r[1], r[2]}
}

// TransformDelta applies m to the offset (d, 0), ignoring translation.
func (m Matrix4) TransformDelta(d Vec3) Vec3 {
	r := m.m.Mul4x1(mgl64.Vec4{d.X, d.Y, d.Z, 0})
	return Vec3{r[0], r[1], r[2]}
}

// ApproxEqual reports whether every element is within tol of o's.
func (m Matrix4) ApproxEqual(o Matrix4Reader, tol float64) bool {
	om := o.Frozen().m
	for i := range m.m {
		if math.Abs(m.m[i]-om[i]) > tol {
			return false
		}
	}
	return true
}

// MutableMatrix4 is a 4×4 matrix that composes in place.
type MutableMatrix4 struct {
	m mgl64.Mat4
}

// NewMutableMatrix4 returns a mutable identity matrix.
func NewMutableMatrix4() *MutableMatrix4 { return &MutableMatrix4{m: mgl64.Ident4()} }

// At returns the element at row, col.
func (m *MutableMatrix4) At(row, col int) float64 { return m.m.At(row, col) }

// Frozen returns an immutable snapshot of m.
func (m *MutableMatrix4) Frozen() Matrix4 { return Matrix4{m.m} }

// Freeze is an alias of Frozen.
func (m *MutableMatrix4) Freeze() Matrix4 { return Matrix4{m.m} }

// Set copies o into m.
func (m *MutableMatrix4) Set(o Matrix4Reader) *MutableMatrix4 {
	m.m = o.Frozen().m
	return m
}

// SetIdentity resets m to the identity.
func (m *MutableMatrix4) SetIdentity() *MutableMatrix4 {
	m.m = mgl64.Ident4()
	return m
}

// MulInPlace sets m = m·o.
func (m *MutableMatrix4) MulInPlace(o Matrix4Reader) *MutableMatrix4 {
	m.m = m.m.Mul4(o.Frozen().m)
	return m
}

// PreMulInPlace sets m = o·m.
func (m *MutableMatrix4) PreMulInPlace(o Matrix4Reader) *MutableMatrix4 {
	m.m = o.Frozen().m.Mul4(m.m)
	return m
}

// Translate sets m = m·Translation4(v).
func (m *MutableMatrix4) Translate(v Vec3) *MutableMatrix4 {
	m.m = m.m.Mul4(mgl64.Translate3D(v.X, v.Y, v.Z))
	return m
}

// Scale sets m = m·Scaling4(v).
func (m *MutableMatrix4) Scale(v Vec3) *MutableMatrix4 {
	m.m = m.m.Mul4(mgl64.Scale3D(v.X, v.Y, v.Z))
	return m
}
