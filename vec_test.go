package glitter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVec2Arithmetic(t *testing.T) {
	a := Vec2{3, 4}
	b := Vec2{1, -2}
	assertVec2(t, "Add", a.Add(b), Vec2{4, 2})
	assertVec2(t, "Sub", a.Sub(b), Vec2{2, 6})
	assertVec2(t, "Mul", a.Mul(2), Vec2{6, 8})
	assertVec2(t, "MulVec", a.MulVec(b), Vec2{3, -8})
	assertVec2(t, "Div", a.Div(2), Vec2{1.5, 2})
	assertVec2(t, "Neg", a.Neg(), Vec2{-3, -4})
	assertNear(t, "Dot", a.Dot(b), -5)
	assertNear(t, "Cross", a.Cross(b), -10)
	assertNear(t, "Len", a.Len(), 5)
	assertNear(t, "LenSquared", a.LenSquared(), 25)
	assertVec2(t, "Lerp", a.Lerp(b, 0.5), Vec2{2, 1})
}

func TestVec2Normalize(t *testing.T) {
	n, err := Vec2{3, 4}.Normalize()
	require.NoError(t, err)
	assertVec2(t, "Normalize", n, Vec2{0.6, 0.8})

	_, err = Vec2{}.Normalize()
	assert.ErrorIs(t, err, ErrZeroLength)
}

func TestVec3Arithmetic(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	assertVec3(t, "Cross", x.Cross(y), Vec3{0, 0, 1})
	assertVec3(t, "Cross reversed", y.Cross(x), Vec3{0, 0, -1})
	assertNear(t, "Dot", x.Dot(y), 0)

	v := Vec3{1, -2, 2}
	assertNear(t, "Len", v.Len(), 3)
	assertVec3(t, "Abs", v.Abs(), Vec3{1, 2, 2})
	assertVec3(t, "Lerp", v.Lerp(Vec3{3, 0, 4}, 0.5), Vec3{2, -1, 3})
	assertVec2(t, "XY", v.XY(), Vec2{1, -2})
}

func TestVec3Normalize(t *testing.T) {
	n, err := Vec3{0, 0, 5}.Normalize()
	require.NoError(t, err)
	assertVec3(t, "Normalize", n, Vec3{0, 0, 1})

	_, err = Vec3{1e-13, 0, 0}.Normalize()
	assert.ErrorIs(t, err, ErrZeroLength)
}

func TestVec3HasNaN(t *testing.T) {
	assert.False(t, Vec3{1, 2, 3}.HasNaN())
	assert.True(t, Vec3{1, math.NaN(), 3}.HasNaN())
}
