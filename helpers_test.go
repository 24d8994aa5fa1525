package glitter

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertVec2(t *testing.T, name string, got, want Vec2) {
	t.Helper()
	if !got.ApproxEqual(want, epsilon) {
		t.Errorf("%s = %+v, want %+v", name, got, want)
	}
}

func assertVec3(t *testing.T, name string, got, want Vec3) {
	t.Helper()
	if !got.ApproxEqual(want, epsilon) {
		t.Errorf("%s = %+v, want %+v", name, got, want)
	}
}

func assertIdentity3(t *testing.T, name string, m Matrix3) {
	t.Helper()
	if !m.ApproxEqual(Identity3(), 1e-9) {
		t.Errorf("%s = %v, want identity", name, m)
	}
}
