package glitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/gween/ease"
)

// easeAt evaluates an ease binding for a record of [lifetime, age].
func easeAt(t *testing.T, e *EaseBinding, lifetime, age float64) float64 {
	t.Helper()
	e.Load([]float64{lifetime, age})
	return e.Contents()[0]
}

func newTestEase(t *testing.T, easing ease.TweenFunc, opts ...EaseOption) *EaseBinding {
	t.Helper()
	e, err := NewEaseBinding(newStoreBinding(0, 1), newStoreBinding(1, 1), easing, opts...)
	require.NoError(t, err)
	return e
}

func TestEaseBindingLinear(t *testing.T) {
	e := newTestEase(t, nil)
	assert.Equal(t, 1, e.Size())
	assert.InDelta(t, 0.0, easeAt(t, e, 10, 0), 1e-12)
	assert.InDelta(t, 0.5, easeAt(t, e, 10, 5), 1e-12)
	// The range includes 1.
	assert.InDelta(t, 1.0, easeAt(t, e, 10, 10), 1e-12)
}

func TestEaseBindingZeroLifetime(t *testing.T) {
	e := newTestEase(t, nil)
	assert.InDelta(t, 1.0, easeAt(t, e, 0, 0), 1e-12)
}

func TestEaseBindingTimescaleLoops(t *testing.T) {
	e := newTestEase(t, nil, WithTimescale(Constant(2)))
	assert.InDelta(t, 0.6, easeAt(t, e, 10, 3), 1e-9)
	assert.InDelta(t, 1.0, easeAt(t, e, 10, 5), 1e-9)
	assert.InDelta(t, 0.4, easeAt(t, e, 10, 7), 1e-9)
}

func TestEaseBindingOffset(t *testing.T) {
	e := newTestEase(t, nil, WithOffset(Constant(0.5)))
	assert.InDelta(t, 0.5, easeAt(t, e, 10, 0), 1e-9)
	assert.InDelta(t, 0.1, easeAt(t, e, 10, 6), 1e-9)

	// The offset is applied before the timescale.
	e = newTestEase(t, nil, WithOffset(Constant(0.25)), WithTimescale(Constant(2)))
	assert.InDelta(t, 0.5, easeAt(t, e, 10, 0), 1e-9)
}

func TestEaseBindingEasing(t *testing.T) {
	e := newTestEase(t, ease.InQuad)
	assert.InDelta(t, 0.25, easeAt(t, e, 10, 5), 1e-6)
}

func TestEaseBindingSizeErrors(t *testing.T) {
	_, err := NewEaseBinding(Constant(1, 2), Constant(0), nil)
	assert.ErrorIs(t, err, ErrBindingSize)

	_, err = NewEaseBinding(Constant(1), Constant(0), nil, WithTimescale(Constant(1, 1)))
	assert.ErrorIs(t, err, ErrBindingSize)

	_, err = NewEaseBinding(Constant(1), nil, nil)
	assert.ErrorIs(t, err, ErrBindingSize)
}

func TestEaseBindingReadsSystemRecords(t *testing.T) {
	var progress *EaseBinding
	s, err := NewSystem("ease", func(s *System) error {
		var err error
		progress, err = NewEaseBinding(s.Lifetime, s.Age, nil)
		return err
	})
	require.NoError(t, err)

	p, err := s.AddParticle(4)
	require.NoError(t, err)
	require.NoError(t, s.Update())
	progress.Load(p)
	assert.InDelta(t, 0.25, progress.Contents()[0], 1e-12)
}

func TestLerpBinding(t *testing.T) {
	l, err := NewLerpBinding(Constant(0, 10), Constant(10, 20), Constant(0.25), nil)
	require.NoError(t, err)
	l.Load(nil)
	assert.InDeltaSlice(t, []float64{2.5, 12.5}, l.Contents(), 1e-5)
	assert.Equal(t, 2, l.Size())
}

func TestLerpBindingEased(t *testing.T) {
	l, err := NewLerpBinding(Constant(0), Constant(1), Constant(0.5), ease.InQuad)
	require.NoError(t, err)
	l.Load(nil)
	assert.InDelta(t, 0.25, l.Contents()[0], 1e-5)
}

func TestLerpBindingSizeErrors(t *testing.T) {
	_, err := NewLerpBinding(Constant(0, 0), Constant(1), Constant(0.5), nil)
	assert.ErrorIs(t, err, ErrBindingSize)

	_, err = NewLerpBinding(Constant(0), Constant(1), Constant(0.5, 0.5), nil)
	assert.ErrorIs(t, err, ErrBindingSize)

	_, err = NewLerpBinding(nil, Constant(1), Constant(0.5), nil)
	assert.ErrorIs(t, err, ErrBindingSize)
}
