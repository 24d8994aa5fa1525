package glitter

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter counts Update calls per tick.
type counter struct{ calls int }

func (c *counter) Update([]float64) { c.calls++ }

func newCountingSystem(t *testing.T, c *counter) *System {
	t.Helper()
	s, err := NewSystem("count", func(s *System) error {
		s.AddUpdateModule(c)
		return nil
	})
	require.NoError(t, err)
	return s
}

func TestSystemAgingRemovesAtLifetime(t *testing.T) {
	c := &counter{}
	s := newCountingSystem(t, c)
	_, err := s.AddParticle(2)
	require.NoError(t, err)

	require.NoError(t, s.Update())
	require.NoError(t, s.Update())
	assert.Equal(t, 1, s.ParticleCount())
	assert.Equal(t, 2, c.calls)

	// age == lifetime: skipped and removed at the end of the pass.
	require.NoError(t, s.Update())
	assert.Equal(t, 0, s.ParticleCount())
	assert.Equal(t, 2, c.calls)
}

func TestSystemZeroLifetimeNeverUpdates(t *testing.T) {
	c := &counter{}
	s := newCountingSystem(t, c)
	_, err := s.AddParticle(0)
	require.NoError(t, err)
	require.NoError(t, s.Update())
	assert.Equal(t, 0, s.ParticleCount())
	assert.Equal(t, 0, c.calls)
}

func TestSystemRemovalKeepsOrder(t *testing.T) {
	var tag *StoreBinding
	s, err := NewSystem("order", func(s *System) error {
		tag = s.Bind(1)
		return nil
	})
	require.NoError(t, err)

	for i, life := range []float64{1, 5, 1, 5, 5} {
		_, err := s.AddParticle(life, float64(i))
		require.NoError(t, err)
	}
	require.NoError(t, s.Update())
	require.NoError(t, s.Update())

	var tags []float64
	for _, p := range s.Particles() {
		tags = append(tags, tag.Get(p, 0))
	}
	assert.Equal(t, []float64{1, 3, 4}, tags)
}

func TestSystemAddDuringUpdateIsDeferred(t *testing.T) {
	var seen []int
	spawned := false
	s, err := NewSystem("spawner", func(s *System) error {
		s.AddUpdateModule(UpdateFunc(func(p []float64) {
			seen = append(seen, s.ParticleCount())
			if !spawned {
				spawned = true
				_, err := s.AddParticle(10)
				require.NoError(t, err)
			}
		}))
		return nil
	})
	require.NoError(t, err)
	_, err = s.AddParticle(10)
	require.NoError(t, err)

	require.NoError(t, s.Update())
	assert.Equal(t, []int{1}, seen, "the new particle must not be visited in the pass that created it")
	require.Equal(t, 2, s.ParticleCount())
	assert.Equal(t, 0.0, s.Particles()[1][1], "deferred particle has not aged")
}

func TestSystemClearDuringUpdateAborts(t *testing.T) {
	c := &counter{}
	s, err := NewSystem("clear", func(s *System) error {
		s.AddUpdateModule(UpdateFunc(func([]float64) {
			assert.ErrorIs(t, s.Clear(), ErrConcurrentModification)
		}), c)
		return nil
	})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := s.AddParticle(10)
		require.NoError(t, err)
	}

	err = s.Update()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConcurrentModification)
	assert.Contains(t, err.Error(), `"clear"`)
	assert.Equal(t, 1, c.calls, "the pass stops after the offending particle")
	assert.Equal(t, 3, s.ParticleCount(), "Clear must not take effect mid-pass")

	// The next pass starts clean.
	c.calls = 0
	s.updateModules = []UpdateModule{c}
	require.NoError(t, s.Update())
	assert.Equal(t, 3, c.calls)
}

func TestSystemReentrantUpdate(t *testing.T) {
	var inner error
	s, err := NewSystem("reentrant", func(s *System) error {
		s.AddUpdateModule(UpdateFunc(func([]float64) { inner = s.Update() }))
		return nil
	})
	require.NoError(t, err)
	_, err = s.AddParticle(5)
	require.NoError(t, err)
	require.NoError(t, s.Update())
	assert.ErrorIs(t, inner, ErrConcurrentModification)
}

func TestSystemPanicRestoresState(t *testing.T) {
	boom := true
	s, err := NewSystem("panicky", func(s *System) error {
		s.AddUpdateModule(UpdateFunc(func([]float64) {
			if boom {
				_, _ = s.AddParticle(3)
				panic("boom")
			}
		}))
		return nil
	})
	require.NoError(t, err)
	_, err = s.AddParticle(5)
	require.NoError(t, err)

	assert.Panics(t, func() { _ = s.Update() })
	assert.Equal(t, 2, s.ParticleCount(), "deferred adds are flushed even on panic")

	boom = false
	assert.NoError(t, s.Update())
}

func TestSystemGlobalModulesRunFirst(t *testing.T) {
	var order []string
	s, err := NewSystem("global", func(s *System) error {
		s.AddUpdateModule(UpdateFunc(func([]float64) { order = append(order, "particle") }))
		s.AddGlobalUpdateModule(globalFunc(func(ps [][]float64) {
			order = append(order, "global")
			assert.Len(t, ps, 2)
		}))
		return nil
	})
	require.NoError(t, err)
	_, _ = s.AddParticle(5)
	_, _ = s.AddParticle(5)
	require.NoError(t, s.Update())
	assert.Equal(t, []string{"global", "particle", "particle"}, order)
}

type globalFunc func([][]float64)

func (f globalFunc) UpdateGlobal(ps [][]float64) { f(ps) }

func TestSystemAddParticleParams(t *testing.T) {
	var pos, vel *StoreBinding
	s, err := NewSystem("params", func(s *System) error {
		pos = s.Bind(3)
		vel = s.Bind(3)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 8, s.RecordSize())
	assert.Equal(t, []*StoreBinding{pos, vel}, s.Fields())

	p, err := s.AddParticle(20, 1, 2, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 0, 1, 2, 3, 4, 0, 0}, p)
	assert.Equal(t, 1.0, pos.Get(p, 0))
	assert.Equal(t, 4.0, vel.Get(p, 0))

	_, err = s.AddParticle(20, make([]float64, 7)...)
	require.ErrorIs(t, err, ErrBindingSize)
	var size *BindingSizeError
	require.ErrorAs(t, err, &size)
	assert.Equal(t, 6, size.Expected)
	assert.Equal(t, 1, s.ParticleCount())
}

func TestSystemMaxParticles(t *testing.T) {
	s, err := NewSystem("capped", nil, WithMaxParticles(2))
	require.NoError(t, err)
	_, err = s.AddParticle(1)
	require.NoError(t, err)
	_, err = s.AddParticle(1)
	require.NoError(t, err)
	_, err = s.AddParticle(1)
	assert.ErrorIs(t, err, ErrSystemFull)
}

func TestSystemRecyclesRecords(t *testing.T) {
	s, err := NewSystem("pool", func(s *System) error {
		s.Bind(1)
		return nil
	})
	require.NoError(t, err)
	_, err = s.AddParticle(0, 42)
	require.NoError(t, err)
	require.NoError(t, s.Update())
	require.Len(t, s.pool, 1)

	p, err := s.AddParticle(3)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 0, 0}, p)
	assert.Empty(t, s.pool)
}

func TestSystemResetRerunsConfigure(t *testing.T) {
	calls := 0
	s, err := NewSystem("reset", func(s *System) error {
		calls++
		s.Bind(2)
		return nil
	})
	require.NoError(t, err)
	_, _ = s.AddParticle(5)

	require.NoError(t, s.Reset())
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, s.ParticleCount())
	assert.Equal(t, 4, s.RecordSize())
	assert.Len(t, s.Fields(), 1)
}

func TestSystemConfigureError(t *testing.T) {
	_, err := NewSystem("bad", func(s *System) error {
		_, err := NewPhysicsModule(s.Bind(2), nil, Variable(3))
		return err
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBindingSize)
	assert.Contains(t, err.Error(), `"bad"`)
}

func TestSystemBindWithParticlesPanics(t *testing.T) {
	s, err := NewSystem("late", nil)
	require.NoError(t, err)
	_, _ = s.AddParticle(5)
	assert.Panics(t, func() { s.Bind(1) })
}

// recordingRender records its render and reload calls.
type recordingRender struct {
	rendered  int
	prepared  int
	applied   int
	prepErr   error
	particles int
}

func (r *recordingRender) Render(_ *RenderContext, ps [][]float64, prep []UpdateModule) {
	r.rendered++
	r.particles = len(ps)
	for _, p := range ps {
		for _, m := range prep {
			m.Update(p)
		}
	}
}

func (r *recordingRender) PrepareReload() error { r.prepared++; return r.prepErr }
func (r *recordingRender) ApplyReload() error   { r.applied++; return nil }

func TestSystemRenderPassesPrepModules(t *testing.T) {
	rec := &recordingRender{}
	prep := &counter{}
	s, err := NewSystem("render", func(s *System) error {
		s.AddRenderPrepModule(prep)
		s.AddRenderModule(rec)
		return nil
	})
	require.NoError(t, err)
	_, _ = s.AddParticle(5)
	_, _ = s.AddParticle(5)

	require.NoError(t, s.Render(NewRenderContext()))
	assert.Equal(t, 1, rec.rendered)
	assert.Equal(t, 2, rec.particles)
	assert.Equal(t, 2, prep.calls)
}

func TestSystemReload(t *testing.T) {
	ok := &recordingRender{}
	bad := &recordingRender{prepErr: errors.New("missing texture")}
	s, err := NewSystem("reload", func(s *System) error {
		s.AddRenderModule(bad, ok)
		return nil
	})
	require.NoError(t, err)
	_, _ = s.AddParticle(5)

	err = s.PrepareReload()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing texture")
	assert.Equal(t, 1, ok.prepared, "one failure does not stop the others")

	bad.prepErr = nil
	require.NoError(t, s.Reload())
	assert.Equal(t, 1, ok.applied)
	assert.Equal(t, 1, s.ParticleCount())
}
