package glitter

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedManager(opts ...ManagerOption) (*Manager, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewManager(append([]ManagerOption{WithLogger(zap.New(core))}, opts...)...), logs
}

func mustSystem(t *testing.T, name string, configure func(*System) error) *System {
	t.Helper()
	s, err := NewSystem(name, configure)
	require.NoError(t, err)
	return s
}

func withParticles(t *testing.T, s *System, n int) *System {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := s.AddParticle(100)
		require.NoError(t, err)
	}
	return s
}

func TestManagerIsolatesFailures(t *testing.T) {
	m, logs := newObservedManager()

	first, last := &counter{}, &counter{}
	m.Add(withParticles(t, mustSystem(t, "first", func(s *System) error {
		s.AddUpdateModule(first)
		return nil
	}), 1))
	m.Add(withParticles(t, mustSystem(t, "panics", func(s *System) error {
		s.AddUpdateModule(UpdateFunc(func([]float64) { panic("exploded") }))
		return nil
	}), 1))
	m.Add(withParticles(t, mustSystem(t, "clears", func(s *System) error {
		s.AddUpdateModule(UpdateFunc(func([]float64) { _ = s.Clear() }))
		return nil
	}), 1))
	m.Add(withParticles(t, mustSystem(t, "last", func(s *System) error {
		s.AddUpdateModule(last)
		return nil
	}), 1))

	m.Tick()
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, last.calls)
	assert.Equal(t, 2, m.Failures())

	entries := logs.FilterMessage("particle system failed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "panics", entries[0].ContextMap()["system"])
	assert.Equal(t, "update", entries[0].ContextMap()["phase"])
	assert.Contains(t, entries[0].ContextMap()["error"], "exploded")
	assert.Equal(t, "clears", entries[1].ContextMap()["system"])
	assert.Contains(t, entries[1].ContextMap()["error"], ErrConcurrentModification.Error())

	// Failing systems stay registered and keep ticking.
	m.Tick()
	assert.Equal(t, 2, first.calls)
	assert.Len(t, m.Systems(), 4)
}

func TestManagerDefersAddDuringTick(t *testing.T) {
	m := NewManager()
	late := &counter{}
	lateSystem := withParticles(t, mustSystem(t, "late", func(s *System) error {
		s.AddUpdateModule(late)
		return nil
	}), 1)

	var containsDuringTick bool
	m.Add(withParticles(t, mustSystem(t, "spawner", func(s *System) error {
		s.AddUpdateModule(UpdateFunc(func([]float64) {
			m.Add(lateSystem)
			containsDuringTick = m.Contains(lateSystem)
		}))
		return nil
	}), 1))

	m.Tick()
	assert.False(t, containsDuringTick)
	assert.True(t, m.Contains(lateSystem))
	assert.Equal(t, 0, late.calls, "added systems join on the next pass")

	m.Tick()
	assert.Equal(t, 1, late.calls)
}

func TestManagerDefersRemoveDuringTick(t *testing.T) {
	m := NewManager()
	var self *System
	self = withParticles(t, mustSystem(t, "self-removing", func(s *System) error {
		s.AddUpdateModule(UpdateFunc(func([]float64) { m.Remove(self) }))
		return nil
	}), 2)
	other := &counter{}
	m.Add(self)
	m.Add(withParticles(t, mustSystem(t, "other", func(s *System) error {
		s.AddUpdateModule(other)
		return nil
	}), 1))

	m.Tick()
	assert.False(t, m.Contains(self))
	assert.Equal(t, 1, other.calls)
	assert.Equal(t, 2, self.ParticleCount(), "removal keeps particles")
}

func TestManagerAddThenRemoveDuringPassCancels(t *testing.T) {
	m := NewManager()
	extra := mustSystem(t, "extra", nil)
	m.Add(withParticles(t, mustSystem(t, "driver", func(s *System) error {
		s.AddUpdateModule(UpdateFunc(func([]float64) {
			m.Add(extra)
			m.Remove(extra)
		}))
		return nil
	}), 1))
	m.Tick()
	assert.False(t, m.Contains(extra))
}

func TestManagerAddIsIdempotent(t *testing.T) {
	var events []SystemEvent
	m := NewManager(WithEventSink(EventSinkFunc(func(e SystemEvent) { events = append(events, e) })))
	s := mustSystem(t, "once", nil)
	m.Add(s)
	m.Add(s)
	m.Remove(s)
	m.Remove(s)
	require.Len(t, events, 2)
	assert.Equal(t, EventSystemAdded, events[0].Type)
	assert.Equal(t, EventSystemRemoved, events[1].Type)
	assert.Equal(t, s.ID, events[0].ID)
}

func TestManagerPaused(t *testing.T) {
	m := NewManager()
	c := &counter{}
	m.Add(withParticles(t, mustSystem(t, "paused", func(s *System) error {
		s.AddUpdateModule(c)
		return nil
	}), 1))
	m.Paused = true
	m.Tick()
	assert.Equal(t, 0, c.calls)
	m.Paused = false
	m.Tick()
	assert.Equal(t, 1, c.calls)
}

// leakyRender pushes without popping.
type leakyRender struct{}

func (leakyRender) Render(ctx *RenderContext, _ [][]float64, _ []UpdateModule) {
	ctx.Stack.Push()
	ctx.Stack.Translate(Vec3{100, 0, 0})
}

func TestManagerRenderAppliesViewAndRestoresStack(t *testing.T) {
	m, logs := newObservedManager()
	var pos *StoreBinding
	sprites := mustSystem(t, "sprites", func(s *System) error {
		pos = s.Bind(3)
		r, err := NewSpriteRenderModule("spark", nil, pos, WithSize(Constant(0)))
		s.AddRenderModule(r)
		return err
	})
	_, err := sprites.AddParticle(10, 5, 0, 0)
	require.NoError(t, err)
	m.Add(mustSystem(t, "leaky", func(s *System) error {
		s.AddRenderModule(leakyRender{})
		return nil
	}))
	m.Add(sprites)

	ctx := NewRenderContext()
	ctx.Camera = Camera{Position: Vec3{1, 0, 0}, Yaw: 180}
	m.Render(ctx)

	assert.Equal(t, 0, ctx.Stack.Depth())
	assert.True(t, ctx.Stack.Frozen().ApproxEqual(Identity4(), 0))
	require.Len(t, ctx.Draw.Quads, 1)
	// The leaked translation must not reach the next system.
	assertVec3(t, "view space", ctx.Draw.Quads[0].Corners[0], Vec3{4, 0, 0})

	assert.Equal(t, 1, m.Failures())
	entries := logs.FilterField(zap.String("phase", "render")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "leaky", entries[0].ContextMap()["system"])
}

func TestManagerRenderRecoversPanics(t *testing.T) {
	m, _ := newObservedManager()
	m.Add(withParticles(t, mustSystem(t, "broken", func(s *System) error {
		s.AddRenderModule(renderFunc(func(*RenderContext, [][]float64, []UpdateModule) {
			panic(errors.New("bad texture"))
		}))
		return nil
	}), 1))

	ctx := NewRenderContext()
	assert.NotPanics(t, func() { m.Render(ctx) })
	assert.Equal(t, 1, m.Failures())
	assert.Equal(t, 0, ctx.Stack.Depth())
}

type renderFunc func(*RenderContext, [][]float64, []UpdateModule)

func (f renderFunc) Render(ctx *RenderContext, ps [][]float64, prep []UpdateModule) { f(ctx, ps, prep) }

func TestManagerReloadKeepsParticles(t *testing.T) {
	var events []SystemEvent
	m := NewManager(WithEventSink(EventSinkFunc(func(e SystemEvent) { events = append(events, e) })))
	rec := &recordingRender{}
	s := withParticles(t, mustSystem(t, "reloadable", func(s *System) error {
		s.AddRenderModule(rec)
		return nil
	}), 3)
	m.Add(s)

	require.NoError(t, m.Reload())
	assert.Equal(t, 1, rec.prepared)
	assert.Equal(t, 1, rec.applied)
	assert.Equal(t, 3, s.ParticleCount())

	last := events[len(events)-1]
	assert.Equal(t, EventSystemReloaded, last.Type)
	assert.Equal(t, 3, last.Particles)
}

func TestManagerReloadCollectsErrors(t *testing.T) {
	m, _ := newObservedManager()
	bad := &recordingRender{prepErr: errors.New("missing")}
	good := &recordingRender{}
	m.Add(mustSystem(t, "bad", func(s *System) error { s.AddRenderModule(bad); return nil }))
	m.Add(mustSystem(t, "good", func(s *System) error { s.AddRenderModule(good); return nil }))

	err := m.Reload()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `system "bad"`)
	assert.Equal(t, 1, good.prepared)
	assert.Equal(t, 1, good.applied)
	assert.Equal(t, 1, m.Failures())
}

func TestManagerReloadDuringTickFails(t *testing.T) {
	m := NewManager()
	var reloadErr error
	m.Add(withParticles(t, mustSystem(t, "reloader", func(s *System) error {
		s.AddUpdateModule(UpdateFunc(func([]float64) { reloadErr = m.Reload() }))
		return nil
	}), 1))
	m.Tick()
	assert.ErrorIs(t, reloadErr, ErrConcurrentModification)
}

func TestManagerClearParticles(t *testing.T) {
	m := NewManager()
	m.Add(withParticles(t, mustSystem(t, "a", nil), 2))
	m.Add(withParticles(t, mustSystem(t, "b", nil), 3))
	assert.Equal(t, 5, m.ParticleCount())
	m.ClearParticles()
	assert.Equal(t, 0, m.ParticleCount())
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "added", EventSystemAdded.String())
	assert.Equal(t, "removed", EventSystemRemoved.String())
	assert.Equal(t, "reloaded", EventSystemReloaded.String())
	assert.Equal(t, "unknown", EventType(42).String())
}

func TestManagerClearsColliderCachesEachTick(t *testing.T) {
	world := NewBoxCollider(BoxSourceFunc(func(x, y, z int, dst []Box) []Box { return dst }))
	m := NewManager(WithColliders(world, Floor(0)))

	var hit RayHit
	world.Collide(&hit, Vec3{0.5, 0.5, 0.5}, Vec3{2, 0, 0})
	require.Equal(t, 3, world.CachedCells())

	m.Tick()
	assert.Zero(t, world.CachedCells())

	m.Paused = true
	world.Collide(&hit, Vec3{0.5, 0.5, 0.5}, Vec3{2, 0, 0})
	m.Tick()
	assert.Equal(t, 3, world.CachedCells(), "paused ticks leave the cache alone")
}
