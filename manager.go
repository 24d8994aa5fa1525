package glitter

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// EventType identifies a SystemEvent.
type EventType uint8

const (
	EventSystemAdded EventType = iota
	EventSystemRemoved
	EventSystemReloaded
)

func (t EventType) String() string {
	switch t {
	case EventSystemAdded:
		return "added"
	case EventSystemRemoved:
		return "removed"
	case EventSystemReloaded:
		return "reloaded"
	default:
		return "unknown"
	}
}

// SystemEvent describes a change to the manager's system set.
type SystemEvent struct {
	Type      EventType
	Name      string
	ID        uuid.UUID
	Particles int
}

// EventSink receives SystemEvents.
type EventSink interface {
	Publish(SystemEvent)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(SystemEvent)

func (f EventSinkFunc) Publish(e SystemEvent) { f(e) }

// Manager owns the live particle systems and drives them from the host's
// tick and frame callbacks. Create one per session and pass it to whatever
// spawns systems.
//
// A failing system never stops the others: errors and panics from its tick
// or render are logged and its remaining work for that pass is skipped.
// Systems added or removed while the manager is ticking or rendering are
// applied once the pass ends.
type Manager struct {
	// Paused makes Tick a no-op. Render still runs.
	Paused bool

	systems []*System
	logger  *zap.Logger
	sink    EventSink
	debug   bool

	colliders Colliders

	iterating     bool
	pendingAdd    []*System
	pendingRemove []*System

	stats debugStats
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// WithEventSink publishes add, remove and reload events to s.
func WithEventSink(s EventSink) ManagerOption {
	return func(m *Manager) { m.sink = s }
}

// WithDebug adds timing lines to DebugLines.
func WithDebug(enabled bool) ManagerOption {
	return func(m *Manager) { m.debug = enabled }
}

// WithColliders registers world colliders whose caches are dropped at the
// start of every tick, so changes to the host's world are picked up.
func WithColliders(cs ...WorldCollider) ManagerOption {
	return func(m *Manager) { m.colliders = append(m.colliders, cs...) }
}

// NewManager returns an empty manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Systems returns the registered systems. The returned slice MUST NOT be
// mutated.
func (m *Manager) Systems() []*System { return m.systems }

// Contains reports whether s is registered.
func (m *Manager) Contains(s *System) bool {
	return slices.Contains(m.systems, s)
}

// Add registers s. Adding a registered system is a no-op.
func (m *Manager) Add(s *System) {
	if m.iterating {
		m.pendingRemove = slices.DeleteFunc(m.pendingRemove, func(o *System) bool { return o == s })
		if !slices.Contains(m.pendingAdd, s) {
			m.pendingAdd = append(m.pendingAdd, s)
		}
		return
	}
	if m.Contains(s) {
		return
	}
	m.systems = append(m.systems, s)
	m.publish(EventSystemAdded, s)
}

// Remove unregisters s. Its particles are kept, so it can be added again.
func (m *Manager) Remove(s *System) {
	if m.iterating {
		m.pendingAdd = slices.DeleteFunc(m.pendingAdd, func(o *System) bool { return o == s })
		if !slices.Contains(m.pendingRemove, s) {
			m.pendingRemove = append(m.pendingRemove, s)
		}
		return
	}
	i := slices.Index(m.systems, s)
	if i < 0 {
		return
	}
	m.systems = slices.Delete(m.systems, i, i+1)
	m.publish(EventSystemRemoved, s)
}

func (m *Manager) applyPending() {
	add, remove := m.pendingAdd, m.pendingRemove
	m.pendingAdd, m.pendingRemove = nil, nil
	for _, s := range remove {
		m.Remove(s)
	}
	for _, s := range add {
		m.Add(s)
	}
}

func (m *Manager) publish(t EventType, s *System) {
	if m.sink == nil {
		return
	}
	m.sink.Publish(SystemEvent{Type: t, Name: s.Name, ID: s.ID, Particles: s.ParticleCount()})
}

// Tick advances every system by one simulation step.
func (m *Manager) Tick() {
	if m.Paused {
		return
	}
	start := time.Now()
	m.colliders.ClearCache()
	m.iterating = true
	for _, s := range m.systems {
		m.guard(s, "update", s.Update)
	}
	m.iterating = false
	m.applyPending()
	m.stats.tickTime = time.Since(start)
	m.stats.ticks++
}

// Render draws every system into ctx.Draw. The camera's view transform is
// pushed onto ctx.Stack for the duration of the call.
func (m *Manager) Render(ctx *RenderContext) {
	start := time.Now()
	base := ctx.Stack.Depth()
	ctx.Stack.Push()
	ctx.Stack.MulInPlace(ctx.Camera.View())

	m.iterating = true
	for _, s := range m.systems {
		depth := ctx.Stack.Depth()
		m.guard(s, "render", func() error { return s.Render(ctx) })
		if err := ctx.Stack.AssertDepth(depth, s.Name); err != nil {
			m.fail(s, "render", err)
			ctx.Stack.Unwind(depth)
		}
	}
	m.iterating = false

	ctx.Stack.Unwind(base)
	m.applyPending()
	m.stats.renderTime = time.Since(start)
	m.stats.primitives = ctx.Draw.Len()
}

// guard runs fn, turning a returned error or a panic into a log entry.
func (m *Manager) guard(s *System, phase string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = errors.Errorf("%v", r)
			}
			m.fail(s, phase, errors.WithMessage(err, "panic"))
		}
	}()
	if err := fn(); err != nil {
		m.fail(s, phase, err)
	}
}

func (m *Manager) fail(s *System, phase string, err error) {
	m.stats.failures++
	m.logger.Error("particle system failed",
		zap.String("system", s.Name),
		zap.Stringer("id", s.ID),
		zap.String("phase", phase),
		zap.Error(err),
	)
}

// PrepareReload is the first phase of a resource reload, run while the old
// resources are still loaded.
func (m *Manager) PrepareReload() error {
	if m.iterating {
		return ErrConcurrentModification
	}
	var errs error
	for _, s := range m.systems {
		if err := s.PrepareReload(); err != nil {
			m.fail(s, "prepare reload", err)
			errs = multierr.Append(errs, errors.Wrapf(err, "system %q", s.Name))
		}
	}
	return errs
}

// ApplyReload is the second reload phase, swapping in the new resources.
// Particles are left as they are.
func (m *Manager) ApplyReload() error {
	if m.iterating {
		return ErrConcurrentModification
	}
	var errs error
	for _, s := range m.systems {
		if err := s.ApplyReload(); err != nil {
			m.fail(s, "apply reload", err)
			errs = multierr.Append(errs, errors.Wrapf(err, "system %q", s.Name))
			continue
		}
		m.publish(EventSystemReloaded, s)
	}
	return errs
}

// Reload runs both phases. A prepare failure in one system does not stop
// the others from applying.
func (m *Manager) Reload() error {
	return multierr.Append(m.PrepareReload(), m.ApplyReload())
}

// ClearParticles drops the particles of every system, for example when the
// host unloads its world.
func (m *Manager) ClearParticles() {
	for _, s := range m.systems {
		if err := s.Clear(); err != nil {
			m.fail(s, "clear", err)
		}
	}
}

// ParticleCount returns the live particle total across all systems.
func (m *Manager) ParticleCount() int {
	total := 0
	for _, s := range m.systems {
		total += s.ParticleCount()
	}
	return total
}
