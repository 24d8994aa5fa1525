package glitter

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// UpdateModule is one per-particle step of the update pipeline. Modules run
// in registration order once per tick for every live particle.
type UpdateModule interface {
	Update(particle []float64)
}

// GlobalUpdateModule runs once per tick over the whole collection, before any
// per-particle module. The slice MUST NOT be resized.
type GlobalUpdateModule interface {
	UpdateGlobal(particles [][]float64)
}

// UpdateFunc adapts a plain function to UpdateModule.
type UpdateFunc func(particle []float64)

func (f UpdateFunc) Update(particle []float64) { f(particle) }

// System is one independent particle simulation: a collection of fixed-width
// float64 records plus the ordered module pipelines that update and render
// them. Systems are single-threaded; all methods must be called from the
// host's tick/render goroutine.
type System struct {
	Name string
	ID   uuid.UUID

	// MaxParticles caps the live count. AddParticle fails with ErrSystemFull
	// once reached. Zero means unlimited.
	MaxParticles int

	// Lifetime and Age occupy the first two slots of every record.
	Lifetime *StoreBinding
	Age      *StoreBinding

	configure  func(*System) error
	fieldCount int
	fields     []*StoreBinding

	globalModules []GlobalUpdateModule
	updateModules []UpdateModule
	renderPrep    []UpdateModule
	renderModules []RenderModule

	particles [][]float64
	expired   []bool
	pending   [][]float64
	pool      [][]float64

	iterating bool
	violation error
}

// SystemOption configures a System at construction.
type SystemOption func(*System)

// WithMaxParticles sets System.MaxParticles.
func WithMaxParticles(n int) SystemOption {
	return func(s *System) { s.MaxParticles = n }
}

// NewSystem creates a system and runs configure, which declares the record
// layout with Bind and registers modules. A configure error (typically a
// *BindingSizeError from a module constructor) is returned here, never at
// tick time.
func NewSystem(name string, configure func(*System) error, opts ...SystemOption) (*System, error) {
	s := &System{Name: name, ID: uuid.New(), configure: configure}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.build(); err != nil {
		return nil, errors.Wrapf(err, "configure system %q", name)
	}
	return s, nil
}

func (s *System) build() error {
	s.fieldCount = 0
	s.fields = nil
	s.globalModules = nil
	s.updateModules = nil
	s.renderPrep = nil
	s.renderModules = nil
	s.pool = nil

	s.Lifetime = s.alloc(1)
	s.Age = s.alloc(1)
	if s.configure == nil {
		return nil
	}
	return s.configure(s)
}

func (s *System) alloc(size int) *StoreBinding {
	b := newStoreBinding(s.fieldCount, size)
	s.fieldCount += size
	return b
}

// Bind reserves size consecutive slots in every record and returns a binding
// over them. AddParticle fills bound fields in Bind order. Bind panics when
// the system already holds particles.
func (s *System) Bind(size int) *StoreBinding {
	if len(s.particles) > 0 || len(s.pending) > 0 {
		panic("glitter: Bind called on system " + s.Name + " with live particles")
	}
	b := s.alloc(size)
	s.fields = append(s.fields, b)
	return b
}

// RecordSize returns the length of each particle record.
func (s *System) RecordSize() int { return s.fieldCount }

// Fields returns the bindings created by Bind, in order.
func (s *System) Fields() []*StoreBinding { return s.fields }

// AddGlobalUpdateModule appends modules that run once per tick.
func (s *System) AddGlobalUpdateModule(m ...GlobalUpdateModule) {
	s.globalModules = append(s.globalModules, m...)
}

// AddUpdateModule appends per-particle update modules.
func (s *System) AddUpdateModule(m ...UpdateModule) {
	s.updateModules = append(s.updateModules, m...)
}

// AddRenderPrepModule appends modules that render modules run on each
// particle before reading it, for values only needed at render time.
func (s *System) AddRenderPrepModule(m ...UpdateModule) {
	s.renderPrep = append(s.renderPrep, m...)
}

// AddRenderModule appends render modules.
func (s *System) AddRenderModule(m ...RenderModule) {
	s.renderModules = append(s.renderModules, m...)
}

// ParticleCount returns the number of live particles, excluding adds still
// deferred from the current pass.
func (s *System) ParticleCount() int { return len(s.particles) }

// Particles returns the live records. The slice and records MUST NOT be
// retained across ticks.
func (s *System) Particles() [][]float64 { return s.particles }

// AddParticle spawns a particle with the given lifetime in ticks. params fill
// the bound fields in Bind order; missing trailing values are zero. Calls made
// during Update or Render are applied after the pass.
func (s *System) AddParticle(lifetime float64, params ...float64) ([]float64, error) {
	if max := s.fieldCount - 2; len(params) > max {
		return nil, &BindingSizeError{Name: "params", Expected: max, Actual: len(params)}
	}
	if s.MaxParticles > 0 && len(s.particles)+len(s.pending) >= s.MaxParticles {
		return nil, ErrSystemFull
	}
	record := s.obtain()
	record[0] = lifetime
	copy(record[2:], params)
	if s.iterating {
		s.pending = append(s.pending, record)
	} else {
		s.particles = append(s.particles, record)
	}
	return record, nil
}

// obtain returns a zeroed record, reusing a released one when possible.
func (s *System) obtain() []float64 {
	if n := len(s.pool); n > 0 {
		r := s.pool[n-1]
		s.pool[n-1] = nil
		s.pool = s.pool[:n-1]
		clear(r)
		return r
	}
	return make([]float64, s.fieldCount)
}

func (s *System) release(r []float64) {
	if len(r) == s.fieldCount {
		s.pool = append(s.pool, r)
	}
}

// Update runs one tick: global modules, then for each particle the aging
// check followed by the update modules. Particles whose age has reached their
// lifetime are skipped and removed after the pass, preserving the order of
// the survivors. Deferred adds are appended last.
//
// If a module structurally modifies the collection (for example by calling
// Clear), the rest of the pass is skipped and the violation is returned.
func (s *System) Update() (err error) {
	if s.iterating {
		return ErrConcurrentModification
	}
	s.iterating = true
	defer func() {
		s.iterating = false
		s.compact()
		s.flushPending()
		if v := s.takeViolation(); v != nil && err == nil {
			err = errors.Wrapf(v, "update system %q", s.Name)
		}
	}()

	for _, g := range s.globalModules {
		g.UpdateGlobal(s.particles)
		if s.violation != nil {
			return nil
		}
	}

	if cap(s.expired) < len(s.particles) {
		s.expired = make([]bool, len(s.particles))
	} else {
		s.expired = s.expired[:len(s.particles)]
		clear(s.expired)
	}

	lifetime, age := s.Lifetime.index, s.Age.index
	for i, p := range s.particles {
		if p[age] >= p[lifetime] {
			s.expired[i] = true
			continue
		}
		p[age]++
		for _, m := range s.updateModules {
			m.Update(p)
		}
		if s.violation != nil {
			return nil
		}
	}
	return nil
}

func (s *System) takeViolation() error {
	v := s.violation
	s.violation = nil
	return v
}

// compact removes expired particles, keeping the rest in order.
func (s *System) compact() {
	n := 0
	for i, p := range s.particles {
		if i < len(s.expired) && s.expired[i] {
			s.release(p)
			continue
		}
		s.particles[n] = p
		n++
	}
	clear(s.particles[n:])
	s.particles = s.particles[:n]
	s.expired = s.expired[:0]
}

func (s *System) flushPending() {
	s.particles = append(s.particles, s.pending...)
	clear(s.pending)
	s.pending = s.pending[:0]
}

// Render runs every render module over the live particles.
func (s *System) Render(ctx *RenderContext) (err error) {
	if s.iterating {
		return ErrConcurrentModification
	}
	s.iterating = true
	defer func() {
		s.iterating = false
		s.flushPending()
		if v := s.takeViolation(); v != nil && err == nil {
			err = errors.Wrapf(v, "render system %q", s.Name)
		}
	}()

	for _, m := range s.renderModules {
		m.Render(ctx, s.particles, s.renderPrep)
		if s.violation != nil {
			return nil
		}
	}
	return nil
}

// Clear removes every particle. Calling it from inside a module aborts the
// current pass and returns ErrConcurrentModification.
func (s *System) Clear() error {
	if s.iterating {
		s.violation = ErrConcurrentModification
		return ErrConcurrentModification
	}
	for _, p := range s.particles {
		s.release(p)
	}
	clear(s.particles)
	s.particles = s.particles[:0]
	return nil
}

// Reset clears all particles and reruns the configure function, rebuilding
// the record layout and module lists.
func (s *System) Reset() error {
	if err := s.Clear(); err != nil {
		return err
	}
	if err := s.build(); err != nil {
		return errors.Wrapf(err, "configure system %q", s.Name)
	}
	return nil
}

// PrepareReload runs the first reload phase on every Reloadable render
// module, while the previous resources are still in use.
func (s *System) PrepareReload() error {
	var err error
	for _, m := range s.renderModules {
		if r, ok := m.(Reloadable); ok {
			err = multierr.Append(err, r.PrepareReload())
		}
	}
	return err
}

// ApplyReload swaps in the resources staged by PrepareReload. Particles are
// untouched.
func (s *System) ApplyReload() error {
	var err error
	for _, m := range s.renderModules {
		if r, ok := m.(Reloadable); ok {
			err = multierr.Append(err, r.ApplyReload())
		}
	}
	return err
}

// Reload runs both reload phases back to back.
func (s *System) Reload() error {
	if err := s.PrepareReload(); err != nil {
		return err
	}
	return s.ApplyReload()
}
