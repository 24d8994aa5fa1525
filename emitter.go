package glitter

// EmitterConfig controls how an Emitter spawns particles.
type EmitterConfig struct {
	// Rate is the number of particles spawned per tick. Fractional rates
	// accumulate across ticks.
	Rate float64 `yaml:"rate"`
	// Lifetime is the range of particle lifetimes in ticks.
	Lifetime Range `yaml:"lifetime"`
	// Params randomizes the bound fields in Bind order. Fields past the end
	// start at zero.
	Params []Range `yaml:"params"`
}

// Emitter is a GlobalUpdateModule that spawns particles into its system at a
// steady rate. Particles spawned during a tick join the system after it, so
// they are first updated on the following tick.
//
// New particles are silently dropped while the system is full.
type Emitter struct {
	// Init, when set, runs on every new record after Params are applied. Use
	// it for values derived from others, such as a velocity from a random
	// angle and speed.
	Init func(particle []float64)

	system  *System
	config  EmitterConfig
	active  bool
	accum   float64
	dropped int
	params  []float64
}

var _ GlobalUpdateModule = (*Emitter)(nil)

// NewEmitter returns an active emitter for s. Register it from the system's
// configure function with AddGlobalUpdateModule.
func NewEmitter(s *System, cfg EmitterConfig) (*Emitter, error) {
	if max := s.RecordSize() - 2; len(cfg.Params) > max {
		return nil, &BindingSizeError{Name: "params", Expected: max, Actual: len(cfg.Params)}
	}
	return &Emitter{
		system: s,
		config: cfg,
		active: true,
		params: make([]float64, len(cfg.Params)),
	}, nil
}

// Start resumes emission.
func (e *Emitter) Start() { e.active = true }

// Stop stops emitting new particles. Existing particles live out their
// lifetime.
func (e *Emitter) Stop() {
	e.active = false
	e.accum = 0
}

// IsActive reports whether the emitter is emitting.
func (e *Emitter) IsActive() bool { return e.active }

// Config returns the emitter's config for live tuning.
func (e *Emitter) Config() *EmitterConfig { return &e.config }

// Dropped returns how many particles were not spawned because the system
// was full.
func (e *Emitter) Dropped() int { return e.dropped }

// UpdateGlobal implements GlobalUpdateModule.
func (e *Emitter) UpdateGlobal([][]float64) {
	if !e.active || e.config.Rate <= 0 {
		return
	}
	e.accum += e.config.Rate
	for e.accum >= 1 {
		e.accum--
		e.spawn()
	}
}

// Burst spawns n particles immediately, regardless of the emitter's state,
// and returns how many fit.
func (e *Emitter) Burst(n int) int {
	spawned := 0
	for i := 0; i < n; i++ {
		if e.spawn() {
			spawned++
		}
	}
	return spawned
}

func (e *Emitter) spawn() bool {
	for i, r := range e.config.Params {
		e.params[i] = r.Random()
	}
	p, err := e.system.AddParticle(e.config.Lifetime.Random(), e.params...)
	if err != nil {
		e.dropped++
		return false
	}
	if e.Init != nil {
		e.Init(p)
	}
	return true
}
