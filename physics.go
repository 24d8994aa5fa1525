package glitter

// PhysicsConfig holds the default physics scalars. Each can be overridden
// per module with a binding.
type PhysicsConfig struct {
	Gravity    float64 `yaml:"gravity"`
	Bounciness float64 `yaml:"bounciness"`
	Friction   float64 `yaml:"friction"`
	Damping    float64 `yaml:"damping"`
}

// DefaultPhysics is a reasonable starting feel, tuned by eye for one-unit
// blocks at 20 ticks per second.
var DefaultPhysics = PhysicsConfig{
	Gravity:    0.04,
	Bounciness: 0.2,
	Friction:   0.2,
	Damping:    0.01,
}

// PhysicsModule integrates position and velocity, optionally colliding with
// a WorldCollider. Each tick it:
//
//  1. stores the current position in the previous-position binding
//  2. dampens the velocity
//  3. applies gravity to the Y axis
//  4. moves the particle, or with collision enabled:
//     a. casts the velocity against the collider and advances to the hit
//     b. stops if nothing was hit
//     c. reflects velocity on the normal axis and applies friction to the
//     other two
//  5. after a hit, collides once more with the unused fraction of velocity
//
// Step 5 keeps particles resting on the ground from sticking: gravity pulls
// them into the surface every tick and the first pass absorbs that.
//
// Velocity is written back only when the velocity binding is a WriteBinding.
// NaN inputs propagate; nothing is reported.
type PhysicsModule struct {
	position ReadWriteBinding
	previous WriteBinding
	velocity ReadBinding
	velOut   WriteBinding
	collider WorldCollider

	gravity    ReadBinding
	bounciness ReadBinding
	friction   ReadBinding
	damping    ReadBinding

	pos Vec3
	vel Vec3
	hit RayHit
}

var _ UpdateModule = (*PhysicsModule)(nil)

// PhysicsOption configures a PhysicsModule.
type PhysicsOption func(*PhysicsModule)

// WithCollider enables collision against c.
func WithCollider(c WorldCollider) PhysicsOption {
	return func(m *PhysicsModule) { m.collider = c }
}

// WithGravity sets the downward acceleration, subtracted from Y velocity
// every tick.
func WithGravity(b ReadBinding) PhysicsOption {
	return func(m *PhysicsModule) { m.gravity = b }
}

// WithBounciness sets the fraction of normal velocity kept on impact.
func WithBounciness(b ReadBinding) PhysicsOption {
	return func(m *PhysicsModule) { m.bounciness = b }
}

// WithFriction sets the fraction of tangential velocity lost on impact.
func WithFriction(b ReadBinding) PhysicsOption {
	return func(m *PhysicsModule) { m.friction = b }
}

// WithDamping sets the fraction of velocity lost every tick.
func WithDamping(b ReadBinding) PhysicsOption {
	return func(m *PhysicsModule) { m.damping = b }
}

// WithPhysicsConfig sets all four scalars to constants from cfg.
func WithPhysicsConfig(cfg PhysicsConfig) PhysicsOption {
	return func(m *PhysicsModule) {
		m.gravity = Constant(cfg.Gravity)
		m.bounciness = Constant(cfg.Bounciness)
		m.friction = Constant(cfg.Friction)
		m.damping = Constant(cfg.Damping)
	}
}

// NewPhysicsModule returns a physics step over 3-element position, previous
// position and velocity bindings. Unset scalars use DefaultPhysics.
func NewPhysicsModule(position ReadWriteBinding, previous WriteBinding, velocity ReadBinding, opts ...PhysicsOption) (*PhysicsModule, error) {
	m := &PhysicsModule{
		position: position,
		previous: previous,
		velocity: velocity,
	}
	WithPhysicsConfig(DefaultPhysics)(m)
	for _, opt := range opts {
		opt(m)
	}

	checks := []struct {
		name string
		b    Binding
		n    int
	}{
		{"position", position, 3},
		{"previous position", previous, 3},
		{"velocity", velocity, 3},
		{"gravity", m.gravity, 1},
		{"bounciness", m.bounciness, 1},
		{"friction", m.friction, 1},
		{"damping", m.damping, 1},
	}
	for _, c := range checks {
		if err := RequireSize(c.name, c.b, c.n); err != nil {
			return nil, err
		}
	}
	if w, ok := velocity.(WriteBinding); ok {
		m.velOut = w
	}
	return m, nil
}

// Update implements UpdateModule.
func (m *PhysicsModule) Update(particle []float64) {
	m.position.Load(particle)
	m.pos = vec3Of(m.position.Contents())
	m.velocity.Load(particle)
	m.vel = vec3Of(m.velocity.Contents())

	m.pos.storeTo(m.previous.Contents())
	m.previous.Store(particle)

	m.gravity.Load(particle)
	m.bounciness.Load(particle)
	m.friction.Load(particle)
	m.damping.Load(particle)

	m.vel = m.vel.Mul(1 - m.damping.Contents()[0])
	m.vel.Y -= m.gravity.Contents()[0]

	if m.collider != nil {
		m.collide(1)
		if m.hit.Hit() {
			m.collide(1 - m.hit.Fraction)
		}
	} else {
		m.pos = m.pos.Add(m.vel)
	}

	m.pos.storeTo(m.position.Contents())
	m.position.Store(particle)

	if m.velOut != nil {
		m.vel.storeTo(m.velOut.Contents())
		m.velOut.Store(particle)
	}
}

// collide advances along scale·velocity up to the first hit and applies the
// impact response.
func (m *PhysicsModule) collide(scale float64) {
	step := m.vel.Mul(scale)
	m.collider.Collide(&m.hit, m.pos, step)
	m.pos = m.pos.Add(step.Mul(m.hit.Fraction))
	if !m.hit.Hit() {
		return
	}

	axis := m.hit.Normal.Abs()
	bounce := m.bounciness.Contents()[0]
	friction := m.friction.Contents()[0]

	m.vel.X *= (1 - axis.X*(1+bounce)) * (1 - (1-axis.X)*friction)
	m.vel.Y *= (1 - axis.Y*(1+bounce)) * (1 - (1-axis.Y)*friction)
	m.vel.Z *= (1 - axis.Z*(1+bounce)) * (1 - (1-axis.Z)*friction)
}
