package glitter

import "github.com/pkg/errors"

// SpriteRenderModule draws each particle as a square sprite centred on its
// position. Sprites are billboarded toward the camera unless a facing vector
// is bound. A facing vector containing NaN, or one pointing straight up or
// down, falls back to the camera basis for that particle.
type SpriteRenderModule struct {
	position ReadBinding
	previous ReadBinding
	color    ReadBinding
	size     ReadBinding
	facing   ReadBinding
	alpha    ReadBinding
	blend    BlendMode
	is2D     bool

	name     string
	resolver SpriteResolver
	sprite   Sprite
	staged   Sprite
}

var (
	_ RenderModule = (*SpriteRenderModule)(nil)
	_ Reloadable   = (*SpriteRenderModule)(nil)
)

// SpriteOption configures a SpriteRenderModule.
type SpriteOption func(*SpriteRenderModule)

// WithPreviousPosition enables interpolation between ticks. Passing the
// position binding itself disables it, which keeps slow effects from
// jittering.
func WithPreviousPosition(b ReadBinding) SpriteOption {
	return func(m *SpriteRenderModule) { m.previous = b }
}

// WithColor sets the RGBA color binding. Defaults to opaque white.
func WithColor(b ReadBinding) SpriteOption {
	return func(m *SpriteRenderModule) { m.color = b }
}

// WithSize sets the edge length binding. Defaults to 1.
func WithSize(b ReadBinding) SpriteOption {
	return func(m *SpriteRenderModule) { m.size = b }
}

// WithFacing sets a facing vector used instead of the camera. It does not
// need to be normalized.
func WithFacing(b ReadBinding) SpriteOption {
	return func(m *SpriteRenderModule) { m.facing = b }
}

// WithAlphaMultiplier scales the color's alpha. Defaults to 1.
func WithAlphaMultiplier(b ReadBinding) SpriteOption {
	return func(m *SpriteRenderModule) { m.alpha = b }
}

// WithSpriteBlend sets the blend mode.
func WithSpriteBlend(mode BlendMode) SpriteOption {
	return func(m *SpriteRenderModule) { m.blend = mode }
}

// With2D renders on the screen plane, ignoring the camera orientation.
func With2D() SpriteOption {
	return func(m *SpriteRenderModule) { m.is2D = true }
}

// NewSpriteRenderModule returns a sprite renderer for the named sprite. The
// sprite is resolved now and again on every reload. A nil resolver draws
// untextured quads.
func NewSpriteRenderModule(sprite string, resolver SpriteResolver, position ReadBinding, opts ...SpriteOption) (*SpriteRenderModule, error) {
	m := &SpriteRenderModule{
		position: position,
		color:    Constant(1, 1, 1, 1),
		size:     Constant(1),
		alpha:    Constant(1),
		name:     sprite,
		resolver: resolver,
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := RequireSize("position", position, 3); err != nil {
		return nil, err
	}
	if err := requireOptional("previous position", m.previous, 3); err != nil {
		return nil, err
	}
	if err := RequireSize("color", m.color, 4); err != nil {
		return nil, err
	}
	if err := RequireSize("size", m.size, 1); err != nil {
		return nil, err
	}
	if err := requireOptional("facing", m.facing, 3); err != nil {
		return nil, err
	}
	if err := RequireSize("alpha", m.alpha, 1); err != nil {
		return nil, err
	}
	s, err := m.resolve()
	if err != nil {
		return nil, err
	}
	m.sprite = s
	return m, nil
}

// Sprite returns the currently resolved sprite.
func (m *SpriteRenderModule) Sprite() Sprite { return m.sprite }

func (m *SpriteRenderModule) resolve() (Sprite, error) {
	if m.resolver == nil {
		return nil, nil
	}
	s, err := m.resolver.ResolveSprite(m.name)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve sprite %q", m.name)
	}
	return s, nil
}

// PrepareReload implements Reloadable.
func (m *SpriteRenderModule) PrepareReload() error {
	s, err := m.resolve()
	if err != nil {
		m.staged = nil
		return err
	}
	m.staged = s
	return nil
}

// ApplyReload implements Reloadable. The old sprite is kept when the prepare
// phase failed.
func (m *SpriteRenderModule) ApplyReload() error {
	if m.staged != nil {
		m.sprite = m.staged
		m.staged = nil
	}
	return nil
}

// Render implements RenderModule.
func (m *SpriteRenderModule) Render(ctx *RenderContext, particles [][]float64, prep []UpdateModule) {
	mv := ctx.Stack.Frozen()
	camRight, camUp := ctx.Camera.Basis()
	if m.is2D {
		camRight, camUp = Vec3{X: 1}, Vec3{Y: 1}
	}

	for _, p := range particles {
		for _, pm := range prep {
			pm.Update(p)
		}

		right, up := camRight, camUp
		if m.facing != nil {
			m.facing.Load(p)
			if r, u, ok := facingBasis(vec3Of(m.facing.Contents())); ok {
				right, up = r, u
			}
		}

		m.size.Load(p)
		half := m.size.Contents()[0] / 2
		r, u := right.Mul(half), up.Mul(half)

		m.position.Load(p)
		pos := vec3Of(m.position.Contents())
		if m.previous != nil {
			m.previous.Load(p)
			pos = ctx.InterpolateVec3(vec3Of(m.previous.Contents()), pos)
		}

		m.color.Load(p)
		m.alpha.Load(p)
		c := m.color.Contents()
		color := Color{c[0], c[1], c[2], c[3] * m.alpha.Contents()[0]}

		ctx.Draw.AddQuad(Quad{
			Corners: [4]Vec3{
				mv.TransformPoint(pos.Sub(r).Add(u)),
				mv.TransformPoint(pos.Add(r).Add(u)),
				mv.TransformPoint(pos.Add(r).Sub(u)),
				mv.TransformPoint(pos.Sub(r).Sub(u)),
			},
			UV:     fullUV,
			Color:  color,
			Sprite: m.sprite,
			Blend:  m.blend,
		})
	}
}

// facingBasis returns the right and up vectors of a quad facing along f.
// Right stays horizontal. ok is false when f contains NaN or has no
// horizontal component.
func facingBasis(f Vec3) (right, up Vec3, ok bool) {
	if f.HasNaN() {
		return Vec3{}, Vec3{}, false
	}
	right, err := Vec3{f.Z, 0, -f.X}.Normalize()
	if err != nil {
		return Vec3{}, Vec3{}, false
	}
	up, err = Vec3{-f.Y * f.X, f.Z*f.Z + f.X*f.X, -f.Y * f.Z}.Normalize()
	if err != nil {
		return Vec3{}, Vec3{}, false
	}
	return right, up, true
}
