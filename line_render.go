package glitter

// LineRenderModule draws particles as chains of connected line segments.
//
// Unlike SpriteRenderModule its output depends on particle order: each
// particle is joined to the one before it, and a particle whose isEnd value
// is non-zero ends its chain so the next particle starts a new one.
type LineRenderModule struct {
	isEnd    ReadBinding
	previous ReadBinding
	position ReadBinding
	color    ReadBinding
	alpha    ReadBinding
	width    float64
	blend    BlendMode
}

var _ RenderModule = (*LineRenderModule)(nil)

// LineOption configures a LineRenderModule.
type LineOption func(*LineRenderModule)

// WithLineAlpha multiplies the color's alpha.
func WithLineAlpha(b ReadBinding) LineOption {
	return func(m *LineRenderModule) { m.alpha = b }
}

// WithLineBlend sets the blend mode.
func WithLineBlend(mode BlendMode) LineOption {
	return func(m *LineRenderModule) { m.blend = mode }
}

// NewLineRenderModule returns a chain renderer. width is in host pixels.
func NewLineRenderModule(isEnd, previous, position, color ReadBinding, width float64, opts ...LineOption) (*LineRenderModule, error) {
	m := &LineRenderModule{
		isEnd:    isEnd,
		previous: previous,
		position: position,
		color:    color,
		width:    width,
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := RequireSize("isEnd", isEnd, 1); err != nil {
		return nil, err
	}
	if err := RequireSize("previous position", previous, 3); err != nil {
		return nil, err
	}
	if err := RequireSize("position", position, 3); err != nil {
		return nil, err
	}
	if err := RequireSize("color", color, 4); err != nil {
		return nil, err
	}
	if err := requireOptional("alpha", m.alpha, 1); err != nil {
		return nil, err
	}
	return m, nil
}

// Render implements RenderModule.
func (m *LineRenderModule) Render(ctx *RenderContext, particles [][]float64, prep []UpdateModule) {
	mv := ctx.Stack.Frozen()

	start := true
	var prevPos Vec3
	var prevColor Color
	for _, p := range particles {
		for _, pm := range prep {
			pm.Update(p)
		}

		m.previous.Load(p)
		m.position.Load(p)
		m.color.Load(p)
		m.isEnd.Load(p)

		pos := mv.TransformPoint(ctx.InterpolateVec3(vec3Of(m.previous.Contents()), vec3Of(m.position.Contents())))
		c := m.color.Contents()
		color := Color{c[0], c[1], c[2], c[3]}
		if m.alpha != nil {
			m.alpha.Load(p)
			color.A *= m.alpha.Contents()[0]
		}

		if start {
			start = false
		} else {
			ctx.Draw.AddSegment(Segment{
				From:      prevPos,
				To:        pos,
				FromColor: prevColor,
				ToColor:   color,
				Width:     m.width,
				Blend:     m.blend,
			})
		}

		if m.isEnd.Contents()[0] != 0 {
			start = true
		} else {
			prevPos, prevColor = pos, color
		}
	}
}
