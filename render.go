package glitter

import "image"

// RenderModule converts particle records into primitives on ctx.Draw. It must
// not modify the records. prep modules are run by the render module on each
// particle before it reads the particle's bindings.
type RenderModule interface {
	Render(ctx *RenderContext, particles [][]float64, prep []UpdateModule)
}

// Reloadable is implemented by render modules that cache host resources.
// PrepareReload runs while the old resources are still live; ApplyReload
// swaps in what was prepared.
type Reloadable interface {
	PrepareReload() error
	ApplyReload() error
}

// Sprite is a drawable texture handle owned by the host. *ebiten.Image
// satisfies it. Implementations must be comparable; hosts batch by sprite.
type Sprite interface {
	Bounds() image.Rectangle
}

// SpriteResolver maps sprite names to host textures.
type SpriteResolver interface {
	ResolveSprite(name string) (Sprite, error)
}

// SpriteResolverFunc adapts a function to SpriteResolver.
type SpriteResolverFunc func(name string) (Sprite, error)

func (f SpriteResolverFunc) ResolveSprite(name string) (Sprite, error) { return f(name) }

// RenderContext carries per-frame state into render modules.
type RenderContext struct {
	Camera Camera
	// PartialTick is how far the frame lies between the previous tick and the
	// current one, in [0, 1).
	PartialTick float64
	// Stack holds the world-to-view transform. Modules may push their own
	// transforms but must restore the depth they found.
	Stack *Matrix4Stack
	Draw  *DrawList
}

// NewRenderContext returns a context with an identity stack and an empty
// draw list.
func NewRenderContext() *RenderContext {
	return &RenderContext{Stack: NewMatrix4Stack(), Draw: &DrawList{}}
}

// Interpolate blends a value from the previous tick toward the current one.
func (c *RenderContext) Interpolate(prev, cur float64) float64 {
	return lerp(prev, cur, c.PartialTick)
}

// InterpolateVec3 is Interpolate for vectors.
func (c *RenderContext) InterpolateVec3(prev, cur Vec3) Vec3 {
	return prev.Lerp(cur, c.PartialTick)
}

// Quad is a textured quad in view space. Corners wind top-left, top-right,
// bottom-right, bottom-left.
type Quad struct {
	Corners [4]Vec3
	UV      [4]Vec2
	Color   Color
	Sprite  Sprite
	Blend   BlendMode
}

// Segment is a line in view space with per-end colors.
type Segment struct {
	From, To           Vec3
	FromColor, ToColor Color
	Width              float64
	Blend              BlendMode
}

// DrawList collects the primitives of one frame. Hosts draw and then Reset it.
type DrawList struct {
	Quads    []Quad
	Segments []Segment
}

// AddQuad appends q.
func (d *DrawList) AddQuad(q Quad) { d.Quads = append(d.Quads, q) }

// AddSegment appends s.
func (d *DrawList) AddSegment(s Segment) { d.Segments = append(d.Segments, s) }

// Len returns the number of primitives.
func (d *DrawList) Len() int { return len(d.Quads) + len(d.Segments) }

// Reset empties the list, keeping its capacity.
func (d *DrawList) Reset() {
	clear(d.Quads)
	d.Quads = d.Quads[:0]
	d.Segments = d.Segments[:0]
}

// fullUV maps a quad over the whole sprite.
var fullUV = [4]Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
