package ebitenhost

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/glitter"
)

// projection maps view-space points onto the screen: view +X goes right,
// view +Y goes up, and the view origin lands at the screen centre.
type projection struct {
	cx, cy float64
	scale  float64
}

func (p projection) apply(v glitter.Vec3) (float32, float32) {
	return float32(p.cx + v.X*p.scale), float32(p.cy - v.Y*p.scale)
}

// batchKey groups primitives that can be submitted in a single draw call.
type batchKey struct {
	sprite glitter.Sprite
	blend  glitter.BlendMode
}

// batcher accumulates triangles and flushes them with DrawTriangles32
// whenever the batch key changes.
type batcher struct {
	proj  projection
	verts []ebiten.Vertex
	inds  []uint32
	key   batchKey
	calls int
}

func (b *batcher) begin(proj projection) {
	b.proj = proj
	b.verts = b.verts[:0]
	b.inds = b.inds[:0]
	b.key = batchKey{}
	b.calls = 0
}

// drawList submits every primitive in l, quads first.
func (b *batcher) drawList(target *ebiten.Image, l *glitter.DrawList) {
	for i := range l.Quads {
		q := &l.Quads[i]
		b.switchKey(target, batchKey{sprite: q.Sprite, blend: q.Blend})
		b.appendQuad(q)
	}
	for i := range l.Segments {
		s := &l.Segments[i]
		b.switchKey(target, batchKey{blend: s.Blend})
		b.appendSegment(s)
	}
	b.flush(target)
}

func (b *batcher) switchKey(target *ebiten.Image, key batchKey) {
	if key != b.key && len(b.verts) > 0 {
		b.flush(target)
	}
	b.key = key
}

// appendQuad appends 4 vertices and 6 indices for a sprite quad.
func (b *batcher) appendQuad(q *glitter.Quad) {
	bounds := spriteBounds(q.Sprite)
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	cr, cg, cb, ca := premultiplied(q.Color)

	base := uint32(len(b.verts))
	for i, c := range q.Corners {
		dx, dy := b.proj.apply(c)
		b.verts = append(b.verts, ebiten.Vertex{
			DstX:   dx,
			DstY:   dy,
			SrcX:   float32(float64(bounds.Min.X) + q.UV[i].X*w),
			SrcY:   float32(float64(bounds.Min.Y) + q.UV[i].Y*h),
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: ca,
		})
	}
	// Corners wind TL, TR, BR, BL: TL-TR-BR, TL-BR-BL
	b.inds = append(b.inds,
		base+0, base+1, base+2,
		base+0, base+2, base+3,
	)
}

// appendSegment appends a line as a screen-aligned quad Width pixels wide.
// Zero-length segments are dropped.
func (b *batcher) appendSegment(s *glitter.Segment) {
	x0, y0 := b.proj.apply(s.From)
	x1, y1 := b.proj.apply(s.To)
	dx, dy := float64(x1-x0), float64(y1-y0)
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	half := s.Width / 2
	nx, ny := float32(-dy/l*half), float32(dx/l*half)

	r0, g0, b0, a0 := premultiplied(s.FromColor)
	r1, g1, b1, a1 := premultiplied(s.ToColor)

	base := uint32(len(b.verts))
	b.verts = append(b.verts,
		ebiten.Vertex{DstX: x0 + nx, DstY: y0 + ny, SrcX: 0.5, SrcY: 0.5, ColorR: r0, ColorG: g0, ColorB: b0, ColorA: a0},
		ebiten.Vertex{DstX: x1 + nx, DstY: y1 + ny, SrcX: 0.5, SrcY: 0.5, ColorR: r1, ColorG: g1, ColorB: b1, ColorA: a1},
		ebiten.Vertex{DstX: x1 - nx, DstY: y1 - ny, SrcX: 0.5, SrcY: 0.5, ColorR: r1, ColorG: g1, ColorB: b1, ColorA: a1},
		ebiten.Vertex{DstX: x0 - nx, DstY: y0 - ny, SrcX: 0.5, SrcY: 0.5, ColorR: r0, ColorG: g0, ColorB: b0, ColorA: a0},
	)
	b.inds = append(b.inds,
		base+0, base+1, base+2,
		base+0, base+2, base+3,
	)
}

// flush submits accumulated vertices as a single DrawTriangles32 call.
func (b *batcher) flush(target *ebiten.Image) {
	if len(b.verts) == 0 {
		return
	}
	var op ebiten.DrawTrianglesOptions
	op.Blend = ebitenBlend(b.key.blend)
	op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha

	target.DrawTriangles32(b.verts, b.inds, spriteImage(b.key.sprite), &op)
	b.calls++

	b.verts = b.verts[:0]
	b.inds = b.inds[:0]
}

// premultiplied converts a straight-alpha color to premultiplied float32s.
func premultiplied(c glitter.Color) (r, g, b, a float32) {
	p := c.Premultiplied()
	return float32(p.R), float32(p.G), float32(p.B), float32(p.A)
}

// spriteBounds returns the source rect for a sprite, or the white pixel's
// for untextured primitives.
func spriteBounds(s glitter.Sprite) image.Rectangle {
	if s == nil {
		return image.Rect(0, 0, 1, 1)
	}
	if img, ok := s.(*ebiten.Image); ok && img == nil {
		return image.Rect(0, 0, 1, 1)
	}
	return s.Bounds()
}

func spriteImage(s glitter.Sprite) *ebiten.Image {
	if img, ok := s.(*ebiten.Image); ok && img != nil {
		return img
	}
	return ensureWhitePixel()
}

// --- White pixel singleton (no sync.Once, drawing is single-threaded) ---

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image.
// Used by untextured quads and line segments.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}
