package glitter

import "math"

// RayHit receives the result of a WorldCollider query.
type RayHit struct {
	// Fraction of the ray travelled before the hit, in [0, 1]. 1 means no hit.
	Fraction float64
	// Normal is the surface normal at the hit. Zero when there was no hit.
	Normal Vec3
}

// Reset sets h to the no-hit state.
func (h *RayHit) Reset() {
	h.Fraction = 1
	h.Normal = Vec3{}
}

// Hit reports whether the ray struck something.
func (h *RayHit) Hit() bool { return h.Fraction < 1 }

// WorldCollider answers ray queries against the host's static geometry.
// Collide casts from origin along delta and writes the nearest hit into hit.
// Implementations may cache geometry; ClearCache drops any cached state.
type WorldCollider interface {
	Collide(hit *RayHit, origin, delta Vec3)
	ClearCache()
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max Vec3
}

// BoxSource supplies the collision boxes overlapping the unit cell with the
// given integer coordinates, appending them to dst. A box spanning several
// cells should be reported for each of them.
type BoxSource interface {
	BoxesAt(x, y, z int, dst []Box) []Box
}

// BoxSourceFunc adapts a function to BoxSource.
type BoxSourceFunc func(x, y, z int, dst []Box) []Box

func (f BoxSourceFunc) BoxesAt(x, y, z int, dst []Box) []Box { return f(x, y, z, dst) }

type cellKey struct{ x, y, z int }

// BoxCollider is a WorldCollider over boxes fetched per unit cell from a
// BoxSource. Fetched cells are cached until ClearCache, since fetching is
// usually the most expensive part of a query.
type BoxCollider struct {
	source BoxSource
	cache  map[cellKey][]Box
}

var _ WorldCollider = (*BoxCollider)(nil)

// NewBoxCollider returns a collider backed by source.
func NewBoxCollider(source BoxSource) *BoxCollider {
	return &BoxCollider{source: source, cache: make(map[cellKey][]Box)}
}

// ClearCache drops every cached cell.
func (c *BoxCollider) ClearCache() {
	clear(c.cache)
}

// CachedCells returns the number of cells currently cached.
func (c *BoxCollider) CachedCells() int { return len(c.cache) }

func (c *BoxCollider) boxes(k cellKey) []Box {
	if b, ok := c.cache[k]; ok {
		return b
	}
	b := c.source.BoxesAt(k.x, k.y, k.z, nil)
	c.cache[k] = b
	return b
}

const (
	// maxRayCells bounds the cells one query visits. Longer rays stop there
	// without a hit.
	maxRayCells = 1 << 12
	// maxCellCoord bounds the coordinates a ray may start or end at.
	maxCellCoord = 1 << 30
)

// Collide implements WorldCollider. It walks the unit cells the ray crosses
// in order and stops once no later cell can hold a nearer hit. Rays with a
// NaN or infinite component, or ending beyond maxCellCoord, never hit.
func (c *BoxCollider) Collide(hit *RayHit, origin, delta Vec3) {
	hit.Reset()
	if !cellAddressable(origin) || !cellAddressable(origin.Add(delta)) {
		return
	}

	var cell, step [3]int
	var next, span [3]float64
	for i := 0; i < 3; i++ {
		o, d := origin.component(i), delta.component(i)
		cell[i] = int(math.Floor(o))
		switch {
		case d > 0:
			step[i] = 1
			next[i] = (float64(cell[i]+1) - o) / d
			span[i] = 1 / d
		case d < 0:
			step[i] = -1
			next[i] = (float64(cell[i]) - o) / d
			span[i] = -1 / d
		default:
			next[i] = math.Inf(1)
			span[i] = math.Inf(1)
		}
	}

	for n := 0; n < maxRayCells; n++ {
		for _, b := range c.boxes(cellKey{cell[0], cell[1], cell[2]}) {
			if f, norm, ok := intersectBox(origin, delta, b); ok && f < hit.Fraction {
				hit.Fraction = f
				hit.Normal = norm
			}
		}
		axis := 0
		if next[1] < next[axis] {
			axis = 1
		}
		if next[2] < next[axis] {
			axis = 2
		}
		if next[axis] >= 1 || next[axis] > hit.Fraction {
			return
		}
		cell[axis] += step[axis]
		next[axis] += span[axis]
	}
}

func cellAddressable(v Vec3) bool {
	return math.Abs(v.X) < maxCellCoord && math.Abs(v.Y) < maxCellCoord && math.Abs(v.Z) < maxCellCoord
}

// intersectBox is a slab test. It returns the entry fraction along delta and
// the normal of the entry face. Rays starting inside the box, or merely
// sliding along one of its faces, do not hit.
func intersectBox(origin, delta Vec3, b Box) (float64, Vec3, bool) {
	enter, exit := math.Inf(-1), math.Inf(1)
	axis := -1
	sign := 0.0
	for i := 0; i < 3; i++ {
		o, d := origin.component(i), delta.component(i)
		lo, hi := b.Min.component(i), b.Max.component(i)
		if d == 0 {
			if o <= lo || o >= hi {
				return 0, Vec3{}, false
			}
			continue
		}
		t1, t2 := (lo-o)/d, (hi-o)/d
		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1
		}
		if t1 > enter {
			enter, axis, sign = t1, i, s
		}
		exit = math.Min(exit, t2)
	}
	if axis < 0 || enter < 0 || enter >= 1 || enter > exit {
		return 0, Vec3{}, false
	}
	return enter, axisVec3(axis, sign), true
}

// PlaneCollider is an infinite axis-aligned plane, solid on one side.
type PlaneCollider struct {
	// Axis is the plane normal's axis: 0=X, 1=Y, 2=Z.
	Axis int
	// Offset is the plane's coordinate on Axis.
	Offset float64
	// Facing is +1 when the open side is toward +Axis (a floor for Axis 1),
	// -1 for the opposite.
	Facing float64
}

var _ WorldCollider = PlaneCollider{}

// Floor returns a plane at height y that is solid below.
func Floor(y float64) PlaneCollider {
	return PlaneCollider{Axis: 1, Offset: y, Facing: 1}
}

// Collide implements WorldCollider. Rays moving away from the plane, or
// starting on its solid side, do not hit.
func (p PlaneCollider) Collide(hit *RayHit, origin, delta Vec3) {
	hit.Reset()
	dist := (origin.component(p.Axis) - p.Offset) * p.Facing
	d := delta.component(p.Axis) * p.Facing
	if dist < 0 || d >= 0 || dist+d >= 0 {
		return
	}
	hit.Fraction = dist / -d
	hit.Normal = axisVec3(p.Axis, p.Facing)
}

func (PlaneCollider) ClearCache() {}

// Colliders queries every member and keeps the nearest hit.
type Colliders []WorldCollider

var _ WorldCollider = Colliders(nil)

func (cs Colliders) Collide(hit *RayHit, origin, delta Vec3) {
	hit.Reset()
	var h RayHit
	for _, c := range cs {
		c.Collide(&h, origin, delta)
		if h.Fraction < hit.Fraction {
			*hit = h
		}
	}
}

func (cs Colliders) ClearCache() {
	for _, c := range cs {
		c.ClearCache()
	}
}
