package glitter

import "math"

// Camera is the viewer supplied by the host each frame. Yaw and Pitch are in
// degrees: yaw 0 looks toward +Z and increases clockwise seen from above,
// positive pitch looks down.
type Camera struct {
	Position Vec3
	Yaw      float64
	Pitch    float64
}

// Basis returns the unit right and up vectors of the camera's view plane.
// Billboards are spanned by these so they always face the viewer.
func (c Camera) Basis() (right, up Vec3) {
	yawSin, yawCos := math.Sincos(-toRadians(c.Yaw + 180))
	pitchSin, pitchCos := math.Sincos(-toRadians(c.Pitch))
	right = Vec3{yawCos, 0, -yawSin}
	up = Vec3{yawSin * pitchSin, pitchCos, yawCos * pitchSin}
	return right, up
}

// Look returns the unit view direction.
func (c Camera) Look() Vec3 {
	right, up := c.Basis()
	return up.Cross(right)
}

// View returns the world-to-view matrix. In view space +X is right, +Y is up
// and +Z points away from the viewer.
func (c Camera) View() Matrix4 {
	right, up := c.Basis()
	look := up.Cross(right)
	return Matrix4FromRows(
		[4]float64{right.X, right.Y, right.Z, -right.Dot(c.Position)},
		[4]float64{up.X, up.Y, up.Z, -up.Dot(c.Position)},
		[4]float64{look.X, look.Y, look.Z, -look.Dot(c.Position)},
		[4]float64{0, 0, 0, 1},
	)
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }
