package geom

import "github.com/go-gl/mathgl/mgl64"

// Frame is a position with an orthonormal basis.
// Right = Forward x Up, Up = Right x Forward.
type Frame struct {
	Position mgl64.Vec3
	Right    mgl64.Vec3
	Up       mgl64.Vec3
	Forward  mgl64.Vec3
}

// Orthonormalize rebuilds Right and Up from Forward and Up.
// Degenerate input falls back to the values of prev.
func (f Frame) Orthonormalize(prev Frame) Frame {
	f.Forward = SafeNormalize(f.Forward, prev.Forward)
	f.Up = SafeNormalize(f.Up, prev.Up)
	f.Right = SafeNormalize(f.Forward.Cross(f.Up), prev.Right)
	f.Up = f.Right.Cross(f.Forward)
	return f
}

// Local converts a world position into frame coordinates (right, up, forward).
func (f Frame) Local(p mgl64.Vec3) mgl64.Vec3 {
	d := p.Sub(f.Position)
	return mgl64.Vec3{d.Dot(f.Right), d.Dot(f.Up), d.Dot(f.Forward)}
}

// World converts frame coordinates (right, up, forward) into a world position.
func (f Frame) World(local mgl64.Vec3) mgl64.Vec3 {
	return f.Position.
		Add(f.Right.Mul(local[0])).
		Add(f.Up.Mul(local[1])).
		Add(f.Forward.Mul(local[2]))
}
