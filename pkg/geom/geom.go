// Package geom contains small vector helpers on top of mgl64.
// The world is Z-up: X/Y span the ground plane.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the length below which a vector is treated as degenerate.
const Epsilon = 1e-9

var (
	WorldUp      = mgl64.Vec3{0, 0, 1}
	WorldDown    = mgl64.Vec3{0, 0, -1}
	WorldForward = mgl64.Vec3{1, 0, 0}
)

// SafeNormalize returns v with unit length or fallback if v is (nearly) zero.
func SafeNormalize(v, fallback mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < Epsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		return fallback
	}
	return v.Mul(1 / l)
}

func Lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

func LerpF(a, b, t float64) float64 {
	return a + (b-a)*t
}

// CatmullRom interpolates between p1 and p2 (t in [0,1]) using p0 and p3 as
// outer control points.
func CatmullRom(p0, p1, p2, p3 mgl64.Vec3, t float64) mgl64.Vec3 {
	t2 := t * t
	t3 := t2 * t
	var ret mgl64.Vec3
	for i := range 3 {
		ret[i] = 0.5 * (2*p1[i] +
			(-p0[i]+p2[i])*t +
			(2*p0[i]-5*p1[i]+4*p2[i]-p3[i])*t2 +
			(-p0[i]+3*p1[i]-3*p2[i]+p3[i])*t3)
	}
	return ret
}

// Horizontal drops the Z component.
func Horizontal(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X(), v.Y(), 0}
}

// RotateAround rotates v counter-clockwise (right hand rule) around axis by angle radians.
func RotateAround(v, axis mgl64.Vec3, angle float64) mgl64.Vec3 {
	if angle == 0 {
		return v
	}
	a := SafeNormalize(axis, WorldUp)
	return mgl64.QuatRotate(angle, a).Rotate(v)
}

// SignedAngle returns the angle from a to b around axis in (-pi, pi].
// Positive values mean counter-clockwise when looking down the axis.
func SignedAngle(a, b, axis mgl64.Vec3) float64 {
	return math.Atan2(a.Cross(b).Dot(axis), a.Dot(b))
}

// PlaneDistance returns the signed distance of p to the plane through origin with
// the given unit normal.
func PlaneDistance(p, origin, normal mgl64.Vec3) float64 {
	return p.Sub(origin).Dot(normal)
}

func IsFinite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
