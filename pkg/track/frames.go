package track

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/mpapenbr/racetrack-sim-go/pkg/geom"
)

const (
	// weight of the previous up vector when blending in the curvature up vector
	curveSoftening = 0.75
	worldUpBlend   = 0.75
	// samples closer to the terrain than this are pushed towards world up
	nearGroundDistance = 4.0
	nearGroundBlend    = 0.9
	// |forward.z| above this counts as a steep climb or descent
	steepForward = 0.5
	// curvature below this fraction of the sample distance counts as straight
	curvatureEpsilon = 1e-4
	upSmoothWindow   = 10
)

// sampleCurve interpolates the closed control point list with Catmull-Rom splines.
// The number of samples per control segment is proportional to its length.
func sampleCurve(points []mgl64.Vec3, samplesPer100 float64) []mgl64.Vec3 {
	n := len(points)
	ret := make([]mgl64.Vec3, 0, n*4)
	for i := range n {
		p0 := points[(i-1+n)%n]
		p1 := points[i]
		p2 := points[(i+1)%n]
		p3 := points[(i+2)%n]
		count := max(1, int(p2.Sub(p1).Len()*samplesPer100/100))
		for j := range count {
			ret = append(ret, geom.CatmullRom(p0, p1, p2, p3, float64(j)/float64(count)))
		}
	}
	return ret
}

// buildFrames computes an orthonormal frame for every sample.
//
//nolint:funlen // by design
func buildFrames(pos []mgl64.Vec3, height GroundHeightFunc) []geom.Frame {
	n := len(pos)
	at := func(i int) mgl64.Vec3 { return pos[((i%n)+n)%n] }

	forward := make([]mgl64.Vec3, n)
	last := geom.WorldForward
	for i := range n {
		forward[i] = geom.SafeNormalize(at(i+1).Sub(at(i)), last)
		last = forward[i]
	}

	// pass A: up vector from local curvature
	optimal := make([]mgl64.Vec3, n)
	lastOptimal := geom.WorldUp
	for i := range n {
		mid := at(i - 1).Add(at(i + 1)).Mul(0.5)
		c := mid.Sub(at(i))
		dist := at(i + 1).Sub(at(i)).Len()
		if c.Len() < curvatureEpsilon*max(dist, 1) {
			optimal[i] = lastOptimal
		} else {
			optimal[i] = c.Normalize()
		}
		lastOptimal = optimal[i]
	}

	// pass B: blend with previous up and world up
	frames := make([]geom.Frame, n)
	prev := geom.Frame{
		Up:      geom.WorldUp,
		Forward: forward[0],
		Right:   geom.SafeNormalize(forward[0].Cross(geom.WorldUp), mgl64.Vec3{0, -1, 0}),
	}
	for i := range n {
		f := forward[i]
		up := geom.SafeNormalize(
			prev.Up.Mul(curveSoftening).Add(optimal[i].Mul(1-curveSoftening)), prev.Up)
		switch {
		case height != nil && pos[i].Z()-height(pos[i].X(), pos[i].Y()) < nearGroundDistance:
			up = geom.SafeNormalize(geom.Lerp(up, geom.WorldUp, nearGroundBlend), up)
		case up.Z() < 0:
			// upside down, keep rolling through the loop
			up = geom.SafeNormalize(geom.Lerp(up, geom.WorldDown, worldUpBlend*0.5), up)
		case mgl64.Abs(f.Z()) > steepForward:
			// steep climb or descent: leave the curvature up vector alone
		default:
			up = geom.SafeNormalize(geom.Lerp(up, geom.WorldUp, worldUpBlend), up)
		}
		right := geom.SafeNormalize(f.Cross(up),
			geom.SafeNormalize(f.Cross(prev.Up), prev.Right))
		frames[i] = geom.Frame{
			Position: pos[i],
			Forward:  f,
			Right:    right,
			Up:       right.Cross(f),
		}
		prev = frames[i]
	}

	// final pass: average up over a centered window
	ret := make([]geom.Frame, n)
	for i := range n {
		var acc mgl64.Vec3
		for k := -upSmoothWindow; k <= upSmoothWindow; k++ {
			acc = acc.Add(frames[((i+k)%n+n)%n].Up)
		}
		f := frames[i]
		f.Up = geom.SafeNormalize(acc, f.Up)
		ret[i] = f.Orthonormalize(frames[i])
	}
	return ret
}
