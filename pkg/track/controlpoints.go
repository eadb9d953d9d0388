package track

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mpapenbr/racetrack-sim-go/pkg/geom"
)

const (
	groundClampSubPoints = 24
	// a vertical gap larger than this multiple of the horizontal gap starts a loop
	loopVerticalRatio = 2.0
	// the point after the top must come back below this fraction of the vertical gap
	loopReturnRatio = 0.5
)

// loopTemplate describes a vertical loop as (forward, side, up) offsets in units
// of the vertical gap. The side component drifts the exit away from the entry.
var loopTemplate = [...]mgl64.Vec3{
	{0, 0, 0},
	{0.35, 0.025, 0.15},
	{0.5, 0.05, 0.5},
	{0.35, 0.075, 0.85},
	{0, 0.1, 1},
	{-0.35, 0.125, 0.85},
	{-0.5, 0.15, 0.5},
	{-0.35, 0.175, 0.15},
	{0, 0.2, 0},
}

// loopStraighten is appended after the template to lead out of the loop.
var loopStraighten = mgl64.Vec3{0.5, 0.2, 0}

func validateControlPoints(points []mgl64.Vec3) error {
	if len(points) < 3 {
		return fmt.Errorf("%w: need at least 3 control points, got %d",
			ErrInvalidTrackData, len(points))
	}
	for i, p := range points {
		if !geom.IsFinite(p) {
			return fmt.Errorf("%w: control point %d is not finite", ErrInvalidTrackData, i)
		}
		next := points[(i+1)%len(points)]
		if next.Sub(p).Len() < geom.Epsilon {
			return fmt.Errorf("%w: zero length segment between control points %d and %d",
				ErrInvalidTrackData, i, (i+1)%len(points))
		}
	}
	return nil
}

// groundClamp raises control points so that every point and the interpolated
// sub-points between neighbors keep at least clearance above the terrain.
// A violation raises both endpoints of the segment.
func groundClamp(points []mgl64.Vec3, height GroundHeightFunc, clearance float64) int {
	raised := 0
	n := len(points)
	for i := range n {
		j := (i + 1) % n
		for s := 0; s <= groundClampSubPoints+1; s++ {
			t := float64(s) / float64(groundClampSubPoints+1)
			p := geom.Lerp(points[i], points[j], t)
			want := height(p.X(), p.Y()) + clearance
			if p.Z() < want {
				d := want - p.Z()
				points[i][2] += d
				points[j][2] += d
				raised++
			}
		}
	}
	return raised
}

// synthesizeLoops replaces point triples that describe a vertical loop with the
// loop template. Returns the new point list and the number of loops found.
func synthesizeLoops(points []mgl64.Vec3) ([]mgl64.Vec3, int) {
	out := make([]mgl64.Vec3, len(points))
	copy(out, points)
	loops := 0
	for i := 0; i+2 < len(out); {
		p0, p1, p2 := out[i], out[i+1], out[i+2]
		vertical := p1.Z() - p0.Z()
		horizontal := horizontalGap(p0, p1)
		if vertical <= loopVerticalRatio*horizontal ||
			p2.Z()-p0.Z() >= vertical*loopReturnRatio {
			i++
			continue
		}
		prev := out[(i-1+len(out))%len(out)]
		fallback := geom.SafeNormalize(geom.Horizontal(p0.Sub(prev)), geom.WorldForward)
		forward := geom.SafeNormalize(geom.Horizontal(p2.Sub(p0)), fallback)
		side := forward.Cross(geom.WorldUp)

		replacement := make([]mgl64.Vec3, 0, len(loopTemplate)+1)
		place := func(tp mgl64.Vec3) mgl64.Vec3 {
			return p0.
				Add(forward.Mul(tp[0] * vertical)).
				Add(side.Mul(tp[1] * vertical)).
				Add(geom.WorldUp.Mul(tp[2] * vertical))
		}
		for _, tp := range loopTemplate {
			replacement = append(replacement, place(tp))
		}
		replacement = append(replacement, place(loopStraighten))
		tail := append([]mgl64.Vec3{}, out[i+3:]...)
		out = append(append(out[:i], replacement...), tail...)
		loops++
		i += len(replacement)
	}
	return out, loops
}

func horizontalGap(a, b mgl64.Vec3) float64 {
	return math.Hypot(b.X()-a.X(), b.Y()-a.Y())
}
