package track

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/mpapenbr/racetrack-sim-go/pkg/geom"
)

const maxLocalizeIterations = 100

// Localize finds the segment containing pos by walking from last.
// The point belongs to segment i when it is in front of the plane at vertex i and
// behind the plane at vertex i+1 (plane normals are the vertex forward vectors).
// If the walk does not settle within maxLocalizeIterations last is returned
// together with false.
func (t *Track) Localize(pos mgl64.Vec3, last Location) (Location, bool) {
	if !geom.IsFinite(pos) {
		return last, false
	}
	n := t.SegmentCount()
	idx := t.wrap(last.Segment)
	for range maxLocalizeIterations {
		cur, next := t.vertices[idx], t.vertices[idx+1]
		dCur := geom.PlaneDistance(pos, cur.Position, cur.Forward)
		if dCur < 0 {
			idx = (idx - 1 + n) % n
			continue
		}
		dNext := geom.PlaneDistance(pos, next.Position, next.Forward)
		if dNext >= 0 {
			idx = (idx + 1) % n
			continue
		}
		return Location{Segment: idx, Percent: mgl64.Clamp(dCur/(dCur-dNext), 0, 1)}, true
	}
	return last, false
}
