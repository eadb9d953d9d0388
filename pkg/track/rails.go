package track

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/mpapenbr/racetrack-sim-go/pkg/geom"
)

type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// GuardRails holds one polyline per road side, parallel to the vertex sequence.
type GuardRails struct {
	Left  []mgl64.Vec3 `json:"left"`
	Right []mgl64.Vec3 `json:"right"`
}

func (g GuardRails) line(side Side) []mgl64.Vec3 {
	if side == SideLeft {
		return g.Left
	}
	return g.Right
}

func buildRails(vertices []Vertex, inset float64) GuardRails {
	ret := GuardRails{
		Left:  make([]mgl64.Vec3, len(vertices)),
		Right: make([]mgl64.Vec3, len(vertices)),
	}
	for i, v := range vertices {
		offset := max(v.RoadWidth/2-inset, 0)
		ret.Left[i] = v.Position.Sub(v.Right.Mul(offset))
		ret.Right[i] = v.Position.Add(v.Right.Mul(offset))
	}
	return ret
}

// RailDistance returns the signed distance of p to the rail line of side within
// segment. Positive values are on the road side of the rail. inward is the unit
// normal pointing towards the road, along the rail direction.
//
//nolint:whitespace // editor/linter
func (t *Track) RailDistance(p mgl64.Vec3, segment int, side Side) (
	dist float64, inward, along mgl64.Vec3,
) {
	seg := t.wrap(segment)
	v := t.vertices[seg]
	line := t.rails.line(side)
	a, b := line[seg], line[seg+1]
	along = geom.SafeNormalize(b.Sub(a), v.Forward)
	if side == SideRight {
		inward = geom.SafeNormalize(v.Up.Cross(along), v.Right.Mul(-1))
	} else {
		inward = geom.SafeNormalize(along.Cross(v.Up), v.Right)
	}
	return geom.PlaneDistance(p, a, inward), inward, along
}
