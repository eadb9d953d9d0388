package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mpapenbr/racetrack-sim-go/log"
	"github.com/mpapenbr/racetrack-sim-go/pkg/geom"
	"github.com/mpapenbr/racetrack-sim-go/pkg/track"
)

// corrections after the first one only push the car back, they do not
// produce further collision events.
const maxCorrectionPasses = 3

type railHit struct {
	corner  Corner
	side    track.Side
	dist    float64
	inward  mgl64.Vec3
	railDir mgl64.Vec3
}

// railClearance returns the smallest signed distance of any corner to any
// rail together with the hit details.
func (v *Vehicle) railClearance() (float64, railHit) {
	best := railHit{dist: math.Inf(1)}
	for c, p := range v.Corners() {
		loc, ok := v.track.Localize(p, v.state.Location)
		if !ok {
			loc = v.state.Location
		}
		for _, side := range []track.Side{track.SideLeft, track.SideRight} {
			d, inward, along := v.track.RailDistance(p, loc.Segment, side)
			if d < best.dist {
				best = railHit{corner: Corner(c), side: side, dist: d, inward: inward, railDir: along}
			}
		}
	}
	return best.dist, best
}

// collide resolves guard rail penetration of the car footprint.
// The deepest corner decides between a frontal crash and a scrape.
func (v *Vehicle) collide(dt float64) *Collision {
	tu := v.tuning
	s := &v.state
	dist, hit := v.railClearance()
	if dist >= -tu.RailTolerance {
		return nil
	}
	speed := s.Speed
	railDir := hit.railDir
	if railDir.Dot(s.Direction) < 0 {
		railDir = railDir.Mul(-1)
	}
	angle := math.Acos(mgl64.Clamp(railDir.Dot(s.Direction), -1, 1))
	leading := hit.corner.IsFront() == (speed >= 0)

	ret := &Collision{
		Corner:      hit.corner,
		Side:        hit.side,
		Penetration: -dist,
		Angle:       angle,
		SpeedBefore: speed,
	}
	if leading && angle > tu.FrontalAngle {
		ret.Kind = CollisionFrontal
		ret.Shake = tu.CrashShake
		s.Speed = 0
		s.PendingRotation = 0
	} else {
		ret.Kind = CollisionScrape
		ret.Shake = tu.ScrapeShake
		s.Speed *= tu.ScrapeSpeedFactor
		s.PendingRotation += geom.SignedAngle(s.Direction, railDir, s.Up) * tu.ScrapeRotationFactor
	}
	s.AppliedForce = mgl64.Vec3{}

	margin := tu.CollisionMargin * (1 + math.Abs(speed))
	for pass := 0; pass < maxCorrectionPasses && dist < 0; pass++ {
		s.Position = s.Position.Add(hit.inward.Mul(-dist + margin))
		dist, hit = v.railClearance()
	}
	v.log.Debug("rail collision",
		log.String("kind", ret.Kind.String()),
		log.String("corner", ret.Corner.String()),
		log.String("side", ret.Side.String()),
		log.Float64("penetration", ret.Penetration),
		log.Float64("speed", speed),
		log.Float64("dt", dt))
	return ret
}
