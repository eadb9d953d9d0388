// Package physics integrates player input into vehicle position and orientation
// on a track. One Vehicle is owned by one session, the track may be shared.
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mpapenbr/racetrack-sim-go/log"
	"github.com/mpapenbr/racetrack-sim-go/pkg/geom"
	"github.com/mpapenbr/racetrack-sim-go/pkg/model"
	"github.com/mpapenbr/racetrack-sim-go/pkg/track"
)

const (
	MinDt = 0.001
	MaxDt = 0.5
)

type (
	Option  func(*Vehicle)
	Vehicle struct {
		track  *track.Track
		tuning Tuning
		state  CarState
		log    *log.Logger
	}
)

func WithTuning(t Tuning) Option {
	return func(v *Vehicle) {
		v.tuning = t
	}
}

func WithLogger(l *log.Logger) Option {
	return func(v *Vehicle) {
		v.log = l
	}
}

// NewVehicle creates a vehicle placed at the track start.
func NewVehicle(t *track.Track, opts ...Option) *Vehicle {
	ret := &Vehicle{
		track:  t,
		tuning: DefaultTuning(),
		log:    log.Default().Named("physics"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.Reset(track.Location{})
	return ret
}

func (v *Vehicle) Tuning() Tuning { return v.tuning }

func (v *Vehicle) Track() *track.Track { return v.track }

// State returns a copy of the current car state.
func (v *Vehicle) State() CarState { return v.state }

// SetState replaces the car state, used for placements outside of Reset.
func (v *Vehicle) SetState(s CarState) { v.state = s }

// Reset places the car standing on the road center at loc.
func (v *Vehicle) Reset(loc track.Location) {
	f, _, _ := v.track.AtLocation(loc)
	v.state = CarState{
		Position:   f.Position,
		Direction:  f.Forward,
		Up:         f.Up,
		IsGrounded: true,
		Location:   loc,
	}
}

// Corners returns the footprint corners ordered by Corner.
func (v *Vehicle) Corners() [4]mgl64.Vec3 {
	s := v.state
	right := geom.SafeNormalize(s.Right(), mgl64.Vec3{0, -1, 0})
	front := s.Direction.Mul(v.tuning.HalfLength)
	side := right.Mul(v.tuning.HalfWidth)
	return [4]mgl64.Vec3{
		FrontLeft:  s.Position.Add(front).Sub(side),
		FrontRight: s.Position.Add(front).Add(side),
		RearLeft:   s.Position.Sub(front).Sub(side),
		RearRight:  s.Position.Sub(front).Add(side),
	}
}

// Step advances the simulation by dt seconds.
//
//nolint:funlen // one pass per step
func (v *Vehicle) Step(input model.ControlInput, dt float64) StepResult {
	dt = mgl64.Clamp(dt, MinDt, MaxDt)
	in := input.Clamped()
	tu := v.tuning
	s := &v.state
	ret := StepResult{Dt: dt, Previous: s.Location}

	// rotation
	if in.Steer != 0 {
		s.RotationRate = mgl64.Clamp(s.RotationRate+in.Steer*tu.SteerAccel*dt,
			-tu.MaxRotationRate, tu.MaxRotationRate)
	} else {
		s.RotationRate *= tu.RotationDecay
	}
	factor := math.Min(math.Abs(s.Speed)/tu.RotationSpeedThreshold, tu.MaxRotationSpeedFactor)
	yaw := -s.RotationRate * factor * dt * sign(s.Speed)
	if s.IsGrounded {
		// pending rotation is kept until the vehicle is back on the ground
		take := mgl64.Clamp(s.PendingRotation, -tu.MaxRotationPerFrame, tu.MaxRotationPerFrame)
		s.PendingRotation -= take
		yaw += take
		if yaw != 0 {
			s.Direction = geom.SafeNormalize(geom.RotateAround(s.Direction, s.Up, yaw), s.Direction)
		}
	}

	// throttle and brake
	accel := in.Throttle * tu.MaxAccel
	if in.Throttle < 0 {
		accel = -in.Throttle * tu.MinAccel
	}
	if s.IsGrounded {
		s.AppliedForce = s.AppliedForce.Add(s.Direction.Mul(accel * tu.Mass * dt))
		if fm := s.AppliedForce.Len() / tu.Mass; fm > tu.MaxForcePerMass {
			s.AppliedForce = s.AppliedForce.Mul(tu.MaxForcePerMass / fm)
		}
		if in.Brake {
			change := s.Speed*(1-tu.BrakeFactor*dt) - s.Speed
			limit := tu.MaxBrakePerSecond * dt
			s.Speed += mgl64.Clamp(change, -limit, limit)
		}
	}

	// force integration
	perMass := s.AppliedForce.Mul(1 / tu.Mass)
	if l := perMass.Len(); s.IsGrounded && l > geom.Epsilon {
		if perMass.Dot(s.Direction) >= 0 {
			s.Speed += l
		} else {
			s.Speed -= l
		}
	}

	// friction
	if s.IsGrounded {
		k := tu.RollingFriction + math.Min(tu.AirFriction*math.Abs(s.Speed), tu.MaxAirFriction)
		decay := mgl64.Clamp(1-k*dt, 0, 1)
		s.AppliedForce = s.AppliedForce.Mul(decay)
		s.Speed *= decay
	}
	s.Speed = mgl64.Clamp(s.Speed, -tu.MaxSpeed, tu.MaxSpeed)

	s.Position = s.Position.Add(s.Direction.Mul(s.Speed * dt * tu.PositionScale))

	v.relocalize(&ret)

	// ground alignment keeps the heading, the road defines up
	frame, _, _ := v.track.AtLocation(s.Location)
	prevRight := s.Right()
	s.Up = frame.Up
	if prevRight.Len() > geom.Epsilon {
		s.Direction = geom.SafeNormalize(s.Up.Cross(prevRight), s.Direction)
	}

	ret.Collision = v.collide(dt)
	if ret.Collision != nil {
		v.relocalize(&ret)
	}

	ret.HeightAboveGround = v.snapToGround(dt)
	ret.Current = s.Location
	ret.RailClearance, _ = v.railClearance()
	return ret
}

func (v *Vehicle) relocalize(res *StepResult) {
	loc, ok := v.track.Localize(v.state.Position, v.state.Location)
	if !ok {
		res.LocalizationStalled = true
		v.log.Debug("localization stalled",
			log.Int("segment", v.state.Location.Segment),
			log.Any("position", v.state.Position))
		return
	}
	v.state.Location = loc
}

// snapToGround moves the car towards the road surface and updates the
// grounded flag. Returns the remaining height above the road.
func (v *Vehicle) snapToGround(dt float64) float64 {
	tu := v.tuning
	s := &v.state
	frame, _, _ := v.track.AtLocation(s.Location)
	h := s.Position.Sub(frame.Position).Dot(frame.Up)
	if frame.Up.Z() < tu.SnapUpThreshold || h < 0 {
		s.Position = s.Position.Sub(frame.Up.Mul(h))
		h = 0
	} else {
		limit := tu.GroundSnapSpeed * dt
		c := mgl64.Clamp(h, -limit, limit)
		s.Position = s.Position.Sub(frame.Up.Mul(c))
		h -= c
	}
	s.IsGrounded = math.Abs(h) <= tu.GroundedTolerance
	if s.IsGrounded {
		s.InAirDuration = 0
	} else {
		s.InAirDuration += dt
	}
	return h
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}
