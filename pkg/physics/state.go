package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/mpapenbr/racetrack-sim-go/pkg/track"
)

// CarState is the mutable state of one vehicle.
type CarState struct {
	Position      mgl64.Vec3
	Direction     mgl64.Vec3
	Up            mgl64.Vec3
	Speed         float64 // signed, negative means driving backwards
	AppliedForce  mgl64.Vec3
	IsGrounded    bool
	InAirDuration float64
	Location      track.Location // last known location, start of the next localization
	// RotationRate is the steering driven yaw rate in rad/s (positive turns right)
	RotationRate float64
	// PendingRotation is a yaw correction (rad, counter-clockwise) left over from
	// guard rail scrapes. It is consumed over the next steps.
	PendingRotation float64
}

// Right returns the car right vector.
func (s CarState) Right() mgl64.Vec3 {
	return s.Direction.Cross(s.Up)
}

type Corner int

const (
	FrontLeft Corner = iota
	FrontRight
	RearLeft
	RearRight
)

func (c Corner) String() string {
	return [...]string{"front-left", "front-right", "rear-left", "rear-right"}[c]
}

func (c Corner) IsFront() bool { return c == FrontLeft || c == FrontRight }

type CollisionKind int

const (
	CollisionScrape CollisionKind = iota
	CollisionFrontal
)

func (k CollisionKind) String() string {
	if k == CollisionFrontal {
		return "frontal"
	}
	return "scrape"
}

// Collision describes a guard rail hit handled in a step.
type Collision struct {
	Kind        CollisionKind
	Corner      Corner
	Side        track.Side
	Penetration float64 // depth beyond the rail before correction
	Angle       float64 // angle between heading and rail (rad)
	SpeedBefore float64
	Shake       float64 // camera shake intensity
}

// StepResult reports what happened during one integrator step.
type StepResult struct {
	Dt                  float64 // dt after clamping
	Previous            track.Location
	Current             track.Location
	LocalizationStalled bool
	Collision           *Collision
	HeightAboveGround   float64
	RailClearance       float64 // min distance of a corner to a rail, negative means penetration
}
