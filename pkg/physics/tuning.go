package physics

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidTuning = errors.New("invalid tuning")

// Tuning holds the vehicle constants. Units are track units and seconds.
//
//nolint:lll // readability
type Tuning struct {
	Mass                   float64 `json:"mass" yaml:"mass"`
	MaxSpeed               float64 `json:"maxSpeed" yaml:"maxSpeed"`
	MaxAccel               float64 `json:"maxAccel" yaml:"maxAccel"`                             // throttle = 1
	MinAccel               float64 `json:"minAccel" yaml:"minAccel"`                             // throttle = -1, negative
	MaxForcePerMass        float64 `json:"maxForcePerMass" yaml:"maxForcePerMass"`               // cap of |force/mass|
	RollingFriction        float64 `json:"rollingFriction" yaml:"rollingFriction"`               // per second
	AirFriction            float64 `json:"airFriction" yaml:"airFriction"`                       // per second and speed unit
	MaxAirFriction         float64 `json:"maxAirFriction" yaml:"maxAirFriction"`                 // per second
	BrakeFactor            float64 `json:"brakeFactor" yaml:"brakeFactor"`                       // speed decay per second while braking
	MaxBrakePerSecond      float64 `json:"maxBrakePerSecond" yaml:"maxBrakePerSecond"`           // max speed change per second by braking
	SteerAccel             float64 `json:"steerAccel" yaml:"steerAccel"`                         // rotation rate change per second at full steer
	MaxRotationRate        float64 `json:"maxRotationRate" yaml:"maxRotationRate"`               // rad/s
	RotationDecay          float64 `json:"rotationDecay" yaml:"rotationDecay"`                   // per frame without steer input
	RotationSpeedThreshold float64 `json:"rotationSpeedThreshold" yaml:"rotationSpeedThreshold"` // below: dampened, above: amplified
	MaxRotationSpeedFactor float64 `json:"maxRotationSpeedFactor" yaml:"maxRotationSpeedFactor"`
	MaxRotationPerFrame    float64 `json:"maxRotationPerFrame" yaml:"maxRotationPerFrame"` // pending collision rotation consumed per step (rad)
	HalfLength             float64 `json:"halfLength" yaml:"halfLength"`
	HalfWidth              float64 `json:"halfWidth" yaml:"halfWidth"`
	RailTolerance          float64 `json:"railTolerance" yaml:"railTolerance"`     // penetration ignored by the collision step
	FrontalAngle           float64 `json:"frontalAngle" yaml:"frontalAngle"`       // rad between heading and rail
	ScrapeSpeedFactor      float64 `json:"scrapeSpeedFactor" yaml:"scrapeSpeedFactor"`
	ScrapeRotationFactor   float64 `json:"scrapeRotationFactor" yaml:"scrapeRotationFactor"`
	CollisionMargin        float64 `json:"collisionMargin" yaml:"collisionMargin"` // extra push back per speed unit
	ScrapeShake            float64 `json:"scrapeShake" yaml:"scrapeShake"`
	CrashShake             float64 `json:"crashShake" yaml:"crashShake"`
	GroundSnapSpeed        float64 `json:"groundSnapSpeed" yaml:"groundSnapSpeed"`     // max height correction per second
	SnapUpThreshold        float64 `json:"snapUpThreshold" yaml:"snapUpThreshold"`     // road up.z below: snap directly
	GroundedTolerance      float64 `json:"groundedTolerance" yaml:"groundedTolerance"` // height still counted as grounded
	PositionScale          float64 `json:"positionScale" yaml:"positionScale"`
}

func DefaultTuning() Tuning {
	return Tuning{
		Mass:                   1000,
		MaxSpeed:               55,
		MaxAccel:               20,
		MinAccel:               -10,
		MaxForcePerMass:        1,
		RollingFriction:        0.6,
		AirFriction:            0.01,
		MaxAirFriction:         1.5,
		BrakeFactor:            3,
		MaxBrakePerSecond:      40,
		SteerAccel:             6,
		MaxRotationRate:        1.5,
		RotationDecay:          0.95,
		RotationSpeedThreshold: 10,
		MaxRotationSpeedFactor: 1.5,
		MaxRotationPerFrame:    0.05,
		HalfLength:             2.3,
		HalfWidth:              1.1,
		RailTolerance:          0,
		FrontalAngle:           50 * math.Pi / 180,
		ScrapeSpeedFactor:      0.95,
		ScrapeRotationFactor:   0.5,
		CollisionMargin:        0.01,
		ScrapeShake:            0.25,
		CrashShake:             1,
		GroundSnapSpeed:        20,
		SnapUpThreshold:        0.7,
		GroundedTolerance:      0.1,
		PositionScale:          1,
	}
}

func (t Tuning) Validate() error {
	check := func(name string, v float64, ok bool) error {
		if !ok || math.IsNaN(v) {
			return fmt.Errorf("%w: %s=%v", ErrInvalidTuning, name, v)
		}
		return nil
	}
	return errors.Join(
		check("mass", t.Mass, t.Mass > 0),
		check("maxSpeed", t.MaxSpeed, t.MaxSpeed > 0),
		check("maxAccel", t.MaxAccel, t.MaxAccel >= 0),
		check("minAccel", t.MinAccel, t.MinAccel <= 0),
		check("maxForcePerMass", t.MaxForcePerMass, t.MaxForcePerMass > 0),
		check("rotationDecay", t.RotationDecay, t.RotationDecay >= 0 && t.RotationDecay <= 1),
		check("rotationSpeedThreshold", t.RotationSpeedThreshold, t.RotationSpeedThreshold > 0),
		check("halfLength", t.HalfLength, t.HalfLength > 0),
		check("halfWidth", t.HalfWidth, t.HalfWidth > 0),
		check("scrapeSpeedFactor", t.ScrapeSpeedFactor,
			t.ScrapeSpeedFactor >= 0 && t.ScrapeSpeedFactor <= 1),
		check("positionScale", t.PositionScale, t.PositionScale > 0),
	)
}
