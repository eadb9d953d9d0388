package simulation

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mpapenbr/racetrack-sim-go/pkg/geom"
	"github.com/mpapenbr/racetrack-sim-go/pkg/model"
	"github.com/mpapenbr/racetrack-sim-go/pkg/physics"
	"github.com/mpapenbr/racetrack-sim-go/pkg/track"
)

const (
	DefaultTargetSpeed = 30.0
	DefaultLookAhead   = 6 // segments
	defaultHeadingGain = 2.5
	defaultRateGain    = 4.0
	minRotationFactor  = 0.1
)

// Driver produces the control input for the next step.
type Driver interface {
	Control(s physics.CarState) model.ControlInput
}

type DriverFunc func(s physics.CarState) model.ControlInput

func (f DriverFunc) Control(s physics.CarState) model.ControlInput { return f(s) }

type (
	AutopilotOption func(*Autopilot)
	// Autopilot follows the center line at a target speed.
	// It steers towards a point some segments ahead by requesting the
	// rotation rate that would remove the heading error.
	Autopilot struct {
		track       *track.Track
		tuning      physics.Tuning
		targetSpeed float64
		lookAhead   int
		headingGain float64
		rateGain    float64
	}
)

func WithTargetSpeed(speed float64) AutopilotOption {
	return func(a *Autopilot) {
		a.targetSpeed = speed
	}
}

func WithLookAhead(segments int) AutopilotOption {
	return func(a *Autopilot) {
		a.lookAhead = max(segments, 1)
	}
}

func WithGains(heading, rate float64) AutopilotOption {
	return func(a *Autopilot) {
		a.headingGain = heading
		a.rateGain = rate
	}
}

func NewAutopilot(t *track.Track, tuning physics.Tuning, opts ...AutopilotOption) *Autopilot {
	ret := &Autopilot{
		track:       t,
		tuning:      tuning,
		targetSpeed: DefaultTargetSpeed,
		lookAhead:   DefaultLookAhead,
		headingGain: defaultHeadingGain,
		rateGain:    defaultRateGain,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (a *Autopilot) Control(s physics.CarState) model.ControlInput {
	loc := s.Location
	here, _, _ := a.track.AtSegment(loc.Segment, loc.Percent)
	ahead, _, _ := a.track.AtSegment(loc.Segment+a.lookAhead, loc.Percent)
	want := geom.SafeNormalize(ahead.Position.Sub(s.Position), here.Forward)
	headingErr := geom.SignedAngle(s.Direction, want, s.Up)

	factor := math.Max(
		math.Min(math.Abs(s.Speed)/a.tuning.RotationSpeedThreshold, a.tuning.MaxRotationSpeedFactor),
		minRotationFactor)
	// positive rotation rate turns right, a positive heading error is to the left
	desired := -(headingErr * a.headingGain) / factor
	ret := model.ControlInput{
		Steer: mgl64.Clamp((desired-s.RotationRate)*a.rateGain, -1, 1),
	}
	if s.Speed < a.targetSpeed {
		ret.Throttle = 1
	}
	return ret
}
