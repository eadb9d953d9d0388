// Package session composes vehicle physics, chase camera and race progress
// for one player. A Session must not be used from more than one goroutine.
package session

import (
	"github.com/google/uuid"

	"github.com/mpapenbr/racetrack-sim-go/log"
	"github.com/mpapenbr/racetrack-sim-go/pkg/camera"
	"github.com/mpapenbr/racetrack-sim-go/pkg/model"
	"github.com/mpapenbr/racetrack-sim-go/pkg/physics"
	"github.com/mpapenbr/racetrack-sim-go/pkg/race"
	"github.com/mpapenbr/racetrack-sim-go/pkg/track"
)

const (
	scrapeShakeDuration = 0.25
	crashShakeDuration  = 0.6
)

// Frame is the outcome of one session step.
type Frame struct {
	Step     int64
	SimTime  float64
	State    physics.CarState
	Result   physics.StepResult
	Camera   camera.Pose
	Events   []race.Event
	Progress race.Progress
}

type (
	Option  func(*Session)
	Session struct {
		id            uuid.UUID
		name          string
		track         *track.Track
		start         track.Location
		tuning        physics.Tuning
		trackerOpts   []race.TrackerOption
		cameraOpts    []camera.Option
		log           *log.Logger
		vehicle       *physics.Vehicle
		camera        *camera.Chase
		tracker       *race.Tracker
		step          int64
		simTime       float64
		lastResult    physics.StepResult
		stallsInARow  int
		totalStalls   int
		totalCrashes  int
		totalScrapes  int
		lastCollision string
	}
)

func WithID(id uuid.UUID) Option {
	return func(s *Session) {
		s.id = id
	}
}

func WithName(name string) Option {
	return func(s *Session) {
		s.name = name
	}
}

func WithStart(loc track.Location) Option {
	return func(s *Session) {
		s.start = loc
	}
}

func WithTuning(t physics.Tuning) Option {
	return func(s *Session) {
		s.tuning = t
	}
}

func WithTrackerOptions(opts ...race.TrackerOption) Option {
	return func(s *Session) {
		s.trackerOpts = append(s.trackerOpts, opts...)
	}
}

func WithCameraOptions(opts ...camera.Option) Option {
	return func(s *Session) {
		s.cameraOpts = append(s.cameraOpts, opts...)
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

func New(t *track.Track, opts ...Option) *Session {
	ret := &Session{
		id:     uuid.New(),
		name:   "car",
		track:  t,
		tuning: physics.DefaultTuning(),
		log:    log.Default().Named("session"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.log = ret.log.With(log.String("session", ret.id.String()), log.String("car", ret.name))
	ret.Reset()
	return ret
}

// Reset places the car at the start location and restarts the race.
func (s *Session) Reset() {
	s.vehicle = physics.NewVehicle(s.track,
		physics.WithTuning(s.tuning),
		physics.WithLogger(s.log.Named("physics")))
	s.vehicle.Reset(s.start)
	s.camera = camera.NewChase(s.cameraOpts...)
	s.tracker = race.NewTracker(s.track.SegmentCount(),
		append([]race.TrackerOption{race.WithLogger(s.log.Named("race"))}, s.trackerOpts...)...)
	s.camera.Snap(s.target())
	s.step = 0
	s.simTime = 0
	s.lastResult = physics.StepResult{Current: s.start, Previous: s.start}
	s.stallsInARow = 0
}

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) Name() string { return s.name }

func (s *Session) Track() *track.Track { return s.track }

func (s *Session) Tuning() physics.Tuning { return s.tuning }

func (s *Session) State() physics.CarState { return s.vehicle.State() }

func (s *Session) Progress() race.Progress { return s.tracker.Progress() }

func (s *Session) Done() bool { return s.tracker.Progress().IsGameOver }

// Stats returns the number of frontal crashes, scrapes and localization stalls.
func (s *Session) Stats() (crashes, scrapes, stalls int) {
	return s.totalCrashes, s.totalScrapes, s.totalStalls
}

// Step advances the session by dt. After the race is over the car is frozen,
// only the camera keeps moving.
func (s *Session) Step(input model.ControlInput, dt float64) Frame {
	if s.Done() {
		pose := s.camera.Update(s.target(), dt)
		return s.frame(pose, nil)
	}
	res := s.vehicle.Step(input, dt)
	s.step++
	s.simTime += res.Dt
	s.lastResult = res
	s.lastCollision = ""

	if res.LocalizationStalled {
		s.stallsInARow++
		s.totalStalls++
		s.log.Warn("localization stalled",
			log.Int64("step", s.step),
			log.Int("segment", res.Current.Segment),
			log.Int("inARow", s.stallsInARow))
	} else {
		s.stallsInARow = 0
	}
	if c := res.Collision; c != nil {
		s.lastCollision = c.Kind.String()
		duration := scrapeShakeDuration
		if c.Kind == physics.CollisionFrontal {
			duration = crashShakeDuration
			s.totalCrashes++
			s.log.Info("frontal crash",
				log.String("corner", c.Corner.String()),
				log.String("side", c.Side.String()),
				log.Float64("speed", c.SpeedBefore))
		} else {
			s.totalScrapes++
		}
		s.camera.AddShake(c.Shake, duration)
	}

	state := s.vehicle.State()
	events := s.tracker.Update(race.Observation{
		PrevSegment:       res.Previous.Segment,
		Segment:           res.Current.Segment,
		HeightAboveGround: res.HeightAboveGround,
		AirborneDuration:  state.InAirDuration,
		Dt:                res.Dt,
	})
	for _, e := range events {
		switch e.Kind {
		case race.EventLapCompleted:
			s.log.Info("lap completed", log.Int("lap", e.Lap), log.Float64("time", e.Time))
		case race.EventGameOver:
			s.log.Info("race over",
				log.String("state", e.State.String()),
				log.String("reason", string(e.Reason)))
		case race.EventCheckpointCrossed:
			s.log.Debug("checkpoint", log.Int("lap", e.Lap), log.Int("checkpoint", e.Checkpoint))
		}
	}
	pose := s.camera.Update(s.target(), res.Dt)
	return s.frame(pose, events)
}

// Telemetry converts the current session state into a telemetry frame.
func (s *Session) Telemetry() model.Telemetry {
	st := s.vehicle.State()
	p := s.tracker.Progress()
	return model.Telemetry{
		SessionID:  s.id.String(),
		CarName:    s.name,
		Step:       s.step,
		SimTime:    s.simTime,
		Position:   model.PointOf(st.Position),
		Forward:    model.PointOf(st.Direction),
		Up:         model.PointOf(st.Up),
		Speed:      st.Speed,
		Segment:    st.Location.Segment,
		Percent:    st.Location.Percent,
		TrackPos:   s.track.Param(st.Location),
		Grounded:   st.IsGrounded,
		Lap:        p.CurrentLap,
		Checkpoint: len(p.CheckpointTimesThisLap),
		State:      p.State.String(),
		Collision:  s.lastCollision,
	}
}

func (s *Session) target() camera.Target {
	st := s.vehicle.State()
	return camera.Target{Position: st.Position, Direction: st.Direction, Up: st.Up}
}

func (s *Session) frame(pose camera.Pose, events []race.Event) Frame {
	return Frame{
		Step:     s.step,
		SimTime:  s.simTime,
		State:    s.vehicle.State(),
		Result:   s.lastResult,
		Camera:   pose,
		Events:   events,
		Progress: s.tracker.Progress(),
	}
}
