// Package simulation runs sessions driven by an autopilot, one goroutine per
// car, all sharing the same track.
package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/mpapenbr/racetrack-sim-go/log"
	"github.com/mpapenbr/racetrack-sim-go/pkg/model"
	"github.com/mpapenbr/racetrack-sim-go/pkg/race"
	"github.com/mpapenbr/racetrack-sim-go/pkg/session"
	"github.com/mpapenbr/racetrack-sim-go/pkg/track"
)

const (
	DefaultStepRate    = 60.0
	DefaultMaxDuration = 10 * time.Minute
	gridSpacing        = 3 // segments between cars on the grid
)

// Update is handed to every sink.
type Update struct {
	Telemetry model.Telemetry
	Frame     session.Frame
	Final     bool // last update of a car
}

// Sink receives updates of all cars. Handle is called concurrently from the
// car goroutines.
type Sink interface {
	Handle(ctx context.Context, u Update) error
}

type SinkFunc func(ctx context.Context, u Update) error

func (f SinkFunc) Handle(ctx context.Context, u Update) error { return f(ctx, u) }

// CarResult is the outcome of one car.
type CarResult struct {
	ID       uuid.UUID
	Name     string
	Steps    int64
	SimTime  float64
	Progress race.Progress
	Crashes  int
	Scrapes  int
	Stalls   int
}

type (
	RunnerOption func(*Runner)
	Runner       struct {
		track         *track.Track
		cars          int
		stepRate      float64
		realtime      bool
		maxDuration   time.Duration
		publishEvery  int64
		speedSpread   float64
		sessionOpts   []session.Option
		autopilotOpts []AutopilotOption
		sinks         []Sink
		log           *log.Logger
		tracer        trace.Tracer
	}
)

func WithCars(n int) RunnerOption {
	return func(r *Runner) {
		r.cars = max(n, 1)
	}
}

func WithStepRate(hz float64) RunnerOption {
	return func(r *Runner) {
		r.stepRate = hz
	}
}

// WithPacing runs the simulation in wall clock time.
func WithPacing(realtime bool) RunnerOption {
	return func(r *Runner) {
		r.realtime = realtime
	}
}

// WithMaxDuration limits the simulated time per car.
func WithMaxDuration(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.maxDuration = d
	}
}

// WithPublishEvery hands every n-th frame to the sinks. Frames with race
// events or collisions are always handed over.
func WithPublishEvery(n int) RunnerOption {
	return func(r *Runner) {
		r.publishEvery = int64(max(n, 1))
	}
}

// WithSpeedSpread lowers the target speed of each following car by the
// given fraction.
func WithSpeedSpread(fraction float64) RunnerOption {
	return func(r *Runner) {
		r.speedSpread = fraction
	}
}

func WithSessionOptions(opts ...session.Option) RunnerOption {
	return func(r *Runner) {
		r.sessionOpts = append(r.sessionOpts, opts...)
	}
}

func WithAutopilotOptions(opts ...AutopilotOption) RunnerOption {
	return func(r *Runner) {
		r.autopilotOpts = append(r.autopilotOpts, opts...)
	}
}

func WithSinks(sinks ...Sink) RunnerOption {
	return func(r *Runner) {
		r.sinks = append(r.sinks, sinks...)
	}
}

func WithLogger(l *log.Logger) RunnerOption {
	return func(r *Runner) {
		r.log = l
	}
}

func NewRunner(t *track.Track, opts ...RunnerOption) *Runner {
	ret := &Runner{
		track:        t,
		cars:         1,
		stepRate:     DefaultStepRate,
		maxDuration:  DefaultMaxDuration,
		publishEvery: 1,
		speedSpread:  0.05,
		log:          log.Default().Named("simulation"),
		tracer:       otel.Tracer("rts"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Run simulates all cars until each one has finished, ran out of time or ctx
// is done. Results are ordered by car index.
func (r *Runner) Run(ctx context.Context) ([]CarResult, error) {
	ctx, span := r.tracer.Start(ctx, "simulation run",
		trace.WithAttributes(
			attribute.String("track", r.track.Name()),
			attribute.Int("cars", r.cars)))
	defer span.End()

	results := make([]CarResult, r.cars)
	g, gCtx := errgroup.WithContext(ctx)
	for i := range r.cars {
		g.Go(func() error {
			res, err := r.runCar(gCtx, i)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return results, err
	}
	return results, nil
}

//nolint:funlen // by design
func (r *Runner) runCar(ctx context.Context, idx int) (CarResult, error) {
	name := fmt.Sprintf("car-%d", idx+1)
	ctx, span := r.tracer.Start(ctx, "simulate car", trace.WithAttributes(attribute.String("car", name)))
	defer span.End()

	n := r.track.SegmentCount()
	start := track.Location{Segment: (idx * gridSpacing) % n}
	opts := append([]session.Option{
		session.WithName(name),
		session.WithStart(start),
		session.WithLogger(r.log),
	}, r.sessionOpts...)
	s := session.New(r.track, opts...)

	ap := NewAutopilot(r.track, s.Tuning(), r.autopilotOpts...)
	ap.targetSpeed *= 1 - r.speedSpread*float64(idx)

	limit := r.maxDuration.Seconds()
	var sinkErr error
	var last session.Frame
	loop := NewLoop(r.stepRate, func(step time.Duration) bool {
		last = s.Step(ap.Control(s.State()), step.Seconds())
		if r.mustPublish(last) {
			if sinkErr = r.publish(ctx, Update{Telemetry: s.Telemetry(), Frame: last}); sinkErr != nil {
				return false
			}
		}
		return !s.Done() && last.SimTime < limit
	}, WithRealtime(r.realtime))

	err := loop.Run(ctx)
	if err == nil {
		err = sinkErr
	}
	if err == nil {
		// events and collision of the last frame went out with it already
		final := last
		final.Events = nil
		final.Result.Collision = nil
		err = r.publish(ctx, Update{Telemetry: s.Telemetry(), Frame: final, Final: true})
	}
	crashes, scrapes, stalls := s.Stats()
	p := s.Progress()
	ret := CarResult{
		ID:       s.ID(),
		Name:     name,
		Steps:    last.Step,
		SimTime:  last.SimTime,
		Progress: p,
		Crashes:  crashes,
		Scrapes:  scrapes,
		Stalls:   stalls,
	}
	span.SetAttributes(
		attribute.Int("laps", p.CurrentLap),
		attribute.String("state", p.State.String()),
		attribute.Int64("steps", ret.Steps))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ret, err
	}
	r.log.Info("car finished",
		log.String("car", name),
		log.String("state", p.State.String()),
		log.Int("laps", p.CurrentLap),
		log.Float64("simTime", ret.SimTime),
		log.Int("crashes", crashes))
	return ret, nil
}

// mustPublish reports whether f is handed to the sinks.
func (r *Runner) mustPublish(f session.Frame) bool {
	return f.Step%r.publishEvery == 0 || len(f.Events) > 0 || f.Result.Collision != nil
}

func (r *Runner) publish(ctx context.Context, u Update) error {
	for _, sink := range r.sinks {
		if err := sink.Handle(ctx, u); err != nil {
			return fmt.Errorf("sink: %w", err)
		}
	}
	return nil
}
