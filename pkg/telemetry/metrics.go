package telemetry

import (
	"context"
	"errors"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mpapenbr/racetrack-sim-go/pkg/race"
	"github.com/mpapenbr/racetrack-sim-go/pkg/simulation"
)

type (
	RecorderOption func(*Recorder)
	// Recorder turns simulation updates into OpenTelemetry measurements.
	Recorder struct {
		provider   metric.MeterProvider
		updates    metric.Int64Counter
		laps       metric.Int64Counter
		collisions metric.Int64Counter
		finished   metric.Int64Counter
		lapTime    metric.Float64Histogram
		speed      metric.Float64Histogram
	}
)

var _ simulation.Sink = (*Recorder)(nil)

func WithMeterProvider(mp metric.MeterProvider) RecorderOption {
	return func(r *Recorder) {
		r.provider = mp
	}
}

func NewRecorder(opts ...RecorderOption) (*Recorder, error) {
	ret := &Recorder{provider: otel.GetMeterProvider()}
	for _, opt := range opts {
		opt(ret)
	}
	meter := ret.provider.Meter("rts.simulation")
	var err, e error
	ret.updates, e = meter.Int64Counter("rts.sim.updates",
		metric.WithDescription("Number of handled simulation updates"),
		metric.WithUnit("{update}"))
	err = errors.Join(err, e)
	ret.laps, e = meter.Int64Counter("rts.sim.laps",
		metric.WithDescription("Number of completed laps"),
		metric.WithUnit("{lap}"))
	err = errors.Join(err, e)
	ret.collisions, e = meter.Int64Counter("rts.sim.collisions",
		metric.WithDescription("Number of guard rail collisions"),
		metric.WithUnit("{collision}"))
	err = errors.Join(err, e)
	ret.finished, e = meter.Int64Counter("rts.sim.finished",
		metric.WithDescription("Number of cars which ended their run"),
		metric.WithUnit("{car}"))
	err = errors.Join(err, e)
	ret.lapTime, e = meter.Float64Histogram("rts.sim.lap_time",
		metric.WithDescription("Lap times"),
		metric.WithUnit("s"))
	err = errors.Join(err, e)
	ret.speed, e = meter.Float64Histogram("rts.sim.speed",
		metric.WithDescription("Absolute car speed"),
		metric.WithUnit("{unit}/s"))
	err = errors.Join(err, e)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (r *Recorder) Handle(ctx context.Context, u simulation.Update) error {
	car := metric.WithAttributes(attribute.String("car", u.Telemetry.CarName))
	r.updates.Add(ctx, 1, car)
	r.speed.Record(ctx, math.Abs(u.Telemetry.Speed), car)
	if c := u.Frame.Result.Collision; c != nil {
		r.collisions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("car", u.Telemetry.CarName),
			attribute.String("kind", c.Kind.String())))
	}
	for _, e := range u.Frame.Events {
		if e.Kind == race.EventLapCompleted {
			r.laps.Add(ctx, 1, car)
			r.lapTime.Record(ctx, e.Time, car)
		}
	}
	if u.Final {
		r.finished.Add(ctx, 1, metric.WithAttributes(
			attribute.String("state", u.Telemetry.State)))
	}
	return nil
}
