package simulation

import (
	"context"
	"time"
)

// StepFunc advances the simulation by a fixed timestep.
// Returning false ends the loop.
type StepFunc func(step time.Duration) bool

type (
	LoopOption func(*Loop)
	// Loop drives a fixed timestep simulation. In realtime mode steps are paced
	// by the wall clock, otherwise they run as fast as possible.
	Loop struct {
		step     time.Duration
		stepFunc StepFunc
		realtime bool
	}
)

func WithRealtime(realtime bool) LoopOption {
	return func(l *Loop) {
		l.realtime = realtime
	}
}

// NewLoop configures a loop that targets the provided frames per second.
func NewLoop(targetHz float64, step StepFunc, opts ...LoopOption) *Loop {
	if targetHz <= 0 {
		targetHz = 60
	}
	if step == nil {
		step = func(time.Duration) bool { return false }
	}
	interval := time.Duration(float64(time.Second) / targetHz)
	if interval <= 0 {
		interval = time.Second / 60
	}
	ret := &Loop{step: interval, stepFunc: step}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (l *Loop) StepDuration() time.Duration { return l.step }

// Run blocks until the step function returns false or ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	if !l.realtime {
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !l.stepFunc(l.step) {
				return nil
			}
		}
	}
	ticker := time.NewTicker(l.step)
	defer ticker.Stop()
	last := time.Now()
	accumulator := time.Duration(0)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			// catch up with the wall clock using fixed steps
			accumulator += now.Sub(last)
			last = now
			for accumulator >= l.step {
				if !l.stepFunc(l.step) {
					return nil
				}
				accumulator -= l.step
			}
		}
	}
}
