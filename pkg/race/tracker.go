// Package race tracks laps, checkpoints and the win/lose state of one vehicle.
package race

import (
	"github.com/mpapenbr/racetrack-sim-go/log"
)

const (
	DefaultLaps            = 3
	DefaultCheckpoints     = 4
	DefaultFallOffDistance = 30.0
	DefaultAirborneTimeout = 5.0
)

// Observation is what the tracker needs to know about one simulation step.
type Observation struct {
	PrevSegment       int
	Segment           int
	HeightAboveGround float64
	AirborneDuration  float64
	Dt                float64
}

type (
	TrackerOption func(*Tracker)
	Tracker       struct {
		segments        int
		laps            int
		checkpoints     int // including the start line
		fallOffDistance float64
		airborneTimeout float64
		log             *log.Logger

		progress Progress
		crossed  int // checkpoints crossed in the current lap
		lapStart float64
	}
)

func WithLaps(laps int) TrackerOption {
	return func(t *Tracker) {
		t.laps = max(laps, 1)
	}
}

// WithCheckpoints sets the number of checkpoints per lap. The start line
// counts as checkpoint 0, the others are evenly distributed.
func WithCheckpoints(n int) TrackerOption {
	return func(t *Tracker) {
		t.checkpoints = max(n, 1)
	}
}

func WithFallOffDistance(d float64) TrackerOption {
	return func(t *Tracker) {
		t.fallOffDistance = d
	}
}

func WithAirborneTimeout(d float64) TrackerOption {
	return func(t *Tracker) {
		t.airborneTimeout = d
	}
}

func WithLogger(l *log.Logger) TrackerOption {
	return func(t *Tracker) {
		t.log = l
	}
}

func NewTracker(segmentCount int, opts ...TrackerOption) *Tracker {
	ret := &Tracker{
		segments:        max(segmentCount, 1),
		laps:            DefaultLaps,
		checkpoints:     DefaultCheckpoints,
		fallOffDistance: DefaultFallOffDistance,
		airborneTimeout: DefaultAirborneTimeout,
		log:             log.Default().Named("race"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.checkpoints = min(ret.checkpoints, ret.segments)
	ret.progress = Progress{
		State:                  StateRacing,
		LapTimes:               []float64{},
		CheckpointTimesThisLap: []float64{},
	}
	return ret
}

func (t *Tracker) Laps() int { return t.laps }

func (t *Tracker) Checkpoints() int { return t.checkpoints }

// CheckpointSegment returns the segment index of checkpoint k.
func (t *Tracker) CheckpointSegment(k int) int {
	return k * t.segments / t.checkpoints
}

// Progress returns a copy of the current progress.
func (t *Tracker) Progress() Progress {
	ret := t.progress
	ret.LapTimes = append([]float64{}, t.progress.LapTimes...)
	ret.CheckpointTimesThisLap = append([]float64{}, t.progress.CheckpointTimesThisLap...)
	return ret
}

// Update processes one observation. Once the race is won or lost further
// observations are ignored.
func (t *Tracker) Update(o Observation) []Event {
	if t.progress.IsGameOver {
		return nil
	}
	t.progress.RaceTime += o.Dt
	ret := []Event{}

	switch {
	case t.wrappedForward(o):
		if ev, ok := t.completeLap(); ok {
			ret = append(ret, ev)
		}
	case t.wrappedBackward(o):
		t.log.Debug("start line crossed backwards", log.Int("lap", t.progress.CurrentLap))
	default:
		ret = append(ret, t.checkpointsCrossed(o)...)
	}

	if t.progress.CurrentLap >= t.laps {
		ret = append(ret, t.finish(StateWon, ReasonFinished))
		return ret
	}
	if o.HeightAboveGround > t.fallOffDistance {
		ret = append(ret, t.finish(StateLost, ReasonFellOff))
	} else if o.AirborneDuration > t.airborneTimeout {
		ret = append(ret, t.finish(StateLost, ReasonAirborneTimeout))
	}
	return ret
}

func (t *Tracker) wrappedForward(o Observation) bool {
	return o.PrevSegment-o.Segment > t.segments/2
}

func (t *Tracker) wrappedBackward(o Observation) bool {
	return o.Segment-o.PrevSegment > t.segments/2
}

func (t *Tracker) checkpointsCrossed(o Observation) []Event {
	ret := []Event{}
	for t.crossed < t.checkpoints-1 {
		next := t.CheckpointSegment(t.crossed + 1)
		if o.PrevSegment >= next || o.Segment < next {
			break
		}
		t.crossed++
		split := t.progress.RaceTime - t.lapStart
		t.progress.CheckpointTimesThisLap = append(t.progress.CheckpointTimesThisLap, split)
		ret = append(ret, Event{
			Kind:       EventCheckpointCrossed,
			Lap:        t.progress.CurrentLap + 1,
			Checkpoint: t.crossed,
			Time:       split,
		})
	}
	return ret
}

func (t *Tracker) completeLap() (Event, bool) {
	if t.crossed < t.checkpoints-1 {
		t.log.Debug("lap not counted",
			log.Int("crossed", t.crossed),
			log.Int("required", t.checkpoints-1))
		return Event{}, false
	}
	lapTime := t.progress.RaceTime - t.lapStart
	p := &t.progress
	p.CurrentLap++
	p.LapTimes = append(p.LapTimes, lapTime)
	if p.BestLapTime == 0 || lapTime < p.BestLapTime {
		p.BestLapTime = lapTime
	}
	p.CheckpointTimesThisLap = []float64{}
	t.crossed = 0
	t.lapStart = p.RaceTime
	t.log.Debug("lap completed",
		log.Int("lap", p.CurrentLap),
		log.Float64("time", lapTime))
	return Event{Kind: EventLapCompleted, Lap: p.CurrentLap, Time: lapTime}, true
}

func (t *Tracker) finish(state State, reason Reason) Event {
	p := &t.progress
	p.State = state
	p.Reason = reason
	p.IsGameOver = true
	p.IsVictory = state == StateWon
	t.log.Debug("game over",
		log.String("state", state.String()),
		log.String("reason", string(reason)),
		log.Int("laps", p.CurrentLap))
	return Event{Kind: EventGameOver, Lap: p.CurrentLap, Time: p.RaceTime, State: state, Reason: reason}
}
