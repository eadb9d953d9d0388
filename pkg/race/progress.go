package race

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type State int

const (
	StateRacing State = iota
	StateWon
	StateLost
)

func (s State) String() string {
	return [...]string{"racing", "won", "lost"}[s]
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Reason string

const (
	ReasonNone            Reason = ""
	ReasonFinished        Reason = "finished"
	ReasonFellOff         Reason = "fell-off"
	ReasonAirborneTimeout Reason = "airborne-timeout"
)

type EventKind int

const (
	EventCheckpointCrossed EventKind = iota
	EventLapCompleted
	EventGameOver
)

func (k EventKind) String() string {
	return [...]string{"checkpoint", "lap", "game-over"}[k]
}

// Event is emitted by Tracker.Update.
// Time is the split for checkpoints, the lap time for laps and the race
// time for game over.
type Event struct {
	Kind       EventKind
	Lap        int
	Checkpoint int
	Time       float64
	State      State
	Reason     Reason
}

// Progress of one vehicle. CurrentLap is the number of completed laps.
type Progress struct {
	CurrentLap             int       `json:"currentLap"`
	BestLapTime            float64   `json:"bestLapTime"` // 0 until the first lap is completed
	LapTimes               []float64 `json:"lapTimes"`
	CheckpointTimesThisLap []float64 `json:"checkpointTimesThisLap"`
	RaceTime               float64   `json:"raceTime"`
	IsGameOver             bool      `json:"isGameOver"`
	IsVictory              bool      `json:"isVictory"`
	State                  State     `json:"state"`
	Reason                 Reason    `json:"reason,omitempty"`
}

// Summary is a presentation view of Progress with times rounded to
// milliseconds.
type Summary struct {
	State    string            `json:"state"`
	Reason   string            `json:"reason,omitempty"`
	Laps     int               `json:"laps"`
	LapTimes []decimal.Decimal `json:"lapTimes"`
	BestLap  decimal.Decimal   `json:"bestLap"`
	Total    decimal.Decimal   `json:"total"`
}

const summaryPlaces = 3

func (p Progress) Summary() Summary {
	round := func(v float64) decimal.Decimal {
		return decimal.NewFromFloat(v).Round(summaryPlaces)
	}
	return Summary{
		State:  p.State.String(),
		Reason: string(p.Reason),
		Laps:   p.CurrentLap,
		LapTimes: lo.Map(p.LapTimes, func(v float64, _ int) decimal.Decimal {
			return round(v)
		}),
		BestLap: round(p.BestLapTime),
		Total:   round(p.RaceTime),
	}
}
