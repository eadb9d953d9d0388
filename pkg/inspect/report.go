// Package inspect summarizes a built track for humans and scripts.
package inspect

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/samber/lo"

	"github.com/mpapenbr/racetrack-sim-go/pkg/model"
	"github.com/mpapenbr/racetrack-sim-go/pkg/race"
	"github.com/mpapenbr/racetrack-sim-go/pkg/track"
	"github.com/mpapenbr/racetrack-sim-go/pkg/trackdef"
)

type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Region struct {
	Kind     string  `json:"kind"`
	Start    int     `json:"start"`
	End      int     `json:"end"`
	Segments int     `json:"segments"`
	Length   float64 `json:"length"`
}

type Checkpoint struct {
	Index    int         `json:"index"`
	Segment  int         `json:"segment"`
	Position model.Point `json:"position"`
}

type Report struct {
	Name            string       `json:"name"`
	FormatVersion   string       `json:"formatVersion,omitempty"`
	Terrain         string       `json:"terrain,omitempty"`
	ControlPoints   int          `json:"controlPoints"`
	Segments        int          `json:"segments"`
	Length          float64      `json:"length"`
	Loops           int          `json:"loops"`
	Width           Range        `json:"width"`
	Height          Range        `json:"height"`
	InvertedSamples int          `json:"invertedSamples"` // samples with the road up pointing down
	Regions         []Region     `json:"regions"`
	Checkpoints     []Checkpoint `json:"checkpoints"`
}

// NewReport collects the report data. f may be nil for tracks without a file.
func NewReport(f *trackdef.File, t *track.Track, checkpoints int) Report {
	ret := Report{
		Name:          t.Name(),
		ControlPoints: len(t.ControlPoints()),
		Segments:      t.SegmentCount(),
		Length:        t.Length(),
		Loops:         t.Loops(),
		Width:         Range{Min: math.Inf(1), Max: math.Inf(-1)},
		Height:        Range{Min: math.Inf(1), Max: math.Inf(-1)},
	}
	if f != nil {
		ret.FormatVersion = f.FormatVersion
		ret.Terrain = string(f.Terrain.Kind)
	}
	vertices := t.Vertices()
	for _, v := range vertices[:t.SegmentCount()] {
		ret.Width.Min = math.Min(ret.Width.Min, v.RoadWidth)
		ret.Width.Max = math.Max(ret.Width.Max, v.RoadWidth)
		ret.Height.Min = math.Min(ret.Height.Min, v.Position.Z())
		ret.Height.Max = math.Max(ret.Height.Max, v.Position.Z())
		if v.Up.Z() < 0 {
			ret.InvertedSamples++
		}
	}
	ret.Regions = lo.Map(t.Regions(), func(r track.HelperRegion, _ int) Region {
		n := r.EndIndex - r.StartIndex
		if n < 0 {
			n += t.SegmentCount()
		}
		return Region{
			Kind:     r.Kind.String(),
			Start:    r.StartIndex,
			End:      r.EndIndex,
			Segments: n,
			Length: math.Mod(
				t.Param(track.Location{Segment: r.EndIndex})-
					t.Param(track.Location{Segment: r.StartIndex})+1, 1) * t.Length(),
		}
	})
	tracker := race.NewTracker(t.SegmentCount(), race.WithCheckpoints(checkpoints))
	ret.Checkpoints = lo.Times(tracker.Checkpoints(), func(k int) Checkpoint {
		seg := tracker.CheckpointSegment(k)
		return Checkpoint{Index: k, Segment: seg, Position: model.PointOf(vertices[seg].Position)}
	})
	return ret
}

// Query evaluates a JSONPath expression like "$.regions[*].kind" against the
// JSON form of r.
func Query(r Report, expr string) ([]any, error) {
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", expr, err)
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	obj, err := oj.Parse(data)
	if err != nil {
		return nil, err
	}
	return x.Get(obj), nil
}
