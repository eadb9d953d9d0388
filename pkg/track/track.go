// Package track builds a drivable closed road from sparse control points and
// answers position queries along it. A Track is immutable after Build and
// may be shared between goroutines.
package track

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"

	"github.com/mpapenbr/racetrack-sim-go/log"
	"github.com/mpapenbr/racetrack-sim-go/pkg/geom"
	"github.com/mpapenbr/racetrack-sim-go/pkg/model"
)

// Vertex is one dense sample of the road center line.
type Vertex struct {
	Position  mgl64.Vec3 `json:"position"`
	Right     mgl64.Vec3 `json:"right"`
	Up        mgl64.Vec3 `json:"up"`
	Forward   mgl64.Vec3 `json:"forward"`
	RoadWidth float64    `json:"roadWidth"`
	TexU      float64    `json:"texU"`
}

func (v Vertex) Frame() geom.Frame {
	return geom.Frame{Position: v.Position, Right: v.Right, Up: v.Up, Forward: v.Forward}
}

// Location is a position on the track given by segment index and the percentage
// between the segment start and the next vertex.
type Location struct {
	Segment int     `json:"segment"`
	Percent float64 `json:"percent"`
}

type Track struct {
	name          string
	controlPoints []mgl64.Vec3
	vertices      []Vertex  // last entry duplicates the first one
	cumulative    []float64 // arc length at each vertex
	length        float64
	regions       []HelperRegion
	rails         GuardRails
	loops         int
	railInset     float64
}

// Build converts the track definition into a Track.
//
//nolint:funlen // by design
func Build(def model.TrackDefinition, opts ...BuilderOption) (*Track, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(s)
	}
	points := lo.Map(def.ControlPoints, func(p model.Point, _ int) mgl64.Vec3 {
		return p.Vec()
	})
	if err := validateControlPoints(points); err != nil {
		return nil, err
	}
	l := s.log.With(log.String("track", def.Name))

	if s.groundHeight != nil {
		raised := groundClamp(points, s.groundHeight, s.minGroundClearance)
		l.Debug("ground clamp done", log.Int("raised", raised))
	}
	points, loops := synthesizeLoops(points)

	pos := sampleCurve(points, s.samplesPer100)
	frames := buildFrames(pos, s.groundHeight)
	widths := assignWidths(pos, def.WidthHints, s)

	n := len(pos)
	t := &Track{
		name:          def.Name,
		controlPoints: points,
		vertices:      make([]Vertex, n+1),
		cumulative:    make([]float64, n+1),
		loops:         loops,
		railInset:     s.railInset,
	}
	texU := 0.0
	for i := range n {
		f := frames[i]
		t.vertices[i] = Vertex{
			Position:  f.Position,
			Right:     f.Right,
			Up:        f.Up,
			Forward:   f.Forward,
			RoadWidth: widths[i],
			TexU:      texU,
		}
		segLen := pos[(i+1)%n].Sub(pos[i]).Len()
		t.cumulative[i+1] = t.cumulative[i] + segLen
		texU += segLen * s.texStretch
	}
	t.vertices[n] = t.vertices[0]
	t.vertices[n].TexU = texU
	t.length = t.cumulative[n]
	t.regions = buildRegions(pos, def.FeatureHints, l)
	t.rails = buildRails(t.vertices, s.railInset)

	l.Debug("track built",
		log.Int("controlPoints", len(points)),
		log.Int("loops", loops),
		log.Int("samples", n),
		log.Float64("length", t.length),
		log.Int("regions", len(t.regions)))
	return t, nil
}

func (t *Track) Name() string { return t.name }

// Length is the arc length of the closed center line.
func (t *Track) Length() float64 { return t.length }

// SegmentCount is the number of segments (number of distinct vertices).
func (t *Track) SegmentCount() int { return len(t.vertices) - 1 }

// Vertices returns the vertex sequence including the closing duplicate.
func (t *Track) Vertices() []Vertex { return t.vertices }

// ControlPoints returns the control points after ground clamp and loop synthesis.
func (t *Track) ControlPoints() []mgl64.Vec3 { return t.controlPoints }

func (t *Track) Loops() int { return t.loops }

func (t *Track) Regions() []HelperRegion { return t.regions }

func (t *Track) Rails() GuardRails { return t.rails }

func (t *Track) RailInset() float64 { return t.railInset }

func (t *Track) InTunnel(segment int) bool {
	segment = t.wrap(segment)
	return lo.ContainsBy(t.regions, func(r HelperRegion) bool {
		return r.Kind == model.HelperTunnel && r.Contains(segment)
	})
}

// StartFrame is the frame at the beginning of segment 0.
func (t *Track) StartFrame() geom.Frame { return t.vertices[0].Frame() }

func (t *Track) wrap(segment int) int {
	n := t.SegmentCount()
	return ((segment % n) + n) % n
}

// At returns the frame at arc length parameter param (wrapped into [0,1)) together
// with the interpolated road width and the width at the next vertex.
func (t *Track) At(param float64) (geom.Frame, float64, float64) {
	return t.AtLocation(t.LocationOf(param))
}

func (t *Track) AtLocation(loc Location) (geom.Frame, float64, float64) {
	return t.AtSegment(loc.Segment, loc.Percent)
}

// LocationOf converts an arc length parameter into a Location.
func (t *Track) LocationOf(param float64) Location {
	param -= math.Floor(param)
	s := param * t.length
	n := t.SegmentCount()
	seg := sort.Search(n, func(i int) bool { return t.cumulative[i+1] > s })
	if seg >= n {
		seg = n - 1
	}
	segLen := t.cumulative[seg+1] - t.cumulative[seg]
	pct := 0.0
	if segLen > 0 {
		pct = mgl64.Clamp((s-t.cumulative[seg])/segLen, 0, 1)
	}
	return Location{Segment: seg, Percent: pct}
}

// Param converts a Location into the arc length parameter in [0,1).
func (t *Track) Param(loc Location) float64 {
	seg := t.wrap(loc.Segment)
	segLen := t.cumulative[seg+1] - t.cumulative[seg]
	p := (t.cumulative[seg] + loc.Percent*segLen) / t.length
	return p - math.Floor(p)
}

// AtSegment interpolates the frame inside segment at percent (0..1) using
// Catmull-Rom over the surrounding vertices. Widths are interpolated linearly.
func (t *Track) AtSegment(segment int, percent float64) (geom.Frame, float64, float64) {
	n := t.SegmentCount()
	cur := t.wrap(segment)
	prev := (cur - 1 + n) % n
	next := cur + 1
	next2 := (cur + 2) % n
	pct := mgl64.Clamp(percent, 0, 1)
	v0, v1, v2, v3 := t.vertices[prev], t.vertices[cur], t.vertices[next], t.vertices[next2]

	f := geom.Frame{
		Position: geom.CatmullRom(v0.Position, v1.Position, v2.Position, v3.Position, pct),
		Forward:  geom.CatmullRom(v0.Forward, v1.Forward, v2.Forward, v3.Forward, pct),
		Up:       geom.CatmullRom(v0.Up, v1.Up, v2.Up, v3.Up, pct),
	}
	f = f.Orthonormalize(v1.Frame())
	width := geom.LerpF(v1.RoadWidth, v2.RoadWidth, pct)
	return f, width, v2.RoadWidth
}
