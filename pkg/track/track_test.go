//nolint:thelper,whitespace,lll,funlen // ok for tests
package track

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/racetrack-sim-go/pkg/geom"
	"github.com/mpapenbr/racetrack-sim-go/pkg/model"
	"github.com/mpapenbr/racetrack-sim-go/testsupport/basedata"
)

const tol = 1e-9

func buildOrFail(t *testing.T, def model.TrackDefinition, opts ...BuilderOption) *Track {
	tr, err := Build(def, opts...)
	require.NoError(t, err)
	return tr
}

func sampleTracks(t *testing.T) map[string]*Track {
	return map[string]*Track{
		"square":   buildOrFail(t, basedata.SquareTrack()),
		"straight": buildOrFail(t, basedata.StraightTrack()),
		"loop":     buildOrFail(t, basedata.LoopTrack()),
		"hills": buildOrFail(t, basedata.HillsTrack(),
			WithGroundHeight(basedata.HillsTerrain)),
	}
}

func TestBuild_InvalidTrackData(t *testing.T) {
	tests := []struct {
		name   string
		points []model.Point
	}{
		{name: "empty", points: nil},
		{name: "two points", points: []model.Point{{0, 0, 0}, {10, 0, 0}}},
		{name: "duplicate points", points: []model.Point{{0, 0, 0}, {0, 0, 0}, {10, 10, 0}}},
		{name: "closing segment zero", points: []model.Point{{0, 0, 0}, {10, 0, 0}, {10, 10, 0}, {0, 0, 0}}},
		{name: "nan", points: []model.Point{{0, 0, 0}, {math.NaN(), 0, 0}, {10, 10, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := Build(model.TrackDefinition{Name: tt.name, ControlPoints: tt.points})
			assert.Nil(t, tr)
			assert.True(t, errors.Is(err, ErrInvalidTrackData), "got %v", err)
		})
	}
}

func TestBuild_Orthonormal(t *testing.T) {
	for name, tr := range sampleTracks(t) {
		t.Run(name, func(t *testing.T) {
			for i, v := range tr.Vertices() {
				assert.InDelta(t, 1.0, v.Right.Len(), tol, "right %d", i)
				assert.InDelta(t, 1.0, v.Up.Len(), tol, "up %d", i)
				assert.InDelta(t, 1.0, v.Forward.Len(), tol, "forward %d", i)
				assert.InDelta(t, 0.0, v.Right.Dot(v.Up), tol, "right.up %d", i)
				assert.InDelta(t, 0.0, v.Right.Dot(v.Forward), tol, "right.forward %d", i)
				assert.InDelta(t, 0.0, v.Up.Dot(v.Forward), tol, "up.forward %d", i)
			}
		})
	}
}

func TestBuild_Closure(t *testing.T) {
	for name, tr := range sampleTracks(t) {
		t.Run(name, func(t *testing.T) {
			v := tr.Vertices()
			last := len(v) - 1
			assert.Equal(t, tr.SegmentCount(), last)
			assert.Equal(t, v[0].Position, v[last].Position)
			assert.Greater(t, v[last].TexU, v[last-1].TexU)
			for i := 1; i < len(v); i++ {
				assert.GreaterOrEqual(t, v[i].TexU, v[i-1].TexU, "texU at %d", i)
			}
			assert.InDelta(t, tr.Length()*DefaultTexStretch, v[last].TexU, 1e-6)
		})
	}
}

func TestBuild_WidthBounds(t *testing.T) {
	tests := []struct {
		name     string
		opts     []BuilderOption
		min, max float64
	}{
		{name: "defaults", min: DefaultMinRoadWidth, max: DefaultMaxRoadWidth},
		{name: "narrow range", opts: []BuilderOption{WithWidthRange(10, 14)}, min: 10, max: 14},
		{
			name: "default outside range",
			opts: []BuilderOption{WithWidthRange(15, 18), WithDefaultWidth(30)},
			min:  15, max: 18,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]BuilderOption{WithGroundHeight(basedata.HillsTerrain)}, tt.opts...)
			tr := buildOrFail(t, basedata.HillsTrack(), opts...)
			for i, v := range tr.Vertices() {
				assert.GreaterOrEqual(t, v.RoadWidth, tt.min, "width at %d", i)
				assert.LessOrEqual(t, v.RoadWidth, tt.max, "width at %d", i)
			}
		})
	}
}

func TestBuild_WidthHintsApplied(t *testing.T) {
	tr := buildOrFail(t, basedata.HillsTrack(), WithGroundHeight(basedata.HillsTerrain))
	minW, maxW := math.Inf(1), math.Inf(-1)
	for _, v := range tr.Vertices() {
		minW = math.Min(minW, v.RoadWidth)
		maxW = math.Max(maxW, v.RoadWidth)
	}
	assert.Greater(t, maxW, DefaultRoadWidth+2)
	assert.Less(t, minW, DefaultRoadWidth-1)
}

// flat square: every up vector stays close to world up
func TestBuild_FlatTrackStaysUp(t *testing.T) {
	tr := buildOrFail(t, basedata.SquareTrack())
	assert.Equal(t, 0, tr.Loops())
	assert.Equal(t, 320, tr.SegmentCount())
	maxAngle := 0.0
	for _, v := range tr.Vertices() {
		maxAngle = math.Max(maxAngle, math.Acos(mgl64.Clamp(v.Up.Dot(geom.WorldUp), -1, 1)))
	}
	assert.Less(t, maxAngle, mgl64.DegToRad(10))
}

func TestBuild_LoopSynthesis(t *testing.T) {
	def := basedata.LoopTrack()
	tr := buildOrFail(t, def)
	assert.Equal(t, 1, tr.Loops())
	// 3 points replaced by 9 template points and one straightening point
	assert.Len(t, tr.ControlPoints(), len(def.ControlPoints)+7)

	upsideDown := 0
	for _, v := range tr.Vertices() {
		if v.Up.Z() < 0 {
			upsideDown++
		}
	}
	assert.Positive(t, upsideDown)
}

func TestBuild_GroundClearance(t *testing.T) {
	def := basedata.HillsTrack()
	tr := buildOrFail(t, def, WithGroundHeight(basedata.HillsTerrain), WithMinGroundClearance(1))
	cps := tr.ControlPoints()
	require.Len(t, cps, len(def.ControlPoints))
	for i, p := range cps {
		next := cps[(i+1)%len(cps)]
		for s := 0; s <= groundClampSubPoints+1; s++ {
			q := geom.Lerp(p, next, float64(s)/float64(groundClampSubPoints+1))
			assert.GreaterOrEqual(t, q.Z()+1e-9, basedata.HillsTerrain(q.X(), q.Y())+1,
				"segment %d sub point %d", i, s)
		}
	}
}

func TestBuild_Regions(t *testing.T) {
	tr := buildOrFail(t, basedata.HillsTrack(), WithGroundHeight(basedata.HillsTerrain))
	regions := tr.Regions()
	require.Len(t, regions, 2)

	tunnel := regions[0]
	assert.Equal(t, model.HelperTunnel, tunnel.Kind)
	assert.Less(t, tunnel.StartIndex, tunnel.EndIndex)
	assert.True(t, tr.InTunnel(tunnel.StartIndex))
	assert.True(t, tr.InTunnel(tunnel.EndIndex))
	assert.False(t, tr.InTunnel(tunnel.EndIndex+1))
	assert.Less(t, geom.Horizontal(tr.Vertices()[tunnel.StartIndex].Position.Sub(mgl64.Vec3{0, -170, 0})).Len(), hintRadius)

	palms := regions[1]
	assert.Equal(t, model.HelperPalms, palms.Kind)
	assert.Equal(t, tr.SegmentCount()-1, palms.EndIndex)
}

func TestTrack_At(t *testing.T) {
	tr := buildOrFail(t, basedata.SquareTrack())
	f0, w0, _ := tr.At(0)
	assertVecNear(t, tr.Vertices()[0].Position, f0.Position, tol)
	assert.InDelta(t, DefaultRoadWidth, w0, tol)

	a, _, _ := tr.At(0.25)
	for _, param := range []float64{1.25, -0.75, 3.25} {
		b, _, _ := tr.At(param)
		assertVecNear(t, a.Position, b.Position, 1e-6)
	}
}

func TestTrack_AtSegment(t *testing.T) {
	tr := buildOrFail(t, basedata.LoopTrack())
	v := tr.Vertices()
	for _, seg := range []int{0, 17, tr.SegmentCount() - 1} {
		f, _, next := tr.AtSegment(seg, 0)
		assertVecNear(t, v[seg].Position, f.Position, tol)
		assert.InDelta(t, v[seg+1].RoadWidth, next, tol)
		f, _, _ = tr.AtSegment(seg, 1)
		assertVecNear(t, v[seg+1].Position, f.Position, tol)
	}
	// wraps
	a, _, _ := tr.AtSegment(-1, 0.5)
	b, _, _ := tr.AtSegment(tr.SegmentCount()-1, 0.5)
	assertVecNear(t, a.Position, b.Position, tol)
}

func TestTrack_ParamRoundTrip(t *testing.T) {
	tr := buildOrFail(t, basedata.LoopTrack())
	for k := range 50 {
		param := float64(k)/50 + 0.003
		assert.InDelta(t, param, tr.Param(tr.LocationOf(param)), 1e-9)
	}
}

func TestTrack_RailDistance(t *testing.T) {
	tr := buildOrFail(t, basedata.StraightTrack())
	seg := 60 // vertex at (-150,-150,0)
	v := tr.Vertices()[seg]
	half := v.RoadWidth/2 - DefaultRailInset
	for _, side := range []Side{SideLeft, SideRight} {
		d, inward, along := tr.RailDistance(v.Position, seg, side)
		assert.InDelta(t, half, d, 1e-6, side.String())
		assert.InDelta(t, 0, inward.Dot(along), tol)
	}
	outside := v.Position.Add(v.Right.Mul(half + 1))
	d, _, _ := tr.RailDistance(outside, seg, SideRight)
	assert.InDelta(t, -1.0, d, 1e-6)
}

func assertVecNear(t *testing.T, want, got mgl64.Vec3, delta float64) {
	t.Helper()
	for i := range 3 {
		if math.Abs(want[i]-got[i]) > delta {
			t.Errorf("got %v, want %v", got, want)
			return
		}
	}
}
