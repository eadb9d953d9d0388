//nolint:thelper,whitespace,lll,funlen // ok for tests
package track

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/racetrack-sim-go/log"
	"github.com/mpapenbr/racetrack-sim-go/pkg/model"
)

func TestSynthesizeLoops(t *testing.T) {
	points := []mgl64.Vec3{
		{-100, 0, 0},
		{0, 0, 0},
		{10, 0, 60},
		{40, 0, 2},
		{100, 0, 0},
	}
	got, loops := synthesizeLoops(points)
	assert.Equal(t, 1, loops)
	assert.Len(t, got, len(points)+7)
	// untouched neighbors
	assert.Equal(t, points[0], got[0])
	assert.Equal(t, points[4], got[len(got)-1])
	// template starts at the loop entry and reaches the full height at its top
	assertVecNear(t, points[1], got[1], 1e-9)
	assertVecNear(t, mgl64.Vec3{0, -6, 60}, got[5], 1e-9)
	// straightening point leads out in forward direction
	assertVecNear(t, mgl64.Vec3{30, -12, 0}, got[10], 1e-9)
	// input is not modified
	assert.Equal(t, mgl64.Vec3{10, 0, 60}, points[2])
}

func TestSynthesizeLoops_NoLoop(t *testing.T) {
	tests := []struct {
		name   string
		points []mgl64.Vec3
	}{
		{
			name:   "flat",
			points: []mgl64.Vec3{{0, 0, 0}, {100, 0, 0}, {100, 100, 0}},
		},
		{
			name:   "steep but stays up",
			points: []mgl64.Vec3{{0, 0, 0}, {10, 0, 60}, {40, 0, 50}, {100, 0, 50}},
		},
		{
			name:   "climb not steep enough",
			points: []mgl64.Vec3{{0, 0, 0}, {40, 0, 60}, {80, 0, 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, loops := synthesizeLoops(tt.points)
			assert.Equal(t, 0, loops)
			if diff := cmp.Diff(tt.points, got); diff != "" {
				t.Errorf("synthesizeLoops() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGroundClamp(t *testing.T) {
	points := []mgl64.Vec3{{0, 0, 0}, {100, 0, 5}, {100, 100, 20}}
	raised := groundClamp(points, func(x, y float64) float64 { return 10 }, 2)
	assert.Positive(t, raised)
	for _, p := range points {
		assert.GreaterOrEqual(t, p.Z(), 12.0-1e-9)
	}
	untouched := []mgl64.Vec3{{0, 0, 50}, {100, 0, 50}, {100, 100, 50}}
	assert.Equal(t, 0, groundClamp(untouched, func(x, y float64) float64 { return 10 }, 2))
}

func TestSampleCurve(t *testing.T) {
	points := []mgl64.Vec3{{0, 0, 0}, {100, 0, 0}, {100, 1, 0}}
	got := sampleCurve(points, 40)
	// 40 + 1 (minimum) + int(100.005*0.4)
	assert.Len(t, got, 40+1+40)
	assert.Equal(t, points[0], got[0])
}

func TestAssignWidths(t *testing.T) {
	pos := make([]mgl64.Vec3, 100)
	for i := range pos {
		pos[i] = mgl64.Vec3{float64(i) * 2, 0, 0}
	}
	s := defaultSettings()
	hints := []model.WidthHint{{Position: model.Point{100, 0, 0}, Width: 20}}
	got := assignWidths(pos, hints, s)

	assert.Equal(t, DefaultRoadWidth, got[0])
	// samples 38..62 are within the hint radius
	assert.Equal(t, DefaultRoadWidth, got[37])
	assert.Greater(t, got[62], got[38])
	assert.Equal(t, got[62], got[63])
	assert.LessOrEqual(t, got[62], 20.0)
	// the last samples fade back to the start width
	assert.Equal(t, got[62], got[92])
	for i := 93; i < 100; i++ {
		assert.Less(t, got[i], got[i-1], "width at %d", i)
	}
	assert.InDelta(t, DefaultRoadWidth+(got[92]-DefaultRoadWidth)/8, got[99], 1e-9)
}

func TestBuildRegions(t *testing.T) {
	pos := make([]mgl64.Vec3, 100)
	for i := range pos {
		pos[i] = mgl64.Vec3{float64(i) * 10, 0, 0}
	}
	l := log.Default()
	tests := []struct {
		name  string
		hints []model.FeatureHint
		want  []HelperRegion
	}{
		{name: "none", hints: nil, want: []HelperRegion{}},
		{
			name: "open and reset",
			hints: []model.FeatureHint{
				{Position: model.Point{100, 0, 0}, Kind: model.HelperTunnel},
				{Position: model.Point{200, 0, 0}, Kind: model.HelperReset},
			},
			want: []HelperRegion{{Kind: model.HelperTunnel, StartIndex: 10, EndIndex: 20}},
		},
		{
			name: "closed at end",
			hints: []model.FeatureHint{
				{Position: model.Point{500, 3, 0}, Kind: model.HelperPalms},
			},
			want: []HelperRegion{{Kind: model.HelperPalms, StartIndex: 50, EndIndex: 99}},
		},
		{
			name: "repeated kind ignored, reset closes all",
			hints: []model.FeatureHint{
				{Position: model.Point{100, 0, 0}, Kind: model.HelperTunnel},
				{Position: model.Point{150, 0, 0}, Kind: model.HelperLaterns},
				{Position: model.Point{180, 0, 0}, Kind: model.HelperTunnel},
				{Position: model.Point{300, 0, 0}, Kind: model.HelperReset},
			},
			want: []HelperRegion{
				{Kind: model.HelperTunnel, StartIndex: 10, EndIndex: 30},
				{Kind: model.HelperLaterns, StartIndex: 15, EndIndex: 30},
			},
		},
		{
			name: "hint too far away",
			hints: []model.FeatureHint{
				{Position: model.Point{100, 100, 0}, Kind: model.HelperTunnel},
			},
			want: []HelperRegion{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildRegions(pos, tt.hints, l)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHelperRegion_Contains(t *testing.T) {
	r := HelperRegion{StartIndex: 90, EndIndex: 5}
	assert.True(t, r.Contains(95))
	assert.True(t, r.Contains(2))
	assert.False(t, r.Contains(50))
	assert.True(t, HelperRegion{StartIndex: 1, EndIndex: 3}.Contains(2))
}
