//nolint:whitespace,lll,funlen // ok for tests
package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestSafeNormalize(t *testing.T) {
	fallback := mgl64.Vec3{0, 1, 0}
	tests := []struct {
		name string
		in   mgl64.Vec3
		want mgl64.Vec3
	}{
		{name: "regular", in: mgl64.Vec3{3, 0, 4}, want: mgl64.Vec3{0.6, 0, 0.8}},
		{name: "zero", in: mgl64.Vec3{}, want: fallback},
		{name: "tiny", in: mgl64.Vec3{1e-12, 0, 0}, want: fallback},
		{name: "nan", in: mgl64.Vec3{math.NaN(), 0, 0}, want: fallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafeNormalize(tt.in, fallback)
			assertVecNear(t, tt.want, got)
		})
	}
}

func TestCatmullRom_endpoints(t *testing.T) {
	p0 := mgl64.Vec3{-1, 0, 0}
	p1 := mgl64.Vec3{0, 0, 0}
	p2 := mgl64.Vec3{1, 1, 0}
	p3 := mgl64.Vec3{2, 1, 1}
	assertVecNear(t, p1, CatmullRom(p0, p1, p2, p3, 0))
	assertVecNear(t, p2, CatmullRom(p0, p1, p2, p3, 1))
}

func TestCatmullRom_collinear(t *testing.T) {
	got := CatmullRom(
		mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{2, 0, 0}, mgl64.Vec3{3, 0, 0}, 0.5)
	assertVecNear(t, mgl64.Vec3{1.5, 0, 0}, got)
}

func TestRotateAround(t *testing.T) {
	got := RotateAround(WorldForward, WorldUp, math.Pi/2)
	assertVecNear(t, mgl64.Vec3{0, 1, 0}, got)
	assert.Equal(t, WorldForward, RotateAround(WorldForward, WorldUp, 0))
}

func TestSignedAngle(t *testing.T) {
	assert.InDelta(t, math.Pi/2, SignedAngle(WorldForward, mgl64.Vec3{0, 1, 0}, WorldUp), 1e-9)
	assert.InDelta(t, -math.Pi/2, SignedAngle(WorldForward, mgl64.Vec3{0, -1, 0}, WorldUp), 1e-9)
}

func TestFrame_Orthonormalize(t *testing.T) {
	prev := Frame{Right: mgl64.Vec3{0, -1, 0}, Up: WorldUp, Forward: WorldForward}
	f := Frame{Forward: mgl64.Vec3{2, 0, 0}, Up: mgl64.Vec3{0.3, 0, 1}}.Orthonormalize(prev)

	assert.InDelta(t, 1.0, f.Right.Len(), 1e-9)
	assert.InDelta(t, 1.0, f.Up.Len(), 1e-9)
	assert.InDelta(t, 0.0, f.Up.Dot(f.Forward), 1e-9)
	assertVecNear(t, mgl64.Vec3{0, -1, 0}, f.Right)

	degenerate := Frame{}.Orthonormalize(prev)
	assert.Equal(t, prev.Forward, degenerate.Forward)
}

func TestFrame_LocalWorld(t *testing.T) {
	f := Frame{
		Position: mgl64.Vec3{10, 5, 1},
		Right:    mgl64.Vec3{0, -1, 0},
		Up:       WorldUp,
		Forward:  WorldForward,
	}
	p := mgl64.Vec3{12, 2, 4}
	local := f.Local(p)
	assertVecNear(t, mgl64.Vec3{3, 3, 2}, local)
	assertVecNear(t, p, f.World(local))
}

func assertVecNear(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	for i := range 3 {
		if math.Abs(want[i]-got[i]) > 1e-9 {
			t.Errorf("got %v, want %v", got, want)
			return
		}
	}
}
