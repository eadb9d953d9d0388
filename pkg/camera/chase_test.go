//nolint:thelper,whitespace,lll,funlen // ok for tests
package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"gotest.tools/v3/assert"
)

var target = Target{
	Position:  mgl64.Vec3{10, 20, 0},
	Direction: mgl64.Vec3{1, 0, 0},
	Up:        mgl64.Vec3{0, 0, 1},
}

func TestChase_FirstUpdateSnaps(t *testing.T) {
	c := NewChase(WithSeed(1))
	got := c.Update(target, 1.0/60)
	assert.Equal(t, mgl64.Vec3{10 - DefaultDistance, 20, DefaultHeight}, got.Eye)
	assert.Equal(t, mgl64.Vec3{10 + DefaultLookAhead, 20, 0}, got.LookAt)
	assert.Equal(t, target.Up, got.Up)
}

func TestChase_Follow(t *testing.T) {
	c := NewChase(WithSeed(1), WithDistance(5), WithHeight(1), WithLookAhead(2))
	c.Update(target, 1.0/60)
	moved := target
	moved.Position = mgl64.Vec3{110, 20, 0}

	first := c.Update(moved, 1.0/60)
	// lags behind
	assert.Assert(t, first.Eye.X() < 105)
	assert.Assert(t, first.Eye.X() > 5)

	var got Pose
	for range 300 {
		got = c.Update(moved, 1.0/60)
	}
	assert.Assert(t, math.Abs(got.Eye.X()-105) < 1e-3, "eye %v", got.Eye)
	assert.Assert(t, math.Abs(got.LookAt.X()-112) < 1e-3, "lookAt %v", got.LookAt)
}

func TestChase_NoSmoothing(t *testing.T) {
	c := NewChase(WithSeed(1), WithFollowRate(0))
	c.Update(target, 1.0/60)
	moved := target
	moved.Position = mgl64.Vec3{0, 0, 0}
	got := c.Update(moved, 1.0/60)
	assert.Equal(t, mgl64.Vec3{-DefaultDistance, 0, DefaultHeight}, got.Eye)
}

func TestChase_Shake(t *testing.T) {
	c := NewChase(WithSeed(7))
	base := c.Snap(target)
	c.AddShake(1, 0.5)
	c.AddShake(0.25, 0.2)
	assert.Assert(t, c.Shaking())

	moved := false
	for i := range 29 {
		got := c.Update(target, 1.0/60)
		off := got.Eye.Sub(base.Eye).Len()
		assert.Assert(t, off <= 1+1e-9, "step %d offset %v", i, off)
		if off > 0 {
			moved = true
		}
	}
	assert.Assert(t, moved)

	for range 10 {
		c.Update(target, 1.0/60)
	}
	assert.Assert(t, !c.Shaking())
	got := c.Update(target, 1.0/60)
	assert.Equal(t, base.Eye, got.Eye)
}
