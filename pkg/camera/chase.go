// Package camera provides a chase camera following a vehicle.
package camera

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mpapenbr/racetrack-sim-go/pkg/geom"
)

const (
	DefaultDistance   = 12.0
	DefaultHeight     = 4.0
	DefaultLookAhead  = 6.0
	DefaultFollowRate = 6.0 // per second

	shakeFalloff = 0.08
)

// Target is the subject of the camera.
type Target struct {
	Position  mgl64.Vec3
	Direction mgl64.Vec3
	Up        mgl64.Vec3
}

// Pose is the camera transform handed to a renderer.
type Pose struct {
	Eye    mgl64.Vec3 `json:"eye"`
	LookAt mgl64.Vec3 `json:"lookAt"`
	Up     mgl64.Vec3 `json:"up"`
}

type (
	Option func(*Chase)
	Chase  struct {
		distance   float64
		height     float64
		lookAhead  float64
		followRate float64
		rnd        *rand.Rand

		pose        Pose // smoothed, without shake
		shakeOffset mgl64.Vec3
		shakeTimer  float64
		shakeMax    float64
		initialized bool
	}
)

func WithDistance(d float64) Option {
	return func(c *Chase) {
		c.distance = d
	}
}

func WithHeight(h float64) Option {
	return func(c *Chase) {
		c.height = h
	}
}

func WithLookAhead(d float64) Option {
	return func(c *Chase) {
		c.lookAhead = d
	}
}

// WithFollowRate sets how fast the camera catches up. 0 disables smoothing.
func WithFollowRate(rate float64) Option {
	return func(c *Chase) {
		c.followRate = rate
	}
}

// WithSeed makes the shake offsets reproducible.
func WithSeed(seed uint64) Option {
	return func(c *Chase) {
		c.rnd = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

func NewChase(opts ...Option) *Chase {
	ret := &Chase{
		distance:   DefaultDistance,
		height:     DefaultHeight,
		lookAhead:  DefaultLookAhead,
		followRate: DefaultFollowRate,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.rnd == nil {
		ret.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return ret
}

// AddShake starts a shake. A running shake keeps the larger intensity and the
// longer remaining time.
func (c *Chase) AddShake(intensity, duration float64) {
	c.shakeMax = math.Max(c.shakeMax, intensity)
	c.shakeTimer = math.Max(c.shakeTimer, duration)
}

func (c *Chase) Shaking() bool { return c.shakeTimer > 0 }

// Snap places the camera at the desired position without smoothing.
func (c *Chase) Snap(t Target) Pose {
	c.pose = c.desired(t)
	c.initialized = true
	return c.Pose()
}

// Update moves the camera towards the chase position behind t and advances
// the shake. The returned pose includes the shake offset.
func (c *Chase) Update(t Target, dt float64) Pose {
	if !c.initialized || c.followRate <= 0 {
		c.Snap(t)
	} else {
		want := c.desired(t)
		blend := 1 - math.Exp(-c.followRate*dt)
		c.pose.Eye = geom.Lerp(c.pose.Eye, want.Eye, blend)
		c.pose.LookAt = geom.Lerp(c.pose.LookAt, want.LookAt, blend)
		c.pose.Up = geom.SafeNormalize(geom.Lerp(c.pose.Up, want.Up, blend), want.Up)
	}
	c.updateShake(dt)
	return c.Pose()
}

// Pose returns the current camera pose including shake.
func (c *Chase) Pose() Pose {
	ret := c.pose
	ret.Eye = ret.Eye.Add(c.shakeOffset)
	ret.LookAt = ret.LookAt.Add(c.shakeOffset)
	return ret
}

func (c *Chase) desired(t Target) Pose {
	up := geom.SafeNormalize(t.Up, geom.WorldUp)
	dir := geom.SafeNormalize(t.Direction, geom.WorldForward)
	return Pose{
		Eye:    t.Position.Sub(dir.Mul(c.distance)).Add(up.Mul(c.height)),
		LookAt: t.Position.Add(dir.Mul(c.lookAhead)),
		Up:     up,
	}
}

func (c *Chase) updateShake(dt float64) {
	if c.shakeTimer <= 0 {
		c.shakeOffset = mgl64.Vec3{}
		c.shakeMax = 0
		return
	}
	c.shakeTimer = math.Max(c.shakeTimer-dt, 0)
	tr := c.shakeTimer
	mag := c.shakeMax * (tr / (tr + shakeFalloff))
	// offset within the cube of edge 2*mag/sqrt(3) keeps |offset| <= mag
	edge := mag / math.Sqrt(3)
	for i := range 3 {
		c.shakeOffset[i] = (c.rnd.Float64()*2 - 1) * edge
	}
}
