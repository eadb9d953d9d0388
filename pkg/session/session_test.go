//nolint:thelper,whitespace,lll,funlen // ok for tests
package session

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/racetrack-sim-go/log"
	"github.com/mpapenbr/racetrack-sim-go/pkg/camera"
	"github.com/mpapenbr/racetrack-sim-go/pkg/model"
	"github.com/mpapenbr/racetrack-sim-go/pkg/physics"
	"github.com/mpapenbr/racetrack-sim-go/pkg/race"
	"github.com/mpapenbr/racetrack-sim-go/pkg/track"
	"github.com/mpapenbr/racetrack-sim-go/testsupport/basedata"
)

const frameDt = 1.0 / 60

func buildOrFail(t *testing.T, def model.TrackDefinition) *track.Track {
	tr, err := track.Build(def)
	require.NoError(t, err)
	return tr
}

func TestSession_Drive(t *testing.T) {
	tr := buildOrFail(t, basedata.StraightTrack())
	id := uuid.New()
	s := New(tr, WithID(id), WithName("test"), WithStart(track.Location{Segment: 60}))

	var f Frame
	for range 60 {
		f = s.Step(model.ControlInput{Throttle: 1}, frameDt)
	}
	assert.Equal(t, int64(60), f.Step)
	assert.InDelta(t, 1.0, f.SimTime, 1e-9)
	assert.Positive(t, f.State.Speed)
	assert.Equal(t, race.StateRacing, f.Progress.State)
	assert.Greater(t, f.Result.Current.Segment, 60)

	tel := s.Telemetry()
	assert.Equal(t, id.String(), tel.SessionID)
	assert.Equal(t, "test", tel.CarName)
	assert.Equal(t, int64(60), tel.Step)
	assert.Equal(t, f.State.Speed, tel.Speed)
	assert.Equal(t, f.Result.Current.Segment, tel.Segment)
	assert.InDelta(t, tr.Param(f.State.Location), tel.TrackPos, 1e-12)
	assert.Equal(t, "racing", tel.State)
	assert.Empty(t, tel.Collision)
}

func TestSession_CrashShakesCamera(t *testing.T) {
	tr := buildOrFail(t, basedata.StraightTrack())
	start := track.Location{Segment: 60}
	s := New(tr, WithStart(start), WithCameraOptions(camera.WithSeed(3)))

	f, w, _ := tr.AtLocation(start)
	st := s.vehicle.State()
	st.Position = f.Position.Add(f.Right.Mul(w/2 - tr.RailInset() - 2.4))
	st.Direction = f.Right
	st.Speed = 50
	s.vehicle.SetState(st)

	got := s.Step(model.ControlInput{}, frameDt)
	require.NotNil(t, got.Result.Collision)
	assert.Equal(t, physics.CollisionFrontal, got.Result.Collision.Kind)
	assert.True(t, s.camera.Shaking())
	crashes, scrapes, _ := s.Stats()
	assert.Equal(t, 1, crashes)
	assert.Equal(t, 0, scrapes)
	assert.Equal(t, "frontal", s.Telemetry().Collision)

	s.Step(model.ControlInput{}, frameDt)
	assert.Empty(t, s.Telemetry().Collision)
}

func TestSession_StallIsLogged(t *testing.T) {
	var buf bytes.Buffer
	l := log.New(&buf, log.DebugLevel)
	tr := buildOrFail(t, basedata.SquareTrack())
	s := New(tr, WithLogger(l))

	far, _, _ := tr.At(0.5)
	st := s.vehicle.State()
	st.Position = far.Position
	s.vehicle.SetState(st)

	got := s.Step(model.ControlInput{}, frameDt)
	assert.True(t, got.Result.LocalizationStalled)
	_, _, stalls := s.Stats()
	assert.Positive(t, stalls)
	assert.Contains(t, buf.String(), "localization stalled")
	assert.Contains(t, buf.String(), `"level":"warn"`)
}

func TestSession_GameOverFreezesCar(t *testing.T) {
	tr := buildOrFail(t, basedata.StraightTrack())
	s := New(tr,
		WithStart(track.Location{Segment: 60}),
		WithTrackerOptions(race.WithAirborneTimeout(0.1)))

	st := s.vehicle.State()
	st.Position = st.Position.Add(st.Up.Mul(20))
	st.Speed = 10
	st.IsGrounded = false
	s.vehicle.SetState(st)

	var f Frame
	for range 10 {
		f = s.Step(model.ControlInput{Throttle: 1}, frameDt)
	}
	require.True(t, s.Done())
	assert.Equal(t, race.StateLost, f.Progress.State)
	assert.Equal(t, race.ReasonAirborneTimeout, f.Progress.Reason)

	before := s.State()
	after := s.Step(model.ControlInput{Throttle: 1}, frameDt)
	assert.Equal(t, before, after.State)
	assert.Equal(t, f.Step, after.Step)
	assert.Nil(t, after.Events)
}

func TestSession_Reset(t *testing.T) {
	tr := buildOrFail(t, basedata.StraightTrack())
	start := track.Location{Segment: 60}
	s := New(tr, WithStart(start))
	for range 30 {
		s.Step(model.ControlInput{Throttle: 1}, frameDt)
	}
	s.Reset()
	assert.Equal(t, start, s.State().Location)
	assert.Zero(t, s.State().Speed)
	assert.Zero(t, s.Telemetry().Step)
}
