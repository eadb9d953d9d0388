package trackdef

import (
	"context"

	"github.com/mpapenbr/racetrack-sim-go/log"
	"github.com/mpapenbr/racetrack-sim-go/pkg/track"
	"github.com/mpapenbr/racetrack-sim-go/pkg/utils/cache"
	"github.com/mpapenbr/racetrack-sim-go/pkg/utils/cache/loadercache"
)

// Library builds embedded tracks on first use. Tracks are immutable, the
// returned instances are shared.
type Library struct {
	tracks cache.Cache[string, track.Track]
}

// NewLibrary creates a library. opts are applied to every build.
func NewLibrary(opts ...track.BuilderOption) *Library {
	loader := func(_ context.Context, name string) (*track.Track, error) {
		f, err := Embedded(name)
		if err != nil {
			return nil, err
		}
		return f.Build(opts...)
	}
	return &Library{
		tracks: loadercache.New(
			loadercache.WithLoader[string, track.Track](loader),
			loadercache.WithLogger[string, track.Track](log.Default().Named("trackdef"))),
	}
}

func (l *Library) Track(ctx context.Context, name string) (*track.Track, error) {
	return l.tracks.Get(ctx, name)
}
