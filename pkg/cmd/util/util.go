package util

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/racetrack-sim-go/log"
	"github.com/mpapenbr/racetrack-sim-go/pkg/config"
	"github.com/mpapenbr/racetrack-sim-go/pkg/track"
	"github.com/mpapenbr/racetrack-sim-go/pkg/trackdef"
)

var library *trackdef.Library

var ErrNoTrack = errors.New("either --track or --track-file is required")

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// SetupLogger replaces the default logger according to the log flags.
func SetupLogger() error {
	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	default:
		logger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.DebugLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	logger, err := logger.WithFilter(config.LogFilter)
	if err != nil {
		return fmt.Errorf("invalid log filter: %w", err)
	}
	log.ResetDefault(logger)
	library = trackdef.NewLibrary(track.WithLogger(logger.Named("track")))
	return nil
}

// AddTrackFlags registers --track and --track-file.
func AddTrackFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&config.TrackName,
		"track",
		"",
		fmt.Sprintf("name of an embedded track (%v)", trackdef.Names()))
	cmd.Flags().StringVar(&config.TrackFile,
		"track-file",
		"",
		"path to a track definition file (takes precedence over --track)")
}

// LoadTrackFile returns the track definition selected by the track flags.
func LoadTrackFile() (*trackdef.File, error) {
	switch {
	case config.TrackFile != "":
		return trackdef.Load(config.TrackFile)
	case config.TrackName != "":
		return trackdef.Embedded(config.TrackName)
	default:
		return nil, ErrNoTrack
	}
}

// LoadTrack returns the selected track definition and the track built from
// it. Embedded tracks are built only once per process.
func LoadTrack(ctx context.Context) (*trackdef.File, *track.Track, error) {
	f, err := LoadTrackFile()
	if err != nil {
		return nil, nil, err
	}
	if config.TrackFile == "" {
		if library == nil {
			library = trackdef.NewLibrary()
		}
		tr, err := library.Track(ctx, config.TrackName)
		return f, tr, err
	}
	tr, err := f.Build(track.WithLogger(log.Default().Named("track")))
	return f, tr, err
}
