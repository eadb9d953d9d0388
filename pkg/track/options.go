package track

import "github.com/mpapenbr/racetrack-sim-go/log"

// GroundHeightFunc returns the terrain height at x/y.
type GroundHeightFunc func(x, y float64) float64

const (
	DefaultRoadWidth          = 12.0
	DefaultMinRoadWidth       = 6.0
	DefaultMaxRoadWidth       = 24.0
	DefaultMinGroundClearance = 1.0
	DefaultSamplesPer100      = 40.0
	DefaultRailInset          = 0.5
	DefaultTexStretch         = 0.05
)

type settings struct {
	groundHeight       GroundHeightFunc
	minGroundClearance float64
	defaultWidth       float64
	minWidth           float64
	maxWidth           float64
	samplesPer100      float64
	railInset          float64
	texStretch         float64
	log                *log.Logger
}

type BuilderOption func(*settings)

func defaultSettings() *settings {
	return &settings{
		minGroundClearance: DefaultMinGroundClearance,
		defaultWidth:       DefaultRoadWidth,
		minWidth:           DefaultMinRoadWidth,
		maxWidth:           DefaultMaxRoadWidth,
		samplesPer100:      DefaultSamplesPer100,
		railInset:          DefaultRailInset,
		texStretch:         DefaultTexStretch,
		log:                log.Default().Named("track"),
	}
}

// WithGroundHeight enables the ground clamp pass and the near ground up bias.
func WithGroundHeight(f GroundHeightFunc) BuilderOption {
	return func(s *settings) {
		s.groundHeight = f
	}
}

func WithMinGroundClearance(clearance float64) BuilderOption {
	return func(s *settings) {
		s.minGroundClearance = clearance
	}
}

func WithWidthRange(minWidth, maxWidth float64) BuilderOption {
	return func(s *settings) {
		s.minWidth = minWidth
		s.maxWidth = maxWidth
	}
}

func WithDefaultWidth(width float64) BuilderOption {
	return func(s *settings) {
		s.defaultWidth = width
	}
}

func WithSamplesPer100(samples float64) BuilderOption {
	return func(s *settings) {
		s.samplesPer100 = samples
	}
}

// WithRailInset sets the distance between road edge and guard rail.
func WithRailInset(inset float64) BuilderOption {
	return func(s *settings) {
		s.railInset = inset
	}
}

func WithTexStretch(stretch float64) BuilderOption {
	return func(s *settings) {
		s.texStretch = stretch
	}
}

func WithLogger(l *log.Logger) BuilderOption {
	return func(s *settings) {
		s.log = l
	}
}
