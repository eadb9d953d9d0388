package trackdef

import (
	"fmt"
	"math"

	"github.com/mpapenbr/racetrack-sim-go/pkg/track"
)

type TerrainKind string

const (
	TerrainNone  TerrainKind = ""
	TerrainFlat  TerrainKind = "flat"
	TerrainWaves TerrainKind = "waves"
)

// Terrain describes the ground below the track.
// flat: constant height Base.
// waves: Base + Amplitude * sin(x/Wavelength) * cos(y/Wavelength).
// Without terrain no ground clamp is applied.
type Terrain struct {
	Kind       TerrainKind `yaml:"kind,omitempty"`
	Base       float64     `yaml:"base,omitempty"`
	Amplitude  float64     `yaml:"amplitude,omitempty"`
	Wavelength float64     `yaml:"wavelength,omitempty"`
}

func (t Terrain) validate() error {
	switch t.Kind {
	case TerrainNone, TerrainFlat:
		return nil
	case TerrainWaves:
		if t.Wavelength <= 0 {
			return fmt.Errorf("%w: terrain wavelength must be positive", ErrInvalidFile)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown terrain kind %q", ErrInvalidFile, t.Kind)
	}
}

// HeightFunc returns nil for TerrainNone.
func (t Terrain) HeightFunc() track.GroundHeightFunc {
	switch t.Kind {
	case TerrainFlat:
		return func(_, _ float64) float64 { return t.Base }
	case TerrainWaves:
		if t.Wavelength <= 0 {
			return nil
		}
		return func(x, y float64) float64 {
			return t.Base + t.Amplitude*math.Sin(x/t.Wavelength)*math.Cos(y/t.Wavelength)
		}
	default:
		return nil
	}
}
