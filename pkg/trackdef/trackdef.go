// Package trackdef reads track definition files. A file holds the control
// points of a track plus a terrain description and road settings.
//
// Example:
//
//	formatVersion: v1.1.0
//	name: oval
//	terrain:
//	  kind: waves
//	  amplitude: 8
//	  wavelength: 60
//	road:
//	  defaultWidth: 12
//	controlPoints:
//	  - [-200, -60, 5]
//	  - ...
package trackdef

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/mpapenbr/racetrack-sim-go/pkg/model"
	"github.com/mpapenbr/racetrack-sim-go/pkg/track"
)

// FormatVersion is the newest file format this package understands.
// Files of the same major version up to this one are accepted.
const FormatVersion = "v1.1.0"

var (
	ErrInvalidFile       = errors.New("invalid track file")
	ErrUnsupportedFormat = errors.New("unsupported track file format")
	ErrUnknownTrack      = errors.New("unknown track")
)

//go:embed tracks/*.yaml
var embedded embed.FS

// Road holds builder settings. Zero values keep the builder defaults.
type Road struct {
	DefaultWidth       float64 `yaml:"defaultWidth,omitempty"`
	MinWidth           float64 `yaml:"minWidth,omitempty"`
	MaxWidth           float64 `yaml:"maxWidth,omitempty"`
	RailInset          float64 `yaml:"railInset,omitempty"`
	MinGroundClearance float64 `yaml:"minGroundClearance,omitempty"`
}

type File struct {
	FormatVersion         string  `yaml:"formatVersion,omitempty"`
	Terrain               Terrain `yaml:"terrain,omitempty"`
	Road                  Road    `yaml:"road,omitempty"`
	model.TrackDefinition `yaml:",inline"`
}

// Parse decodes a track file. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	ret := &File{}
	if err := dec.Decode(ret); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidFile)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	if err := checkFormat(ret.FormatVersion); err != nil {
		return nil, err
	}
	if err := ret.Terrain.validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

// Load reads and parses the file at path. The track name defaults to the
// file name without extension.
func Load(filename string) (*File, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseFile(filename, data)
}

// ParseFile parses data read from filename. The name defaults to the base
// name of the file.
func ParseFile(filename string, data []byte) (*File, error) {
	ret, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if ret.Name == "" {
		ret.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	return ret, nil
}

// Names returns the sorted names of the embedded tracks.
func Names() []string {
	entries, err := embedded.ReadDir("tracks")
	if err != nil {
		return nil
	}
	ret := lo.Map(entries, func(e os.DirEntry, _ int) string {
		return strings.TrimSuffix(e.Name(), ".yaml")
	})
	slices.Sort(ret)
	return ret
}

func Embedded(name string) (*File, error) {
	data, err := embedded.ReadFile(fmt.Sprintf("tracks/%s.yaml", name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s (available: %s)",
			ErrUnknownTrack, name, strings.Join(Names(), ", "))
	}
	ret, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if ret.Name == "" {
		ret.Name = name
	}
	return ret, nil
}

// BuilderOptions converts terrain and road settings into track builder options.
func (f *File) BuilderOptions() []track.BuilderOption {
	ret := []track.BuilderOption{}
	if h := f.Terrain.HeightFunc(); h != nil {
		ret = append(ret, track.WithGroundHeight(h))
	}
	r := f.Road
	if r.DefaultWidth > 0 {
		ret = append(ret, track.WithDefaultWidth(r.DefaultWidth))
	}
	if r.MinWidth > 0 || r.MaxWidth > 0 {
		ret = append(ret, track.WithWidthRange(
			lo.Ternary(r.MinWidth > 0, r.MinWidth, track.DefaultMinRoadWidth),
			lo.Ternary(r.MaxWidth > 0, r.MaxWidth, track.DefaultMaxRoadWidth)))
	}
	if r.RailInset > 0 {
		ret = append(ret, track.WithRailInset(r.RailInset))
	}
	if r.MinGroundClearance > 0 {
		ret = append(ret, track.WithMinGroundClearance(r.MinGroundClearance))
	}
	return ret
}

// Build builds the track. opts are applied after the file settings.
func (f *File) Build(opts ...track.BuilderOption) (*track.Track, error) {
	return track.Build(f.TrackDefinition, append(f.BuilderOptions(), opts...)...)
}

func checkFormat(v string) error {
	if v == "" {
		return nil
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: invalid format version %q", ErrInvalidFile, v)
	}
	if semver.Major(v) != semver.Major(FormatVersion) || semver.Compare(v, FormatVersion) > 0 {
		return fmt.Errorf("%w: %s (supported up to %s)", ErrUnsupportedFormat, v, FormatVersion)
	}
	return nil
}
