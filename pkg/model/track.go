package model

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Point is a 3D coordinate in a track definition. Z is the height.
type Point [3]float64

func (p Point) Vec() mgl64.Vec3 { return mgl64.Vec3(p) }

func PointOf(v mgl64.Vec3) Point { return Point(v) }

// HelperKind marks a region of the track for decoration purposes.
type HelperKind int

const (
	HelperTunnel HelperKind = iota
	HelperPalms
	HelperLaterns
	HelperReset
)

var helperKindNames = map[HelperKind]string{
	HelperTunnel:  "tunnel",
	HelperPalms:   "palms",
	HelperLaterns: "laterns",
	HelperReset:   "reset",
}

func (k HelperKind) String() string {
	if s, ok := helperKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("HelperKind(%d)", int(k))
}

func (k HelperKind) MarshalText() ([]byte, error) {
	if _, ok := helperKindNames[k]; !ok {
		return nil, fmt.Errorf("unknown helper kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *HelperKind) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for kind, name := range helperKindNames {
		if name == s {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown helper kind %q", s)
}

type WidthHint struct {
	Position Point   `json:"position" yaml:"position"`
	Width    float64 `json:"width" yaml:"width"`
}

type FeatureHint struct {
	Position Point      `json:"position" yaml:"position"`
	Kind     HelperKind `json:"kind" yaml:"kind"`
}

// TrackDefinition is the in-memory form of an authored track.
// The control points form an implicit closed loop.
type TrackDefinition struct {
	Name          string        `json:"name" yaml:"name"`
	ControlPoints []Point       `json:"controlPoints" yaml:"controlPoints"`
	WidthHints    []WidthHint   `json:"widthHints,omitempty" yaml:"widthHints,omitempty"`
	FeatureHints  []FeatureHint `json:"featureHints,omitempty" yaml:"featureHints,omitempty"`
}
