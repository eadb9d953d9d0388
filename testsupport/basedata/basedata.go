// Package basedata provides track definitions used by tests across packages.
package basedata

import (
	"math"

	"github.com/mpapenbr/racetrack-sim-go/pkg/model"
)

// SquareTrack is a flat track with four corners, no loops and no hints.
func SquareTrack() model.TrackDefinition {
	return model.TrackDefinition{
		Name: "square",
		ControlPoints: []model.Point{
			{-100, -100, 0},
			{100, -100, 0},
			{100, 100, 0},
			{-100, 100, 0},
		},
	}
}

// StraightTrack has a 600 unit straight along +X at y=-150 starting at x=-300.
// The segment between x=-150 and x=150 is exactly straight.
func StraightTrack() model.TrackDefinition {
	return model.TrackDefinition{
		Name: "straight",
		ControlPoints: []model.Point{
			{-300, -150, 0},
			{-150, -150, 0},
			{0, -150, 0},
			{150, -150, 0},
			{300, -150, 0},
			{300, 150, 0},
			{0, 150, 0},
			{-300, 150, 0},
		},
	}
}

// LoopTrack is an oval with a vertical loop on the lower straight.
// The points (0,-60,5), (10,-60,65) and (40,-60,8) trigger the loop synthesis.
func LoopTrack() model.TrackDefinition {
	return model.TrackDefinition{
		Name: "loop",
		ControlPoints: []model.Point{
			{-200, -60, 5},
			{-40, -60, 5},
			{0, -60, 5},
			{10, -60, 65},
			{40, -60, 8},
			{80, -60, 5},
			{200, -60, 5},
			{200, 60, 5},
			{-200, 60, 5},
		},
	}
}

// HillsTrack is meant to be used with HillsTerrain. All points start at height 0
// and are lifted by the ground clamp.
func HillsTrack() model.TrackDefinition {
	return model.TrackDefinition{
		Name: "hills",
		ControlPoints: []model.Point{
			{-250, -150, 0},
			{0, -170, 0},
			{250, -150, 0},
			{300, 0, 0},
			{250, 150, 0},
			{0, 170, 0},
			{-250, 150, 0},
			{-300, 0, 0},
		},
		WidthHints: []model.WidthHint{
			{Position: model.Point{250, -150, 0}, Width: 20},
			{Position: model.Point{-250, 150, 0}, Width: 8},
		},
		FeatureHints: []model.FeatureHint{
			{Position: model.Point{0, -170, 0}, Kind: model.HelperTunnel},
			{Position: model.Point{300, 0, 0}, Kind: model.HelperReset},
			{Position: model.Point{0, 170, 0}, Kind: model.HelperPalms},
		},
	}
}

// HillsTerrain is a smooth wave pattern with an amplitude of 8 units.
func HillsTerrain(x, y float64) float64 {
	return 8 * math.Sin(x/60) * math.Cos(y/60)
}
