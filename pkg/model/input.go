package model

import "github.com/go-gl/mathgl/mgl64"

// ControlInput is the abstract control vector for one simulation step.
// Steer > 0 turns right, Throttle < 0 drives backwards.
type ControlInput struct {
	Steer    float64 `json:"steer"`
	Throttle float64 `json:"throttle"`
	Brake    bool    `json:"brake"`
}

// Clamped returns the input with both axes limited to [-1,1].
func (c ControlInput) Clamped() ControlInput {
	return ControlInput{
		Steer:    mgl64.Clamp(c.Steer, -1, 1),
		Throttle: mgl64.Clamp(c.Throttle, -1, 1),
		Brake:    c.Brake,
	}
}
