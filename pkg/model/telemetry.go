package model

// Telemetry is emitted once per simulation step and car.
type Telemetry struct {
	SessionID  string  `json:"sessionId"`
	CarName    string  `json:"carName"`
	Step       int64   `json:"step"`
	SimTime    float64 `json:"simTime"`
	Position   Point   `json:"position"`
	Forward    Point   `json:"forward"`
	Up         Point   `json:"up"`
	Speed      float64 `json:"speed"`
	Segment    int     `json:"segment"`
	Percent    float64 `json:"percent"`
	TrackPos   float64 `json:"trackPos"` // arc length parameter in [0,1)
	Grounded   bool    `json:"grounded"`
	Lap        int     `json:"lap"`
	Checkpoint int     `json:"checkpoint"`
	State      string  `json:"state"`
	Collision  string  `json:"collision,omitempty"`
}
