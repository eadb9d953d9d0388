package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	LogLevel          string  // sets the log level (zap log level values)
	LogFormat         string  // text vs json
	LogFilter         string  // zapfilter rules, e.g. "debug:track.* info:*"
	EnableTelemetry   bool    // enable telemetry
	TelemetryEndpoint string  // endpoint for telemetry (otlp grpc)
	TelemetryExporter string  // otlp or stdout
	NatsURL           string  // URL of the NATS server, empty disables publishing
	NatsSubject       string  // subject prefix for published telemetry frames
	WaitForServices   string  // duration to wait for the NATS server to be reachable
	TrackFile         string  // path to a track definition file
	TrackName         string  // name of an embedded track definition
	Laps              int     // number of laps to win the race
	Checkpoints       int     // number of checkpoints per lap (including start/finish)
	Cars              int     // number of autopilot driven cars
	TargetSpeed       float64 // autopilot target speed
	StepRate          int     // simulation steps per second
	Realtime          bool    // if true the simulation is paced by a ticker
	MaxDuration       string  // stop the simulation after this (simulated) duration
	PublishEvery      int     // hand every n-th frame to the sinks
	Watch             bool    // watch the track file and rebuild on change
)

// Config holds the configuration values which are used by the application
type Config struct {
	Laps         int
	Checkpoints  int
	Cars         int
	TargetSpeed  float64
	StepRate     int
	Realtime     bool
	PublishEvery int
}

// FromFlags collects the simulation related values resolved from CLI/env/config file
func FromFlags() Config {
	return Config{
		Laps:         Laps,
		Checkpoints:  Checkpoints,
		Cars:         Cars,
		TargetSpeed:  TargetSpeed,
		StepRate:     StepRate,
		Realtime:     Realtime,
		PublishEvery: PublishEvery,
	}
}
