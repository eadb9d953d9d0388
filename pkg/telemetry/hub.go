// Package telemetry distributes telemetry frames produced by the simulation:
// in-process subscribers (Hub), NATS subjects (Publisher) and OpenTelemetry
// instruments (Recorder). All of them can be used as simulation sinks.
package telemetry

import (
	"context"
	"errors"
	"sync"

	"github.com/mpapenbr/racetrack-sim-go/pkg/model"
	"github.com/mpapenbr/racetrack-sim-go/pkg/simulation"
	"github.com/mpapenbr/racetrack-sim-go/pkg/utils/broadcast"
)

var ErrHubClosed = errors.New("telemetry hub closed")

// Hub fans out the telemetry frames of all cars to any number of subscribers.
// Slow subscribers miss frames instead of blocking the simulation.
type Hub struct {
	source    chan model.Telemetry
	server    broadcast.BroadcastServer[model.Telemetry]
	closed    chan struct{}
	closeOnce sync.Once
}

var _ simulation.Sink = (*Hub)(nil)

func NewHub(name string, opts ...broadcast.Option[model.Telemetry]) *Hub {
	source := make(chan model.Telemetry)
	return &Hub{
		source: source,
		server: broadcast.NewBroadcastServer("telemetry", name, source, opts...),
		closed: make(chan struct{}),
	}
}

func (h *Hub) Subscribe() <-chan model.Telemetry {
	return h.server.Subscribe()
}

func (h *Hub) Unsubscribe(ch <-chan model.Telemetry) {
	h.server.CancelSubscription(ch)
}

// Handle hands the telemetry of u to the subscribers.
func (h *Hub) Handle(ctx context.Context, u simulation.Update) error {
	select {
	case <-h.closed:
		return ErrHubClosed
	default:
	}
	select {
	case h.source <- u.Telemetry:
		return nil
	case <-h.closed:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the hub. All subscription channels get closed.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.closed)
		h.server.Close()
	})
}
