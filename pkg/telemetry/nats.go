package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/mpapenbr/racetrack-sim-go/log"
	"github.com/mpapenbr/racetrack-sim-go/pkg/model"
	"github.com/mpapenbr/racetrack-sim-go/pkg/simulation"
)

const DefaultSubject = "rts.telemetry"

// Conn is the part of *nats.Conn used by the Publisher.
type Conn interface {
	Publish(subj string, data []byte) error
}

type (
	PublisherOption func(*Publisher)
	// Publisher sends telemetry frames as JSON to <subject>.<sessionId>.
	Publisher struct {
		conn      Conn
		subject   string
		log       *log.Logger
		published atomic.Int64
	}
)

var _ simulation.Sink = (*Publisher)(nil)

func WithSubject(subject string) PublisherOption {
	return func(p *Publisher) {
		if subject != "" {
			p.subject = subject
		}
	}
}

func WithPublisherLogger(l *log.Logger) PublisherOption {
	return func(p *Publisher) {
		p.log = l
	}
}

func NewPublisher(conn Conn, opts ...PublisherOption) *Publisher {
	ret := &Publisher{
		conn:    conn,
		subject: DefaultSubject,
		log:     log.Default().Named("nats"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Published returns the number of frames sent so far.
func (p *Publisher) Published() int64 {
	return p.published.Load()
}

func (p *Publisher) Handle(_ context.Context, u simulation.Update) error {
	return p.publish(u.Telemetry)
}

// Forward publishes every frame received on ch until ch is closed or ctx is
// done. Publish errors are logged, they don't stop forwarding.
func (p *Publisher) Forward(ctx context.Context, ch <-chan model.Telemetry) {
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-ch:
			if !ok {
				p.log.Debug("source closed", log.Int64("published", p.Published()))
				return
			}
			if err := p.publish(t); err != nil {
				p.log.Error("could not publish telemetry", log.ErrorField(err))
			}
		}
	}
}

// Attach forwards the frames of hub in the background. The returned stop
// closes the hub and waits until forwarding is done.
func (p *Publisher) Attach(ctx context.Context, hub *Hub) (stop func()) {
	ch := hub.Subscribe()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.Forward(ctx, ch)
	}()
	return func() {
		hub.Close()
		wg.Wait()
	}
}

func (p *Publisher) publish(t model.Telemetry) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("%s.%s", p.subject, t.SessionID)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.published.Add(1)
	return nil
}
