package broadcast

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mpapenbr/racetrack-sim-go/log"
)

//nolint:lll // by design
// see https://betterprogramming.pub/how-to-broadcast-messages-in-go-using-channels-b68f42bdf32e

const DefaultSendTimeout = 50 * time.Millisecond

type BroadcastServer[T any] interface {
	Subscribe() <-chan T
	CancelSubscription(<-chan T)
	Close()
}

type broadcastServer[T any] struct {
	name           string
	topic          string
	source         <-chan T
	listeners      []chan T
	addListener    chan chan T
	removeListener chan (<-chan T)
	ctx            context.Context
	cancel         context.CancelFunc
	done           chan struct{}
	sendTimeout    time.Duration
	log            *log.Logger
	mu             sync.Mutex
	numRcv         int
	numSnd         int
	numSkip        int
}

type Option[T any] func(*broadcastServer[T])

// WithSendTimeout sets how long a message waits for a slow listener before it
// is skipped for that listener.
func WithSendTimeout[T any](d time.Duration) Option[T] {
	return func(b *broadcastServer[T]) {
		b.sendTimeout = d
	}
}

func WithLogger[T any](l *log.Logger) Option[T] {
	return func(b *broadcastServer[T]) {
		b.log = l
	}
}

// Subscribe returns a channel receiving all messages from now on.
// After Close the returned channel is already closed.
func (b *broadcastServer[T]) Subscribe() <-chan T {
	ch := make(chan T)
	select {
	case b.addListener <- ch:
	case <-b.done:
		close(ch)
	}
	return ch
}

func (b *broadcastServer[T]) CancelSubscription(ch <-chan T) {
	select {
	case b.removeListener <- ch:
	case <-b.done:
	}
}

// Close stops the server and closes all listener channels.
func (b *broadcastServer[T]) Close() {
	b.cancel()
	<-b.done
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log.Debug("broadcast server closed",
		log.String("name", b.name),
		log.Int("rcv", b.numRcv), log.Int("snd", b.numSnd), log.Int("skip", b.numSkip))
}

// Stats returns the number of received, sent and skipped messages.
func Stats[T any](bs BroadcastServer[T]) (rcv, snd, skip int) {
	if b, ok := bs.(*broadcastServer[T]); ok {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.numRcv, b.numSnd, b.numSkip
	}
	return 0, 0, 0
}

//nolint:whitespace // false positive
func NewBroadcastServer[T any](
	topic, name string,
	source <-chan T,
	opts ...Option[T],
) BroadcastServer[T] {
	ctx, cancel := context.WithCancel(context.Background())
	b := &broadcastServer[T]{
		topic:          topic,
		name:           name,
		source:         source,
		addListener:    make(chan chan T),
		removeListener: make(chan (<-chan T)),
		ctx:            ctx,
		cancel:         cancel,
		done:           make(chan struct{}),
		sendTimeout:    DefaultSendTimeout,
		log:            log.Default().Named("broadcast"),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.setupMetrics()
	go b.serve()
	return b
}

func (b *broadcastServer[T]) setupMetrics() {
	meter := otel.GetMeterProvider().Meter(fmt.Sprintf("rts.broadcast.%s", b.name))
	register := func(metricName, desc string, valueProvider func() int64) {
		if _, err := meter.Int64ObservableGauge(
			metricName,
			metric.WithDescription(desc),
			metric.WithUnit("{count}"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				b.mu.Lock()
				v := valueProvider()
				b.mu.Unlock()
				o.Observe(v,
					metric.WithAttributes(
						attribute.String("name", b.name),
						attribute.String("topic", b.topic),
					),
				)
				return nil
			})); err != nil {
			b.log.Error("failed to register metric",
				log.String("metric", metricName),
				log.ErrorField(err))
		}
	}
	register("rts.broadcast.rcv", "Number of received messages",
		func() int64 { return int64(b.numRcv) })
	register("rts.broadcast.snd", "Number of sent messages",
		func() int64 { return int64(b.numSnd) })
	register("rts.broadcast.skip", "Number of skipped messages",
		func() int64 { return int64(b.numSkip) })
	register("rts.broadcast.listener", "Number of listeners",
		func() int64 { return int64(len(b.listeners)) })
}

func (b *broadcastServer[T]) serve() {
	defer func() {
		b.mu.Lock()
		for _, listener := range b.listeners {
			close(listener)
		}
		b.listeners = nil
		b.mu.Unlock()
		close(b.done)
	}()
	for {
		select {
		case <-b.ctx.Done():
			return
		case ch := <-b.addListener:
			b.mu.Lock()
			b.listeners = append(b.listeners, ch)
			b.mu.Unlock()
		case ch := <-b.removeListener:
			b.remove(ch)
		case msg, ok := <-b.source:
			if !ok {
				b.log.Debug("source closed", log.String("name", b.name))
				return
			}
			b.dispatch(msg)
		}
	}
}

func (b *broadcastServer[T]) remove(ch <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, listener := range b.listeners {
		if listener == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(listener)
			b.log.Debug("removed listener",
				log.String("name", b.name), log.Int("len", len(b.listeners)))
			return
		}
	}
}

func (b *broadcastServer[T]) dispatch(msg T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.numRcv++
	for _, listener := range b.listeners {
		// don't wait too long for slow listeners
		select {
		case listener <- msg:
			b.numSnd++
		case <-time.After(b.sendTimeout):
			b.numSkip++
		}
	}
}
