//nolint:thelper,whitespace,lll,funlen // ok for tests
package broadcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBroadcast_Fanout(t *testing.T) {
	src := make(chan int)
	b := NewBroadcastServer("test", "fanout", src, WithSendTimeout[int](time.Second))
	defer b.Close()

	ch1 := b.Subscribe()
	ch2 := b.Subscribe()
	for i := range 3 {
		src <- i
		assert.Equal(t, i, <-ch1)
		assert.Equal(t, i, <-ch2)
	}
	rcv, snd, skip := Stats(b)
	assert.Equal(t, 3, rcv)
	assert.Equal(t, 6, snd)
	assert.Equal(t, 0, skip)
}

func TestBroadcast_SlowListenerIsSkipped(t *testing.T) {
	src := make(chan string)
	b := NewBroadcastServer("test", "slow", src, WithSendTimeout[string](5*time.Millisecond))
	defer b.Close()

	_ = b.Subscribe()
	src <- "dropped"
	assert.Eventually(t, func() bool {
		_, _, skip := Stats(b)
		return skip == 1
	}, time.Second, 5*time.Millisecond)
}

func TestBroadcast_CancelSubscription(t *testing.T) {
	src := make(chan int)
	b := NewBroadcastServer("test", "cancel", src)
	defer b.Close()

	ch := b.Subscribe()
	b.CancelSubscription(ch)
	_, ok := <-ch
	assert.False(t, ok)

	src <- 1
	assert.Eventually(t, func() bool {
		rcv, snd, _ := Stats(b)
		return rcv == 1 && snd == 0
	}, time.Second, 5*time.Millisecond)
}

func TestBroadcast_Close(t *testing.T) {
	src := make(chan int)
	b := NewBroadcastServer("test", "close", src)
	ch := b.Subscribe()
	b.Close()

	_, ok := <-ch
	assert.False(t, ok, "listener should be closed")
	_, ok = <-b.Subscribe()
	assert.False(t, ok, "subscribe after close yields a closed channel")
	b.CancelSubscription(ch) // must not block
}

func TestBroadcast_SourceClosed(t *testing.T) {
	src := make(chan int)
	b := NewBroadcastServer("test", "source", src)
	ch := b.Subscribe()
	close(src)
	_, ok := <-ch
	assert.False(t, ok)
	b.Close()
}
