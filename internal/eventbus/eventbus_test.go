package eventbus

import (
	"testing"
	"time"

	"github.com/kilianp07/trafficd/core/metrics"
)

func TestPublishSubscribe(t *testing.T) {
	bus := New()
	defer bus.Close()
	sub := bus.Subscribe()

	bus.Publish(metrics.PredictionEvent{RequestID: "r1", Volume: 900})
	select {
	case ev := <-sub:
		if ev.RequestID != "r1" || ev.Volume != 900 {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestPublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	bus := New()
	defer bus.Close()
	bus.Subscribe() // never drained

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			bus.Publish(metrics.PredictionEvent{Volume: i})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := New()
	sub := bus.Subscribe()
	bus.Unsubscribe(sub)
	if _, ok := <-sub; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}
}

func TestPublishAfterClose(t *testing.T) {
	bus := New()
	sub := bus.Subscribe()
	bus.Close()
	bus.Publish(metrics.PredictionEvent{})
	if _, ok := <-sub; ok {
		t.Fatal("no events expected after close")
	}
}
