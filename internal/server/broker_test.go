package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/playperu/geoquiz/internal/engine"
)

func TestBrokerFanOut(t *testing.T) {
	b := NewBroker(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ch1 := b.Subscribe()
	ch2 := b.Subscribe()
	defer b.Unsubscribe(ch1)

	b.Publish(engine.Projection{Dataset: "pair", Loading: true})

	for _, ch := range []chan []byte{ch1, ch2} {
		select {
		case data := <-ch:
			var p engine.Projection
			if err := json.Unmarshal(data, &p); err != nil {
				t.Fatalf("decoding event: %v", err)
			}
			if p.Dataset != "pair" || !p.Loading {
				t.Errorf("event = %+v", p)
			}
		default:
			t.Fatal("subscriber did not receive the event")
		}
	}

	b.Unsubscribe(ch2)
	b.Publish(engine.Projection{})
	select {
	case <-ch2:
		t.Fatal("unsubscribed channel received an event")
	default:
	}
}

func TestBrokerDropsWhenSlow(t *testing.T) {
	b := NewBroker(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill the buffer past capacity; extra events are dropped, not blocking.
	for i := 0; i < 64; i++ {
		b.Publish(engine.Projection{})
	}
	if got := len(ch); got != cap(ch) {
		t.Errorf("buffered = %d, want %d", got, cap(ch))
	}
}
