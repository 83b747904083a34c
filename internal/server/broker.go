package server

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/playperu/geoquiz/internal/engine"
)

// Broker is an in-process pub/sub fanning engine projections out to every
// connected SSE and WebSocket client.
type Broker struct {
	logger *slog.Logger
	mu     sync.RWMutex
	subs   map[chan []byte]struct{}
}

func NewBroker(logger *slog.Logger) *Broker {
	return &Broker{
		logger: logger,
		subs:   make(map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded projections.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

// Publish sends a projection to all subscribers.
func (b *Broker) Publish(p engine.Projection) {
	data, err := json.Marshal(p)
	if err != nil {
		b.logger.Debug("marshaling projection", "error", err)
		return
	}
	b.mu.RLock()
	for ch := range b.subs {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
