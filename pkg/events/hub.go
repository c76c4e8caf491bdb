package events

import (
	"context"
	"sync"
)

const defaultBuffer = 16

// Hub is an in-process fan-out. Each subscriber owns a buffered channel.
type Hub struct {
	mu      sync.RWMutex
	subs    map[uint64]chan Event
	nextID  uint64
	buffer  int
	metrics Metrics
	closed  bool
}

func NewHub(buffer int, metrics Metrics) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		subs:    make(map[uint64]chan Event),
		buffer:  buffer,
		metrics: metrics,
	}
}

// Subscribe registers a listener. The returned cancel func is idempotent and
// closes the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if sub, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(sub)
			}
		})
	}
}

// Publish delivers evt to every subscriber without blocking.
func (h *Hub) Publish(_ context.Context, evt Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.metrics != nil {
		h.metrics.EventPublished(string(evt.Type))
	}
	for _, ch := range h.subs {
		select {
		case ch <- evt:
		default:
			if h.metrics != nil {
				h.metrics.EventDropped(string(evt.Type))
			}
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close drops all subscribers and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
