package events

import (
	"sync"
	"sync/atomic"
)

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 16

// Hub fans encoded events out to SSE subscribers. A subscriber whose queue
// is full misses the event; the drop is counted, the publisher never blocks.
type Hub struct {
	Buffer int

	mu      sync.Mutex
	subs    map[chan string]struct{}
	dropped atomic.Int64
}

func NewHub() *Hub {
	return &Hub{Buffer: DefaultBuffer, subs: make(map[chan string]struct{})}
}

func (h *Hub) Subscribe() chan string {
	n := h.Buffer
	if n <= 0 {
		n = DefaultBuffer
	}
	ch := make(chan string, n)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan string) {
	h.mu.Lock()
	_, ok := h.subs[ch]
	delete(h.subs, ch)
	h.mu.Unlock()
	if ok {
		close(ch)
	}
}

// Publish returns how many subscribers received evt.
func (h *Hub) Publish(evt string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	sent := 0
	for ch := range h.subs {
		select {
		case ch <- evt:
			sent++
		default:
			h.dropped.Add(1)
		}
	}
	return sent
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) Dropped() int64 { return h.dropped.Load() }
