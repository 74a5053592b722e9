package stream

import (
	"context"
	"sync"
)

// Event kinds. Consumers act on STATUS_UPDATE only; other kinds are
// reserved and must be ignored by clients, not rejected.
const (
	TypeStatusUpdate = "STATUS_UPDATE"
	TypeAssigned     = "AGENCY_ASSIGNED"
)

// Event is the tagged payload pushed over the live update channel.
type Event struct {
	Type        string `json:"type"`
	ComplaintID string `json:"complaintId"`
	Status      string `json:"status,omitempty"`
	AgencyID    string `json:"agencyId,omitempty"`
}

// Hub fan-outs complaint events to all active subscribers (the
// WebSocket handlers holding one connection each).
type Hub struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

// NewHub initialises an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

// Subscribe registers a subscriber and returns a channel which will
// receive events. The channel is closed when the provided context ends.
func (h *Hub) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, 16)

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, id)
		close(ch)
		h.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (h *Hub) Publish(evt Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}

// Subscribers reports the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
