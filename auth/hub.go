package auth

import (
	"sync"

	"github.com/google/uuid"
)

// Hub fans session changes out to whoever is watching a user, such as a
// long-lived admin stream that must close when the admin signs out or is
// demoted.
type Hub struct {
	mu   sync.Mutex
	subs map[uuid.UUID]map[int]chan Snapshot
	next int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uuid.UUID]map[int]chan Snapshot)}
}

// Subscribe returns a channel receiving every snapshot published for userID
// and a func that ends the subscription.
func (h *Hub) Subscribe(userID uuid.UUID) (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 4)

	h.mu.Lock()
	id := h.next
	h.next++
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[int]chan Snapshot)
	}
	h.subs[userID][id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], id)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers s to the subscribers of userID without blocking.
func (h *Hub) Publish(userID uuid.UUID, s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[userID] {
		select {
		case ch <- s:
		default:
		}
	}
}
