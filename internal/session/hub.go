package session

import (
	"sync"
	"time"

	"github.com/Chakshu098/Everhack/internal/domain"
)

// Change is a provider notification that a session's identity or claims
// changed. A nil Identity means the session ended.
type Change struct {
	SessionID string
	Identity  *domain.Identity
	Claims    domain.Claims
	ExpiresAt time.Time
}

// Hub fans provider session changes out to subscribed stores. Publish calls
// subscribers synchronously on the caller's goroutine.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[uint64]func(Change)
	next uint64
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[uint64]func(Change))}
}

// Subscribe registers fn for changes to sessionID and returns the function
// that removes it. Calling the returned function more than once is harmless.
func (h *Hub) Subscribe(sessionID string, fn func(Change)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	id := h.next
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[uint64]func(Change))
	}
	h.subs[sessionID][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[sessionID], id)
			if len(h.subs[sessionID]) == 0 {
				delete(h.subs, sessionID)
			}
		})
	}
}

// Publish delivers c to every subscriber of c.SessionID and returns how many
// were notified.
func (h *Hub) Publish(c Change) int {
	h.mu.RLock()
	fns := make([]func(Change), 0, len(h.subs[c.SessionID]))
	for _, fn := range h.subs[c.SessionID] {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(c)
	}
	return len(fns)
}
