package session

import (
	"context"
	"sync"
	"time"

	"github.com/Chakshu098/Everhack/internal/domain"
)

// Gauge receives the number of live sessions.
type Gauge interface {
	SetActiveSessions(n int)
}

// Registry keeps one Store per provider session for the session's lifetime.
type Registry struct {
	provider Provider
	hub      *Hub
	isAdmin  domain.AdminPredicate
	gauge    Gauge
	now      func() time.Time

	mu        sync.Mutex
	stores    map[string]*Store
	onRelease []func(sessionID string)
}

func NewRegistry(provider Provider, hub *Hub, isAdmin domain.AdminPredicate, gauge Gauge) *Registry {
	return &Registry{
		provider: provider,
		hub:      hub,
		isAdmin:  isAdmin,
		gauge:    gauge,
		now:      time.Now,
		stores:   make(map[string]*Store),
	}
}

// Hub returns the hub stores subscribe to.
func (r *Registry) Hub() *Hub { return r.hub }

// OnRelease registers fn to run after a session's store is torn down.
func (r *Registry) OnRelease(fn func(sessionID string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onRelease = append(r.onRelease, fn)
}

// Acquire resolves token and returns the store for its session, creating it
// on first sight. An empty token yields an anonymous store; a rejected token
// yields an anonymous store and the provider error.
func (r *Registry) Acquire(ctx context.Context, token string) (*Store, error) {
	if token == "" {
		return Anonymous(), nil
	}
	sess, err := r.provider.Resolve(ctx, token)
	if err != nil {
		return Anonymous(), err
	}

	r.mu.Lock()
	expired := r.pruneLocked()
	store, ok := r.stores[sess.ID]
	switch {
	case !ok:
		store = NewStore(r.provider, r.hub, r.isAdmin)
		store.Attach(sess)
		r.stores[sess.ID] = store
	case newer(sess, store.Session()):
		// A refreshed token carries claims the store has not seen yet.
		store.Attach(sess)
	}
	n := len(r.stores)
	r.mu.Unlock()

	r.released(expired)
	if r.gauge != nil {
		r.gauge.SetActiveSessions(n)
	}
	return store, nil
}

// Release tears down the store for sessionID. Unknown ids are ignored.
func (r *Registry) Release(sessionID string) {
	r.mu.Lock()
	store, ok := r.stores[sessionID]
	delete(r.stores, sessionID)
	n := len(r.stores)
	r.mu.Unlock()
	if !ok {
		return
	}
	store.Teardown()
	r.released([]string{sessionID})
	if r.gauge != nil {
		r.gauge.SetActiveSessions(n)
	}
}

// SignOut signs the store's session out with the provider and releases it.
func (r *Registry) SignOut(ctx context.Context, store *Store) error {
	sess := store.Session()
	if err := store.SignOut(ctx); err != nil {
		return err
	}
	if sess != nil {
		r.Release(sess.ID)
	}
	return nil
}

// Len reports how many sessions are held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// pruneLocked drops stores whose token has expired and returns their ids.
func (r *Registry) pruneLocked() []string {
	now := r.now()
	var expired []string
	for id, store := range r.stores {
		sess := store.Session()
		if sess == nil || (!sess.ExpiresAt.IsZero() && now.After(sess.ExpiresAt)) {
			store.Teardown()
			delete(r.stores, id)
			expired = append(expired, id)
		}
	}
	return expired
}

func (r *Registry) released(ids []string) {
	if len(ids) == 0 {
		return
	}
	r.mu.Lock()
	hooks := append([]func(string){}, r.onRelease...)
	r.mu.Unlock()
	for _, id := range ids {
		for _, fn := range hooks {
			fn(id)
		}
	}
}

func newer(sess, held *domain.AuthSession) bool {
	return held == nil || sess.ExpiresAt.After(held.ExpiresAt)
}
