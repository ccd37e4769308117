// Package session holds the per-session view of who the caller is and what
// role they have.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/Chakshu098/Everhack/internal/async"
	"github.com/Chakshu098/Everhack/internal/domain"
)

// State is the observable session state. Role is always derived from
// Identity and Claims; it is never set directly.
type State struct {
	Identity *domain.Identity `json:"identity"`
	Claims   domain.Claims    `json:"claims"`
	Role     domain.Role      `json:"role"`
	Loading  bool             `json:"loading"`
}

// Authenticated reports whether an identity is present.
func (s State) Authenticated() bool { return s.Identity != nil }

// Provider is the part of the auth provider a Store talks to.
type Provider interface {
	Resolve(ctx context.Context, token string) (*domain.AuthSession, error)
	SignOut(ctx context.Context, session *domain.AuthSession) error
}

// Store tracks one session. It starts loading, settles once the provider has
// resolved the session, and follows provider change events until Teardown.
type Store struct {
	provider Provider
	hub      *Hub
	isAdmin  domain.AdminPredicate

	mu          sync.RWMutex
	state       State
	session     *domain.AuthSession
	unsubscribe func()
	init        async.Tracker
}

// NewStore returns a Store in the loading state.
func NewStore(provider Provider, hub *Hub, isAdmin domain.AdminPredicate) *Store {
	return &Store{
		provider: provider,
		hub:      hub,
		isAdmin:  isAdmin,
		state:    State{Role: domain.RoleAnonymous, Loading: true},
	}
}

// Anonymous returns a settled Store with no identity.
func Anonymous() *Store {
	return &Store{state: State{Role: domain.RoleAnonymous}}
}

// Init resolves token with the provider. An empty or rejected token settles
// the store as anonymous; the provider error is returned for logging. A
// result that arrives after Teardown is dropped.
func (s *Store) Init(ctx context.Context, token string) error {
	tok := s.init.Begin()
	if token == "" {
		s.settleAnonymous(tok)
		return nil
	}
	sess, err := s.provider.Resolve(ctx, token)
	if err != nil {
		s.settleAnonymous(tok)
		return err
	}
	s.attach(tok, sess)
	return nil
}

// Attach settles the store from an already resolved session.
func (s *Store) Attach(sess *domain.AuthSession) {
	s.attach(s.init.Begin(), sess)
}

func (s *Store) attach(tok async.Token, sess *domain.AuthSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !tok.Valid() {
		return
	}
	s.session = sess
	id := sess.Identity
	s.state = s.derive(&id, sess.Claims)
	if s.hub != nil && s.unsubscribe == nil {
		s.unsubscribe = s.hub.Subscribe(sess.ID, s.apply)
	}
}

func (s *Store) settleAnonymous(tok async.Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !tok.Valid() {
		return
	}
	s.session = nil
	s.state = State{Role: domain.RoleAnonymous}
}

func (s *Store) apply(c Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.Identity == nil {
		s.session = nil
		s.state = State{Role: domain.RoleAnonymous}
		return
	}
	id := *c.Identity
	if s.session != nil {
		next := *s.session
		next.Identity = id
		next.Claims = c.Claims
		if !c.ExpiresAt.IsZero() {
			next.ExpiresAt = c.ExpiresAt
		}
		s.session = &next
	}
	s.state = s.derive(&id, c.Claims)
}

func (s *Store) derive(id *domain.Identity, claims domain.Claims) State {
	claims = domain.Claims{Roles: append([]string(nil), claims.Roles...)}
	return State{
		Identity: id,
		Claims:   claims,
		Role:     domain.DeriveRole(id, claims, s.isAdmin),
	}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.Identity != nil {
		id := *st.Identity
		st.Identity = &id
	}
	st.Claims.Roles = append([]string(nil), st.Claims.Roles...)
	return st
}

// Session returns the resolved provider session, or nil when anonymous.
func (s *Store) Session() *domain.AuthSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

// Actor returns the caller as seen by the services.
func (s *Store) Actor() domain.Actor {
	st := s.State()
	if st.Identity == nil {
		return domain.Actor{Role: domain.RoleAnonymous}
	}
	return domain.Actor{UserID: st.Identity.ID, Role: st.Role}
}

// SignOut revokes the session with the provider and settles as anonymous.
// An Init still in flight is discarded. Signing out an anonymous store is a
// no-op.
func (s *Store) SignOut(ctx context.Context) error {
	sess := s.Session()
	if sess == nil {
		return nil
	}
	if s.provider == nil {
		return errors.New("session: no provider")
	}
	if err := s.provider.SignOut(ctx, sess); err != nil {
		return err
	}
	s.init.Invalidate()
	s.mu.Lock()
	s.session = nil
	s.state = State{Role: domain.RoleAnonymous}
	s.mu.Unlock()
	return nil
}

// Teardown stops following provider events and discards any in-flight Init.
func (s *Store) Teardown() {
	s.init.Close()
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}
