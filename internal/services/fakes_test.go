package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Chakshu098/Everhack/internal/domain"
)

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID    map[string]*domain.Event
	nextID  int
	err     error // returned by every call when set
	creates int
	updates []domain.EventPatch
	deletes []string
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	f := &fakeEventRepo{byID: make(map[string]*domain.Event), nextID: 1}
	for _, e := range events {
		f.byID[e.ID] = e.Clone()
	}
	return f
}

func (f *fakeEventRepo) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.Event, 0, len(f.byID))
	for _, e := range f.byID {
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e.Clone(), nil
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	f.creates++
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e.Clone()
	return nil
}

func (f *fakeEventRepo) Update(ctx context.Context, id string, p domain.EventPatch) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if p.ExpectedVersion != nil && *p.ExpectedVersion != e.Version {
		return nil, domain.ErrConflict
	}
	f.updates = append(f.updates, p)
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = emptyToNil(*p.Description)
	}
	if p.EventType != nil {
		e.EventType = *p.EventType
	}
	if p.StartDate != nil {
		e.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		e.EndDate = *p.EndDate
	}
	if p.Location != nil {
		e.Location = emptyToNil(*p.Location)
	}
	switch {
	case p.MaxParticipants != nil:
		v := *p.MaxParticipants
		e.MaxParticipants = &v
	case p.Clears(domain.FieldMaxParticipants):
		e.MaxParticipants = nil
	}
	switch {
	case p.IsOnline != nil:
		v := *p.IsOnline
		e.IsOnline = &v
	case p.Clears(domain.FieldIsOnline):
		e.IsOnline = nil
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Rules != nil {
		e.Rules = emptyToNil(*p.Rules)
	}
	if p.Timeline != nil {
		e.Timeline = append([]domain.TimelineEntry{}, (*p.Timeline)...)
	}
	e.Version++
	return e.Clone(), nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	f.deletes = append(f.deletes, id)
	delete(f.byID, id)
	return nil
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type fakeRegistrationRepo struct {
	regs      []*domain.EventRegistration
	events    *fakeEventRepo
	err       error
	createErr error
}

func (f *fakeRegistrationRepo) Create(ctx context.Context, reg *domain.EventRegistration) error {
	if f.createErr != nil {
		return f.createErr
	}
	reg.ID = fmt.Sprintf("reg-%d", len(f.regs)+1)
	f.regs = append(f.regs, reg)
	return nil
}

func (f *fakeRegistrationRepo) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.EventRegistration, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.regs {
		if r.EventID == eventID && r.UserID == userID {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) CountRegistered(ctx context.Context, eventID string) (int, error) {
	n := 0
	for _, r := range f.regs {
		if r.EventID == eventID && r.Status == domain.RegistrationRegistered {
			n++
		}
	}
	return n, nil
}

func (f *fakeRegistrationRepo) ListWithEventsByUserID(ctx context.Context, userID string) ([]*domain.EventRegistrationWithEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.EventRegistrationWithEvent
	for i := len(f.regs) - 1; i >= 0; i-- {
		r := f.regs[i]
		if r.UserID != userID {
			continue
		}
		var ev *domain.Event
		if f.events != nil {
			ev = f.events.byID[r.EventID]
		}
		out = append(out, &domain.EventRegistrationWithEvent{Registration: r, Event: ev})
	}
	return out, nil
}

type fakeUserRepo struct {
	byID   map[string]*domain.User
	roles  map[string][]string
	err    error
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*domain.User{}, roles: map[string][]string{}, nextID: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) AssignRole(ctx context.Context, userID, roleID string) error {
	f.roles[userID] = append(f.roles[userID], strings.TrimPrefix(roleID, "role-"))
	return nil
}

// fakeRoleRepo reads assignments from the paired fakeUserRepo. Role ids are "role-<code>".
type fakeRoleRepo struct {
	users *fakeUserRepo
}

func (f *fakeRoleRepo) GetByCode(ctx context.Context, code string) (*domain.RoleRecord, error) {
	if code != domain.RoleCodeAdmin && code != domain.RoleCodeMember {
		return nil, domain.ErrNotFound
	}
	return &domain.RoleRecord{ID: "role-" + code, Code: code}, nil
}

func (f *fakeRoleRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.RoleRecord, error) {
	out := []*domain.RoleRecord{}
	for _, code := range f.users.roles[userID] {
		out = append(out, &domain.RoleRecord{ID: "role-" + code, Code: code})
	}
	return out, nil
}

type fakeProfileRepo struct {
	byUser map[string]*domain.Profile
	err    error
}

func (f *fakeProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	if f.byUser == nil {
		f.byUser = map[string]*domain.Profile{}
	}
	f.byUser[p.UserID] = p
	return nil
}

func (f *fakeProfileRepo) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.byUser[userID]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

type fakeRevokedRepo struct {
	revoked map[string]time.Time
}

func (f *fakeRevokedRepo) Revoke(ctx context.Context, sessionID string, expiresAt time.Time) error {
	if f.revoked == nil {
		f.revoked = map[string]time.Time{}
	}
	f.revoked[sessionID] = expiresAt
	return nil
}

func (f *fakeRevokedRepo) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	_, ok := f.revoked[sessionID]
	return ok, nil
}

// fakeHasher "hashes" by concatenation.
type fakeHasher struct{}

func (fakeHasher) GenerateSalt() (string, error) { return "salt", nil }

func (fakeHasher) Hash(salt, password string) (string, error) { return "hash:" + salt + password, nil }

func (fakeHasher) Compare(hash, salt, password string) error {
	if hash != "hash:"+salt+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokens encodes the session id as the token.
type fakeTokens struct {
	issued map[string]*domain.AuthSession
}

func (f *fakeTokens) Issue(sessionID string, identity domain.Identity, roles []string, expiry time.Duration) (string, time.Time, error) {
	if f.issued == nil {
		f.issued = map[string]*domain.AuthSession{}
	}
	exp := time.Now().Add(expiry)
	token := "tok-" + sessionID + "-" + strings.Join(roles, ",")
	f.issued[token] = &domain.AuthSession{ID: sessionID, Identity: identity, Claims: domain.Claims{Roles: roles}, ExpiresAt: exp}
	return token, exp, nil
}

func (f *fakeTokens) Verify(token string) (*domain.AuthSession, error) {
	if s, ok := f.issued[token]; ok {
		return s, nil
	}
	return nil, domain.ErrUnauthorized
}

type sanitizerFunc func(string) string

func (f sanitizerFunc) Sanitize(raw string) string { return f(raw) }

type recordedMutation struct {
	op  string
	err error
}

type fakeRecorder struct {
	calls []recordedMutation
}

func (f *fakeRecorder) RecordEventMutation(op string, err error) {
	f.calls = append(f.calls, recordedMutation{op: op, err: err})
}
