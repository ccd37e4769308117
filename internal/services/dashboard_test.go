package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Chakshu098/Everhack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Member(t *testing.T) {
	ctx := context.Background()
	joined := time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)
	events := newFakeEventRepo(futureEvent("ev-1", nil))
	regs := &fakeRegistrationRepo{events: events, regs: []*domain.EventRegistration{
		{ID: "reg-1", EventID: "ev-1", UserID: "user-1"},
	}}
	users := newFakeUserRepo()
	users.byID["user-1"] = &domain.User{ID: "user-1", Email: "ada@example.com", CreatedAt: joined}
	profiles := &fakeProfileRepo{byUser: map[string]*domain.Profile{
		"user-1": {UserID: "user-1", FullName: strp("Ada Lovelace"), Email: "ada@example.com"},
	}}
	attendees := NewAttendeeService(events, regs, time.Second)
	svc := NewDashboardService(users, profiles, attendees, NewEventService(events, nil, nil, time.Second), time.Second)

	t.Run("with profile", func(t *testing.T) {
		d, err := svc.Member(ctx, domain.Identity{ID: "user-1", Email: "ada@example.com", CreatedAt: joined})
		require.NoError(t, err)
		assert.Equal(t, "AL", d.Initials)
		assert.Equal(t, joined, d.MemberSince)
		assert.Equal(t, 1, d.RegisteredCount)
		require.Len(t, d.Registrations, 1)
		assert.Equal(t, "ev-1", d.Registrations[0].Event.ID)
	})

	t.Run("member since loaded when the token lacks it", func(t *testing.T) {
		d, err := svc.Member(ctx, domain.Identity{ID: "user-1", Email: "ada@example.com"})
		require.NoError(t, err)
		assert.Equal(t, joined, d.MemberSince)
	})

	t.Run("missing profile falls back to email", func(t *testing.T) {
		users.byID["user-2"] = &domain.User{ID: "user-2", Email: "zed@example.com", CreatedAt: joined}
		d, err := svc.Member(ctx, domain.Identity{ID: "user-2", Email: "zed@example.com", CreatedAt: joined})
		require.NoError(t, err)
		assert.Equal(t, "ZE", d.Initials)
		assert.Equal(t, 0, d.RegisteredCount)
		assert.NotNil(t, d.Registrations)
	})

	t.Run("profile store failure surfaces", func(t *testing.T) {
		profiles.err = domain.NewTransportError("get profile", errors.New("reset by peer"))
		defer func() { profiles.err = nil }()
		_, err := svc.Member(ctx, domain.Identity{ID: "user-1", CreatedAt: joined})
		assert.ErrorIs(t, err, domain.ErrTransport)
	})
}

func TestDashboardService_Admin(t *testing.T) {
	ctx := context.Background()
	events := newFakeEventRepo(
		sampleEvent("ev-1", "H1", "hackathon", base),
		sampleEvent("ev-2", "H2", "hackathon", base.Add(day)),
		sampleEvent("ev-3", "C1", "ctf", base.Add(2*day)),
		sampleEvent("ev-4", "W1", "workshop", base.Add(3*day)),
		sampleEvent("ev-5", "M1", "meetup", base.Add(4*day)),
	)
	svc := NewDashboardService(newFakeUserRepo(), &fakeProfileRepo{}, nil, NewEventService(events, nil, nil, time.Second), time.Second)

	d, err := svc.Admin(ctx, domain.Identity{ID: "admin-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.EventStats{Total: 5, Hackathons: 2, CTFs: 1, Workshops: 1}, d.Stats)
	assert.Equal(t, "ev-5", d.Events[0].ID)

	events.err = domain.NewTransportError("list events", errors.New("down"))
	_, err = svc.Admin(ctx, domain.Identity{ID: "admin-1"})
	assert.ErrorIs(t, err, domain.ErrTransport)
}
