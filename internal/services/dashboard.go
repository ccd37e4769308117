package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Chakshu098/Everhack/internal/domain"
)

type dashboardService struct {
	userRepo       domain.UserRepository
	profileRepo    domain.ProfileRepository
	registrations  domain.RegistrationReader
	events         domain.EventService
	contextTimeout time.Duration
}

// NewDashboardService composes the member and admin dashboard views.
func NewDashboardService(
	userRepo domain.UserRepository,
	profileRepo domain.ProfileRepository,
	registrations domain.RegistrationReader,
	events domain.EventService,
	timeout time.Duration,
) domain.DashboardService {
	return &dashboardService{
		userRepo:       userRepo,
		profileRepo:    profileRepo,
		registrations:  registrations,
		events:         events,
		contextTimeout: timeout,
	}
}

func (s *dashboardService) Member(ctx context.Context, identity domain.Identity) (*domain.MemberDashboard, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if identity.CreatedAt.IsZero() {
		user, err := s.userRepo.GetByID(ctx, identity.ID)
		if err != nil {
			return nil, fmt.Errorf("get user: %w", err)
		}
		identity = user.Identity()
	}

	// A missing profile row is not fatal; the page falls back to the email.
	profile, err := s.profileRepo.GetByUserID(ctx, identity.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get profile: %w", err)
		}
		profile = &domain.Profile{UserID: identity.ID, Email: identity.Email}
	}

	regs, err := s.registrations.ListRegistrationsForUser(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	return &domain.MemberDashboard{
		Identity:        identity,
		Profile:         profile,
		Initials:        profile.Initials(),
		MemberSince:     identity.CreatedAt,
		Registrations:   regs,
		RegisteredCount: len(regs),
	}, nil
}

func (s *dashboardService) Admin(ctx context.Context, identity domain.Identity) (*domain.AdminDashboard, error) {
	events, err := s.events.ListEvents(ctx, domain.PaginationParams{})
	if err != nil {
		return nil, err
	}
	return &domain.AdminDashboard{
		Identity: identity,
		Events:   events,
		Stats:    domain.CountEvents(events),
	}, nil
}
