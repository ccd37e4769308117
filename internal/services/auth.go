package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Chakshu098/Everhack/internal/domain"
	"github.com/google/uuid"
)

var errInvalidCredentials = fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)

type signUpInput struct {
	Email    string  `json:"email" validate:"required,email,max=254"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	FullName *string `json:"full_name" validate:"omitempty,max=120"`
}

type authService struct {
	userRepo       domain.UserRepository
	profileRepo    domain.ProfileRepository
	roleRepo       domain.RoleRepository
	revokedRepo    domain.RevokedSessionRepository
	hasher         domain.PasswordHasher
	issuer         domain.TokenIssuer
	verifier       domain.TokenVerifier
	tokenExpiry    time.Duration
	contextTimeout time.Duration
}

// AuthDeps groups the collaborators of the auth service.
type AuthDeps struct {
	Users    domain.UserRepository
	Profiles domain.ProfileRepository
	Roles    domain.RoleRepository
	Revoked  domain.RevokedSessionRepository
	Hasher   domain.PasswordHasher
	Issuer   domain.TokenIssuer
	Verifier domain.TokenVerifier
}

// NewAuthService creates the AuthService. Tokens live for tokenExpiry.
func NewAuthService(deps AuthDeps, tokenExpiry, timeout time.Duration) domain.AuthService {
	return &authService{
		userRepo:       deps.Users,
		profileRepo:    deps.Profiles,
		roleRepo:       deps.Roles,
		revokedRepo:    deps.Revoked,
		hasher:         deps.Hasher,
		issuer:         deps.Issuer,
		verifier:       deps.Verifier,
		tokenExpiry:    tokenExpiry,
		contextTimeout: timeout,
	}
}

// SignUp creates the identity, its profile and the member role. Nobody can
// sign up as admin.
func (s *authService) SignUp(ctx context.Context, email, password string, fullName *string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	in := signUpInput{Email: strings.ToLower(strings.TrimSpace(email)), Password: password, FullName: trimmed(fullName)}
	if err := domain.ValidateStruct(in); err != nil {
		return nil, err
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return nil, err
	}

	user := domain.NewUser(in.Email, hash, salt, time.Now().UTC())
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	profile := &domain.Profile{UserID: user.ID, FullName: nilIfEmpty(in.FullName), Email: user.Email}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	role, err := s.roleRepo.GetByCode(ctx, domain.RoleCodeMember)
	if err != nil {
		return nil, fmt.Errorf("failed to get role %q: %w", domain.RoleCodeMember, err)
	}
	if err := s.userRepo.AssignRole(ctx, user.ID, role.ID); err != nil {
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.AuthSession, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, errInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return "", nil, errInvalidCredentials
	}
	return s.issue(ctx, uuid.NewString(), user.Identity())
}

// Refresh re-issues the token for the same session with roles read from
// storage, so role changes reach the session without a new login.
func (s *authService) Refresh(ctx context.Context, current *domain.AuthSession) (string, *domain.AuthSession, error) {
	if current == nil {
		return "", nil, domain.ErrUnauthorized
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, current.Identity.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, fmt.Errorf("%w: account no longer exists", domain.ErrUnauthorized)
		}
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}
	return s.issue(ctx, current.ID, user.Identity())
}

func (s *authService) issue(ctx context.Context, sessionID string, identity domain.Identity) (string, *domain.AuthSession, error) {
	roles, err := s.roleRepo.ListByUserID(ctx, identity.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load roles: %w", err)
	}
	codes := make([]string, len(roles))
	for i, r := range roles {
		codes[i] = r.Code
	}

	token, expiresAt, err := s.issuer.Issue(sessionID, identity, codes, s.tokenExpiry)
	if err != nil {
		return "", nil, err
	}
	return token, &domain.AuthSession{
		ID:        sessionID,
		Identity:  identity,
		Claims:    domain.Claims{Roles: codes},
		ExpiresAt: expiresAt,
	}, nil
}

// Resolve verifies token and rejects sessions that were signed out.
func (s *authService) Resolve(ctx context.Context, token string) (*domain.AuthSession, error) {
	session, err := s.verifier.Verify(token)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	revoked, err := s.revokedRepo.IsRevoked(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: session signed out", domain.ErrUnauthorized)
	}
	return session, nil
}

// SignOut revokes the session. Revoking twice is not an error.
func (s *authService) SignOut(ctx context.Context, session *domain.AuthSession) error {
	if session == nil || session.ID == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.revokedRepo.Revoke(ctx, session.ID, session.ExpiresAt); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
