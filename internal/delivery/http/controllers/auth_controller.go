package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Chakshu098/Everhack/internal/delivery/http/helpers"
	"github.com/Chakshu098/Everhack/internal/domain"
	"github.com/Chakshu098/Everhack/internal/session"
)

// SessionRegistry is the part of session.Registry the auth endpoints use.
type SessionRegistry interface {
	Acquire(ctx context.Context, token string) (*session.Store, error)
	SignOut(ctx context.Context, store *session.Store) error
	Hub() *session.Hub
}

// SignUpRequest is the request body for POST /auth/signup.
type SignUpRequest struct {
	Email    string  `json:"email" validate:"required,email,max=254"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	FullName *string `json:"full_name" validate:"omitempty,max=120"`
}

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse carries a token and the session state it resolves to.
type SessionResponse struct {
	Token     string        `json:"token,omitempty"`
	TokenType string        `json:"token_type,omitempty"`
	ExpiresAt *time.Time    `json:"expires_at,omitempty"`
	Session   session.State `json:"session"`
}

type AuthController struct {
	Logger   *slog.Logger
	Service  domain.AuthService
	Sessions SessionRegistry
}

func NewAuthController(logger *slog.Logger, svc domain.AuthService, sessions SessionRegistry) *AuthController {
	return &AuthController{
		Logger:   logger,
		Service:  svc,
		Sessions: sessions,
	}
}

// SignUp godoc
// @Summary Sign up
// @Description Create an identity with a profile and the member role. Nobody can sign up as admin.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body controllers.SignUpRequest true "Sign-up data"
// @Success 201 {object} helpers.APIResponse "data contains the identity"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_error"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 429 {object} helpers.APIResponse "error.code: rate_limited"
// @Router /auth/signup [post]
func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.SignUp(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, user.Identity())
}

// Login godoc
// @Summary Log in
// @Description Authenticate with email and password. Returns a bearer token whose claims carry the session id and roles, plus the resolved session state.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body controllers.LoginRequest true "Login credentials"
// @Success 200 {object} helpers.APIResponse "data is a SessionResponse"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 429 {object} helpers.APIResponse "error.code: rate_limited"
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, sess, err := c.Service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	c.respondWithSession(w, r, token, sess)
}

// Logout godoc
// @Summary Sign out
// @Description Revokes the current session. Signing out without a session, or twice, succeeds.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data.session is anonymous"
// @Failure 503 {object} helpers.APIResponse "error.code: transport_error"
// @Router /auth/logout [post]
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	store := session.FromContext(r.Context())
	if err := c.Sessions.SignOut(r.Context(), store); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, SessionResponse{Session: store.State()})
}

// Session godoc
// @Summary Current session
// @Description Returns the caller's identity, claims and derived role. Anonymous callers get role "anonymous".
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data.session is the session state"
// @Router /auth/session [get]
func (c *AuthController) Session(w http.ResponseWriter, r *http.Request) {
	store := session.FromContext(r.Context())
	resp := SessionResponse{Session: store.State()}
	if sess := store.Session(); sess != nil {
		resp.ExpiresAt = &sess.ExpiresAt
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, resp)
}

// Refresh godoc
// @Summary Refresh the session token
// @Description Re-issues the token for the current session with roles read from storage and pushes the change to the live session.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is a SessionResponse"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /auth/refresh [post]
func (c *AuthController) Refresh(w http.ResponseWriter, r *http.Request) {
	store := session.FromContext(r.Context())
	token, sess, err := c.Service.Refresh(r.Context(), store.Session())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	identity := sess.Identity
	c.Sessions.Hub().Publish(session.Change{
		SessionID: sess.ID,
		Identity:  &identity,
		Claims:    sess.Claims,
		ExpiresAt: sess.ExpiresAt,
	})
	c.respondWithSession(w, r, token, sess)
}

func (c *AuthController) respondWithSession(w http.ResponseWriter, r *http.Request, token string, sess *domain.AuthSession) {
	store, err := c.Sessions.Acquire(r.Context(), token)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	expiresAt := sess.ExpiresAt
	helpers.WriteJSONSuccess(w, http.StatusOK, SessionResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: &expiresAt,
		Session:   store.State(),
	})
}
