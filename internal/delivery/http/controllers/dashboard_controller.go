package controllers

import (
	"log/slog"
	"net/http"

	"github.com/Chakshu098/Everhack/internal/delivery/http/helpers"
	"github.com/Chakshu098/Everhack/internal/domain"
	"github.com/Chakshu098/Everhack/internal/session"
)

type DashboardController struct {
	Logger  *slog.Logger
	Service domain.DashboardService
}

func NewDashboardController(logger *slog.Logger, svc domain.DashboardService) *DashboardController {
	return &DashboardController{
		Logger:  logger,
		Service: svc,
	}
}

// Member godoc
// @Summary Member dashboard
// @Description Profile, initials, member-since date and the member's registrations with their events.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is a MemberDashboard"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized, error.redirect: /login"
// @Router /dashboard [get]
func (c *DashboardController) Member(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	view, err := c.Service.Member(r.Context(), identity)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// Admin godoc
// @Summary Admin console
// @Description Every event plus per-type counts.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is an AdminDashboard"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized, error.redirect: /login"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden, error.redirect: /dashboard"
// @Router /admin/dashboard [get]
func (c *DashboardController) Admin(w http.ResponseWriter, r *http.Request) {
	identity, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	view, err := c.Service.Admin(r.Context(), identity)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// currentIdentity returns the signed-in identity. Routes behind the access
// guard always have one; the check covers handlers mounted without it.
func currentIdentity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	st := session.FromContext(r.Context()).State()
	if st.Identity == nil {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "sign in required")
		return domain.Identity{}, false
	}
	return *st.Identity, true
}
