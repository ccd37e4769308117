package controllers

import (
	"log/slog"
	"net/http"

	"github.com/Chakshu098/Everhack/internal/delivery/http/helpers"
	"github.com/Chakshu098/Everhack/internal/domain"
	"github.com/Chakshu098/Everhack/internal/session"
)

// RegisterResponse is the data of POST /events/{id}/registrations.
type RegisterResponse struct {
	Registration *domain.EventRegistration `json:"registration"`
	Created      bool                      `json:"created"`
}

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.AttendeeService
}

func NewRegistrationController(logger *slog.Logger, svc domain.AttendeeService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// Register godoc
// @Summary Register for an event
// @Description Registers the signed-in member. Registering twice returns the existing registration with 200. Registrations past max_participants are waitlisted.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Success 201 {object} helpers.APIResponse "data is a RegisterResponse"
// @Success 200 {object} helpers.APIResponse "already registered"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id}/registrations [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	actor := session.FromContext(r.Context()).Actor()
	reg, created, err := c.Service.RegisterForEvent(r.Context(), id, actor.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	helpers.WriteJSONSuccess(w, status, RegisterResponse{Registration: reg, Created: created})
}

// ListMine godoc
// @Summary My registrations
// @Description Registrations of the signed-in member joined with their events, newest first.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is a list of registrations with events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 503 {object} helpers.APIResponse "error.code: transport_error"
// @Router /me/registrations [get]
func (c *RegistrationController) ListMine(w http.ResponseWriter, r *http.Request) {
	actor := session.FromContext(r.Context()).Actor()
	rows, err := c.Service.ListRegistrationsForUser(r.Context(), actor.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if rows == nil {
		rows = []*domain.EventRegistrationWithEvent{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rows)
}
