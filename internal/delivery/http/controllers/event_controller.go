package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Chakshu098/Everhack/internal/delivery/http/helpers"
	"github.com/Chakshu098/Everhack/internal/domain"
	"github.com/Chakshu098/Everhack/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
	Now     func() time.Time
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
		Now:     time.Now,
	}
}

// ListEvents godoc
// @Summary List events
// @Description Public list of events ordered by start_date descending. page and page_size are optional; without them every event is returned.
// @Tags events
// @Produce json
// @Param page query int false "Page (1-based)"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Failure 503 {object} helpers.APIResponse "error.code: transport_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	events, err := c.Service.ListEvents(r.Context(), params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Events:     newEventResponses(events, c.Now()),
		Pagination: helpers.NewPaginationMeta(params, len(events)),
	})
}

// GetEvent godoc
// @Summary Get an event
// @Description Public event detail including rules, timeline and display status. The ETag header carries the event version.
// @Tags events
// @Produce json
// @Param id path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	setETag(w, event)
	helpers.WriteJSONSuccess(w, http.StatusOK, newEventResponse(event, c.Now()))
}

// CreateEvent godoc
// @Summary Create an event
// @Description Admin only. title, event_type, start_date and end_date are required; status defaults to upcoming. Dates accept YYYY-MM-DD or RFC 3339.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body controllers.EventRequest true "Event fields"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /admin/events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	actor := session.FromContext(r.Context()).Actor()
	event, err := c.Service.CreateEvent(r.Context(), actor, req.Fields())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	setETag(w, event)
	helpers.WriteJSONSuccess(w, http.StatusCreated, newEventResponse(event, c.Now()))
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Admin only. Only fields present in the body change. With If-Match the write only succeeds if the event is still at that version.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Param If-Match header string false "Expected event version"
// @Param event body controllers.EventPatchRequest true "Changed fields"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: validation_error"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /admin/events/{id} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	var req EventPatchRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	patch := req.Patch()
	if v := r.Header.Get("If-Match"); v != "" {
		version, err := parseVersion(v)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		patch.ExpectedVersion = &version
	}
	actor := session.FromContext(r.Context()).Actor()
	event, err := c.Service.UpdateEvent(r.Context(), actor, id, patch)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	setETag(w, event)
	helpers.WriteJSONSuccess(w, http.StatusOK, newEventResponse(event, c.Now()))
}

// DeleteEventResponse is the data of DELETE /admin/events/{id}.
type DeleteEventResponse struct {
	ID string `json:"id"`
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Admin only. Registrations for the event are removed with it.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data.id is the deleted event"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /admin/events/{id} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	actor := session.FromContext(r.Context()).Actor()
	if err := c.Service.DeleteEvent(r.Context(), actor, id); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{ID: id})
}

// eventID reads the {id} path parameter and writes 400 unless it is a UUID.
func eventID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing event id")
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid event id")
		return "", false
	}
	return id, true
}

func setETag(w http.ResponseWriter, e *domain.Event) {
	w.Header().Set("ETag", strconv.Quote(strconv.Itoa(e.Version)))
}

// parseVersion reads an If-Match value such as "3", W/"3" or 3.
func parseVersion(v string) (int, error) {
	v = strings.TrimPrefix(strings.TrimSpace(v), "W/")
	v = strings.Trim(v, `"`)
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, errors.New("If-Match must be an event version")
	}
	return n, nil
}
