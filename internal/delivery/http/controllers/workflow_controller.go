package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Chakshu098/Everhack/internal/delivery/http/helpers"
	"github.com/Chakshu098/Everhack/internal/domain"
	"github.com/Chakshu098/Everhack/internal/session"
	"github.com/Chakshu098/Everhack/internal/workflow"
)

// Workflows hands out the admin workflow for a session.
type Workflows interface {
	Get(sessionID string) *workflow.Workflow
}

// WorkflowController exposes the admin create, edit and delete workflow.
// Every action answers with the workflow snapshot; backend failures show up
// in the snapshot's form_error or notice rather than as HTTP errors.
type WorkflowController struct {
	Logger    *slog.Logger
	Workflows Workflows
	Events    domain.EventService
}

func NewWorkflowController(logger *slog.Logger, workflows Workflows, events domain.EventService) *WorkflowController {
	return &WorkflowController{
		Logger:    logger,
		Workflows: workflows,
		Events:    events,
	}
}

// Snapshot godoc
// @Summary Admin workflow state
// @Tags admin-workflow
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is a workflow snapshot"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /admin/workflow [get]
func (c *WorkflowController) Snapshot(w http.ResponseWriter, r *http.Request) {
	wf, _, ok := c.current(w, r)
	if !ok {
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, wf.Snapshot())
}

// OpenCreate godoc
// @Summary Open the create form
// @Description Opens an empty form. Fails with invalid_state while a submit or delete is in flight.
// @Tags admin-workflow
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is a workflow snapshot"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state"
// @Router /admin/workflow/create [post]
func (c *WorkflowController) OpenCreate(w http.ResponseWriter, r *http.Request) {
	wf, _, ok := c.current(w, r)
	if !ok {
		return
	}
	c.respond(w, r, wf, wf.OpenCreate())
}

// OpenEdit godoc
// @Summary Open the edit form
// @Description Opens a form holding a copy of the event's fields.
// @Tags admin-workflow
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data is a workflow snapshot"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state"
// @Router /admin/workflow/edit/{id} [post]
func (c *WorkflowController) OpenEdit(w http.ResponseWriter, r *http.Request) {
	wf, _, ok := c.current(w, r)
	if !ok {
		return
	}
	event, ok := c.event(w, r, wf)
	if !ok {
		return
	}
	c.respond(w, r, wf, wf.OpenEdit(event))
}

// EditDraft godoc
// @Summary Replace the form draft
// @Description Stores the draft without validating it. Validation runs on submit.
// @Tags admin-workflow
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.EventRequest true "Draft fields"
// @Success 200 {object} helpers.APIResponse "data is a workflow snapshot"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state"
// @Router /admin/workflow/draft [put]
func (c *WorkflowController) EditDraft(w http.ResponseWriter, r *http.Request) {
	wf, _, ok := c.current(w, r)
	if !ok {
		return
	}
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	c.respond(w, r, wf, wf.EditDraft(req.Fields()))
}

// Submit godoc
// @Summary Submit the form
// @Description Validates the draft, then creates or updates the event and refreshes the list. An invalid draft is not sent.
// @Tags admin-workflow
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is a workflow snapshot; form_error is set on failure"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state"
// @Router /admin/workflow/submit [post]
func (c *WorkflowController) Submit(w http.ResponseWriter, r *http.Request) {
	wf, store, ok := c.current(w, r)
	if !ok {
		return
	}
	c.respond(w, r, wf, wf.Submit(r.Context(), store.Actor()))
}

// Cancel godoc
// @Summary Cancel the form or the delete confirmation
// @Tags admin-workflow
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is a workflow snapshot"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state"
// @Router /admin/workflow/cancel [post]
func (c *WorkflowController) Cancel(w http.ResponseWriter, r *http.Request) {
	wf, _, ok := c.current(w, r)
	if !ok {
		return
	}
	c.respond(w, r, wf, wf.Cancel())
}

// RequestDelete godoc
// @Summary Ask to delete an event
// @Tags admin-workflow
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data is a workflow snapshot"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state"
// @Router /admin/workflow/delete/{id} [post]
func (c *WorkflowController) RequestDelete(w http.ResponseWriter, r *http.Request) {
	wf, _, ok := c.current(w, r)
	if !ok {
		return
	}
	event, ok := c.event(w, r, wf)
	if !ok {
		return
	}
	c.respond(w, r, wf, wf.RequestDelete(event))
}

// ConfirmDelete godoc
// @Summary Confirm the pending delete
// @Tags admin-workflow
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is a workflow snapshot; notice reports the outcome"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state"
// @Router /admin/workflow/confirm-delete [post]
func (c *WorkflowController) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	wf, store, ok := c.current(w, r)
	if !ok {
		return
	}
	c.respond(w, r, wf, wf.ConfirmDelete(r.Context(), store.Actor()))
}

// Refresh godoc
// @Summary Reload the event list
// @Tags admin-workflow
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is a workflow snapshot; events.status is failure when the list could not load"
// @Router /admin/workflow/refresh [post]
func (c *WorkflowController) Refresh(w http.ResponseWriter, r *http.Request) {
	wf, _, ok := c.current(w, r)
	if !ok {
		return
	}
	c.respond(w, r, wf, wf.Refresh(r.Context()))
}

// DismissNotice godoc
// @Summary Dismiss the current notice
// @Tags admin-workflow
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is a workflow snapshot"
// @Router /admin/workflow/notice [delete]
func (c *WorkflowController) DismissNotice(w http.ResponseWriter, r *http.Request) {
	wf, _, ok := c.current(w, r)
	if !ok {
		return
	}
	wf.DismissNotice()
	helpers.WriteJSONSuccess(w, http.StatusOK, wf.Snapshot())
}

func (c *WorkflowController) current(w http.ResponseWriter, r *http.Request) (*workflow.Workflow, *session.Store, bool) {
	store := session.FromContext(r.Context())
	sess := store.Session()
	if sess == nil {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "sign in required")
		return nil, nil, false
	}
	return c.Workflows.Get(sess.ID), store, true
}

// event finds the {id} event in the workflow's list, falling back to the
// service when the list has not loaded it.
func (c *WorkflowController) event(w http.ResponseWriter, r *http.Request, wf *workflow.Workflow) (*domain.Event, bool) {
	id, ok := eventID(w, r)
	if !ok {
		return nil, false
	}
	if event := wf.Lookup(id); event != nil {
		return event, true
	}
	event, err := c.Events.GetEvent(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return nil, false
	}
	return event, true
}

// respond writes the snapshot. Only a rejected transition is an HTTP error;
// backend failures are already recorded in the snapshot.
func (c *WorkflowController) respond(w http.ResponseWriter, r *http.Request, wf *workflow.Workflow, err error) {
	if errors.Is(err, workflow.ErrInvalidTransition) {
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeInvalidState, "action not allowed in phase "+string(wf.Snapshot().Phase))
		return
	}
	if err != nil {
		c.Logger.DebugContext(r.Context(), "workflow action failed", "error", err)
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, wf.Snapshot())
}
