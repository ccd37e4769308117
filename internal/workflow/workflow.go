// Package workflow drives the admin console's create, edit and delete flows
// for events: one state machine per admin session.
package workflow

import (
	"context"
	"errors"
	"sync"

	"github.com/Chakshu098/Everhack/internal/async"
	"github.com/Chakshu098/Everhack/internal/domain"
)

// ErrInvalidTransition is returned when an action does not apply to the
// current phase.
var ErrInvalidTransition = errors.New("workflow: action not allowed in current phase")

// Phase is the workflow's position in its state machine.
type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseFormOpen         Phase = "form_open"
	PhaseSubmitting       Phase = "submitting"
	PhaseConfirmingDelete Phase = "confirming_delete"
	PhaseDeleting         Phase = "deleting"
)

// Mode tells whether an open form creates or edits an event.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Events is the backend the workflow mutates and lists.
type Events interface {
	ListEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, error)
	CreateEvent(ctx context.Context, actor domain.Actor, fields domain.EventFields) (*domain.Event, error)
	UpdateEvent(ctx context.Context, actor domain.Actor, id string, patch domain.EventPatch) (*domain.Event, error)
	DeleteEvent(ctx context.Context, actor domain.Actor, id string) error
}

// StaleRecorder counts results dropped because a newer request or a teardown
// superseded them.
type StaleRecorder interface {
	RecordStaleResult(source string)
}

// Failure is an error as shown to the admin.
type Failure struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
}

func failureOf(err error) *Failure {
	f := &Failure{Code: domain.ErrorCode(err), Message: err.Error()}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		f.Fields = append([]domain.FieldError(nil), ve.Fields...)
	}
	return f
}

// Notice is a dismissible message left after a flow finishes.
type Notice struct {
	Kind    string   `json:"kind"`
	Message string   `json:"message"`
	Error   *Failure `json:"error,omitempty"`
}

// Snapshot is a copy of the workflow state.
type Snapshot struct {
	Phase        Phase                     `json:"phase"`
	Mode         Mode                      `json:"mode,omitempty"`
	EditingID    string                    `json:"editing_id,omitempty"`
	Draft        *domain.EventFields       `json:"draft,omitempty"`
	FormError    *Failure                  `json:"form_error,omitempty"`
	DeleteTarget *domain.Event             `json:"delete_target,omitempty"`
	Notice       *Notice                   `json:"notice,omitempty"`
	Events       async.Op[[]*domain.Event] `json:"events"`
}

// Workflow is the admin event state machine. Transitions are serialized;
// backend calls run without holding the lock, and their results are dropped
// if Teardown ran meanwhile.
type Workflow struct {
	events Events
	stale  StaleRecorder

	mu        sync.Mutex
	phase     Phase
	mode      Mode
	draft     domain.EventFields
	editing   *domain.Event
	formErr   *Failure
	target    *domain.Event
	notice    *Notice
	list      async.Op[[]*domain.Event]
	mutations async.Tracker
	refreshes async.Tracker
}

// New returns an idle workflow.
func New(events Events, stale StaleRecorder) *Workflow {
	return &Workflow{
		events: events,
		stale:  stale,
		phase:  PhaseIdle,
		list:   async.Idle[[]*domain.Event](),
	}
}

// OpenCreate opens an empty create form, replacing any open form or pending
// delete confirmation.
func (w *Workflow) OpenCreate() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy() {
		return ErrInvalidTransition
	}
	w.openForm(ModeCreate, domain.EventFields{}, nil)
	return nil
}

// OpenEdit opens an edit form pre-filled from a copy of event.
func (w *Workflow) OpenEdit(event *domain.Event) error {
	if event == nil {
		return domain.ErrNotFound
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy() {
		return ErrInvalidTransition
	}
	snapshot := event.Clone()
	w.openForm(ModeEdit, domain.FieldsOf(snapshot), snapshot)
	return nil
}

func (w *Workflow) openForm(mode Mode, draft domain.EventFields, editing *domain.Event) {
	w.phase = PhaseFormOpen
	w.mode = mode
	w.draft = draft
	w.editing = editing
	w.formErr = nil
	w.target = nil
}

// EditDraft replaces the open form's draft with a copy of fields.
func (w *Workflow) EditDraft(fields domain.EventFields) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase != PhaseFormOpen {
		return ErrInvalidTransition
	}
	w.draft = fields.Clone()
	w.formErr = nil
	return nil
}

// Cancel closes the open form or delete confirmation without writing
// anything. Cancelling while idle does nothing.
func (w *Workflow) Cancel() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch w.phase {
	case PhaseIdle:
		return nil
	case PhaseFormOpen, PhaseConfirmingDelete:
		w.reset()
		return nil
	default:
		return ErrInvalidTransition
	}
}

// Submit normalizes and validates the draft locally, then creates or updates
// the event.
// An invalid draft is never sent. On success the workflow returns to idle and
// refreshes the list; on failure the form stays open with the draft intact.
func (w *Workflow) Submit(ctx context.Context, actor domain.Actor) error {
	w.mu.Lock()
	if w.phase != PhaseFormOpen {
		w.mu.Unlock()
		return ErrInvalidTransition
	}
	draft := w.draft.Normalize()
	if err := domain.ValidateEventFields(draft); err != nil {
		w.formErr = failureOf(err)
		w.mu.Unlock()
		return err
	}
	mode, editing := w.mode, w.editing
	w.phase = PhaseSubmitting
	w.formErr = nil
	tok := w.mutations.Begin()
	w.mu.Unlock()

	var err error
	if mode == ModeEdit {
		patch := domain.Diff(editing, draft)
		version := editing.Version
		patch.ExpectedVersion = &version
		_, err = w.events.UpdateEvent(ctx, actor, editing.ID, patch)
	} else {
		_, err = w.events.CreateEvent(ctx, actor, draft)
	}

	w.mu.Lock()
	if !tok.Valid() {
		w.mu.Unlock()
		w.recordStale("submit")
		return err
	}
	if err != nil {
		w.phase = PhaseFormOpen
		w.formErr = failureOf(err)
		w.mu.Unlock()
		return err
	}
	w.reset()
	if mode == ModeEdit {
		w.notice = &Notice{Kind: "success", Message: "event updated"}
	} else {
		w.notice = &Notice{Kind: "success", Message: "event created"}
	}
	w.mu.Unlock()

	// A failed refresh is reported through the list state.
	_ = w.Refresh(ctx)
	return nil
}

// RequestDelete asks for confirmation before deleting event.
func (w *Workflow) RequestDelete(event *domain.Event) error {
	if event == nil {
		return domain.ErrNotFound
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase != PhaseIdle && w.phase != PhaseConfirmingDelete {
		return ErrInvalidTransition
	}
	w.phase = PhaseConfirmingDelete
	w.target = event.Clone()
	return nil
}

// ConfirmDelete deletes the confirmed target. The displayed list is only
// refreshed after the backend confirms; a failure returns to idle with an
// error notice and leaves the list as it was.
func (w *Workflow) ConfirmDelete(ctx context.Context, actor domain.Actor) error {
	w.mu.Lock()
	if w.phase != PhaseConfirmingDelete || w.target == nil {
		w.mu.Unlock()
		return ErrInvalidTransition
	}
	target := w.target
	w.phase = PhaseDeleting
	tok := w.mutations.Begin()
	w.mu.Unlock()

	err := w.events.DeleteEvent(ctx, actor, target.ID)

	w.mu.Lock()
	if !tok.Valid() {
		w.mu.Unlock()
		w.recordStale("delete")
		return err
	}
	w.reset()
	if err != nil {
		w.notice = &Notice{Kind: "error", Message: "could not delete " + target.Title, Error: failureOf(err)}
		w.mu.Unlock()
		return err
	}
	w.notice = &Notice{Kind: "success", Message: "event deleted"}
	w.mu.Unlock()

	_ = w.Refresh(ctx)
	return nil
}

// Refresh lists events. Only the latest refresh may update the list; older
// results and results arriving after Teardown are dropped.
func (w *Workflow) Refresh(ctx context.Context) error {
	w.mu.Lock()
	tok := w.refreshes.Begin()
	if !tok.Valid() {
		w.mu.Unlock()
		return ErrInvalidTransition
	}
	w.list = w.list.Retain()
	w.mu.Unlock()

	events, err := w.events.ListEvents(ctx, domain.PaginationParams{})

	w.mu.Lock()
	defer w.mu.Unlock()
	if !tok.Valid() {
		w.recordStale("refresh")
		return nil
	}
	if err != nil {
		w.list = async.Failure[[]*domain.Event](err)
		return err
	}
	w.list = async.Success(events)
	return nil
}

// Lookup returns a copy of the listed event with id, or nil.
func (w *Workflow) Lookup(id string) *domain.Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, e := range w.list.Value {
		if e != nil && e.ID == id {
			return e.Clone()
		}
	}
	return nil
}

// DismissNotice clears the current notice.
func (w *Workflow) DismissNotice() {
	w.mu.Lock()
	w.notice = nil
	w.mu.Unlock()
}

// Teardown drops any in-flight result and returns to idle. The workflow
// accepts no further refreshes.
func (w *Workflow) Teardown() {
	w.mutations.Close()
	w.refreshes.Close()
	w.mu.Lock()
	w.reset()
	w.notice = nil
	w.mu.Unlock()
}

// Snapshot returns a deep copy of the current state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := Snapshot{
		Phase:  w.phase,
		Events: w.list,
	}
	if w.phase == PhaseFormOpen || w.phase == PhaseSubmitting {
		s.Mode = w.mode
		d := w.draft.Clone()
		s.Draft = &d
		if w.editing != nil {
			s.EditingID = w.editing.ID
		}
	}
	if w.formErr != nil {
		fe := *w.formErr
		s.FormError = &fe
	}
	if w.target != nil {
		s.DeleteTarget = w.target.Clone()
	}
	if w.notice != nil {
		n := *w.notice
		s.Notice = &n
	}
	if w.list.Value != nil {
		events := make([]*domain.Event, len(w.list.Value))
		for i, e := range w.list.Value {
			events[i] = e.Clone()
		}
		s.Events.Value = events
	}
	return s
}

func (w *Workflow) busy() bool {
	return w.phase == PhaseSubmitting || w.phase == PhaseDeleting
}

func (w *Workflow) reset() {
	w.phase = PhaseIdle
	w.mode = ""
	w.draft = domain.EventFields{}
	w.editing = nil
	w.formErr = nil
	w.target = nil
}

func (w *Workflow) recordStale(source string) {
	if w.stale != nil {
		w.stale.RecordStaleResult("workflow_" + source)
	}
}
