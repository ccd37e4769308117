// Package async models the state of in-flight backend operations and lets
// callers discard results that arrive after a newer request or a teardown.
package async

import "encoding/json"

// Status is the tag of an Op.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Op is a tagged union over the lifecycle of one backend operation. Value is
// meaningful only in StatusSuccess and Err only in StatusFailure.
type Op[T any] struct {
	Status Status
	Value  T
	Err    error
}

func Idle[T any]() Op[T] { return Op[T]{Status: StatusIdle} }

func Success[T any](v T) Op[T] { return Op[T]{Status: StatusSuccess, Value: v} }

func Failure[T any](err error) Op[T] { return Op[T]{Status: StatusFailure, Err: err} }

// Pending reports whether the operation is in flight.
func (o Op[T]) Pending() bool { return o.Status == StatusPending }

// Get returns the value and whether the operation succeeded.
func (o Op[T]) Get() (T, bool) {
	if o.Status != StatusSuccess {
		var zero T
		return zero, false
	}
	return o.Value, true
}

// Retain moves to pending while keeping the last successful value, so a
// refresh does not blank what is already shown.
func (o Op[T]) Retain() Op[T] {
	return Op[T]{Status: StatusPending, Value: o.Value}
}

type opJSON[T any] struct {
	Status Status  `json:"status"`
	Value  *T      `json:"value,omitempty"`
	Error  *string `json:"error,omitempty"`
}

func (o Op[T]) MarshalJSON() ([]byte, error) {
	out := opJSON[T]{Status: o.Status}
	if o.Status == "" {
		out.Status = StatusIdle
	}
	switch o.Status {
	case StatusSuccess, StatusPending:
		v := o.Value
		out.Value = &v
	case StatusFailure:
		if o.Err != nil {
			msg := o.Err.Error()
			out.Error = &msg
		}
	}
	return json.Marshal(out)
}
