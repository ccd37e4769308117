package helpers

import (
	"encoding/json"
	"net/http"

	"github.com/Chakshu098/Everhack/internal/domain"
)

// Error codes for API error responses. Use these with WriteJSONError.
const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeValidation    = domain.CodeValidation
	ErrCodeUnauthorized  = domain.CodeUnauthorized
	ErrCodeForbidden     = domain.CodeForbidden
	ErrCodeNotFound      = domain.CodeNotFound
	ErrCodeConflict      = domain.CodeConflict
	ErrCodeTransport     = domain.CodeTransport
	ErrCodeInvalidState  = "invalid_state"
	ErrCodeRateLimited   = "rate_limited"
	ErrCodePending       = "session_pending"
	ErrCodeInternalError = domain.CodeInternal
)

// APIError is the error object in the standardized API response envelope.
// Fields lists invalid input; Redirect names the destination the client
// should navigate to instead.
// swagger:model APIError
type APIError struct {
	Code     string              `json:"code"`
	Message  string              `json:"message"`
	Fields   []domain.FieldError `json:"fields,omitempty"`
	Redirect string              `json:"redirect,omitempty"`
}

// APIResponse is the standardized envelope for all API responses.
// On success: Data is set, Error is nil. On error: Data is nil, Error is set.
// swagger:model APIResponse
type APIResponse struct {
	Data  any       `json:"data"`
	Error *APIError `json:"error"`
}

// WriteJSONSuccess sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with the given data and error set to nil.
func WriteJSONSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Data: data, Error: nil})
}

// WriteJSONError sets Content-Type to application/json, writes statusCode, and
// encodes an APIResponse with data nil and the given error code and message.
func WriteJSONError(w http.ResponseWriter, statusCode int, code, message string) {
	WriteAPIError(w, statusCode, &APIError{Code: code, Message: message})
}

// WriteAPIError writes a fully populated error envelope.
func WriteAPIError(w http.ResponseWriter, statusCode int, apiErr *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Data: nil, Error: apiErr})
}
