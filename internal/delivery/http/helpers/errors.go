package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Chakshu098/Everhack/internal/domain"
)

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	switch domain.ErrorCode(err) {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeConflict:
		return http.StatusConflict
	case domain.CodeTransport:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError writes err as an error envelope. Validation errors carry
// their field list. Backend and unexpected failures are logged; their detail
// is not sent to the client.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := StatusFor(err)
	apiErr := &APIError{Code: domain.ErrorCode(err), Message: err.Error()}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		apiErr.Message = "validation failed"
		apiErr.Fields = ve.Fields
	}
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		apiErr.Message = http.StatusText(status)
	}
	WriteAPIError(w, status, apiErr)
}
