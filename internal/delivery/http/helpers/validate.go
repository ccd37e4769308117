package helpers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Chakshu098/Everhack/internal/domain"
)

// Validator is implemented by request DTOs that support validation.
// Validate returns a slice of error messages; nil or empty means valid.
type Validator interface {
	Validate() []string
}

// DecodeAndValidate decodes the request body into dest (with DisallowUnknownFields),
// runs the struct tag validator, and, if dest implements Validator, runs
// Validate(). On failure it writes a 400 JSON error and returns false.
// Callers should return immediately when DecodeAndValidate returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return false
	}
	if err := domain.ValidateStruct(dest); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			WriteAPIError(w, http.StatusBadRequest, &APIError{Code: ErrCodeValidation, Message: "validation failed", Fields: ve.Fields})
			return false
		}
		// Non-struct destinations have nothing to validate by tag.
	}
	if v, ok := dest.(Validator); ok {
		if errs := v.Validate(); len(errs) > 0 {
			WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, strings.Join(errs, "; "))
			return false
		}
	}
	return true
}
