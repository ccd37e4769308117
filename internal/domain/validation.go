package domain

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var eventTypeRe = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,39}$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared struct validator with the domain tags registered.
// Field names in errors use the json tag.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("event_type", func(fl validator.FieldLevel) bool {
			return eventTypeRe.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("event_status", func(fl validator.FieldLevel) bool {
			switch EventStatus(fl.Field().String()) {
			case EventStatusUpcoming, EventStatusOngoing, EventStatusCompleted, EventStatusCancelled:
				return true
			}
			return false
		})
		validate = v
	})
	return validate
}

// ValidateStruct runs the struct validator and converts failures to a *ValidationError.
func ValidateStruct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fieldPath(fe), Message: describe(fe)})
	}
	return out
}

// ValidateEventFields checks a create payload or workflow draft: required
// fields, formats, and start_date <= end_date.
func ValidateEventFields(f EventFields) error {
	var out ValidationError
	if err := ValidateStruct(f); err != nil {
		var ve *ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		out.Fields = append(out.Fields, ve.Fields...)
	}
	if strings.TrimSpace(f.Title) == "" && out.Field("title") == "" {
		out.Fields = append(out.Fields, FieldError{Field: "title", Message: "is required"})
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		out.Fields = append(out.Fields, FieldError{Field: "end_date", Message: "must not be before start_date"})
	}
	if len(out.Fields) > 0 {
		return &out
	}
	return nil
}

// ValidateEventPatch checks a patch against the event it will be applied to.
func ValidateEventPatch(current *Event, p EventPatch) error {
	var out ValidationError
	if err := ValidateStruct(p); err != nil {
		var ve *ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		out.Fields = append(out.Fields, ve.Fields...)
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" && out.Field("title") == "" {
		out.Fields = append(out.Fields, FieldError{Field: "title", Message: "is required"})
	}
	for _, c := range []struct {
		field string
		set   bool
	}{
		{FieldIsOnline, p.IsOnline != nil},
		{FieldMaxParticipants, p.MaxParticipants != nil},
	} {
		if c.set && p.Clears(c.field) {
			out.Fields = append(out.Fields, FieldError{Field: c.field, Message: "cannot be set and cleared at once"})
		}
	}
	start, end := current.StartDate, current.EndDate
	if p.StartDate != nil {
		start = *p.StartDate
	}
	if p.EndDate != nil {
		end = *p.EndDate
	}
	if end.Before(start) {
		out.Fields = append(out.Fields, FieldError{Field: "end_date", Message: "must not be before start_date"})
	}
	if len(out.Fields) > 0 {
		return &out
	}
	return nil
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		if fe.Kind() == reflect.String {
			if fe.Param() == "1" {
				return "must not be empty"
			}
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "email":
		return "must be a valid email address"
	case "event_type":
		return "must be a lowercase slug such as hackathon, ctf or workshop"
	case "event_status":
		return "must be one of upcoming, ongoing, completed, cancelled"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}
