package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"barangay-events/internal/models"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when input is missing or out of bounds.
// Nothing has been written when it is returned.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func collect(errs []FieldError, field string, err error) []FieldError {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return append(errs, FieldError{Field: field, Message: err.Error()})
	}
	for _, fe := range ves {
		name := field
		if name == "" {
			name = fe.Field()
		}
		errs = append(errs, FieldError{Field: name, Message: fieldMessage(fe)})
	}
	return errs
}

func (s *EventService) validateCreate(req models.EventCreate) error {
	var errs []FieldError
	if err := s.validate.Struct(req); err != nil {
		errs = collect(errs, "", err)
	}
	if req.EventDate.IsZero() {
		errs = append(errs, FieldError{Field: "event_date", Message: "field required"})
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

func (s *EventService) validateUpdate(u models.EventUpdate) error {
	var errs []FieldError

	text := func(field string, opt models.Optional[string], max int) {
		if !opt.Set {
			return
		}
		if opt.Null {
			errs = append(errs, FieldError{Field: field, Message: "may not be null"})
			return
		}
		if err := s.validate.Var(opt.Value, fmt.Sprintf("required,max=%d", max)); err != nil {
			errs = collect(errs, field, err)
		}
	}

	text("title", u.Title, 200)
	text("description", u.Description, 1000)
	text("location", u.Location, 200)
	text("organizer", u.Organizer, 100)

	if u.ContactInfo.Present() {
		if err := s.validate.Var(u.ContactInfo.Value, "max=100"); err != nil {
			errs = collect(errs, "contact_info", err)
		}
	}
	if u.EventDate.Set && (u.EventDate.Null || u.EventDate.Value.IsZero()) {
		errs = append(errs, FieldError{Field: "event_date", Message: "may not be null"})
	}
	if u.IsPublic.Set && u.IsPublic.Null {
		errs = append(errs, FieldError{Field: "is_public", Message: "may not be null"})
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
