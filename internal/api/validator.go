package api

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/autoops-ai/backend/internal/models"
)

// RequestValidator wraps go-playground/validator and turns the first field
// failure into a VALIDATION_ERROR. It satisfies echo.Validator.
type RequestValidator struct {
	validator *validator.Validate
}

// NewRequestValidator creates a validator that reports JSON field paths
// (files[0].name) and knows the document_status rule.
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("document_status", documentStatusValidator)
	return &RequestValidator{validator: v}
}

// Validate implements echo.Validator.
func (rv *RequestValidator) Validate(i any) error {
	return toAPIError(rv.validator.Struct(i))
}

// Var validates a single value against a tag, reporting it as field.
func (rv *RequestValidator) Var(field string, value any, tag string) error {
	if err := rv.validator.Var(value, tag); err != nil {
		return NewValidationError(field)
	}
	return nil
}

func documentStatusValidator(fl validator.FieldLevel) bool {
	switch models.DocumentStatus(fl.Field().String()) {
	case models.DocumentStatusProcessing, models.DocumentStatusCompleted, models.DocumentStatusError:
		return true
	}
	return false
}

func toAPIError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		// Namespace is "<struct>.files[0].name"; drop the struct name.
		_, field, _ := strings.Cut(fieldErrs[0].Namespace(), ".")
		return NewValidationError(field)
	}
	return NewBadRequestError("invalid request", err)
}
