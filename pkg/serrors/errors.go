package serrors

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Base is an error with a stable machine-readable code alongside the
// human-readable message. Services wrap these into transport-level
// responses without string matching.
type Base struct {
	Code    string
	Message string
}

func NewError(code, message string) *Base {
	return &Base{Code: code, Message: message}
}

func (e *Base) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ValidationErrors maps a field name to the message shown next to it.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for field, msg := range v {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// ProcessValidatorErrors flattens go-playground validator errors into a
// field -> message map suitable for form rendering.
func ProcessValidatorErrors(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for _, err := range errs {
		switch err.Tag() {
		case "required":
			out[err.Field()] = fmt.Sprintf("%s is required", err.Field())
		case "max":
			out[err.Field()] = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "min":
			out[err.Field()] = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "email":
			out[err.Field()] = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "oneof":
			out[err.Field()] = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		default:
			out[err.Field()] = fmt.Sprintf("%s is invalid", err.Field())
		}
	}
	return out
}
