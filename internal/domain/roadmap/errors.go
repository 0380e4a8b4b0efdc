package roadmap

import (
	"errors"
	"fmt"
)

const ValidationErrorCode = "VALIDATION_ERROR"

// ValidationError reports a malformed request or a violated schema invariant.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "validation error"
	}
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Code() string { return ValidationErrorCode }

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NewValidationError is used by callers outside the schema (e.g. a missing roadmap on update).
func NewValidationError(field, format string, args ...any) *ValidationError {
	return invalid(field, format, args...)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
