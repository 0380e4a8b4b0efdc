package provider

import (
	"errors"
	"fmt"
)

const (
	CodeUnsupportedProvider = "UNSUPPORTED_PROVIDER"
	CodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	CodeInitialization      = "INITIALIZATION_ERROR"
	CodeSafetyFilter        = "SAFETY_FILTER"
	CodeSafetyBlocked       = "SAFETY_BLOCKED"
	CodeMaxTokensExceeded   = "MAX_TOKENS_EXCEEDED"
	CodeNoContent           = "NO_CONTENT"
	CodeParse               = "PARSE_ERROR"
	CodeTruncatedResponse   = "TRUNCATED_RESPONSE"
	CodeGeneration          = "GENERATION_ERROR"
	CodeUnexpected          = "UNEXPECTED_ERROR"
)

// Error is the single failure type that leaves a provider or the orchestration layer.
type Error struct {
	Message  string
	Provider string
	Code     string
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return "provider error"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s [%s/%s]: %v", e.Message, e.Provider, e.Code, e.Err)
	}
	return fmt.Sprintf("%s [%s/%s]", e.Message, e.Provider, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(providerName, code, message string, cause error) *Error {
	return &Error{Message: message, Provider: providerName, Code: code, Err: cause}
}

func Errorf(providerName, code, format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...), Provider: providerName, Code: code}
}

func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// CodeOf returns the provider error code, or "" for anything else.
func CodeOf(err error) string {
	if pe, ok := AsError(err); ok {
		return pe.Code
	}
	return ""
}
