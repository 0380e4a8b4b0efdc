package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap"
	"github.com/yungbote/pathfinder-roadmap/internal/platform/apierr"
	"github.com/yungbote/pathfinder-roadmap/internal/provider"
)

type APIError struct {
	Message  string `json:"message"`
	Code     string `json:"code,omitempty"`
	Provider string `json:"provider,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	RespondAPIError(c, apierr.New(status, code, err))
}

func RespondAPIError(c *gin.Context, e *apierr.Error) {
	body := APIError{Message: e.Error(), Code: e.Code, Provider: e.Provider}
	if e.Message != "" && e.Err != nil {
		body.Message = e.Message
		body.Detail = e.Err.Error()
	}
	if e.Err == nil && e.Message == "" {
		body.Message = "unknown error"
	}
	c.JSON(e.Status, ErrorEnvelope{Error: body})
}

// Classify maps a service error onto a status and code. summary is the
// operator-facing message used for provider failures, e.g. "Failed to
// generate roadmap".
func Classify(summary string, err error) *apierr.Error {
	if pe, ok := provider.AsError(err); ok {
		return &apierr.Error{
			Status:   http.StatusInternalServerError,
			Code:     pe.Code,
			Message:  summary,
			Provider: pe.Provider,
			Err:      errors.New(pe.Message),
		}
	}
	var ve *roadmap.ValidationError
	if errors.As(err, &ve) {
		return apierr.New(http.StatusBadRequest, roadmap.ValidationErrorCode, ve)
	}
	return &apierr.Error{
		Status:  http.StatusInternalServerError,
		Code:    provider.CodeUnexpected,
		Message: "Internal server error",
	}
}

func RespondFailure(c *gin.Context, summary string, err error) {
	_ = c.Error(err)
	RespondAPIError(c, Classify(summary, err))
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
