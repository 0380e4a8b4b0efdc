package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap"
	"github.com/yungbote/pathfinder-roadmap/internal/provider"
)

func TestRespondFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ve := roadmap.NewValidationError("user_goal", "career goal cannot be empty")
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantProv   string
	}{
		{"validation", ve, http.StatusBadRequest, roadmap.ValidationErrorCode, ""},
		{"wrapped validation", fmt.Errorf("bind: %w", ve), http.StatusBadRequest, roadmap.ValidationErrorCode, ""},
		{"provider", provider.Errorf("google", provider.CodeSafetyBlocked, "blocked"), http.StatusInternalServerError, provider.CodeSafetyBlocked, "google"},
		{"provider wrapping validation", provider.NewError("openai", provider.CodeGeneration, "bad output", ve), http.StatusInternalServerError, provider.CodeGeneration, "openai"},
		{"other", errors.New("boom"), http.StatusInternalServerError, provider.CodeUnexpected, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			RespondFailure(c, "Failed to generate roadmap", tt.err)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status=%d want %d", rec.Code, tt.wantStatus)
			}
			var env ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Error.Code != tt.wantCode || env.Error.Provider != tt.wantProv {
				t.Fatalf("envelope=%+v", env.Error)
			}
		})
	}
}
