package provider

import (
	"context"

	"github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap"
)

// Generator is the one operation a backend must really implement.
type Generator interface {
	GenerateRoadmap(ctx context.Context, req *roadmap.Request, userID string) (*roadmap.Roadmap, error)
}

// Provider is the contract every model backend satisfies. Backends without a
// native edit operation implement UpdateRoadmap by calling DefaultUpdate.
type Provider interface {
	Generator
	Name() string
	UpdateRoadmap(ctx context.Context, existing *roadmap.Roadmap, userPrompt, userID string) (*roadmap.Roadmap, error)
	// HealthCheck never fails; problems are reported in the returned status.
	HealthCheck(ctx context.Context) HealthStatus
	ModelInfo() ModelInfo
}

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

type HealthStatus struct {
	Status         string `json:"status"`
	Provider       string `json:"provider"`
	Model          string `json:"model"`
	APIAccessible  bool   `json:"api_accessible"`
	ResponseTimeMS int64  `json:"response_time_ms,omitempty"`
	Error          string `json:"error,omitempty"`
}

func (h HealthStatus) Healthy() bool { return h.Status == StatusHealthy }

type ModelInfo struct {
	Provider           string   `json:"provider"`
	Model              string   `json:"model"`
	MaxTokens          int      `json:"max_tokens"`
	Temperature        float64  `json:"temperature"`
	Capabilities       []string `json:"capabilities"`
	SupportedLanguages []string `json:"supported_languages"`
	Endpoint           string   `json:"api_endpoint,omitempty"`
}
