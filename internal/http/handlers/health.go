package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pathfinder-roadmap/internal/observability"
	"github.com/yungbote/pathfinder-roadmap/internal/provider"
	"github.com/yungbote/pathfinder-roadmap/internal/services"
)

const readinessTimeout = 15 * time.Second

type HealthHandler struct {
	svc     services.RoadmapService
	version string
	started time.Time
	now     func() time.Time
}

func NewHealthHandler(svc services.RoadmapService, version string) *HealthHandler {
	now := func() time.Time { return time.Now().UTC() }
	return &HealthHandler{svc: svc, version: version, started: now(), now: now}
}

// GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    provider.StatusHealthy,
		"service":   observability.ServiceName,
		"version":   h.version,
		"timestamp": h.now().Format(time.RFC3339),
	})
}

// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.svc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": "roadmap service not initialized"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()
	hs := h.svc.Health(ctx)
	if !hs.Healthy() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"service":    observability.ServiceName,
			"timestamp":  h.now().Format(time.RFC3339),
			"ai_service": hs,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"service":   observability.ServiceName,
		"timestamp": h.now().Format(time.RFC3339),
		"dependencies": gin.H{
			"roadmap_service": gin.H{"status": "initialized"},
			"ai_service":      hs,
		},
	})
}

// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	body := gin.H{
		"service":        observability.ServiceName,
		"version":        h.version,
		"uptime_seconds": int64(h.now().Sub(h.started).Seconds()),
		"endpoints": gin.H{
			"generate_roadmap": "/api/v1/roadmaps/generate",
			"roadmap":          "/api/v1/roadmaps/:id",
			"progress":         "/api/v1/roadmaps/:id/progress",
			"providers":        "/api/v1/providers",
			"health":           "/health",
			"readiness":        "/health/ready",
			"info":             "/health/info",
		},
	}
	if h.svc == nil {
		body["status"] = "ai_service_not_initialized"
	} else {
		body["ai_provider"] = h.svc.ProviderInfo(c.Request.Context()).CurrentProvider
	}
	c.JSON(http.StatusOK, body)
}
