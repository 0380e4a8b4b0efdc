package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap"
	"github.com/yungbote/pathfinder-roadmap/internal/http/middleware"
	"github.com/yungbote/pathfinder-roadmap/internal/http/response"
	"github.com/yungbote/pathfinder-roadmap/internal/platform/logger"
	"github.com/yungbote/pathfinder-roadmap/internal/services"
)

const (
	codeInvalidRequest = "INVALID_REQUEST"
	updateGoalRunes    = 50
)

type RoadmapHandler struct {
	log *logger.Logger
	svc services.RoadmapService

	// async runs post-response work such as metrics logging.
	async func(func())
}

func NewRoadmapHandler(log *logger.Logger, svc services.RoadmapService) *RoadmapHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &RoadmapHandler{
		log:   log.With("handler", "RoadmapHandler"),
		svc:   svc,
		async: func(f func()) { go f() },
	}
}

// POST /api/v1/roadmaps/generate
func (h *RoadmapHandler) Generate(c *gin.Context) {
	var req roadmap.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, codeInvalidRequest, err)
		return
	}
	userID := middleware.UserID(c)
	res, err := h.svc.GenerateRoadmap(c.Request.Context(), &req, userID)
	if err != nil {
		response.RespondFailure(c, "Failed to generate roadmap", err)
		return
	}
	response.RespondOK(c, res)
	h.logMetrics(c.Request.Context(), "generate", userID, req.UserGoal, res)
}

// GET /api/v1/roadmaps/:id
func (h *RoadmapHandler) Get(c *gin.Context) {
	l := h.svc.GetRoadmap(c.Request.Context(), c.Param("id"))
	c.JSON(lookupStatus(l), l)
}

// PUT /api/v1/roadmaps/:id
func (h *RoadmapHandler) Update(c *gin.Context) {
	var upd roadmap.UpdateRequest
	if err := c.ShouldBindJSON(&upd); err != nil {
		response.RespondError(c, http.StatusBadRequest, codeInvalidRequest, err)
		return
	}
	id := c.Param("id")
	ctx := c.Request.Context()
	if upd.ExistingRoadmap == nil {
		if l := h.svc.GetRoadmap(ctx, id); l.OK() && l.Roadmap != nil {
			upd.ExistingRoadmap = l.Roadmap
		}
	}
	userID := middleware.UserID(c)
	res, err := h.svc.UpdateRoadmap(ctx, id, &upd, userID)
	if err != nil {
		response.RespondFailure(c, "Failed to update roadmap", err)
		return
	}
	response.RespondOK(c, res)
	h.logMetrics(ctx, "update", userID, "Update: "+truncate(upd.UserPrompt, updateGoalRunes), res)
}

// PUT /api/v1/roadmaps/:id/progress
func (h *RoadmapHandler) UpdateProgress(c *gin.Context) {
	var p roadmap.ProgressUpdate
	if err := c.ShouldBindJSON(&p); err != nil {
		response.RespondError(c, http.StatusBadRequest, codeInvalidRequest, err)
		return
	}
	l, err := h.svc.UpdateProgress(c.Request.Context(), c.Param("id"), p)
	if err != nil {
		response.RespondFailure(c, "Failed to update roadmap progress", err)
		return
	}
	c.JSON(lookupStatus(l), l)
}

// GET /api/v1/providers
func (h *RoadmapHandler) Providers(c *gin.Context) {
	response.RespondOK(c, h.svc.ProviderInfo(c.Request.Context()))
}

func (h *RoadmapHandler) logMetrics(ctx context.Context, op, userID, goal string, res *roadmap.Response) {
	m := services.GenerationMetrics{
		UserID:         userID,
		Goal:           goal,
		Operation:      op,
		GenerationTime: generationTime(res.Metadata),
		Success:        true,
	}
	if p, ok := res.Metadata["ai_provider"].(string); ok {
		m.Provider = p
	}
	if res.Roadmap != nil {
		m.RoadmapID = res.Roadmap.ID
		m.TotalHours = res.Roadmap.TotalHours()
	}
	ctx = context.WithoutCancel(ctx)
	h.async(func() { h.svc.LogGenerationMetrics(ctx, m) })
}

func lookupStatus(l services.Lookup) int {
	switch l.Status {
	case services.LookupOK:
		return http.StatusOK
	case services.LookupNotFound:
		return http.StatusNotFound
	case services.LookupNotConfigured:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// generationTime parses the "1.23s" metadata value; anything else is zero.
func generationTime(meta map[string]any) time.Duration {
	s, _ := meta["generation_time"].(string)
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "s"), 64)
	if err != nil {
		return 0
	}
	return time.Duration(f * float64(time.Second))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
