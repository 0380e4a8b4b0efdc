package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/pathfinder-roadmap/internal/data/repos/roadmaps"
	"github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap"
	"github.com/yungbote/pathfinder-roadmap/internal/observability"
	"github.com/yungbote/pathfinder-roadmap/internal/platform/logger"
	"github.com/yungbote/pathfinder-roadmap/internal/provider"
	"github.com/yungbote/pathfinder-roadmap/internal/provider/factory"
)

const (
	LookupOK            = "ok"
	LookupNotFound      = "not_found"
	LookupNotConfigured = "not_configured"
	LookupError         = "error"

	promptPreviewRunes  = 100
	eventPublishTimeout = 2 * time.Second
)

type RoadmapService interface {
	GenerateRoadmap(ctx context.Context, req *roadmap.Request, userID string) (*roadmap.Response, error)
	UpdateRoadmap(ctx context.Context, roadmapID string, upd *roadmap.UpdateRequest, userID string) (*roadmap.Response, error)
	GetRoadmap(ctx context.Context, roadmapID string) Lookup
	UpdateProgress(ctx context.Context, roadmapID string, p roadmap.ProgressUpdate) (Lookup, error)
	ProviderInfo(ctx context.Context) ProviderInfo
	LogGenerationMetrics(ctx context.Context, m GenerationMetrics)
	Health(ctx context.Context) provider.HealthStatus
	ProviderName() string
}

// Lookup is the result of reading the optional store. It never carries an
// error; Status says what happened.
type Lookup struct {
	Status    string `json:"status"`
	RoadmapID string `json:"roadmap_id"`
	Message   string `json:"message,omitempty"`
	*roadmaps.Fetched
}

func (l Lookup) OK() bool { return l.Status == LookupOK }

type CurrentProvider struct {
	Name         string   `json:"name"`
	Model        string   `json:"model"`
	Capabilities []string `json:"capabilities"`
}

type ProviderInfo struct {
	CurrentProvider    CurrentProvider          `json:"current_provider"`
	AvailableProviders []factory.CatalogueEntry `json:"available_providers"`
}

type GenerationMetrics struct {
	UserID         string
	Goal           string
	RoadmapID      string
	Provider       string
	Operation      string
	GenerationTime time.Duration
	TotalHours     int
	Success        bool
	Error          string
}

type roadmapService struct {
	log      *logger.Logger
	provider provider.Provider
	store    roadmaps.Store
	events   observability.EventPublisher
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewRoadmapService(
	log *logger.Logger,
	p provider.Provider,
	store roadmaps.Store,
	events observability.EventPublisher,
	metrics *observability.Metrics,
) RoadmapService {
	if log == nil {
		log = logger.Nop()
	}
	if store == nil {
		store = roadmaps.NullStore{}
	}
	if events == nil {
		events = observability.NullPublisher{}
	}
	return &roadmapService{
		log:      log.With("service", "RoadmapService"),
		provider: p,
		store:    store,
		events:   events,
		metrics:  metrics,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *roadmapService) ProviderName() string { return s.provider.Name() }

func (s *roadmapService) GenerateRoadmap(ctx context.Context, req *roadmap.Request, userID string) (*roadmap.Response, error) {
	ctx, span := otel.Tracer("pathfinder/services").Start(ctx, "RoadmapService.GenerateRoadmap")
	defer span.End()

	if req == nil {
		return nil, roadmap.NewValidationError("request", "request is required")
	}
	req.Normalize()
	s.log.Info("starting roadmap generation",
		"user_id", userID,
		"goal", req.UserGoal,
		"experience_level", string(req.ExperienceLevel),
		"skills_count", len(req.UserSkills),
	)

	start := time.Now()
	r, err := s.provider.GenerateRoadmap(ctx, req, userID)
	elapsed := time.Since(start)
	s.metrics.ObserveProviderCall(s.provider.Name(), "generate", outcome(err), elapsed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome(err))
		return nil, s.fail("generation", err, "user_id", userID)
	}

	info := s.provider.ModelInfo()
	s.persist(ctx, r, userID)
	s.log.Info("roadmap generated",
		"user_id", userID,
		"roadmap_id", r.ID,
		"generation_time_seconds", round2(elapsed.Seconds()),
		"provider", info.Provider,
		"model", info.Model,
	)
	span.SetAttributes(attribute.String("roadmap.id", r.ID), attribute.Int("roadmap.total_hours", r.TotalHours()))
	return &roadmap.Response{Success: true, Roadmap: r, Metadata: s.metadata(r, elapsed, info)}, nil
}

func (s *roadmapService) UpdateRoadmap(ctx context.Context, roadmapID string, upd *roadmap.UpdateRequest, userID string) (*roadmap.Response, error) {
	ctx, span := otel.Tracer("pathfinder/services").Start(ctx, "RoadmapService.UpdateRoadmap")
	defer span.End()

	if err := upd.Validate(); err != nil {
		return nil, err
	}
	if upd.ExistingRoadmap == nil {
		s.log.Warn("update requested without existing roadmap", "roadmap_id", roadmapID)
		return nil, roadmap.NewValidationError("", "roadmap %s not found, provide existing_roadmap in the request", roadmapID)
	}
	preview := truncateRunes(upd.UserPrompt, promptPreviewRunes)
	s.log.Info("starting roadmap update", "user_id", userID, "roadmap_id", roadmapID, "user_prompt", preview)

	start := time.Now()
	r, err := s.provider.UpdateRoadmap(ctx, upd.ExistingRoadmap, upd.UserPrompt, userID)
	elapsed := time.Since(start)
	s.metrics.ObserveProviderCall(s.provider.Name(), "update", outcome(err), elapsed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome(err))
		return nil, s.fail("update", err, "user_id", userID, "roadmap_id", roadmapID)
	}

	now := s.now()
	r.ID = roadmapID
	r.UserID = userID
	r.UpdatedAt = &now

	info := s.provider.ModelInfo()
	s.persist(ctx, r, userID)
	s.log.Info("roadmap updated",
		"user_id", userID,
		"roadmap_id", roadmapID,
		"update_time_seconds", round2(elapsed.Seconds()),
		"provider", info.Provider,
		"model", info.Model,
	)
	meta := s.metadata(r, elapsed, info)
	meta["update_type"] = "modification"
	meta["modification_prompt"] = preview
	return &roadmap.Response{Success: true, Roadmap: r, Metadata: meta}, nil
}

func (s *roadmapService) GetRoadmap(ctx context.Context, roadmapID string) Lookup {
	s.log.Info("get roadmap requested", "roadmap_id", roadmapID)
	if !s.store.Configured() {
		s.log.Warn("roadmap retrieval requested but no database is configured", "roadmap_id", roadmapID)
		return Lookup{Status: LookupNotConfigured, RoadmapID: roadmapID, Message: "roadmap retrieval requires a database configuration"}
	}
	f, err := s.store.Fetch(ctx, roadmapID)
	switch {
	case errors.Is(err, roadmaps.ErrNotFound):
		s.metrics.IncStore("fetch", "not_found")
		return Lookup{Status: LookupNotFound, RoadmapID: roadmapID, Message: "roadmap not found"}
	case errors.Is(err, roadmaps.ErrNotConfigured):
		return Lookup{Status: LookupNotConfigured, RoadmapID: roadmapID, Message: "roadmap retrieval requires a database configuration"}
	case err != nil:
		s.metrics.IncStore("fetch", "error")
		s.log.Error("database error while retrieving roadmap", "roadmap_id", roadmapID, "error", err)
		return Lookup{Status: LookupError, RoadmapID: roadmapID, Message: "failed to retrieve roadmap from database"}
	}
	s.metrics.IncStore("fetch", "ok")
	return Lookup{Status: LookupOK, RoadmapID: f.ID, Fetched: f}
}

func (s *roadmapService) UpdateProgress(ctx context.Context, roadmapID string, p roadmap.ProgressUpdate) (Lookup, error) {
	if err := p.Validate(); err != nil {
		return Lookup{}, err
	}
	l := s.GetRoadmap(ctx, roadmapID)
	if !l.OK() {
		return l, nil
	}
	if l.Roadmap == nil {
		return Lookup{Status: LookupError, RoadmapID: roadmapID, Message: "stored roadmap is not valid and cannot be updated"}, nil
	}

	r := l.Roadmap
	p.Apply(r)
	now := s.now()
	r.UpdatedAt = &now
	if err := r.Validate(); err != nil {
		return Lookup{}, err
	}
	if err := s.store.Save(ctx, r, l.UserID); err != nil {
		s.metrics.IncStore("save", "error")
		s.log.Error("failed to save roadmap progress", "roadmap_id", roadmapID, "error", err)
		return Lookup{Status: LookupError, RoadmapID: roadmapID, Message: "failed to save roadmap progress"}, nil
	}
	s.metrics.IncStore("save", "ok")
	s.log.Info("roadmap progress updated",
		"roadmap_id", roadmapID,
		"current_module", r.CurrentModule,
		"progress_percentage", r.ProgressPercentage,
	)

	raw, err := json.Marshal(r)
	if err == nil {
		l.Raw = raw
	}
	l.UpdatedAt = now
	return l, nil
}

func (s *roadmapService) ProviderInfo(ctx context.Context) ProviderInfo {
	info := s.provider.ModelInfo()
	caps := info.Capabilities
	if caps == nil {
		caps = []string{}
	}
	return ProviderInfo{
		CurrentProvider:    CurrentProvider{Name: info.Provider, Model: info.Model, Capabilities: caps},
		AvailableProviders: factory.Catalogue(),
	}
}

// LogGenerationMetrics records one generation for analytics. It never fails
// and never panics; publish errors are logged.
func (s *roadmapService) LogGenerationMetrics(ctx context.Context, m GenerationMetrics) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("failed to log generation metrics", "panic", fmt.Sprint(r))
		}
	}()
	if m.Provider == "" {
		m.Provider = s.provider.Name()
	}
	if m.Operation == "" {
		m.Operation = "generate"
	}
	s.log.Info("roadmap generation metrics",
		"user_id", m.UserID,
		"career_goal", m.Goal,
		"roadmap_id", m.RoadmapID,
		"generation_time_seconds", round2(m.GenerationTime.Seconds()),
		"ai_provider", m.Provider,
		"success", m.Success,
		"event_type", "roadmap_"+m.Operation+"d",
	)
	s.metrics.ObserveGeneration(m.Provider, m.Operation, m.Success, m.TotalHours)

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	defer cancel()
	err := s.events.Publish(pubCtx, observability.GenerationEvent{
		Type:           "roadmap_" + m.Operation + "d",
		UserID:         m.UserID,
		RoadmapID:      m.RoadmapID,
		Provider:       m.Provider,
		GenerationTime: round2(m.GenerationTime.Seconds()),
		Success:        m.Success,
		ErrorMessage:   m.Error,
		OccurredAt:     s.now(),
	})
	if err != nil {
		s.metrics.IncEvent("error")
		s.log.Warn("failed to publish generation event", "error", err)
		return
	}
	s.metrics.IncEvent("ok")
}

func (s *roadmapService) Health(ctx context.Context) provider.HealthStatus {
	return s.provider.HealthCheck(ctx)
}

// persist never fails the caller.
func (s *roadmapService) persist(ctx context.Context, r *roadmap.Roadmap, userID string) {
	if !s.store.Configured() {
		s.log.Debug("skipping roadmap persistence, no database configured", "roadmap_id", r.ID)
		return
	}
	if err := s.store.Save(ctx, r, userID); err != nil {
		s.metrics.IncStore("save", "error")
		s.log.Error("failed to persist roadmap", "roadmap_id", r.ID, "user_id", userID, "error", err)
		return
	}
	s.metrics.IncStore("save", "ok")
}

func (s *roadmapService) metadata(r *roadmap.Roadmap, elapsed time.Duration, info provider.ModelInfo) map[string]any {
	now := s.now()
	return map[string]any{
		"generation_time":       fmt.Sprintf("%.2fs", elapsed.Seconds()),
		"ai_provider":           info.Provider,
		"ai_model":              info.Model,
		"request_timestamp":     float64(now.UnixNano()) / 1e9,
		"modules_count":         len(r.Modules),
		"total_estimated_hours": r.TotalHours(),
	}
}

// fail passes provider and validation errors through and wraps anything else
// as UNEXPECTED_ERROR.
func (s *roadmapService) fail(op string, err error, kv ...any) error {
	if pe, ok := provider.AsError(err); ok {
		s.log.Error("AI provider error during roadmap "+op,
			append(kv, "error", pe.Message, "provider", pe.Provider, "error_code", pe.Code)...)
		return err
	}
	if roadmap.IsValidation(err) {
		s.log.Warn("validation failed during roadmap "+op, append(kv, "error", err)...)
		return err
	}
	s.log.Error("unexpected error during roadmap "+op, append(kv, "error", err)...)
	return provider.NewError(s.provider.Name(), provider.CodeUnexpected,
		fmt.Sprintf("unexpected error during roadmap %s: %v", op, err), err)
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if code := provider.CodeOf(err); code != "" {
		return code
	}
	if roadmap.IsValidation(err) {
		return roadmap.ValidationErrorCode
	}
	return provider.CodeUnexpected
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func round2(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}
