package app

import (
	"context"
	"fmt"

	"github.com/yungbote/pathfinder-roadmap/internal/config"
	"github.com/yungbote/pathfinder-roadmap/internal/data/repos/roadmaps"
	"github.com/yungbote/pathfinder-roadmap/internal/observability"
	"github.com/yungbote/pathfinder-roadmap/internal/platform/logger"
	"github.com/yungbote/pathfinder-roadmap/internal/provider"
	"github.com/yungbote/pathfinder-roadmap/internal/provider/factory"
	"github.com/yungbote/pathfinder-roadmap/internal/services"
)

type Services struct {
	Provider provider.Provider
	Events   observability.EventPublisher
	Roadmap  services.RoadmapService
}

func wireServices(ctx context.Context, cfg *config.Config, log *logger.Logger, store roadmaps.Store, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...", "ai_provider", cfg.AI.Provider)
	p, err := factory.New(cfg.AI.Provider, cfg.AI, log)
	if err != nil {
		return Services{}, fmt.Errorf("init ai provider: %w", err)
	}

	events, err := observability.NewEventPublisher(ctx, cfg.Redis, log)
	if err != nil {
		// Analytics events are optional; generation keeps working without them.
		log.Warn("redis event publisher unavailable, events disabled", "error", err)
		events = observability.NullPublisher{}
	}

	return Services{
		Provider: p,
		Events:   events,
		Roadmap:  services.NewRoadmapService(log, p, store, events, metrics),
	}, nil
}
