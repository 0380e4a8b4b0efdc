package app

import (
	"context"
	"fmt"

	"github.com/yungbote/pathfinder-roadmap/internal/config"
	"github.com/yungbote/pathfinder-roadmap/internal/data/repos/roadmaps"
	"github.com/yungbote/pathfinder-roadmap/internal/platform/logger"
)

func wireStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (roadmaps.Store, func() error, error) {
	log.Info("Wiring roadmap store...")
	store, closeFn, err := roadmaps.NewStore(ctx, cfg.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("init roadmap store: %w", err)
	}
	return store, closeFn, nil
}
