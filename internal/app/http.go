package app

import (
	"github.com/yungbote/pathfinder-roadmap/internal/config"
	httpserver "github.com/yungbote/pathfinder-roadmap/internal/http"
	httpH "github.com/yungbote/pathfinder-roadmap/internal/http/handlers"
	"github.com/yungbote/pathfinder-roadmap/internal/observability"
	"github.com/yungbote/pathfinder-roadmap/internal/platform/logger"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Roadmap *httpH.RoadmapHandler
}

func wireHandlers(cfg *config.Config, log *logger.Logger, svcs Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(svcs.Roadmap, cfg.Version),
		Roadmap: httpH.NewRoadmapHandler(log, svcs.Roadmap),
	}
}

func wireHTTP(cfg *config.Config, log *logger.Logger, svcs Services, metrics *observability.Metrics) *httpserver.Server {
	h := wireHandlers(cfg, log, svcs)
	return httpserver.NewServer(cfg.HTTP, httpserver.RouterConfig{
		RoadmapHandler:  h.Roadmap,
		HealthHandler:   h.Health,
		Log:             log,
		Metrics:         metrics,
		AllowedOrigins:  cfg.HTTP.AllowedOrigins,
		DefaultUserID:   cfg.HTTP.DefaultUserID,
		MaxRequestBytes: cfg.HTTP.MaxRequestBytes,
	})
}
