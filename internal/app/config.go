package app

import (
	"github.com/yungbote/pathfinder-roadmap/internal/config"
	"github.com/yungbote/pathfinder-roadmap/internal/platform/logger"
)

func newLogger(cfg *config.Config, stdio bool) (*logger.Logger, error) {
	mode := "development"
	if cfg.IsProduction() {
		mode = "production"
	}
	return logger.NewWithOptions(logger.Options{
		Mode:   mode,
		Level:  cfg.LogLevel,
		Stderr: stdio,
	})
}
