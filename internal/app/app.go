package app

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/pathfinder-roadmap/internal/config"
	"github.com/yungbote/pathfinder-roadmap/internal/mcp"
	"github.com/yungbote/pathfinder-roadmap/internal/observability"
	"github.com/yungbote/pathfinder-roadmap/internal/platform/logger"
	"github.com/yungbote/pathfinder-roadmap/internal/services"
)

// Options control how New builds the process. The zero value serves HTTP
// with the configuration from the environment.
type Options struct {
	// Config overrides config.Load when set.
	Config *config.Config
	// Stdio routes logs to stderr and skips the HTTP-only collaborators.
	Stdio bool
	// Provider overrides cfg.AI.Provider.
	Provider string
}

type App struct {
	Log      *logger.Logger
	Cfg      *config.Config
	Metrics  *observability.Metrics
	Services Services

	closers []func(context.Context) error
}

func New(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if opts.Provider != "" {
		cfg.AI.Provider = opts.Provider
	}

	log, err := newLogger(cfg, opts.Stdio)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &App{Log: log, Cfg: cfg}

	if opts.Stdio && cfg.Tracing.Endpoint == "" {
		// stdout belongs to the MCP transport; the stdout exporter would corrupt it.
		cfg.Tracing.Enabled = false
	}
	log.Info("Initializing tracing...")
	a.onClose(observability.InitOTel(ctx, log, cfg))

	a.Metrics = observability.NewMetrics(cfg.Metrics)

	store, closeStore, err := wireStore(ctx, cfg, log)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.onClose(func(context.Context) error { return closeStore() })

	svcs, err := wireServices(ctx, cfg, log, store, a.Metrics)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.onClose(func(context.Context) error { return svcs.Events.Close() })
	a.Services = svcs
	return a, nil
}

func (a *App) onClose(f func(context.Context) error) {
	a.closers = append(a.closers, f)
}

// ServeHTTP runs the API server (plus the standalone metrics listener and
// Redis collector when configured) until ctx is cancelled.
func (a *App) ServeHTTP(ctx context.Context) error {
	if a == nil || a.Services.Roadmap == nil {
		return errors.New("app not initialized")
	}
	srv := wireHTTP(a.Cfg, a.Log, a.Services, a.Metrics)

	g, gctx := errgroup.WithContext(ctx)
	a.Metrics.StartServer(gctx, a.Log, a.Cfg.Metrics.Addr)
	a.Metrics.StartRedisCollector(gctx, a.Log, a.Cfg.Redis.Addr, 0)
	g.Go(func() error { return srv.Run(gctx) })
	return g.Wait()
}

// ServeMCP serves the MCP tools over stdio until stdin closes or ctx is cancelled.
func (a *App) ServeMCP(ctx context.Context) error {
	if a == nil || a.Services.Roadmap == nil {
		return errors.New("app not initialized")
	}
	a.Log.Info("MCP server starting", "provider", a.Services.Roadmap.ProviderName())
	s := mcp.New(a.Services.Roadmap, a.Cfg.Version, a.Log)
	return mcp.ServeStdio(ctx, s, a.Log)
}

func (a *App) Roadmaps() services.RoadmapService { return a.Services.Roadmap }

// Close runs the registered closers in reverse order and flushes the logger.
func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.Log.Warn("shutdown step failed", "error", err)
		}
	}
	a.closers = nil
	a.Log.Sync()
}
