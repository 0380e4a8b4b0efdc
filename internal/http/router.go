package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/pathfinder-roadmap/internal/http/handlers"
	httpMW "github.com/yungbote/pathfinder-roadmap/internal/http/middleware"
	"github.com/yungbote/pathfinder-roadmap/internal/observability"
	"github.com/yungbote/pathfinder-roadmap/internal/platform/logger"
)

type RouterConfig struct {
	RoadmapHandler *httpH.RoadmapHandler
	HealthHandler  *httpH.HealthHandler

	Log             *logger.Logger
	Metrics         *observability.Metrics
	AllowedOrigins  []string
	DefaultUserID   string
	MaxRequestBytes int64
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(observability.ServiceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.AttachUser(cfg.DefaultUserID))
	r.Use(httpMW.LimitBody(cfg.MaxRequestBytes))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
		r.GET("/health/ready", cfg.HealthHandler.Ready)
		r.GET("/health/info", cfg.HealthHandler.Info)
	}

	// Metrics
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api/v1")
	{
		if cfg.RoadmapHandler != nil {
			api.POST("/roadmaps/generate", cfg.RoadmapHandler.Generate)
			api.GET("/roadmaps/:id", cfg.RoadmapHandler.Get)
			api.PUT("/roadmaps/:id", cfg.RoadmapHandler.Update)
			api.PUT("/roadmaps/:id/progress", cfg.RoadmapHandler.UpdateProgress)
			api.GET("/providers", cfg.RoadmapHandler.Providers)
		}
	}

	return r
}
