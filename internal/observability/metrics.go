package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/pathfinder-roadmap/internal/config"
	"github.com/yungbote/pathfinder-roadmap/internal/platform/logger"
)

// Metrics is nil when metrics are disabled; every method accepts a nil receiver.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	providerCalls   *CounterVec
	providerLatency *HistogramVec
	generations     *CounterVec
	roadmapHours    *HistogramVec

	storeOps    *CounterVec
	eventsSent  *CounterVec
	redisUp     *Gauge
	redisPingMS *Gauge
}

func NewMetrics(cfg config.MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	return &Metrics{
		apiRequests: NewCounterVec("pf_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"pf_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		),
		apiInflight: NewGauge("pf_api_inflight_requests", "In-flight API requests."),
		providerCalls: NewCounterVec("pf_provider_calls_total", "Model provider calls by provider/operation/outcome.",
			[]string{"provider", "operation", "outcome"}),
		providerLatency: NewHistogramVec(
			"pf_provider_call_duration_seconds",
			"Model provider call latency in seconds.",
			[]string{"provider", "operation"},
			[]float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		),
		generations: NewCounterVec("pf_roadmap_generations_total", "Reported roadmap generations by provider/operation/success.",
			[]string{"provider", "operation", "success"}),
		roadmapHours: NewHistogramVec("pf_roadmap_total_hours", "Total estimated hours of generated roadmaps.",
			[]string{"provider"}, []float64{20, 60, 120, 180, 240, 360, 520}),
		storeOps:    NewCounterVec("pf_store_operations_total", "Roadmap store operations by op/outcome.", []string{"op", "outcome"}),
		eventsSent:  NewCounterVec("pf_events_published_total", "Generation events published by outcome.", []string{"outcome"}),
		redisUp:     NewGauge("pf_redis_up", "Redis reachability (1 up, 0 down)."),
		redisPingMS: NewGauge("pf_redis_ping_ms", "Last Redis ping latency in milliseconds."),
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.providerCalls, m.providerLatency, m.generations, m.roadmapHours,
		m.storeOps, m.eventsSent, m.redisUp, m.redisPingMS,
	}
	for _, wr := range writers {
		if err := wr.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveProviderCall records one generate or update call. outcome is "ok"
// or the provider error code.
func (m *Metrics) ObserveProviderCall(providerName, operation, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.providerCalls.Inc(providerName, operation, outcome)
	if dur > 0 {
		m.providerLatency.Observe(dur.Seconds(), providerName, operation)
	}
}

func (m *Metrics) ObserveGeneration(providerName, operation string, success bool, totalHours int) {
	if m == nil {
		return
	}
	s := "false"
	if success {
		s = "true"
	}
	m.generations.Inc(providerName, operation, s)
	if success && totalHours > 0 {
		m.roadmapHours.Observe(float64(totalHours), providerName)
	}
}

func (m *Metrics) IncStore(op, outcome string) {
	if m == nil {
		return
	}
	m.storeOps.Inc(op, outcome)
}

func (m *Metrics) IncEvent(outcome string) {
	if m == nil {
		return
	}
	m.eventsSent.Inc(outcome)
}

// StartRedisCollector pings addr on an interval and exports reachability.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, addr string, interval time.Duration) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = rdb.Close()
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPingMS.Set(float64(time.Since(start).Milliseconds()))
			}
		}
	}()
}
