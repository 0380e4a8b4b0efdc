package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/pathfinder-roadmap/internal/config"
	"github.com/yungbote/pathfinder-roadmap/internal/platform/logger"
)

// GenerationEvent is the payload published after each generate or update.
type GenerationEvent struct {
	Type           string    `json:"type"`
	UserID         string    `json:"user_id"`
	RoadmapID      string    `json:"roadmap_id,omitempty"`
	Provider       string    `json:"provider"`
	GenerationTime float64   `json:"generation_time_seconds"`
	Success        bool      `json:"success"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, ev GenerationEvent) error
	Close() error
}

type NullPublisher struct{}

func (NullPublisher) Publish(context.Context, GenerationEvent) error { return nil }
func (NullPublisher) Close() error                                   { return nil }

type redisPublisher struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewEventPublisher connects to Redis when an address is configured and
// falls back to NullPublisher otherwise. A configured but unreachable Redis is an error.
func NewEventPublisher(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (EventPublisher, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return NullPublisher{}, nil
	}
	if log == nil {
		log = logger.Nop()
	}
	ch := strings.TrimSpace(cfg.Channel)
	if ch == "" {
		ch = "roadmap-events"
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return newRedisPublisher(rdb, ch, log), nil
}

func newRedisPublisher(rdb *goredis.Client, channel string, log *logger.Logger) *redisPublisher {
	return &redisPublisher{log: log.With("service", "RedisEventPublisher"), rdb: rdb, channel: channel}
}

func (p *redisPublisher) Publish(ctx context.Context, ev GenerationEvent) error {
	if p == nil || p.rdb == nil {
		return fmt.Errorf("redis event publisher not initialized")
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.channel, raw).Err()
}

func (p *redisPublisher) Close() error {
	if p == nil || p.rdb == nil {
		return nil
	}
	return p.rdb.Close()
}
