package roadmaps

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/yungbote/pathfinder-roadmap/internal/config"
	"github.com/yungbote/pathfinder-roadmap/internal/data/db"
	"github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap"
	"github.com/yungbote/pathfinder-roadmap/internal/platform/logger"
)

const SourceService = "ai-roadmap-service"

var (
	ErrNotFound      = errors.New("roadmap not found")
	ErrNotConfigured = errors.New("roadmap store not configured")
)

// Store persists generated roadmaps. Save failures are reported to the caller,
// which decides whether they matter.
type Store interface {
	Save(ctx context.Context, r *roadmap.Roadmap, userID string) error
	Fetch(ctx context.Context, id string) (*Fetched, error)
	Configured() bool
}

// Fetched is one stored row. Roadmap is nil when the stored JSON no longer
// satisfies the schema; Raw always holds what was stored.
type Fetched struct {
	ID                    string           `json:"roadmap_id"`
	UserID                string           `json:"user_id"`
	Title                 string           `json:"title"`
	CareerGoal            string           `json:"career_goal"`
	EstimatedWeeks        int              `json:"estimated_weeks"`
	DifficultyProgression string           `json:"difficulty_progression"`
	Roadmap               *roadmap.Roadmap `json:"-"`
	Raw                   json.RawMessage  `json:"roadmap"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// NullStore is used when no database is configured.
type NullStore struct{}

func (NullStore) Save(context.Context, *roadmap.Roadmap, string) error { return ErrNotConfigured }
func (NullStore) Fetch(context.Context, string) (*Fetched, error)      { return nil, ErrNotConfigured }
func (NullStore) Configured() bool                                     { return false }

// NewStore returns a RelationalStore when a database URL is set, NullStore otherwise.
// The connection itself is opened on first use.
func NewStore(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (Store, func() error, error) {
	if log == nil {
		log = logger.Nop()
	}
	lazy := db.NewLazy(cfg.URL, db.Options{MaxOpen: cfg.MaxOpen, MaxIdle: cfg.MaxIdle}, log)
	if !lazy.Configured() {
		log.Info("database url not set, roadmap persistence disabled")
		return NullStore{}, func() error { return nil }, nil
	}
	store := NewRelationalStore(lazy, log)
	if cfg.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			_ = lazy.Close()
			return nil, nil, err
		}
	}
	return store, lazy.Close, nil
}
