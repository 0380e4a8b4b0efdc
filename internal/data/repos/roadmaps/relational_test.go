package roadmaps

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yungbote/pathfinder-roadmap/internal/config"
	"github.com/yungbote/pathfinder-roadmap/internal/data/db"
	"github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap/roadmaptest"
)

func newSQLiteStore(t *testing.T) *RelationalStore {
	t.Helper()
	// One connection so every query sees the same in-memory database.
	lazy := db.NewLazy("sqlite::memory:", db.Options{MaxOpen: 1, MaxIdle: 1}, nil)
	t.Cleanup(func() { _ = lazy.Close() })
	s := NewRelationalStore(lazy, nil)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return s
}

func TestSaveAndFetch(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	r := roadmaptest.Roadmap("Data Engineer")

	if err := s.Save(ctx, r, "user-9"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Fetch(ctx, r.ID)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got.UserID != "user-9" || got.CareerGoal != "Data Engineer" || got.EstimatedWeeks != r.EstimatedWeeks {
		t.Fatalf("row=%+v", got)
	}
	if got.Roadmap == nil || len(got.Roadmap.Modules) != 6 || got.Roadmap.ID != r.ID {
		t.Fatalf("decoded roadmap=%+v", got.Roadmap)
	}
}

func TestSaveUpsertsByID(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return first }

	r := roadmaptest.Roadmap("Data Engineer")
	if err := s.Save(ctx, r, "user-1"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s.now = func() time.Time { return first.Add(time.Hour) }
	r.ProgressPercentage = 40
	r.Title = "Renamed"
	if err := s.Save(ctx, r, "user-2"); err != nil {
		t.Fatalf("Save again: %v", err)
	}

	got, err := s.Fetch(ctx, r.ID)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got.UserID != "user-2" || got.Title != "Renamed" || got.Roadmap.ProgressPercentage != 40 {
		t.Fatalf("row=%+v", got)
	}
	if !got.CreatedAt.Equal(first) || !got.UpdatedAt.Equal(first.Add(time.Hour)) {
		t.Fatalf("created=%v updated=%v", got.CreatedAt, got.UpdatedAt)
	}

	var count int64
	tx, _ := s.db.Get(ctx)
	tx.Model(&RoadmapRecord{}).Count(&count)
	if count != 1 {
		t.Fatalf("rows=%d", count)
	}
}

func TestFetchMissing(t *testing.T) {
	s := newSQLiteStore(t)
	if _, err := s.Fetch(context.Background(), "roadmap_missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v", err)
	}
}

func TestFetchUndecodableKeepsRaw(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	tx, _ := s.db.Get(ctx)
	row := RoadmapRecord{ID: "roadmap_bad", UserID: "u", SourceService: SourceService, RoadmapJSON: []byte(`{"modules":[]}`)}
	if err := tx.Create(&row).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err := s.Fetch(ctx, "roadmap_bad")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got.Roadmap != nil || string(got.Raw) != `{"modules":[]}` {
		t.Fatalf("got=%+v", got)
	}
}

func TestNewStoreSelection(t *testing.T) {
	s, closeFn, err := NewStore(context.Background(), config.DatabaseConfig{}, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if s.Configured() {
		t.Fatalf("empty url should yield NullStore")
	}
	if err := s.Save(context.Background(), roadmaptest.Roadmap("x"), "u"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err=%v", err)
	}
	_ = closeFn()

	s, closeFn, err = NewStore(context.Background(), config.DatabaseConfig{URL: "sqlite::memory:", AutoMigrate: true, MaxOpen: 1}, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer closeFn()
	if !s.Configured() {
		t.Fatalf("expected relational store")
	}
}

func TestClassify(t *testing.T) {
	if got := classify(&pgconn.PgError{Code: "42P01"}); !strings.HasPrefix(got, "undefined_table") {
		t.Fatalf("got %q", got)
	}
	if got := classify(errors.New("no such table: roadmaps")); !strings.HasPrefix(got, "undefined_table") {
		t.Fatalf("got %q", got)
	}
	if got := classify(context.DeadlineExceeded); got != "timeout" {
		t.Fatalf("got %q", got)
	}
}
