package roadmaps

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/pathfinder-roadmap/internal/data/db"
	"github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap"
	"github.com/yungbote/pathfinder-roadmap/internal/platform/logger"
)

type RoadmapRecord struct {
	ID                    string         `gorm:"column:id;primaryKey;type:varchar(64)"`
	UserID                string         `gorm:"column:user_id;index;not null"`
	SourceService         string         `gorm:"column:source_service;not null"`
	Title                 string         `gorm:"column:title"`
	CareerGoal            string         `gorm:"column:career_goal"`
	EstimatedWeeks        int            `gorm:"column:estimated_weeks"`
	DifficultyProgression string         `gorm:"column:difficulty_progression"`
	RoadmapJSON           datatypes.JSON `gorm:"column:roadmap_json"`
	CreatedAt             time.Time      `gorm:"column:created_at;autoCreateTime:false"`
	UpdatedAt             time.Time      `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (RoadmapRecord) TableName() string { return "roadmaps" }

type RelationalStore struct {
	db  *db.Lazy
	log *logger.Logger
	now func() time.Time
}

func NewRelationalStore(lazy *db.Lazy, baseLog *logger.Logger) *RelationalStore {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &RelationalStore{
		db:  lazy,
		log: baseLog.With("repo", "RoadmapStore"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *RelationalStore) Configured() bool { return s.db.Configured() }

func (s *RelationalStore) Migrate(ctx context.Context) error {
	return s.db.AutoMigrate(ctx, &RoadmapRecord{})
}

// Save inserts the roadmap or replaces the row with the same id. created_at
// is kept from the first insert.
func (s *RelationalStore) Save(ctx context.Context, r *roadmap.Roadmap, userID string) error {
	if r == nil {
		return errors.New("nil roadmap")
	}
	tx, err := s.db.Get(ctx)
	if err != nil {
		return err
	}
	doc, err := json.Marshal(r)
	if err != nil {
		return err
	}
	now := s.now()
	row := RoadmapRecord{
		ID:                    r.ID,
		UserID:                userID,
		SourceService:         SourceService,
		Title:                 r.Title,
		CareerGoal:            r.CareerGoal,
		EstimatedWeeks:        r.EstimatedWeeks,
		DifficultyProgression: r.DifficultyProgression,
		RoadmapJSON:           datatypes.JSON(doc),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	err = tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "title", "career_goal", "estimated_weeks",
			"difficulty_progression", "roadmap_json", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		s.log.Error("failed to persist roadmap", "roadmap_id", r.ID, "user_id", userID, "error", err, "kind", classify(err))
		return err
	}
	s.log.Info("roadmap persisted", "roadmap_id", r.ID, "user_id", userID)
	return nil
}

func (s *RelationalStore) Fetch(ctx context.Context, id string) (*Fetched, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}
	tx, err := s.db.Get(ctx)
	if err != nil {
		return nil, err
	}
	var row RoadmapRecord
	if err := tx.Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		s.log.Error("failed to load roadmap", "roadmap_id", id, "error", err, "kind", classify(err))
		return nil, err
	}

	out := &Fetched{
		ID:                    row.ID,
		UserID:                row.UserID,
		Title:                 row.Title,
		CareerGoal:            row.CareerGoal,
		EstimatedWeeks:        row.EstimatedWeeks,
		DifficultyProgression: row.DifficultyProgression,
		Raw:                   json.RawMessage(row.RoadmapJSON),
		CreatedAt:             row.CreatedAt,
		UpdatedAt:             row.UpdatedAt,
	}
	if r, err := roadmap.Decode(row.RoadmapJSON); err != nil {
		s.log.Warn("stored roadmap does not decode", "roadmap_id", id, "error", err)
	} else {
		out.Roadmap = r
	}
	return out, nil
}

// classify names the failure for logs.
func classify(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "42P01":
			return "undefined_table: create the roadmaps table or enable database.auto_migrate"
		case "23505":
			return "unique_violation"
		case "23502":
			return "not_null_violation"
		case "40001", "40P01", "55P03":
			return "retryable"
		case "28P01", "28000":
			return "auth_failed"
		}
		return "postgres_" + pgErr.Code
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, db.ErrNoDSN):
		return "not_configured"
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "no such table") {
		return "undefined_table: create the roadmaps table or enable database.auto_migrate"
	}
	return "internal"
}
