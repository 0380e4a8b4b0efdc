package roadmap

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ModuleCount           = 6
	MinResourcesPerModule = 2
	HoursPerWeek          = 10
	WeeksTolerance        = 4
	MaxWeeks              = 104
	MinSkillScore         = 1
	MaxSkillScore         = 10

	DefaultDifficultyProgression = "beginner -> intermediate -> advanced"
)

type SkillAssessment struct {
	Skill string          `json:"skill"`
	Score int             `json:"score"`
	Level DifficultyLevel `json:"level"`
}

func (s SkillAssessment) Validate() error {
	if strings.TrimSpace(s.Skill) == "" {
		return invalid("skill", "skill name is required")
	}
	if s.Score < MinSkillScore || s.Score > MaxSkillScore {
		return invalid("score", "score for %q must be between %d and %d (got %d)", s.Skill, MinSkillScore, MaxSkillScore, s.Score)
	}
	if !s.Level.Valid() {
		return invalid("level", "unknown level %q for %q", s.Level, s.Skill)
	}
	return nil
}

type LearningResource struct {
	Title          string          `json:"title"`
	Type           ResourceType    `json:"type"`
	URL            string          `json:"url"`
	Duration       string          `json:"duration,omitempty"`
	Difficulty     DifficultyLevel `json:"difficulty"`
	WhyRecommended string          `json:"why_recommended,omitempty"`
}

func (r LearningResource) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return invalid("resources.title", "resource title is required")
	}
	if !r.Type.Valid() {
		return invalid("resources.type", "unknown resource type %q", r.Type)
	}
	if !r.Difficulty.Valid() {
		return invalid("resources.difficulty", "unknown difficulty %q", r.Difficulty)
	}
	return nil
}

type Project struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Deliverables   []string `json:"deliverables"`
	EstimatedHours int      `json:"estimated_hours"`
}

func NewProject(p Project) (*Project, error) {
	if p.Deliverables == nil {
		p.Deliverables = []string{}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return invalid("project.title", "project title is required")
	}
	if p.EstimatedHours < 1 {
		return invalid("project.estimated_hours", "must be at least 1 (got %d)", p.EstimatedHours)
	}
	return nil
}

type Module struct {
	ID                 string             `json:"id"`
	Title              string             `json:"title"`
	Description        string             `json:"description"`
	EstimatedHours     int                `json:"estimated_hours"`
	SkillsTaught       []string           `json:"skills_taught"`
	LearningObjectives []string           `json:"learning_objectives"`
	Project            *Project           `json:"project,omitempty"`
	Resources          []LearningResource `json:"resources"`
	Prerequisites      []string           `json:"prerequisites"`
	Assessment         string             `json:"assessment"`
}

// NewModule fills empty list fields and enforces the module invariants.
func NewModule(m Module) (Module, error) {
	if m.SkillsTaught == nil {
		m.SkillsTaught = []string{}
	}
	if m.LearningObjectives == nil {
		m.LearningObjectives = []string{}
	}
	if m.Prerequisites == nil {
		m.Prerequisites = []string{}
	}
	if err := m.Validate(); err != nil {
		return Module{}, err
	}
	return m, nil
}

func (m Module) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return invalid("modules.id", "module id is required")
	}
	if m.EstimatedHours < 1 {
		return invalid("modules.estimated_hours", "module %s: must be at least 1 (got %d)", m.ID, m.EstimatedHours)
	}
	if len(m.Resources) < MinResourcesPerModule {
		return invalid("modules.resources", "module %s: needs at least %d resources (got %d)", m.ID, MinResourcesPerModule, len(m.Resources))
	}
	for _, r := range m.Resources {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	if m.Project != nil {
		if err := m.Project.Validate(); err != nil {
			return err
		}
	}
	return nil
}

type Roadmap struct {
	ID                    string     `json:"id"`
	UserID                string     `json:"user_id"`
	Title                 string     `json:"title"`
	CareerGoal            string     `json:"career_goal"`
	EstimatedWeeks        int        `json:"estimated_weeks"`
	DifficultyProgression string     `json:"difficulty_progression"`
	Modules               []Module   `json:"modules"`
	CurrentModule         int        `json:"current_module"`
	ProgressPercentage    int        `json:"progress_percentage"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             *time.Time `json:"updated_at,omitempty"`
}

// NewRoadmap is the only way providers produce a Roadmap; it fails on any violated invariant.
func NewRoadmap(r Roadmap) (*Roadmap, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *Roadmap) Validate() error {
	if r == nil {
		return invalid("roadmap", "roadmap is required")
	}
	if len(r.Modules) != ModuleCount {
		return invalid("modules", "roadmap must have exactly %d modules (got %d)", ModuleCount, len(r.Modules))
	}
	for _, m := range r.Modules {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	if r.EstimatedWeeks < 1 || r.EstimatedWeeks > MaxWeeks {
		return invalid("estimated_weeks", "must be between 1 and %d (got %d)", MaxWeeks, r.EstimatedWeeks)
	}
	if calc := CalculatedWeeks(r.Modules); abs(r.EstimatedWeeks-calc) > WeeksTolerance {
		return invalid("estimated_weeks", "estimated weeks (%d) should be close to calculated weeks (%d)", r.EstimatedWeeks, calc)
	}
	if r.CurrentModule < 0 || r.CurrentModule >= ModuleCount {
		return invalid("current_module", "must be between 0 and %d (got %d)", ModuleCount-1, r.CurrentModule)
	}
	if r.ProgressPercentage < 0 || r.ProgressPercentage > 100 {
		return invalid("progress_percentage", "must be between 0 and 100 (got %d)", r.ProgressPercentage)
	}
	return nil
}

func (r *Roadmap) TotalHours() int {
	total := 0
	for _, m := range r.Modules {
		total += m.EstimatedHours
	}
	return total
}

// CalculatedWeeks is ceil(total hours / 10), never below one week.
func CalculatedWeeks(modules []Module) int {
	total := 0
	for _, m := range modules {
		total += m.EstimatedHours
	}
	weeks := (total + HoursPerWeek - 1) / HoursPerWeek
	if weeks < 1 {
		return 1
	}
	return weeks
}

// Decode parses the persisted JSON form and re-checks every invariant.
func Decode(b []byte) (*Roadmap, error) {
	var r Roadmap
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decode roadmap: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// NewID returns an opaque id of the form roadmap_<8 hex>.
func NewID() string {
	return "roadmap_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
