package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap"
	"github.com/yungbote/pathfinder-roadmap/internal/provider"
)

const (
	defaultModuleHours  = 30
	defaultProjectHours = 10
	defaultWeeks        = 16

	genericAssessment = "Complete module exercises"
)

// Roadmap runs Decode then Build.
func (n *Normalizer) Roadmap(c Completion, req *roadmap.Request, userID string) (*roadmap.Roadmap, error) {
	data, err := n.Decode(c)
	if err != nil {
		return nil, err
	}
	return n.Build(data, req, userID)
}

// Build fills defaults and constructs the schema objects. Only construction
// failures are fatal; they surface as GENERATION_ERROR.
func (n *Normalizer) Build(data map[string]any, req *roadmap.Request, userID string) (*roadmap.Roadmap, error) {
	rawModules, _ := data["modules"].([]any)
	modules := make([]roadmap.Module, 0, len(rawModules))
	for i, raw := range rawModules {
		md, ok := raw.(map[string]any)
		if !ok {
			n.Log.Warn("skipping non-object module entry", "index", i, "value_type", fmt.Sprintf("%T", raw))
			continue
		}
		m, err := roadmap.NewModule(n.module(i, md))
		if err != nil {
			return nil, n.generationError(err)
		}
		modules = append(modules, m)
	}

	now := n.Now()
	r, err := roadmap.NewRoadmap(roadmap.Roadmap{
		ID:                    roadmap.NewID(),
		UserID:                userID,
		Title:                 req.UserGoal + " Learning Path",
		CareerGoal:            req.UserGoal,
		EstimatedWeeks:        intOr(data["estimated_weeks"], defaultWeeks),
		DifficultyProgression: stringOr(data["difficulty_progression"], roadmap.DefaultDifficultyProgression),
		Modules:               modules,
		CreatedAt:             now,
		UpdatedAt:             &now,
	})
	if err != nil {
		return nil, n.generationError(err)
	}
	return r, nil
}

func (n *Normalizer) generationError(err error) error {
	n.Log.Error("generated roadmap failed schema construction", "error", err)
	return provider.NewError(n.Provider, provider.CodeGeneration, "roadmap generation failed: "+err.Error(), err)
}

func (n *Normalizer) module(i int, md map[string]any) roadmap.Module {
	skills := stringList(md["skills_taught"])

	rawResources, _ := md["resources"].([]any)
	resources := make([]roadmap.LearningResource, 0, len(rawResources))
	for j, raw := range rawResources {
		rd, ok := raw.(map[string]any)
		if !ok {
			n.Log.Warn("skipping non-object resource entry", "module", i+1, "index", j, "value_type", fmt.Sprintf("%T", raw))
			continue
		}
		resources = append(resources, n.resource(j, rd))
	}

	project := n.project(i, md)

	assessment := strings.TrimSpace(stringOr(md["assessment"], ""))
	if assessment == "" || assessment == genericAssessment {
		assessment = synthesizeAssessment(project, skills)
	}

	return roadmap.Module{
		ID:                 stringOr(md["id"], fmt.Sprintf("module-%d", i+1)),
		Title:              stringOr(md["title"], fmt.Sprintf("Module %d", i+1)),
		Description:        stringOr(md["description"], "Learning module"),
		EstimatedHours:     intOr(md["estimated_hours"], defaultModuleHours),
		SkillsTaught:       skills,
		LearningObjectives: stringList(md["learning_objectives"]),
		Project:            project,
		Resources:          resources,
		Prerequisites:      stringList(md["prerequisites"]),
		Assessment:         assessment,
	}
}

func (n *Normalizer) resource(j int, rd map[string]any) roadmap.LearningResource {
	rawType := stringOr(rd["type"], "article")
	rt, ok := ResourceTypeOf(rawType)
	if !ok {
		n.Log.Warn("unknown resource type, defaulting to tutorial", "resource_type", rawType)
	}

	difficulty := roadmap.Beginner
	if raw := stringOr(rd["difficulty"], ""); raw != "" {
		if d, ok := roadmap.ParseDifficulty(raw); ok {
			difficulty = d
		} else {
			n.Log.Warn("unknown resource difficulty, defaulting to beginner", "difficulty", raw)
		}
	}

	duration := stringOr(rd["duration"], "")
	if duration == "" {
		if h, ok := number(rd["estimated_hours"]); ok {
			duration = fmt.Sprintf("%s hours", strconv.FormatFloat(h, 'f', -1, 64))
		}
	}

	return roadmap.LearningResource{
		Title:          stringOr(rd["title"], fmt.Sprintf("Resource %d", j+1)),
		Type:           rt,
		URL:            stringOr(rd["url"], "#"),
		Duration:       duration,
		Difficulty:     difficulty,
		WhyRecommended: stringOr(rd["why_recommended"], ""),
	}
}

// project accepts either a "project" object or the first entry of a "projects" list.
func (n *Normalizer) project(i int, md map[string]any) *roadmap.Project {
	pd, ok := md["project"].(map[string]any)
	if !ok {
		list, _ := md["projects"].([]any)
		if len(list) == 0 {
			return nil
		}
		if pd, ok = list[0].(map[string]any); !ok {
			return nil
		}
	}
	deliverables := stringList(pd["deliverables"])
	if _, present := pd["deliverables"]; !present {
		deliverables = []string{"Project completion"}
	}
	return &roadmap.Project{
		Title:          stringOr(pd["title"], fmt.Sprintf("Project %d", i+1)),
		Description:    stringOr(pd["description"], "Hands-on project"),
		Deliverables:   deliverables,
		EstimatedHours: intOr(pd["estimated_hours"], defaultProjectHours),
	}
}

func synthesizeAssessment(project *roadmap.Project, skills []string) string {
	focus := skills
	if len(focus) > 2 {
		focus = focus[:2]
	}
	subject := strings.Join(focus, ", ")
	if subject == "" {
		subject = "the module material"
	}
	if project != nil {
		return fmt.Sprintf("Complete %s demonstrating mastery of %s", strings.ToLower(project.Title), subject)
	}
	return fmt.Sprintf("Demonstrate understanding of %s through practical exercises", subject)
}

func stringOr(v any, def string) string {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return s
		}
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return def
}

// stringList accepts a JSON list of strings or a single string; it never returns nil.
func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := stringOr(item, ""); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return []string{}
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func intOr(v any, def int) int {
	if f, ok := number(v); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(math.Round(f))
	}
	return def
}
