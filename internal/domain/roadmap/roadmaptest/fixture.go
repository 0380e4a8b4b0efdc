// Package roadmaptest builds valid roadmaps for tests in other packages.
package roadmaptest

import (
	"fmt"
	"time"

	"github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap"
)

func Module(i int) roadmap.Module {
	return roadmap.Module{
		ID:                 fmt.Sprintf("module-%d", i+1),
		Title:              fmt.Sprintf("Module %d", i+1),
		Description:        "Learning module",
		EstimatedHours:     30,
		SkillsTaught:       []string{fmt.Sprintf("skill-%d", i+1), "shared"},
		LearningObjectives: []string{"objective"},
		Project: &roadmap.Project{
			Title:          fmt.Sprintf("Project %d", i+1),
			Description:    "Hands-on project",
			Deliverables:   []string{"Project completion"},
			EstimatedHours: 10,
		},
		Resources: []roadmap.LearningResource{
			{Title: "Intro", Type: roadmap.ResourceVideo, URL: "https://example.com/a", Difficulty: roadmap.Beginner},
			{Title: "Guide", Type: roadmap.ResourceDocumentation, URL: "https://example.com/b", Duration: "2 hours", Difficulty: roadmap.Intermediate, WhyRecommended: "official"},
		},
		Prerequisites: []string{},
		Assessment:    "Build and present the module project",
	}
}

// Roadmap returns six 30-hour modules with 18 estimated weeks.
func Roadmap(goal string) *roadmap.Roadmap {
	modules := make([]roadmap.Module, roadmap.ModuleCount)
	for i := range modules {
		modules[i] = Module(i)
		if i > 0 {
			modules[i].Prerequisites = []string{modules[i-1].ID}
		}
	}
	return &roadmap.Roadmap{
		ID:                    "roadmap_0000abcd",
		UserID:                "user-1",
		Title:                 goal + " Learning Path",
		CareerGoal:            goal,
		EstimatedWeeks:        18,
		DifficultyProgression: roadmap.DefaultDifficultyProgression,
		Modules:               modules,
		CreatedAt:             time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func Request(goal string) *roadmap.Request {
	return &roadmap.Request{
		UserGoal: goal,
		UserSkills: []roadmap.SkillAssessment{
			{Skill: "javascript", Score: 6, Level: roadmap.Intermediate},
			{Skill: "python", Score: 3, Level: roadmap.Beginner},
		},
		ExperienceLevel: roadmap.Beginner,
	}
}
