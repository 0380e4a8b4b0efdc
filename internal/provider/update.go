package provider

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap"
)

const maxHarvestedSkills = 10

// DefaultUpdate regenerates a roadmap from the existing career goal, the skills
// the old modules taught, and the user's prompt embedded in preferences. The old
// module structure is not carried over.
func DefaultUpdate(ctx context.Context, g Generator, existing *roadmap.Roadmap, userPrompt, userID string) (*roadmap.Roadmap, error) {
	req, err := UpdateRequestFor(existing, userPrompt)
	if err != nil {
		return nil, err
	}
	return g.GenerateRoadmap(ctx, req, userID)
}

// UpdateRequestFor builds the synthetic generation request used by DefaultUpdate.
func UpdateRequestFor(existing *roadmap.Roadmap, userPrompt string) (*roadmap.Request, error) {
	if existing == nil {
		return nil, roadmap.NewValidationError("existing_roadmap", "existing roadmap is required")
	}
	return &roadmap.Request{
		UserGoal:        existing.CareerGoal,
		UserSkills:      harvestSkills(existing),
		ExperienceLevel: roadmap.Beginner,
		Preferences: map[string]any{
			"modifications":    userPrompt,
			"existing_roadmap": dump(existing),
		},
	}, nil
}

func harvestSkills(r *roadmap.Roadmap) []roadmap.SkillAssessment {
	seen := map[string]bool{}
	var out []roadmap.SkillAssessment
	for _, m := range r.Modules {
		for _, s := range m.SkillsTaught {
			s = strings.TrimSpace(s)
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, roadmap.SkillAssessment{Skill: s, Score: 5, Level: roadmap.Intermediate})
			if len(out) == maxHarvestedSkills {
				return out
			}
		}
	}
	if len(out) == 0 {
		out = append(out, roadmap.SkillAssessment{Skill: "general", Score: 5, Level: roadmap.Beginner})
	}
	return out
}

// dump converts the roadmap to plain JSON values so prompts render it like any other preference.
func dump(r *roadmap.Roadmap) map[string]any {
	b, err := json.Marshal(r)
	if err != nil {
		return map[string]any{"id": r.ID, "career_goal": r.CareerGoal}
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return map[string]any{"id": r.ID, "career_goal": r.CareerGoal}
	}
	return out
}
