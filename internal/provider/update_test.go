package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap"
	"github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap/roadmaptest"
)

type recordingGenerator struct {
	got    *roadmap.Request
	userID string
}

func (g *recordingGenerator) GenerateRoadmap(_ context.Context, req *roadmap.Request, userID string) (*roadmap.Roadmap, error) {
	g.got = req
	g.userID = userID
	return roadmaptest.Roadmap(req.UserGoal), nil
}

func TestDefaultUpdateHarvestsUniqueSkills(t *testing.T) {
	existing := roadmaptest.Roadmap("Carpenter")
	// Fixture modules teach skill-1..skill-6 plus a shared skill; add more to pass the cap.
	for i := range existing.Modules {
		existing.Modules[i].SkillsTaught = append(existing.Modules[i].SkillsTaught, fmt.Sprintf("extra-%d", i))
	}

	g := &recordingGenerator{}
	if _, err := DefaultUpdate(context.Background(), g, existing, "more joinery", "u-9"); err != nil {
		t.Fatalf("DefaultUpdate: %v", err)
	}
	if g.userID != "u-9" {
		t.Fatalf("userID=%q", g.userID)
	}
	req := g.got
	if req.UserGoal != "Carpenter" || req.ExperienceLevel != roadmap.Beginner {
		t.Fatalf("req=%+v", req)
	}
	if len(req.UserSkills) != 10 {
		t.Fatalf("skills=%d", len(req.UserSkills))
	}
	want := []string{"skill-1", "shared", "extra-0", "skill-2", "extra-1"}
	for i, w := range want {
		if req.UserSkills[i].Skill != w {
			t.Fatalf("skill[%d]=%q want %q", i, req.UserSkills[i].Skill, w)
		}
		if req.UserSkills[i].Score != 5 || req.UserSkills[i].Level != roadmap.Intermediate {
			t.Fatalf("skill[%d]=%+v", i, req.UserSkills[i])
		}
	}
	if req.Preferences["modifications"] != "more joinery" {
		t.Fatalf("preferences=%v", req.Preferences)
	}
	dumped, ok := req.Preferences["existing_roadmap"].(map[string]any)
	if !ok || dumped["career_goal"] != "Carpenter" {
		t.Fatalf("existing_roadmap=%v", req.Preferences["existing_roadmap"])
	}
}

func TestDefaultUpdateFallsBackToGeneralSkill(t *testing.T) {
	existing := roadmaptest.Roadmap("Florist")
	for i := range existing.Modules {
		existing.Modules[i].SkillsTaught = nil
	}
	req, err := UpdateRequestFor(existing, "x")
	if err != nil {
		t.Fatalf("UpdateRequestFor: %v", err)
	}
	if len(req.UserSkills) != 1 {
		t.Fatalf("skills=%+v", req.UserSkills)
	}
	s := req.UserSkills[0]
	if s.Skill != "general" || s.Score != 5 || s.Level != roadmap.Beginner {
		t.Fatalf("skill=%+v", s)
	}
}

func TestDefaultUpdateRequiresExisting(t *testing.T) {
	g := &recordingGenerator{}
	_, err := DefaultUpdate(context.Background(), g, nil, "x", "u")
	if !roadmap.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if g.got != nil {
		t.Fatalf("generator should not be called")
	}
}

func TestErrorUnwrapAndCode(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("outer: %w", NewError("google", CodeParse, "bad json", cause))
	if CodeOf(err) != CodeParse {
		t.Fatalf("code=%q", CodeOf(err))
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause not reachable")
	}
	if CodeOf(cause) != "" {
		t.Fatalf("plain error should have no code")
	}
}

func TestValidateRequest(t *testing.T) {
	if err := ValidateRequest(nil); !roadmap.IsValidation(err) {
		t.Fatalf("expected validation error")
	}
	req := roadmaptest.Request("Dentist")
	req.UserSkills[1].Score = 0
	if err := ValidateRequest(req); !roadmap.IsValidation(err) {
		t.Fatalf("expected score error, got %v", err)
	}
}
