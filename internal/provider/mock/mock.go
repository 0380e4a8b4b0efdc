// Package mock is an offline provider that returns deterministic roadmaps.
package mock

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap"
	"github.com/yungbote/pathfinder-roadmap/internal/platform/logger"
	"github.com/yungbote/pathfinder-roadmap/internal/provider"
	"github.com/yungbote/pathfinder-roadmap/internal/provider/normalize"
)

const (
	Name         = "mock"
	DefaultModel = "mock-roadmap-1"
)

var stages = []string{"Foundations", "Core Techniques", "Applied Practice", "Tools and Workflow", "Advanced Topics", "Capstone"}

type Provider struct {
	// Completion, when set, replaces the generated model reply.
	Completion func(req *roadmap.Request) normalize.Completion
	// Err, when set, is returned from GenerateRoadmap before any work.
	Err error
	// Unhealthy flips HealthCheck to the unhealthy status.
	Unhealthy bool

	normalizer *normalize.Normalizer
	log        *logger.Logger

	mu       sync.Mutex
	requests []*roadmap.Request
}

func New(log *logger.Logger) *Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &Provider{
		normalizer: normalize.New(Name, log),
		log:        log.With("service", "MockProvider"),
	}
}

func (p *Provider) Name() string { return Name }

// Requests returns every request GenerateRoadmap has received, oldest first.
func (p *Provider) Requests() []*roadmap.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*roadmap.Request(nil), p.requests...)
}

// SetNow pins the normalizer clock.
func (p *Provider) SetNow(now func() time.Time) { p.normalizer.Now = now }

func (p *Provider) GenerateRoadmap(ctx context.Context, req *roadmap.Request, userID string) (*roadmap.Roadmap, error) {
	if err := ctx.Err(); err != nil {
		return nil, provider.NewError(Name, provider.CodeGeneration, "roadmap generation failed: "+err.Error(), err)
	}
	if err := provider.ValidateRequest(req); err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}

	var c normalize.Completion
	if p.Completion != nil {
		c = p.Completion(req)
	} else {
		b, err := json.Marshal(Document(req.UserGoal))
		if err != nil {
			return nil, provider.NewError(Name, provider.CodeGeneration, "roadmap generation failed", err)
		}
		c = normalize.Completion{Candidates: 1, Text: string(b), Finish: normalize.FinishStop}
	}
	r, err := p.normalizer.Roadmap(c, req, userID)
	if err != nil {
		return nil, err
	}
	p.log.Debug("mock roadmap generated", "roadmap_id", r.ID, "goal", req.UserGoal)
	return r, nil
}

func (p *Provider) UpdateRoadmap(ctx context.Context, existing *roadmap.Roadmap, userPrompt, userID string) (*roadmap.Roadmap, error) {
	return provider.DefaultUpdate(ctx, p, existing, userPrompt, userID)
}

func (p *Provider) HealthCheck(ctx context.Context) provider.HealthStatus {
	if p.Unhealthy {
		return provider.HealthStatus{Status: provider.StatusUnhealthy, Provider: Name, Model: DefaultModel, Error: "mock marked unhealthy"}
	}
	return provider.HealthStatus{Status: provider.StatusHealthy, Provider: Name, Model: DefaultModel, APIAccessible: true}
}

func (p *Provider) ModelInfo() provider.ModelInfo {
	return provider.ModelInfo{
		Provider:           Name,
		Model:              DefaultModel,
		MaxTokens:          8192,
		Temperature:        0,
		Capabilities:       []string{"text_generation", "json_structured_output"},
		SupportedLanguages: []string{"en"},
	}
}

// Document builds the raw model-shaped JSON object for goal. The same goal
// always yields the same hours and resource mix.
func Document(goal string) map[string]any {
	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(goal))))
	types := roadmap.ResourceTypes()
	levels := []string{"beginner", "beginner", "intermediate", "intermediate", "advanced", "advanced"}

	modules := make([]any, 0, len(stages))
	total := 0
	for i, stage := range stages {
		seed := binary.LittleEndian.Uint32(h[i*4:])
		hours := 20 + int(seed%21)
		total += hours
		skill := fmt.Sprintf("%s %s", strings.ToLower(stage), goalWord(goal))
		modules = append(modules, map[string]any{
			"id":                  fmt.Sprintf("module-%d", i+1),
			"title":               fmt.Sprintf("%s: %s", stage, goal),
			"description":         fmt.Sprintf("%s for becoming a %s.", stage, goal),
			"estimated_hours":     hours,
			"skills_taught":       []string{skill},
			"learning_objectives": []string{"Explain the key ideas of " + strings.ToLower(stage), "Apply them in a small exercise"},
			"prerequisites":       prerequisites(i),
			"resources": []any{
				map[string]any{
					"title":      stage + " guide",
					"type":       string(types[int(seed>>8)%len(types)]),
					"url":        fmt.Sprintf("https://example.com/%d/guide", i+1),
					"difficulty": levels[i],
				},
				map[string]any{
					"title":      stage + " practice set",
					"type":       string(roadmap.ResourcePractice),
					"url":        fmt.Sprintf("https://example.com/%d/practice", i+1),
					"difficulty": levels[i],
				},
			},
			"project": map[string]any{
				"title":           stage + " project",
				"description":     "Show what you learned in " + strings.ToLower(stage) + ".",
				"deliverables":    []string{"write-up", "demo"},
				"estimated_hours": 5 + int(seed%6),
			},
		})
	}
	return map[string]any{
		"estimated_weeks":        (total + roadmap.HoursPerWeek - 1) / roadmap.HoursPerWeek,
		"difficulty_progression": roadmap.DefaultDifficultyProgression,
		"modules":                modules,
	}
}

func prerequisites(i int) []string {
	if i == 0 {
		return []string{}
	}
	return []string{fmt.Sprintf("module-%d", i)}
}

func goalWord(goal string) string {
	fields := strings.Fields(goal)
	if len(fields) == 0 {
		return "basics"
	}
	return strings.ToLower(fields[len(fields)-1])
}
