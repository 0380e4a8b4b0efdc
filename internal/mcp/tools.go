package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap"
	"github.com/yungbote/pathfinder-roadmap/internal/platform/logger"
	"github.com/yungbote/pathfinder-roadmap/internal/provider"
	"github.com/yungbote/pathfinder-roadmap/internal/services"
)

type Tools struct {
	svc services.RoadmapService
	log *logger.Logger
}

func NewTools(svc services.RoadmapService, log *logger.Logger) *Tools {
	if log == nil {
		log = logger.Nop()
	}
	return &Tools{svc: svc, log: log.With("service", "MCPTools")}
}

// toolFailure is the body of every failed tool call.
type toolFailure struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Provider  string `json:"provider,omitempty"`
	ErrorCode string `json:"error_code"`
}

type generateArgs struct {
	UserGoal        string                    `json:"user_goal"`
	UserSkills      []roadmap.SkillAssessment `json:"user_skills"`
	ExperienceLevel string                    `json:"experience_level"`
	Preferences     map[string]any            `json:"preferences"`
	UserID          string                    `json:"user_id"`
}

type updateArgs struct {
	RoadmapID       string          `json:"roadmap_id"`
	UserPrompt      string          `json:"user_prompt"`
	ExistingRoadmap json.RawMessage `json:"existing_roadmap"`
	UserID          string          `json:"user_id"`
}

func generateRoadmapTool() mcpgo.Tool {
	return mcpgo.NewTool("generate_roadmap",
		mcpgo.WithDescription("Generate a personalized six-module learning roadmap from a career goal and skill self-assessment."),
		mcpgo.WithString("user_goal", mcpgo.Required(),
			mcpgo.Description("Target career goal, e.g. 'Full Stack Developer'")),
		mcpgo.WithArray("user_skills", mcpgo.Required(),
			mcpgo.Description("Skill assessments: objects with skill (string), score (1-10) and level (beginner|intermediate|advanced)"),
			mcpgo.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"skill": map[string]any{"type": "string"},
					"score": map[string]any{"type": "integer", "minimum": 1, "maximum": 10},
					"level": map[string]any{"type": "string", "enum": []string{"beginner", "intermediate", "advanced"}},
				},
				"required": []string{"skill", "score", "level"},
			})),
		mcpgo.WithString("experience_level",
			mcpgo.Description("Overall experience level"),
			mcpgo.Enum("beginner", "intermediate", "advanced")),
		mcpgo.WithObject("preferences", mcpgo.Description("Optional free-form learning preferences")),
		mcpgo.WithString("user_id", mcpgo.Description("Caller id, defaults to "+DefaultUserID)),
	)
}

func updateRoadmapTool() mcpgo.Tool {
	return mcpgo.NewTool("update_roadmap",
		mcpgo.WithDescription("Regenerate an existing roadmap with a requested modification."),
		mcpgo.WithString("roadmap_id", mcpgo.Required(), mcpgo.Description("Id of the roadmap to update")),
		mcpgo.WithString("user_prompt", mcpgo.Required(),
			mcpgo.Description("How to change the roadmap, e.g. 'Add more Python modules'")),
		mcpgo.WithObject("existing_roadmap",
			mcpgo.Description("Full roadmap from a previous call. When omitted the roadmap is loaded by id if a database is configured.")),
		mcpgo.WithString("user_id", mcpgo.Description("Caller id, defaults to "+DefaultUserID)),
	)
}

func getRoadmapTool() mcpgo.Tool {
	return mcpgo.NewTool("get_roadmap",
		mcpgo.WithDescription("Load a stored roadmap by id."),
		mcpgo.WithString("roadmap_id", mcpgo.Required(), mcpgo.Description("Roadmap id")),
	)
}

func providerInfoTool() mcpgo.Tool {
	return mcpgo.NewTool("provider_info",
		mcpgo.WithDescription("Describe the active AI provider and the provider catalogue."),
	)
}

func (t *Tools) GenerateRoadmap(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	var args generateArgs
	if err := bindArgs(req, &args); err != nil {
		return t.failure("generation", err), nil
	}
	r := &roadmap.Request{
		UserGoal:        args.UserGoal,
		UserSkills:      args.UserSkills,
		ExperienceLevel: roadmap.DifficultyLevel(strings.ToLower(strings.TrimSpace(args.ExperienceLevel))),
		Preferences:     args.Preferences,
	}
	res, err := t.svc.GenerateRoadmap(ctx, r, userOrDefault(args.UserID))
	if err != nil {
		return t.failure("generation", err), nil
	}
	return jsonResult(res)
}

func (t *Tools) UpdateRoadmap(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	var args updateArgs
	if err := bindArgs(req, &args); err != nil {
		return t.failure("update", err), nil
	}
	upd := &roadmap.UpdateRequest{UserPrompt: args.UserPrompt}
	if len(args.ExistingRoadmap) > 0 && string(args.ExistingRoadmap) != "null" {
		existing, err := roadmap.Decode(args.ExistingRoadmap)
		if err != nil {
			t.log.Warn("failed to parse existing_roadmap, loading by id", "roadmap_id", args.RoadmapID, "error", err)
		} else {
			upd.ExistingRoadmap = existing
		}
	}
	if upd.ExistingRoadmap == nil {
		if l := t.svc.GetRoadmap(ctx, args.RoadmapID); l.OK() && l.Roadmap != nil {
			upd.ExistingRoadmap = l.Roadmap
		}
	}
	res, err := t.svc.UpdateRoadmap(ctx, args.RoadmapID, upd, userOrDefault(args.UserID))
	if err != nil {
		return t.failure("update", err), nil
	}
	return jsonResult(res)
}

func (t *Tools) GetRoadmap(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	var args struct {
		RoadmapID string `json:"roadmap_id"`
	}
	if err := bindArgs(req, &args); err != nil {
		return t.failure("lookup", err), nil
	}
	l := t.svc.GetRoadmap(ctx, args.RoadmapID)
	if !l.OK() {
		body, _ := json.Marshal(l)
		return mcpgo.NewToolResultError(string(body)), nil
	}
	return jsonResult(l)
}

func (t *Tools) ProviderInfo(ctx context.Context, _ mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return jsonResult(t.svc.ProviderInfo(ctx))
}

// failure renders err as a tool-error result. Protocol-level errors are
// reserved for transport problems, so handlers always return a nil error.
func (t *Tools) failure(op string, err error) *mcpgo.CallToolResult {
	f := toolFailure{Success: false, Error: err.Error(), ErrorCode: provider.CodeUnexpected}
	if pe, ok := provider.AsError(err); ok {
		f.Error, f.Provider, f.ErrorCode = pe.Message, pe.Provider, pe.Code
		t.log.Error("AI provider error during roadmap "+op, "error", pe.Message, "provider", pe.Provider, "error_code", pe.Code)
	} else if roadmap.IsValidation(err) {
		f.Error, f.ErrorCode = "Validation error: "+err.Error(), roadmap.ValidationErrorCode
		t.log.Warn("validation error during roadmap "+op, "error", err)
	} else {
		f.Error = "Unexpected error: " + err.Error()
		t.log.Error("unexpected error during roadmap "+op, "error", err)
	}
	body, _ := json.Marshal(f)
	return mcpgo.NewToolResultError(string(body))
}

func bindArgs(req mcpgo.CallToolRequest, v any) error {
	raw, err := json.Marshal(req.GetArguments())
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return roadmap.NewValidationError("arguments", "invalid tool arguments: %v", err)
	}
	return nil
}

func jsonResult(v any) (*mcpgo.CallToolResult, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcpgo.NewToolResultText(string(body)), nil
}

func userOrDefault(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return DefaultUserID
}
