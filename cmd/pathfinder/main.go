package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/pathfinder-roadmap/internal/app"
	"github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap"
	"github.com/yungbote/pathfinder-roadmap/internal/platform/shutdown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var providerName string

	root := &cobra.Command{
		Use:           "pathfinder",
		Short:         "AI learning roadmap service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&providerName, "provider", "", "AI provider override (google|openai|mock)")

	root.AddCommand(newServeCmd(&providerName))
	root.AddCommand(newMCPCmd(&providerName))
	root.AddCommand(newGenerateCmd(&providerName))
	root.AddCommand(newHealthCmd(&providerName))
	return root
}

func newServeCmd(providerName *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := shutdown.NotifyContext(cmd.Context())
			defer stop()
			a, err := app.New(ctx, app.Options{Provider: *providerName})
			if err != nil {
				return err
			}
			defer a.Close(context.Background())
			return a.ServeHTTP(ctx)
		},
	}
}

func newMCPCmd(providerName *string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the roadmap tools over MCP stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := shutdown.NotifyContext(cmd.Context())
			defer stop()
			a, err := app.New(ctx, app.Options{Provider: *providerName, Stdio: true})
			if err != nil {
				return err
			}
			defer a.Close(context.Background())
			return a.ServeMCP(ctx)
		},
	}
}

func newGenerateCmd(providerName *string) *cobra.Command {
	var (
		goal, level, userID, requestFile string
		skills                           []string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one roadmap and print the response JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := buildRequest(requestFile, goal, level, skills)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := app.New(ctx, app.Options{Provider: *providerName, Stdio: true})
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			res, err := a.Roadmaps().GenerateRoadmap(ctx, req, userID)
			if err != nil {
				return err
			}
			return writeJSON(cmd, res)
		},
	}
	cmd.Flags().StringVar(&goal, "goal", "", "career goal")
	cmd.Flags().StringSliceVar(&skills, "skill", nil, "skill as name:score[:level], repeatable")
	cmd.Flags().StringVar(&level, "level", "beginner", "experience level: beginner|intermediate|advanced")
	cmd.Flags().StringVar(&userID, "user", "cli-user", "user id recorded on the roadmap")
	cmd.Flags().StringVar(&requestFile, "file", "", "read the request JSON from this file instead of flags")
	return cmd
}

func newHealthCmd(providerName *string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the configured AI provider",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := app.New(ctx, app.Options{Provider: *providerName, Stdio: true})
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			hs := a.Roadmaps().Health(ctx)
			if err := writeJSON(cmd, hs); err != nil {
				return err
			}
			if !hs.Healthy() {
				return fmt.Errorf("provider %s is unhealthy: %s", hs.Provider, hs.Error)
			}
			return nil
		},
	}
}

func buildRequest(file, goal, level string, skills []string) (*roadmap.Request, error) {
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		var req roadmap.Request
		if err := json.Unmarshal(b, &req); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		return &req, nil
	}
	req := &roadmap.Request{UserGoal: goal, ExperienceLevel: roadmap.DifficultyLevel(strings.ToLower(level))}
	for _, raw := range skills {
		s, err := parseSkill(raw)
		if err != nil {
			return nil, err
		}
		req.UserSkills = append(req.UserSkills, s)
	}
	return req, nil
}

// parseSkill reads "name:score" or "name:score:level". The level defaults
// from the score: 1-3 beginner, 4-7 intermediate, 8-10 advanced.
func parseSkill(raw string) (roadmap.SkillAssessment, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 || strings.TrimSpace(parts[0]) == "" {
		return roadmap.SkillAssessment{}, fmt.Errorf("skill %q: want name:score[:level]", raw)
	}
	score, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return roadmap.SkillAssessment{}, fmt.Errorf("skill %q: score: %w", raw, err)
	}
	s := roadmap.SkillAssessment{Skill: strings.TrimSpace(parts[0]), Score: score}
	switch {
	case len(parts) == 3:
		s.Level = roadmap.DifficultyLevel(strings.ToLower(strings.TrimSpace(parts[2])))
	case score >= 8:
		s.Level = roadmap.Advanced
	case score >= 4:
		s.Level = roadmap.Intermediate
	default:
		s.Level = roadmap.Beginner
	}
	return s, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
