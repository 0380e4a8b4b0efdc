// Package gemini talks to the Gemini generateContent REST endpoint.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/pathfinder-roadmap/internal/domain/roadmap"
	"github.com/yungbote/pathfinder-roadmap/internal/platform/logger"
	"github.com/yungbote/pathfinder-roadmap/internal/provider"
	"github.com/yungbote/pathfinder-roadmap/internal/provider/httpclient"
	"github.com/yungbote/pathfinder-roadmap/internal/provider/normalize"
	"github.com/yungbote/pathfinder-roadmap/internal/provider/prompt"
)

const (
	Name = "google"

	DefaultModel     = "gemini-1.5-flash"
	DefaultBaseURL   = "https://generativelanguage.googleapis.com"
	DefaultTimeout   = 60 * time.Second
	MaxOutputTokens  = 8192
	defaultTemp      = 0.7
	healthCheckLimit = 5
)

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature *float64
	Timeout     time.Duration
	// HTTPClient replaces the default pooled client (tests).
	HTTPClient *http.Client
}

type Provider struct {
	log         *logger.Logger
	client      *httpclient.Client
	normalizer  *normalize.Normalizer
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
}

func New(cfg Config, log *logger.Logger) (*Provider, error) {
	if log == nil {
		log = logger.Nop()
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("google api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 || maxTokens > MaxOutputTokens {
		maxTokens = MaxOutputTokens
	}
	temperature := defaultTemp
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	headers := http.Header{}
	headers.Set("x-goog-api-key", apiKey)
	client, err := httpclient.New(baseURL, headers, cfg.HTTPClient)
	if err != nil {
		return nil, err
	}

	p := &Provider{
		log:         log.With("service", "GeminiProvider", "model", model),
		client:      client,
		normalizer:  normalize.New(Name, log),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		timeout:     timeout,
	}
	p.log.Info("gemini provider initialized", "max_tokens", maxTokens, "timeout", timeout.String())
	return p, nil
}

func (p *Provider) Name() string { return Name }

func (p *Provider) GenerateRoadmap(ctx context.Context, req *roadmap.Request, userID string) (*roadmap.Roadmap, error) {
	if err := provider.ValidateRequest(req); err != nil {
		return nil, err
	}
	ctx, span := otel.Tracer("pathfinder/provider").Start(ctx, "gemini.GenerateRoadmap")
	defer span.End()
	span.SetAttributes(attribute.String("ai.model", p.model))

	task := prompt.Task(req, prompt.Options{TopSkills: 5})
	p.log.Info("generating roadmap", "user_id", userID, "goal", req.UserGoal, "prompt_length", len(task))

	resp, err := p.generate(ctx, prompt.SystemPrompt(), task, p.maxTokens)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upstream call failed")
		p.log.Error("gemini request failed", "error", err, "user_id", userID)
		return nil, provider.NewError(Name, provider.CodeGeneration, "roadmap generation failed: "+err.Error(), err)
	}

	completion := resp.completion()
	span.SetAttributes(attribute.String("ai.finish_reason", completion.Finish.String()))
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		p.log.Warn("prompt blocked", "block_reason", resp.PromptFeedback.BlockReason, "user_id", userID)
	}
	if u := resp.UsageMetadata; u != nil {
		span.SetAttributes(
			attribute.Int("ai.tokens.input", u.PromptTokenCount),
			attribute.Int("ai.tokens.output", u.CandidatesTokenCount),
		)
	}
	r, err := p.normalizer.Roadmap(completion, req, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, provider.CodeOf(err))
		return nil, err
	}
	p.log.Info("roadmap generated", "user_id", userID, "roadmap_id", r.ID, "modules_count", len(r.Modules))
	return r, nil
}

func (p *Provider) UpdateRoadmap(ctx context.Context, existing *roadmap.Roadmap, userPrompt, userID string) (*roadmap.Roadmap, error) {
	return provider.DefaultUpdate(ctx, p, existing, userPrompt, userID)
}

func (p *Provider) HealthCheck(ctx context.Context) provider.HealthStatus {
	start := time.Now()
	status := provider.HealthStatus{Provider: Name, Model: p.model}
	_, err := p.generate(ctx, "", "Hello", healthCheckLimit)
	status.ResponseTimeMS = time.Since(start).Milliseconds()
	if err != nil {
		status.Status = provider.StatusUnhealthy
		status.Error = err.Error()
		return status
	}
	status.Status = provider.StatusHealthy
	status.APIAccessible = true
	return status
}

func (p *Provider) ModelInfo() provider.ModelInfo {
	return provider.ModelInfo{
		Provider:           Name,
		Model:              p.model,
		MaxTokens:          p.maxTokens,
		Temperature:        p.temperature,
		Capabilities:       []string{"text_generation", "json_structured_output", "context_understanding", "multimodal"},
		SupportedLanguages: []string{"en", "multiple"},
		Endpoint:           p.client.BaseURL(),
	}
}

func (p *Provider) generate(ctx context.Context, system, user string, maxTokens int) (*generateResponse, error) {
	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: user}}}},
		GenerationConfig: generationConfig{
			MaxOutputTokens: maxTokens,
			Temperature:     p.temperature,
			TopP:            0.95,
			TopK:            40,
			CandidateCount:  1,
		},
		SafetySettings: permissiveSafety(),
	}
	if system != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}
	var out generateResponse
	path := fmt.Sprintf("/v1beta/models/%s:generateContent", p.model)
	if err := p.client.PostJSON(ctx, p.timeout, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
