// Package openai talks to an OpenAI-compatible chat completions endpoint in JSON mode.
package openai

import (
	"context"
	"errors"
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
	Name = "openai"

	DefaultModel     = "gpt-3.5-turbo"
	DefaultBaseURL   = "https://api.openai.com"
	DefaultChatPath  = "/v1/chat/completions"
	DefaultMaxTokens = 2000
	DefaultTimeout   = 30 * time.Second
	defaultTemp      = 0.7
)

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	ChatPath    string
	MaxTokens   int
	Temperature *float64
	Timeout     time.Duration
	HTTPClient  *http.Client
}

type Provider struct {
	log         *logger.Logger
	client      *httpclient.Client
	normalizer  *normalize.Normalizer
	model       string
	chatPath    string
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
		return nil, errors.New("openai api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	chatPath := strings.TrimSpace(cfg.ChatPath)
	if chatPath == "" {
		chatPath = DefaultChatPath
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
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
	headers.Set("Authorization", "Bearer "+apiKey)
	client, err := httpclient.New(baseURL, headers, cfg.HTTPClient)
	if err != nil {
		return nil, err
	}
	return &Provider{
		log:         log.With("service", "OpenAIProvider", "model", model),
		client:      client,
		normalizer:  normalize.New(Name, log),
		model:       model,
		chatPath:    chatPath,
		maxTokens:   maxTokens,
		temperature: temperature,
		timeout:     timeout,
	}, nil
}

func (p *Provider) Name() string { return Name }

func (p *Provider) GenerateRoadmap(ctx context.Context, req *roadmap.Request, userID string) (*roadmap.Roadmap, error) {
	if err := provider.ValidateRequest(req); err != nil {
		return nil, err
	}
	ctx, span := otel.Tracer("pathfinder/provider").Start(ctx, "openai.GenerateRoadmap")
	defer span.End()
	span.SetAttributes(attribute.String("ai.model", p.model))

	p.log.Info("generating roadmap", "user_id", userID, "goal", req.UserGoal)
	body := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.SystemPrompt()},
			{Role: "user", Content: prompt.Task(req, prompt.Options{TopSkills: 10, ShowLevels: true, SingleProject: true})},
		},
		MaxTokens:      p.maxTokens,
		Temperature:    &p.temperature,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}
	var resp chatResponse
	if err := p.client.PostJSON(ctx, p.timeout, p.chatPath, body, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upstream call failed")
		p.log.Error("openai request failed", "error", err, "user_id", userID)
		return nil, provider.NewError(Name, provider.CodeGeneration, "roadmap generation failed: "+err.Error(), err)
	}
	if resp.Usage != nil {
		span.SetAttributes(
			attribute.Int("ai.tokens.input", resp.Usage.PromptTokens),
			attribute.Int("ai.tokens.output", resp.Usage.CompletionTokens),
		)
	}

	completion := resp.completion()
	span.SetAttributes(attribute.String("ai.finish_reason", completion.Finish.String()))
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
	body := chatRequest{
		Model:     p.model,
		Messages:  []chatMessage{{Role: "user", Content: "Hello"}},
		MaxTokens: 5,
	}
	var resp chatResponse
	err := p.client.PostJSON(ctx, p.timeout, p.chatPath, body, &resp)
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
		Capabilities:       []string{"text_generation", "json_structured_output", "context_understanding"},
		SupportedLanguages: []string{"en"},
		Endpoint:           p.client.BaseURL(),
	}
}
