package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/pathfinder-roadmap/internal/platform/envutil"
)

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a scalar, got kind %d", node.Kind)
	}
	s := strings.TrimSpace(node.Value)
	if s == "" || s == "null" || s == "~" {
		d.Duration = 0
		return nil
	}
	if dd, err := time.ParseDuration(s); err == nil {
		d.Duration = dd
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("duration must be a string like \"30s\" or a number of seconds: %w", err)
	}
	if f < 0 {
		return errors.New("duration must not be negative")
	}
	d.Duration = time.Duration(f * float64(time.Second))
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

func defaultTemperature() *float64 {
	t := 0.7
	return &t
}

func Default() *Config {
	return &Config{
		Env:      "development",
		LogLevel: "debug",
		Version:  "1.0.0",
		HTTP: HTTPConfig{
			Addr:              ":8003",
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			IdleTimeout:       Duration{Duration: 2 * time.Minute},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
			MaxRequestBytes:   1 << 20,
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost:3001",
				"http://127.0.0.1:3000",
			},
			DefaultUserID: "demo-user-123",
		},
		AI: AIConfig{
			Provider:    "google",
			MaxTokens:   8192,
			Temperature: defaultTemperature(),
			Timeout:     Duration{Duration: 30 * time.Second},
			Google:      GoogleConfig{Model: "gemini-1.5-flash"},
			OpenAI:      OpenAIConfig{Model: "gpt-3.5-turbo"},
			Anthropic:   AnthropicConfig{Model: "claude-3-sonnet-20240229"},
			Ollama:      OllamaConfig{BaseURL: "http://localhost:11434", Model: "llama2"},
			HuggingFace: HuggingFaceConfig{Model: "microsoft/DialoGPT-medium"},
		},
		Database: DatabaseConfig{MaxOpen: 5, MaxIdle: 1},
		Redis:    RedisConfig{Channel: "roadmap-events"},
		Metrics:  MetricsConfig{Addr: ""},
		Tracing:  TracingConfig{SampleRatio: 0.1},
	}
}

// Load resolves configuration as defaults, then the YAML file named by
// PATHFINDER_CONFIG (or ./config/config.yaml when present), then env overrides.
func Load() (*Config, error) {
	cfg := Default()

	path := strings.TrimSpace(os.Getenv("PATHFINDER_CONFIG"))
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "config.yaml")
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile decodes over the defaults so a partial file only overrides what it names.
func (c *Config) mergeFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Env = envutil.String("LOG_MODE", envutil.String("ENVIRONMENT", c.Env))
	c.LogLevel = envutil.String("LOG_LEVEL", c.LogLevel)

	if port := envutil.String("PORT", ""); port != "" {
		c.HTTP.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	c.HTTP.Addr = envutil.String("HTTP_ADDR", c.HTTP.Addr)
	if v := envutil.String("ALLOWED_ORIGINS", ""); v != "" {
		c.HTTP.AllowedOrigins = splitList(v)
	}
	if v := envutil.String("FRONTEND_URL", ""); v != "" && !contains(c.HTTP.AllowedOrigins, v) {
		c.HTTP.AllowedOrigins = append(c.HTTP.AllowedOrigins, v)
	}
	c.HTTP.DefaultUserID = envutil.String("DEFAULT_USER_ID", c.HTTP.DefaultUserID)

	c.AI.Provider = envutil.String("AI_PROVIDER", c.AI.Provider)
	c.AI.MaxTokens = envutil.Int("AI_MAX_TOKENS", c.AI.MaxTokens)
	if v := envutil.String("AI_TEMPERATURE", ""); v != "" {
		t := envutil.Float("AI_TEMPERATURE", 0.7)
		c.AI.Temperature = &t
	}
	c.AI.Timeout.Duration = envutil.Seconds("AI_TIMEOUT", c.AI.Timeout.Duration)

	c.AI.Google.APIKey = envutil.String("GOOGLE_API_KEY", c.AI.Google.APIKey)
	c.AI.Google.Model = envutil.String("GOOGLE_MODEL", c.AI.Google.Model)
	c.AI.Google.BaseURL = envutil.String("GOOGLE_BASE_URL", c.AI.Google.BaseURL)

	c.AI.OpenAI.APIKey = envutil.String("OPENAI_API_KEY", c.AI.OpenAI.APIKey)
	c.AI.OpenAI.Model = envutil.String("OPENAI_MODEL", c.AI.OpenAI.Model)
	c.AI.OpenAI.BaseURL = envutil.String("OPENAI_BASE_URL", c.AI.OpenAI.BaseURL)

	c.AI.Anthropic.APIKey = envutil.String("ANTHROPIC_API_KEY", c.AI.Anthropic.APIKey)
	c.AI.Anthropic.Model = envutil.String("ANTHROPIC_MODEL", c.AI.Anthropic.Model)
	c.AI.Ollama.BaseURL = envutil.String("OLLAMA_BASE_URL", c.AI.Ollama.BaseURL)
	c.AI.Ollama.Model = envutil.String("OLLAMA_MODEL", c.AI.Ollama.Model)
	c.AI.HuggingFace.APIKey = envutil.String("HUGGINGFACE_API_KEY", c.AI.HuggingFace.APIKey)
	c.AI.HuggingFace.Model = envutil.String("HUGGINGFACE_MODEL", c.AI.HuggingFace.Model)

	c.Database.URL = envutil.String("DATABASE_URL", c.Database.URL)
	c.Database.AutoMigrate = envutil.Bool("DATABASE_AUTO_MIGRATE", c.Database.AutoMigrate)

	c.Redis.Addr = envutil.String("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Channel = envutil.String("REDIS_CHANNEL", c.Redis.Channel)

	c.Metrics.Enabled = envutil.Bool("METRICS_ENABLED", c.Metrics.Enabled)
	c.Metrics.Addr = envutil.String("METRICS_ADDR", c.Metrics.Addr)

	c.Tracing.Enabled = envutil.Bool("OTEL_ENABLED", c.Tracing.Enabled)
	c.Tracing.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", c.Tracing.Endpoint)
	c.Tracing.Insecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", c.Tracing.Insecure)
	c.Tracing.SampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", c.Tracing.SampleRatio)
}

func (c *Config) normalize() error {
	c.Env = strings.TrimSpace(c.Env)
	if c.Env == "" {
		c.Env = "development"
	}
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	if c.AI.Provider == "" {
		return errors.New("ai.provider is required")
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		c.HTTP.Addr = ":8003"
	}
	if c.HTTP.MaxRequestBytes <= 0 {
		c.HTTP.MaxRequestBytes = 1 << 20
	}
	if strings.TrimSpace(c.HTTP.DefaultUserID) == "" {
		c.HTTP.DefaultUserID = "demo-user-123"
	}
	if c.AI.MaxTokens < 0 {
		return fmt.Errorf("ai.max_tokens must not be negative (got %d)", c.AI.MaxTokens)
	}
	if c.AI.Temperature != nil && (*c.AI.Temperature < 0 || *c.AI.Temperature > 2) {
		return fmt.Errorf("ai.temperature must be within [0,2] (got %v)", *c.AI.Temperature)
	}
	if c.Database.MaxOpen <= 0 {
		c.Database.MaxOpen = 5
	}
	if c.Database.MaxIdle <= 0 {
		c.Database.MaxIdle = 1
	}
	if strings.TrimSpace(c.Redis.Channel) == "" {
		c.Redis.Channel = "roadmap-events"
	}
	if c.Tracing.SampleRatio < 0 {
		c.Tracing.SampleRatio = 0
	}
	if c.Tracing.SampleRatio > 1 {
		c.Tracing.SampleRatio = 1
	}
	return nil
}

// IsProduction reports whether Env names a production deployment.
func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.Env) {
	case "prod", "production":
		return true
	default:
		return false
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
