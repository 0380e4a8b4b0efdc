package config

import "time"

// Duration accepts "30s"-style strings or a bare number of seconds.
type Duration struct {
	Duration time.Duration
}

type HTTPConfig struct {
	Addr              string   `yaml:"addr"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	IdleTimeout       Duration `yaml:"idle_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout"`
	MaxRequestBytes   int64    `yaml:"max_request_bytes"`
	AllowedOrigins    []string `yaml:"allowed_origins"`

	// DefaultUserID is used when a request carries no X-User-Id header.
	DefaultUserID string `yaml:"default_user_id"`
}

type GoogleConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type OpenAIConfig struct {
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"`
	ChatPath string `yaml:"chat_path"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type OllamaConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type HuggingFaceConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// AIConfig holds the active provider name plus per-provider sections.
// MaxTokens, Temperature and Timeout are shared defaults; zero means the
// provider's own default applies.
type AIConfig struct {
	Provider    string   `yaml:"provider"`
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature *float64 `yaml:"temperature"`
	Timeout     Duration `yaml:"timeout"`

	Google      GoogleConfig      `yaml:"google"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	Anthropic   AnthropicConfig   `yaml:"anthropic"`
	Ollama      OllamaConfig      `yaml:"ollama"`
	HuggingFace HuggingFaceConfig `yaml:"huggingface"`
}

type DatabaseConfig struct {
	// URL selects the relational store. Empty disables persistence.
	URL         string `yaml:"url"`
	AutoMigrate bool   `yaml:"auto_migrate"`
	MaxOpen     int    `yaml:"max_open"`
	MaxIdle     int    `yaml:"max_idle"`
}

type RedisConfig struct {
	Addr    string `yaml:"addr"`
	Channel string `yaml:"channel"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type Config struct {
	Env      string         `yaml:"env"`
	LogLevel string         `yaml:"log_level"`
	Version  string         `yaml:"version"`
	HTTP     HTTPConfig     `yaml:"http"`
	AI       AIConfig       `yaml:"ai"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing"`
}
