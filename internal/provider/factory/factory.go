// Package factory maps configured provider names to constructed providers.
package factory

import (
	"sort"
	"strings"

	"github.com/yungbote/pathfinder-roadmap/internal/config"
	"github.com/yungbote/pathfinder-roadmap/internal/platform/logger"
	"github.com/yungbote/pathfinder-roadmap/internal/provider"
	"github.com/yungbote/pathfinder-roadmap/internal/provider/gemini"
	"github.com/yungbote/pathfinder-roadmap/internal/provider/mock"
	"github.com/yungbote/pathfinder-roadmap/internal/provider/openai"
)

// Builder constructs a provider from the shared AI configuration.
type Builder func(cfg config.AIConfig, log *logger.Logger) (provider.Provider, error)

type Entry struct {
	Name        string
	Description string
	// Build is nil for names that are recognised but not compiled in.
	Build Builder
}

// CatalogueEntry is the public view of one registry entry.
type CatalogueEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

var aliases = map[string]string{
	"gemini": gemini.Name,
}

var registry = map[string]Entry{
	gemini.Name: {Name: gemini.Name, Description: "Google Gemini generateContent API", Build: buildGemini},
	openai.Name: {Name: openai.Name, Description: "OpenAI-compatible chat completions in JSON mode", Build: buildOpenAI},
	mock.Name:   {Name: mock.Name, Description: "Deterministic offline roadmaps for development", Build: buildMock},

	"anthropic":   {Name: "anthropic", Description: "Anthropic Claude"},
	"ollama":      {Name: "ollama", Description: "Local Ollama models"},
	"huggingface": {Name: "huggingface", Description: "Hugging Face inference endpoints"},
}

func canonical(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if a, ok := aliases[n]; ok {
		return a
	}
	return n
}

// New builds the provider registered under name.
func New(name string, cfg config.AIConfig, log *logger.Logger) (provider.Provider, error) {
	if log == nil {
		log = logger.Nop()
	}
	key := canonical(name)
	entry, ok := registry[key]
	if !ok {
		return nil, provider.Errorf(key, provider.CodeUnsupportedProvider,
			"unsupported AI provider %q, supported providers: %s", name, strings.Join(Supported(), ", "))
	}
	if entry.Build == nil {
		return nil, provider.Errorf(key, provider.CodeProviderUnavailable,
			"AI provider %q is known but not available in this build", key)
	}
	p, err := entry.Build(cfg, log)
	if err != nil {
		log.Error("provider initialization failed", "provider", key, "error", err)
		return nil, provider.NewError(key, provider.CodeInitialization, "failed to initialize "+key+" provider: "+err.Error(), err)
	}
	log.Info("AI provider created", "provider", key)
	return p, nil
}

// Supported lists the names New can build, sorted.
func Supported() []string {
	var out []string
	for name, e := range registry {
		if e.Build != nil {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Catalogue lists every known provider, including unavailable ones.
func Catalogue() []CatalogueEntry {
	out := make([]CatalogueEntry, 0, len(registry))
	for _, e := range registry {
		out = append(out, CatalogueEntry{Name: e.Name, Description: e.Description, Available: e.Build != nil})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func buildGemini(cfg config.AIConfig, log *logger.Logger) (provider.Provider, error) {
	return gemini.New(gemini.Config{
		APIKey:      cfg.Google.APIKey,
		Model:       cfg.Google.Model,
		BaseURL:     cfg.Google.BaseURL,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout.Duration,
	}, log)
}

func buildOpenAI(cfg config.AIConfig, log *logger.Logger) (provider.Provider, error) {
	return openai.New(openai.Config{
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.Model,
		BaseURL:     cfg.OpenAI.BaseURL,
		ChatPath:    cfg.OpenAI.ChatPath,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout.Duration,
	}, log)
}

func buildMock(_ config.AIConfig, log *logger.Logger) (provider.Provider, error) {
	return mock.New(log), nil
}
