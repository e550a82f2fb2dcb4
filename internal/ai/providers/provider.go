package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Dhiren507/skillsync/internal/config"
	"github.com/Dhiren507/skillsync/internal/domain/models"
)

// Client is the common contract every LLM backend implements. The orchestrator
// only ever sees this interface; auth, endpoints and response envelopes are
// encapsulated per backend.
type Client interface {
	Generate(ctx context.Context, prompt string, contentType models.ContentType) (string, error)
	Name() string
}

// GenerationParams are internal per-content-type defaults, not caller-supplied.
// Summary and notes run cool to keep the output grammar intact; quiz and tutor
// get more headroom.
type GenerationParams struct {
	Temperature float64
	MaxTokens   int
}

func paramsFor(contentType models.ContentType) GenerationParams {
	switch contentType {
	case models.ContentSummary:
		return GenerationParams{Temperature: 0.3, MaxTokens: 1024}
	case models.ContentNotes:
		return GenerationParams{Temperature: 0.3, MaxTokens: 4096}
	case models.ContentQuiz:
		return GenerationParams{Temperature: 0.7, MaxTokens: 2048}
	default:
		return GenerationParams{Temperature: 0.7, MaxTokens: 1024}
	}
}

const requestTimeout = 30 * time.Second

// Factory hands out provider clients keyed by models.AIProvider. Unknown IDs
// and missing credentials fail fast with a *ConfigurationError before any
// network call, so a deployment configured with only one key still serves it.
type Factory struct {
	cfg        *config.AIConfig
	httpClient *http.Client
}

func NewFactory(cfg *config.AIConfig) *Factory {
	return &Factory{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

func (f *Factory) Client(provider models.AIProvider) (Client, error) {
	switch provider {
	case models.AIProviderGemini:
		if f.cfg.GeminiKey == "" {
			return nil, missingKey(provider)
		}
		return newGeminiClient(f.cfg.GeminiKey, f.httpClient), nil
	case models.AIProviderOpenAI:
		if f.cfg.OpenAIKey == "" {
			return nil, missingKey(provider)
		}
		return newOpenAIClient(f.cfg.OpenAIKey, f.httpClient), nil
	case models.AIProviderClaude:
		if f.cfg.ClaudeKey == "" {
			return nil, missingKey(provider)
		}
		return newClaudeClient(f.cfg.ClaudeKey, f.httpClient), nil
	case models.AIProviderGroq:
		if f.cfg.GroqKey == "" {
			return nil, missingKey(provider)
		}
		return newGroqClient(f.cfg.GroqKey, f.httpClient), nil
	default:
		return nil, &ConfigurationError{
			Provider: provider,
			Reason:   fmt.Sprintf("unsupported AI provider: %s", provider),
		}
	}
}

// Default resolves the configured default provider ID, falling back to Gemini
// when the config names nothing recognizable.
func (f *Factory) Default() models.AIProvider {
	switch models.AIProvider(f.cfg.DefaultProvider) {
	case models.AIProviderGemini, models.AIProviderOpenAI, models.AIProviderClaude, models.AIProviderGroq:
		return models.AIProvider(f.cfg.DefaultProvider)
	default:
		return models.AIProviderGemini
	}
}

func missingKey(provider models.AIProvider) error {
	return &ConfigurationError{
		Provider: provider,
		Reason:   fmt.Sprintf("no API key configured for provider %s", provider),
	}
}
