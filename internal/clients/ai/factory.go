package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/KirkDiggler/chimera-protocol/internal/errors"
)

// Providers
const (
	ProviderGemini  = "gemini"
	ProviderOpenAI  = "openai"
	ProviderClaude  = "claude"
	ProviderOllama  = "ollama"
	ProviderOffline = "offline"
)

// Providers lists the accepted provider names
var Providers = []string{ProviderGemini, ProviderOpenAI, ProviderClaude, ProviderOllama, ProviderOffline}

// ImageProviders lists the providers that can generate images
var ImageProviders = []string{ProviderOpenAI, ProviderOffline}

// ProviderConfig selects and configures one provider
type ProviderConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// NewTextGenerator builds the text generator named by cfg.Provider
func NewTextGenerator(ctx context.Context, cfg ProviderConfig) (TextGenerator, error) {
	provider := strings.ToLower(cfg.Provider)
	slog.InfoContext(ctx, "Creating text generator", "provider", provider, "model", cfg.Model)

	switch provider {
	case ProviderGemini:
		c, err := NewGemini(ctx, &GeminiConfig{APIKey: cfg.APIKey, Model: cfg.Model})
		if err != nil {
			return nil, err
		}
		return c, nil

	case ProviderOpenAI:
		c, err := NewOpenAI(&OpenAIConfig{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL})
		if err != nil {
			return nil, err
		}
		return c, nil

	case ProviderClaude:
		c, err := NewClaude(&ClaudeConfig{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL})
		if err != nil {
			return nil, err
		}
		return c, nil

	case ProviderOllama:
		c, err := NewOpenAI(ollamaConfig(cfg))
		if err != nil {
			return nil, err
		}
		return c, nil

	case ProviderOffline, "":
		return NewScriptedText(), nil

	default:
		return nil, errors.InvalidArgumentf("unsupported text provider: %s", cfg.Provider)
	}
}

// NewImageGenerator builds the image generator named by cfg.Provider
func NewImageGenerator(ctx context.Context, cfg ProviderConfig) (ImageGenerator, error) {
	provider := strings.ToLower(cfg.Provider)
	slog.InfoContext(ctx, "Creating image generator", "provider", provider, "model", cfg.Model)

	switch provider {
	case ProviderOpenAI:
		c, err := NewOpenAI(&OpenAIConfig{APIKey: cfg.APIKey, ImageModel: cfg.Model, BaseURL: cfg.BaseURL})
		if err != nil {
			return nil, err
		}
		return c, nil

	case ProviderOffline, "":
		return OfflineImages{}, nil

	default:
		return nil, errors.InvalidArgumentf("unsupported image provider: %s", cfg.Provider)
	}
}

// ollamaConfig points the OpenAI client at Ollama's compatible endpoint.
// Ollama ignores the key but the client requires one.
func ollamaConfig(cfg ProviderConfig) *OpenAIConfig {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if !strings.HasSuffix(baseURL, "/v1") {
		baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
	}
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "ollama"
	}
	return &OpenAIConfig{APIKey: apiKey, Model: cfg.Model, BaseURL: baseURL}
}
