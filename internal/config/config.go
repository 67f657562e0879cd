// Package config loads process configuration from the environment and
// optional .env files
package config

import (
	stderrors "errors"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/KirkDiggler/chimera-protocol/internal/clients/ai"
	"github.com/KirkDiggler/chimera-protocol/internal/errors"
)

// Snapshot stores
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config is the process configuration
type Config struct {
	GRPCPort  int    `env:"CHIMERA_GRPC_PORT"  envDefault:"50051"`
	LogLevel  string `env:"CHIMERA_LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"CHIMERA_LOG_FORMAT" envDefault:"text"`

	// TextProvider voices the DM; PlayerProvider the player persona and
	// falls back to TextProvider
	TextProvider   string `env:"CHIMERA_TEXT_PROVIDER"   envDefault:"offline"`
	TextModel      string `env:"CHIMERA_TEXT_MODEL"`
	PlayerProvider string `env:"CHIMERA_PLAYER_PROVIDER"`
	PlayerModel    string `env:"CHIMERA_PLAYER_MODEL"`
	ImageProvider  string `env:"CHIMERA_IMAGE_PROVIDER"  envDefault:"offline"`
	ImageModel     string `env:"CHIMERA_IMAGE_MODEL"`

	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	OllamaURL       string `env:"OLLAMA_URL"`

	AITimeout time.Duration `env:"CHIMERA_AI_TIMEOUT" envDefault:"60s"`
	AutoPilot bool          `env:"CHIMERA_AUTOPILOT"`

	PromptsFile string `env:"CHIMERA_PROMPTS_FILE"`
	MapsDir     string `env:"CHIMERA_MAPS_DIR"`

	Store       string        `env:"CHIMERA_STORE"        envDefault:"memory"`
	RedisURL    string        `env:"REDIS_URL"            envDefault:"redis://localhost:6379/0"`
	SnapshotTTL time.Duration `env:"CHIMERA_SNAPSHOT_TTL"`
	SQLitePath  string        `env:"CHIMERA_SQLITE_PATH"  envDefault:"chimera.db"`
}

// Load reads the given .env files, when present, and parses the environment.
// Variables already set in the environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, "failed to read %s", f)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse environment")
	}
	return cfg, nil
}

// Validate checks the configuration
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.GRPCPort <= 0 || c.GRPCPort > 65535 {
		vb.Field("CHIMERA_GRPC_PORT", "must be between 1 and 65535")
	}
	errors.ValidateEnum("CHIMERA_LOG_LEVEL", strings.ToLower(c.LogLevel), []string{"debug", "info", "warn", "error"}, vb)
	errors.ValidateEnum("CHIMERA_LOG_FORMAT", strings.ToLower(c.LogFormat), []string{"text", "json"}, vb)

	errors.ValidateEnum("CHIMERA_TEXT_PROVIDER", strings.ToLower(c.TextProvider), ai.Providers, vb)
	if c.PlayerProvider != "" {
		errors.ValidateEnum("CHIMERA_PLAYER_PROVIDER", strings.ToLower(c.PlayerProvider), ai.Providers, vb)
	}
	errors.ValidateEnum("CHIMERA_IMAGE_PROVIDER", strings.ToLower(c.ImageProvider), ai.ImageProviders, vb)
	for _, p := range []string{c.TextProvider, c.PlayerProvider, c.ImageProvider} {
		if key := c.apiKeyVar(p); key != "" && c.apiKey(p) == "" {
			vb.RequiredField(key)
		}
	}
	if strings.EqualFold(c.TextProvider, ai.ProviderClaude) && c.TextModel == "" {
		vb.Field("CHIMERA_TEXT_MODEL", "is required for the claude provider")
	}
	errors.ValidatePositive("CHIMERA_AI_TIMEOUT", c.AITimeout, vb)

	errors.ValidateEnum("CHIMERA_STORE", strings.ToLower(c.Store), []string{StoreMemory, StoreRedis, StoreSQLite}, vb)
	switch strings.ToLower(c.Store) {
	case StoreRedis:
		errors.ValidateRequired("REDIS_URL", c.RedisURL, vb)
	case StoreSQLite:
		errors.ValidateRequired("CHIMERA_SQLITE_PATH", c.SQLitePath, vb)
	}
	if c.SnapshotTTL < 0 {
		vb.Field("CHIMERA_SNAPSHOT_TTL", "must not be negative")
	}

	return vb.Build()
}

// TextProviderConfig configures the DM generator
func (c *Config) TextProviderConfig() ai.ProviderConfig {
	return c.providerConfig(c.TextProvider, c.TextModel)
}

// PlayerProviderConfig configures the player persona generator
func (c *Config) PlayerProviderConfig() ai.ProviderConfig {
	if c.PlayerProvider == "" {
		return c.TextProviderConfig()
	}
	return c.providerConfig(c.PlayerProvider, c.PlayerModel)
}

// ImageProviderConfig configures the avatar generator
func (c *Config) ImageProviderConfig() ai.ProviderConfig {
	return c.providerConfig(c.ImageProvider, c.ImageModel)
}

func (c *Config) providerConfig(provider, model string) ai.ProviderConfig {
	cfg := ai.ProviderConfig{
		Provider: strings.ToLower(provider),
		APIKey:   c.apiKey(provider),
		Model:    model,
	}
	switch cfg.Provider {
	case ai.ProviderOpenAI:
		cfg.BaseURL = c.OpenAIBaseURL
	case ai.ProviderOllama:
		cfg.BaseURL = c.OllamaURL
	}
	return cfg
}

func (c *Config) apiKey(provider string) string {
	switch strings.ToLower(provider) {
	case ai.ProviderGemini:
		return c.GeminiAPIKey
	case ai.ProviderOpenAI:
		return c.OpenAIAPIKey
	case ai.ProviderClaude:
		return c.AnthropicAPIKey
	}
	return ""
}

func (c *Config) apiKeyVar(provider string) string {
	switch strings.ToLower(provider) {
	case ai.ProviderGemini:
		return "GEMINI_API_KEY"
	case ai.ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ai.ProviderClaude:
		return "ANTHROPIC_API_KEY"
	}
	return ""
}

// NewLogger builds the process logger
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
