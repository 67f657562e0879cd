package ai

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/KirkDiggler/chimera-protocol/internal/errors"
)

// GeminiConfig configures the Gemini text client
type GeminiConfig struct {
	APIKey string
	Model  string
}

// Validate validates the config and applies defaults
func (c *GeminiConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("APIKey", c.APIKey, vb)
	if c.Model == "" {
		c.Model = "gemini-1.5-flash"
	}
	return vb.Build()
}

// GeminiClient generates text with Google's Gemini models
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini text client
func NewGemini(ctx context.Context, cfg *GeminiConfig) (*GeminiClient, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid gemini config")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "failed to create gemini client")
	}

	return &GeminiClient{client: client, model: cfg.Model}, nil
}

var _ TextGenerator = (*GeminiClient)(nil)

// GenerateText runs one chat exchange with the persona's system instruction
func (c *GeminiClient) GenerateText(ctx context.Context, req *TextRequest) (string, error) {
	if req == nil {
		return "", errors.InvalidArgument("request is required")
	}
	if err := req.Validate(); err != nil {
		return "", err
	}

	model := c.client.GenerativeModel(c.model)
	if req.SystemPrompt != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.SystemPrompt))
	}
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens)) // nolint:gosec // bounded by caller config
	}

	cs := model.StartChat()
	for _, t := range req.History {
		cs.History = append(cs.History, &genai.Content{
			Role:  string(t.Role),
			Parts: []genai.Part{genai.Text(t.Text)},
		})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(req.Prompt))
	if err != nil {
		slog.WarnContext(ctx, "Gemini request failed", "model", c.model, "error", err)
		return "", classify("gemini", err, isGeminiQuota)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.Unavailable("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", errors.Unavailable("gemini returned no text")
	}
	return sb.String(), nil
}

// Close releases the underlying connection
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func isGeminiQuota(err error) bool {
	if status.Code(err) == codes.ResourceExhausted {
		return true
	}
	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests
	}
	return false
}
