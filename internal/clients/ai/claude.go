package ai

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/KirkDiggler/chimera-protocol/internal/errors"
)

const defaultClaudeMaxTokens = 1000

// ClaudeConfig configures the Anthropic client
type ClaudeConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Validate validates the config and applies defaults
func (c *ClaudeConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("APIKey", c.APIKey, vb)
	errors.ValidateRequired("Model", c.Model, vb)
	return vb.Build()
}

// ClaudeClient generates text with Anthropic models
type ClaudeClient struct {
	client *anthropic.Client
	model  string
}

// NewClaude creates an Anthropic text client
func NewClaude(cfg *ClaudeConfig) (*ClaudeClient, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid claude config")
	}

	var opts []anthropic.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}

	return &ClaudeClient{
		client: anthropic.NewClient(cfg.APIKey, opts...),
		model:  cfg.Model,
	}, nil
}

var _ TextGenerator = (*ClaudeClient)(nil)

// GenerateText sends the conversation as alternating user/assistant messages
func (c *ClaudeClient) GenerateText(ctx context.Context, req *TextRequest) (string, error) {
	if req == nil {
		return "", errors.InvalidArgument("request is required")
	}
	if err := req.Validate(); err != nil {
		return "", err
	}

	messages := make([]anthropic.Message, 0, len(req.History)+1)
	for _, t := range req.History {
		role := anthropic.RoleUser
		if t.Role == RoleModel {
			role = anthropic.RoleAssistant
		}
		messages = append(messages, anthropic.Message{
			Role:    role,
			Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(t.Text)},
		})
	}
	messages = append(messages, anthropic.Message{
		Role:    anthropic.RoleUser,
		Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(req.Prompt)},
	})

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultClaudeMaxTokens
	}

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		System:    req.SystemPrompt,
		Messages:  messages,
		MaxTokens: maxTokens,
	})
	if err != nil {
		slog.WarnContext(ctx, "Claude request failed", "model", c.model, "error", err)
		return "", classify("claude", err, isClaudeQuota)
	}

	var sb strings.Builder
	for _, content := range resp.Content {
		if content.Text != nil {
			sb.WriteString(*content.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.Unavailable("claude returned no content")
	}
	return sb.String(), nil
}

func isClaudeQuota(err error) bool {
	var apiErr *anthropic.APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.IsRateLimitErr()
	}
	return false
}
