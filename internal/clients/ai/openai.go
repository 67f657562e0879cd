package ai

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/KirkDiggler/chimera-protocol/internal/errors"
)

// OpenAIConfig configures the OpenAI client. BaseURL points it at any
// OpenAI-compatible server such as Ollama.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	ImageModel string
	BaseURL    string
}

// Validate validates the config and applies defaults
func (c *OpenAIConfig) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("APIKey", c.APIKey, vb)
	if c.Model == "" {
		c.Model = openai.GPT4oMini
	}
	if c.ImageModel == "" {
		c.ImageModel = openai.CreateImageModelDallE3
	}
	return vb.Build()
}

// OpenAIClient generates text through chat completions and images through
// the images endpoint
type OpenAIClient struct {
	client     *openai.Client
	model      string
	imageModel string
}

// NewOpenAI creates an OpenAI client
func NewOpenAI(cfg *OpenAIConfig) (*OpenAIClient, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid openai config")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &OpenAIClient{
		client:     openai.NewClientWithConfig(config),
		model:      cfg.Model,
		imageModel: cfg.ImageModel,
	}, nil
}

var (
	_ TextGenerator  = (*OpenAIClient)(nil)
	_ ImageGenerator = (*OpenAIClient)(nil)
)

// GenerateText sends the system prompt, history and prompt as one chat
func (c *OpenAIClient) GenerateText(ctx context.Context, req *TextRequest) (string, error) {
	if req == nil {
		return "", errors.InvalidArgument("request is required")
	}
	if err := req.Validate(); err != nil {
		return "", err
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	for _, t := range req.History {
		role := openai.ChatMessageRoleUser
		if t.Role == RoleModel {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Text})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		slog.WarnContext(ctx, "OpenAI chat request failed", "model", c.model, "error", err)
		return "", classify("openai", err, isOpenAIQuota)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.Unavailable("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateImage requests one base64-encoded image
func (c *OpenAIClient) GenerateImage(ctx context.Context, req *ImageRequest) (*Image, error) {
	if req == nil {
		return nil, errors.InvalidArgument("request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         req.Prompt,
		Model:          c.imageModel,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		slog.WarnContext(ctx, "OpenAI image request failed", "model", c.imageModel, "error", err)
		return nil, classify("openai", err, isOpenAIQuota)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, errors.Unavailable("openai returned no image data")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "openai returned malformed image data")
	}

	return &Image{Data: data, MIMEType: http.DetectContentType(data)}, nil
}

func isOpenAIQuota(err error) bool {
	var apiErr *openai.APIError
	if stderrors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return true
		}
		if code, ok := apiErr.Code.(string); ok && code == "insufficient_quota" {
			return true
		}
	}
	var reqErr *openai.RequestError
	if stderrors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}
