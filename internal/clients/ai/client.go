// Package ai is the boundary to the generative text and image services used
// by the DM and player personas. Every implementation reports failures as
// Unavailable, or ResourceExhausted when the provider signals a quota or
// rate limit, so callers can pick the right fallback message.
package ai

//go:generate mockgen -destination=mock/mock_client.go -package=aimock github.com/KirkDiggler/chimera-protocol/internal/clients/ai TextGenerator,ImageGenerator

import (
	"context"
	"encoding/base64"

	"github.com/KirkDiggler/chimera-protocol/internal/errors"
)

// Role marks who spoke a turn of conversation
type Role string

// Conversation roles
const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one prior exchange in a conversation
type Turn struct {
	Role Role
	Text string
}

// TextRequest asks a persona for narrative text
type TextRequest struct {
	SystemPrompt string
	History      []Turn
	Prompt       string
	// MaxTokens caps the reply; zero means the provider default
	MaxTokens int
}

// Validate checks the request is complete
func (r *TextRequest) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("prompt", r.Prompt, vb)
	for _, t := range r.History {
		if t.Role != RoleUser && t.Role != RoleModel {
			vb.Fieldf("history", "unknown role %q", t.Role)
		}
	}
	return vb.Build()
}

// ImageFormat is the requested output encoding
type ImageFormat string

// Image formats
const (
	ImageFormatPNG  ImageFormat = "image/png"
	ImageFormatJPEG ImageFormat = "image/jpeg"
)

// ImageRequest asks for a generated image
type ImageRequest struct {
	Prompt string
	// Count must be 1; zero is treated as 1
	Count  int
	Format ImageFormat
}

// Validate checks the request is complete
func (r *ImageRequest) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("prompt", r.Prompt, vb)
	if r.Count != 0 && r.Count != 1 {
		vb.Field("count", "only single images are supported")
	}
	if r.Format != "" && r.Format != ImageFormatPNG && r.Format != ImageFormatJPEG {
		vb.Fieldf("format", "unsupported format %q", r.Format)
	}
	return vb.Build()
}

// Image is a generated image payload
type Image struct {
	Data     []byte
	MIMEType string
}

// DataURI encodes the image as a data: URI usable as an avatar reference
func (i *Image) DataURI() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// TextGenerator produces narrative text
type TextGenerator interface {
	GenerateText(ctx context.Context, req *TextRequest) (string, error)
}

// ImageGenerator produces images
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req *ImageRequest) (*Image, error)
}
