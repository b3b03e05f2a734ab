// Package ai generates short captions for keeper photos in export manifests.
// Captioning is optional and only enabled when an API key is configured.
package ai

import (
	"context"

	"github.com/kozaktomas/photo-declutter/internal/config"
)

// captionPrompt asks for a single plain-text line, no JSON, so the response
// can be dropped into the manifest as-is.
const captionPrompt = "Describe this photo in one short sentence suitable as a caption. " +
	"Reply with the caption only, no quotes, no preamble."

// captionMaxSize limits the longest edge before upload to save tokens.
const captionMaxSize = 800

// Captioner produces a one-line caption for an image.
type Captioner interface {
	// Caption returns a short description of the image.
	Caption(ctx context.Context, imageData []byte) (string, error)
	// Name identifies the underlying model.
	Name() string
}

// FromConfig picks a captioner based on configured credentials. OpenAI wins
// when both are set. Returns nil when no provider is configured.
func FromConfig(ctx context.Context, cfg *config.Config) (Captioner, error) {
	if cfg.OpenAI.Token != "" {
		return NewOpenAICaptioner(cfg.OpenAI.Token), nil
	}
	if cfg.Gemini.APIKey != "" {
		return NewGeminiCaptioner(ctx, cfg.Gemini.APIKey)
	}
	return nil, nil
}
