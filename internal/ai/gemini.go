package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/kozaktomas/photo-declutter/internal/imaging"
)

const geminiModel = "gemini-2.5-flash"

// GeminiCaptioner captions photos with the Gemini API.
type GeminiCaptioner struct {
	client *genai.Client
}

func NewGeminiCaptioner(ctx context.Context, apiKey string) (*GeminiCaptioner, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiCaptioner{client: client}, nil
}

func (p *GeminiCaptioner) Name() string {
	return geminiModel
}

func (p *GeminiCaptioner) Caption(ctx context.Context, imageData []byte) (string, error) {
	// Resize to save costs before upload.
	resizedData, err := imaging.Resize(imageData, captionMaxSize)
	if err != nil {
		return "", fmt.Errorf("failed to resize image: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: captionPrompt},
				{InlineData: &genai.Blob{Data: resizedData, MIMEType: "image/jpeg"}},
			},
		},
	}

	result, err := p.client.Models.GenerateContent(ctx, geminiModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	caption := strings.TrimSpace(result.Text())
	if caption == "" {
		return "", errors.New("no response from Gemini")
	}
	return caption, nil
}
