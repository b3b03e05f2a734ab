package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kozaktomas/photo-declutter/internal/imaging"
)

const chatModel = openai.ChatModelGPT4_1Mini

// OpenAICaptioner captions photos with the OpenAI chat completions API.
type OpenAICaptioner struct {
	client *openai.Client
}

func NewOpenAICaptioner(apiKey string) *OpenAICaptioner {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAICaptioner{client: &client}
}

func (p *OpenAICaptioner) Name() string {
	return chatModel
}

func (p *OpenAICaptioner) Caption(ctx context.Context, imageData []byte) (string, error) {
	// Resize to save costs before upload.
	resizedData, err := imaging.Resize(imageData, captionMaxSize)
	if err != nil {
		return "", fmt.Errorf("failed to resize image: %w", err)
	}

	base64Image := base64.StdEncoding.EncodeToString(resizedData)
	imageURL := "data:image/jpeg;base64," + base64Image

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: chatModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
							openai.TextContentPart(captionPrompt),
							openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
								URL:    imageURL,
								Detail: "low",
							}),
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	caption := strings.TrimSpace(resp.Choices[0].Message.Content)
	if caption == "" {
		return "", errors.New("empty caption from OpenAI")
	}
	return caption, nil
}
