package generator

import (
	"context"
	"fmt"

	"cmdbot/internal/core/domain"

	"github.com/revrost/go-openrouter"
)

type OpenRouterGenerator struct {
	client       *openrouter.Client
	model        string
	systemPrompt string
}

func NewOpenRouterGenerator(apiKey, model, systemPrompt string) *OpenRouterGenerator {
	return &OpenRouterGenerator{
		model:        model,
		systemPrompt: systemPrompt,
		client: openrouter.NewClient(
			apiKey,
			openrouter.WithXTitle("cmdbot"),
		),
	}
}

func (c *OpenRouterGenerator) GenerateFromPrompt(ctx context.Context, prompt string) (domain.ModelResponse, error) {
	ccr := openrouter.ChatCompletionRequest{
		Model: c.model,
		Messages: []openrouter.ChatCompletionMessage{
			{
				Role: openrouter.ChatMessageRoleSystem,
				Content: openrouter.Content{
					Text: c.systemPrompt,
				},
			},
			{
				Role: openrouter.ChatMessageRoleUser,
				Content: openrouter.Content{
					Text: prompt,
				},
			},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, ccr)
	if err != nil {
		return domain.ModelResponse{}, fmt.Errorf("openrouter API error: %w", err)
	}

	return domain.ModelResponse{
		Response: resp.Choices[0].Message.Content.Text,
		Metadata: domain.ResponseMetadata{
			Model:            resp.Model,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}
