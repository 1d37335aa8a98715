package port

import (
	"context"

	"cmdbot/internal/core/domain"
)

type TextGenerator interface {
	// GenerateFromPrompt produces a one-shot completion for the given prompt.
	GenerateFromPrompt(ctx context.Context, prompt string) (domain.ModelResponse, error)
}
