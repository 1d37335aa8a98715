package contrib

import (
	"context"
	"errors"

	"cmdbot/internal/core/domain"
	"cmdbot/internal/core/port"
	"cmdbot/internal/core/service"
)

// Ask contributes /ask: a one-shot completion from the configured text
// generator, gated by the per-chat daily token quota.
type Ask struct {
	generator  port.TextGenerator
	tracker    service.Tracker
	configured bool
}

func NewAsk(generator port.TextGenerator, tracker service.Tracker, configured bool) *Ask {
	return &Ask{generator: generator, tracker: tracker, configured: configured}
}

func (a *Ask) RegisterCommands(r *domain.Registry) error {
	_, err := r.RegisterCommand(domain.Command{
		ID:       "/ask",
		Label:    "Ask the model a question",
		Category: "chat",
	}, &askHandler{generator: a.generator, tracker: a.tracker, configured: a.configured})

	return err
}

type askHandler struct {
	generator  port.TextGenerator
	tracker    service.Tracker
	configured bool
}

// IsEnabled requires a configured API key and a chat still under its daily
// token quota.
func (h *askHandler) IsEnabled(args ...any) bool {
	if !h.configured {
		return false
	}

	msg, ok := messageArg(args)
	if !ok {
		return false
	}

	return h.tracker.UnderLimit(msg.ChatID)
}

func (h *askHandler) Execute(ctx context.Context, args ...any) (any, error) {
	msg, ok := messageArg(args)
	if !ok {
		return nil, errors.New("expected a message argument")
	}

	prompt := domain.ParseCommandArgs(msg.Text)
	if prompt == "" {
		return "please input a prompt", nil
	}

	response, err := h.generator.GenerateFromPrompt(ctx, msg.Username+": "+prompt)
	if err != nil {
		return nil, err
	}

	h.tracker.AddUsage(msg.ChatID, response.Metadata.TotalTokens)

	return response.Response, nil
}
