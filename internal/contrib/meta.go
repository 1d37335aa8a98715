package contrib

import (
	"context"
	"strings"

	"cmdbot/internal/core/domain"
)

// Meta contributes the commands that describe the command catalog itself:
// /help and /recent.
type Meta struct{}

func NewMeta() *Meta {
	return &Meta{}
}

func (m *Meta) RegisterCommands(r *domain.Registry) error {
	if _, err := r.RegisterCommand(domain.Command{
		ID:       "/help",
		Label:    "List available commands",
		Category: "meta",
	}, domain.HandlerFunc(func(_ context.Context, args ...any) (any, error) {
		return helpText(r, args), nil
	})); err != nil {
		return err
	}

	_, err := r.RegisterCommand(domain.Command{
		ID:       "/recent",
		Label:    "Recently used commands",
		Category: "meta",
	}, domain.HandlerFunc(func(_ context.Context, _ ...any) (any, error) {
		return recentText(r), nil
	}))

	return err
}

// helpText lists the commands visible to the calling chat, sorted by ID,
// marking toggled-on commands.
func helpText(r *domain.Registry, args []any) string {
	var b strings.Builder
	b.WriteString("available commands:")

	for _, cmd := range r.Commands() {
		if !r.IsVisible(cmd.ID, args...) {
			continue
		}

		b.WriteString("\n" + cmd.ID)
		if cmd.Label != "" {
			b.WriteString(" - " + cmd.Label)
		}
		if r.IsToggled(cmd.ID, args...) {
			b.WriteString(" [on]")
		}
	}

	return b.String()
}

func recentText(r *domain.Registry) string {
	recent := r.RecentCommands()
	if len(recent) == 0 {
		return "no recent commands"
	}

	ids := make([]string, len(recent))
	for i, cmd := range recent {
		ids[i] = cmd.ID
	}

	return "recent commands: " + strings.Join(ids, ", ")
}
