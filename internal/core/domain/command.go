package domain

import (
	"context"
	"strings"
)

// Command describes a registered command: a stable, process-wide unique
// identifier plus optional presentation metadata. Commands are stored by
// value and never mutated after registration.
type Command struct {
	ID       string
	Label    string
	Icon     string
	Category string
}

// CommandHandler is an executable unit bound to a command ID. Arguments are
// an opaque ordered list the handler destructures itself; no per-command
// argument schema is enforced.
type CommandHandler interface {
	Execute(ctx context.Context, args ...any) (any, error)
}

// EnabledChecker is an optional handler capability consulted during dispatch.
// Handlers that do not implement it are always enabled.
type EnabledChecker interface {
	IsEnabled(args ...any) bool
}

// VisibleChecker is an optional handler capability consulted by consumers
// that render command lists. Handlers that do not implement it are always
// visible.
type VisibleChecker interface {
	IsVisible(args ...any) bool
}

// ToggledChecker reports the on/off state of toggle-style commands. Handlers
// that do not implement it are never toggled on.
type ToggledChecker interface {
	IsToggled(args ...any) bool
}

// HandlerFunc adapts a plain function to the CommandHandler interface.
type HandlerFunc func(ctx context.Context, args ...any) (any, error)

func (f HandlerFunc) Execute(ctx context.Context, args ...any) (any, error) {
	return f(ctx, args...)
}

// CommandContribution populates the registry during startup. RegisterCommands
// is invoked exactly once, from Registry.OnStart.
type CommandContribution interface {
	RegisterCommands(r *Registry) error
}

// ContributionProvider supplies the contributions to invoke at startup, in
// invocation order. Ordering is the provider's business, not the registry's.
type ContributionProvider interface {
	CommandContributions() []CommandContribution
}

// ContributionList is a slice-backed ContributionProvider for composition
// roots that assemble their contributions explicitly.
type ContributionList []CommandContribution

func (l ContributionList) CommandContributions() []CommandContribution {
	return l
}

func ParseCommandArgs(args string) string {
	command := strings.Split(args, " ")
	return strings.Join(command[1:], " ")
}

func ParseCommand(args string) string {
	command := strings.Split(args, " ")
	return strings.ToLower(command[0])
}
