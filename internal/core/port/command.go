package port

import "context"

type CommandDispatcher interface {
	// ExecuteCommand resolves the active handler for commandID and runs it with args,
	// returning whatever the handler produced.
	ExecuteCommand(ctx context.Context, commandID string, args ...any) (any, error)
}
