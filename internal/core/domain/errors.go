package domain

import (
	"errors"
	"fmt"
)

var ErrCommandIDRequired = errors.New("command id must not be empty")

// DuplicateCommandError reports an attempt to register a command ID that is
// already present in the registry.
type DuplicateCommandError struct {
	CommandID string
}

func (e *DuplicateCommandError) Error() string {
	return fmt.Sprintf("command %q is already registered", e.CommandID)
}

// NoActiveHandlerError reports a dispatch for which no enabled handler
// exists. The command ID and argument snapshot stay machine-inspectable
// through errors.As.
type NoActiveHandlerError struct {
	CommandID string
	Args      []any
}

func (e *NoActiveHandlerError) Error() string {
	return fmt.Sprintf("no active handler for command %q, args: %v", e.CommandID, e.Args)
}
