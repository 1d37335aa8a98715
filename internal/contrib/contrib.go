// Package contrib holds the command contributions the bot registers at
// startup. Each contribution implements domain.CommandContribution and is
// assembled into a domain.ContributionList by the composition root.
package contrib

import "cmdbot/internal/core/domain"

// messageArg extracts the inbound chat message a host passes as the first
// dispatch argument.
func messageArg(args []any) (*domain.Message, bool) {
	if len(args) == 0 {
		return nil, false
	}

	msg, ok := args[0].(*domain.Message)
	return msg, ok
}
