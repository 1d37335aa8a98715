package contrib

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"cmdbot/internal/core/domain"
	"cmdbot/internal/core/service"
)

// Admin contributes the operator commands: /debug, /quota, /verbose and
// /registry. Most of them are gated on the admin allowlist through the
// handler predicates.
type Admin struct {
	admins  service.AdminChecker
	tracker service.Tracker
	verbose atomic.Bool
}

func NewAdmin(admins service.AdminChecker, tracker service.Tracker) *Admin {
	return &Admin{admins: admins, tracker: tracker}
}

func (a *Admin) RegisterCommands(r *domain.Registry) error {
	if _, err := r.RegisterCommand(domain.Command{
		ID:       "/debug",
		Label:    "Show debug info",
		Category: "admin",
	}, &debugHandler{admins: a.admins, verbose: &a.verbose}); err != nil {
		return err
	}

	// Fallback for non-admin chats. The detailed handler above was
	// registered first, so it wins whenever its enabled predicate passes.
	r.RegisterHandler("/debug", domain.HandlerFunc(func(_ context.Context, _ ...any) (any, error) {
		return "debug output is restricted", nil
	}))

	if _, err := r.RegisterCommand(domain.Command{
		ID:       "/quota",
		Label:    "Show daily token usage",
		Category: "admin",
	}, domain.HandlerFunc(a.quota)); err != nil {
		return err
	}

	if _, err := r.RegisterCommand(domain.Command{
		ID:       "/verbose",
		Label:    "Toggle verbose debug output",
		Category: "admin",
	}, &verboseHandler{admins: a.admins, verbose: &a.verbose}); err != nil {
		return err
	}

	_, err := r.RegisterCommand(domain.Command{
		ID:       "/registry",
		Label:    "Dump the command registry",
		Category: "admin",
	}, &registryHandler{admins: a.admins, registry: r})

	return err
}

func (a *Admin) quota(_ context.Context, args ...any) (any, error) {
	msg, ok := messageArg(args)
	if !ok {
		return nil, errors.New("expected a message argument")
	}

	return fmt.Sprintf("tokens used today: %d, resets in %s",
		a.tracker.Usage(msg.ChatID),
		time.Until(service.NextReset()).Truncate(time.Second)), nil
}

type debugHandler struct {
	admins  service.AdminChecker
	verbose *atomic.Bool
}

func (h *debugHandler) IsEnabled(args ...any) bool {
	msg, ok := messageArg(args)
	return ok && h.admins.IsAdmin(msg.ChatID)
}

func (h *debugHandler) Execute(_ context.Context, args ...any) (any, error) {
	msg, ok := messageArg(args)
	if !ok {
		return nil, errors.New("expected a message argument")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "message ID: %d\nchat ID: %d\nuser: %s", msg.ID, msg.ChatID, msg.Username)

	if h.verbose.Load() {
		fmt.Fprintf(&b, "\ngoroutines: %d\ngo version: %s", runtime.NumGoroutine(), runtime.Version())
	}

	return b.String(), nil
}

type verboseHandler struct {
	admins  service.AdminChecker
	verbose *atomic.Bool
}

func (h *verboseHandler) IsEnabled(args ...any) bool {
	msg, ok := messageArg(args)
	return ok && h.admins.IsAdmin(msg.ChatID)
}

func (h *verboseHandler) IsVisible(args ...any) bool {
	return h.IsEnabled(args...)
}

func (h *verboseHandler) IsToggled(_ ...any) bool {
	return h.verbose.Load()
}

func (h *verboseHandler) Execute(_ context.Context, _ ...any) (any, error) {
	on := !h.verbose.Load()
	h.verbose.Store(on)

	if on {
		return "verbose debug output on", nil
	}

	return "verbose debug output off", nil
}

type registryHandler struct {
	admins   service.AdminChecker
	registry *domain.Registry
}

func (h *registryHandler) IsEnabled(args ...any) bool {
	msg, ok := messageArg(args)
	return ok && h.admins.IsAdmin(msg.ChatID)
}

func (h *registryHandler) IsVisible(args ...any) bool {
	return h.IsEnabled(args...)
}

// Execute renders one line per registered command with its handler count and
// the predicate states as seen by the calling chat.
func (h *registryHandler) Execute(_ context.Context, args ...any) (any, error) {
	var b strings.Builder

	for i, cmd := range h.registry.Commands() {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s handlers=%d enabled=%t visible=%t toggled=%t",
			cmd.ID,
			h.registry.HandlerCount(cmd.ID),
			h.registry.IsEnabled(cmd.ID, args...),
			h.registry.IsVisible(cmd.ID, args...),
			h.registry.IsToggled(cmd.ID, args...))
	}

	return b.String(), nil
}
