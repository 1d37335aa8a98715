package domain

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// handlerEntry pins one registration of a handler. The same handler value may
// be registered any number of times; each registration disposes independently.
type handlerEntry struct {
	handler CommandHandler
}

// CommandEvent notifies execution listeners about a dispatch.
type CommandEvent struct {
	CommandID string
	Args      []any
}

type commandListener struct {
	fn func(CommandEvent)
}

// Registry is the process-wide command catalog: command metadata by ID plus
// an ordered handler list per ID. Registration order is dispatch priority,
// the first eligible handler wins. A single instance is created by the
// composition root and passed explicitly to all consumers.
type Registry struct {
	mu          sync.RWMutex
	provider    ContributionProvider
	commands    map[string]Command
	handlers    map[string][]*handlerEntry
	recent      []string
	willExecute []*commandListener
	didExecute  []*commandListener
}

// NewRegistry returns an empty registry. A nil provider means OnStart has
// nothing to sweep; registration stays available to any caller either way.
func NewRegistry(provider ContributionProvider) *Registry {
	return &Registry{
		provider: provider,
		commands: make(map[string]Command),
		handlers: make(map[string][]*handlerEntry),
	}
}

// OnStart pulls every contribution from the provider, in provider order, and
// lets each register its commands. The first failing contribution aborts the
// sweep; the registry does not retry or skip, startup failures belong to the
// host.
func (r *Registry) OnStart() error {
	if r.provider == nil {
		return nil
	}

	for _, contribution := range r.provider.CommandContributions() {
		if err := contribution.RegisterCommands(r); err != nil {
			return fmt.Errorf("command contribution %T: %w", contribution, err)
		}
	}

	return nil
}

// RegisterCommand adds cmd to the catalog, optionally together with an
// initial handler. The duplicate check runs before any handler registration.
// The returned disposable undoes both registrations; its children are
// independent and idempotent, so any release order is fine.
func (r *Registry) RegisterCommand(cmd Command, handler CommandHandler) (Disposable, error) {
	if cmd.ID == "" {
		return nil, ErrCommandIDRequired
	}

	r.mu.Lock()
	if _, ok := r.commands[cmd.ID]; ok {
		r.mu.Unlock()
		return nil, &DuplicateCommandError{CommandID: cmd.ID}
	}
	r.commands[cmd.ID] = cmd
	r.mu.Unlock()

	log.Info().Str("command", cmd.ID).Msg("adding command to registry")

	commandDisposable := DisposableFunc(func() {
		r.UnregisterCommand(cmd.ID)
	})

	if handler == nil {
		return commandDisposable, nil
	}

	return NewDisposableCollection(commandDisposable, r.RegisterHandler(cmd.ID, handler)), nil
}

// UnregisterCommand removes the command metadata for id. Handlers registered
// under the same ID are untouched; they are released through their own
// disposables. Unknown IDs are a no-op.
func (r *Registry) UnregisterCommand(id string) {
	r.mu.Lock()
	delete(r.commands, id)
	r.mu.Unlock()
}

// RegisterHandler appends handler to the ordered list for commandID. A
// registered Command is not required; handler lists and command metadata live
// independently. The returned disposable removes exactly this registration
// and is idempotent.
func (r *Registry) RegisterHandler(commandID string, handler CommandHandler) Disposable {
	entry := &handlerEntry{handler: handler}

	r.mu.Lock()
	r.handlers[commandID] = append(r.handlers[commandID], entry)
	r.mu.Unlock()

	log.Info().Str("command", commandID).Msg("adding command handler to registry")

	return DisposableFunc(func() {
		r.removeHandler(commandID, entry)
	})
}

func (r *Registry) removeHandler(commandID string, entry *handlerEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.handlers[commandID]
	for i, e := range entries {
		if e == entry {
			r.handlers[commandID] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// GetActiveHandler returns the first handler for commandID whose IsEnabled
// predicate passes for args. The scan is left to right over registration
// order and short-circuits on the first match.
func (r *Registry) GetActiveHandler(commandID string, args ...any) (CommandHandler, bool) {
	return r.firstMatch(commandID, func(h CommandHandler) bool {
		if checker, ok := h.(EnabledChecker); ok {
			return checker.IsEnabled(args...)
		}
		return true
	})
}

// GetVisibleHandler is GetActiveHandler for the IsVisible predicate.
func (r *Registry) GetVisibleHandler(commandID string, args ...any) (CommandHandler, bool) {
	return r.firstMatch(commandID, func(h CommandHandler) bool {
		if checker, ok := h.(VisibleChecker); ok {
			return checker.IsVisible(args...)
		}
		return true
	})
}

// GetToggledHandler returns the first handler reporting a toggled-on state.
// Unlike enabled and visible, handlers without the capability count as off.
func (r *Registry) GetToggledHandler(commandID string, args ...any) (CommandHandler, bool) {
	return r.firstMatch(commandID, func(h CommandHandler) bool {
		if checker, ok := h.(ToggledChecker); ok {
			return checker.IsToggled(args...)
		}
		return false
	})
}

func (r *Registry) firstMatch(commandID string, eligible func(CommandHandler) bool) (CommandHandler, bool) {
	r.mu.RLock()
	entries := r.handlers[commandID]
	handlers := make([]CommandHandler, len(entries))
	for i, e := range entries {
		handlers[i] = e.handler
	}
	r.mu.RUnlock()

	// Predicates are caller code, evaluated outside the lock.
	for _, h := range handlers {
		if eligible(h) {
			return h, true
		}
	}

	return nil, false
}

func (r *Registry) IsEnabled(commandID string, args ...any) bool {
	_, ok := r.GetActiveHandler(commandID, args...)
	return ok
}

func (r *Registry) IsVisible(commandID string, args ...any) bool {
	_, ok := r.GetVisibleHandler(commandID, args...)
	return ok
}

func (r *Registry) IsToggled(commandID string, args ...any) bool {
	_, ok := r.GetToggledHandler(commandID, args...)
	return ok
}

// ExecuteCommand resolves the active handler for commandID and runs it with
// args. Handler results and errors pass through unmodified; the registry
// never wraps, retries or recovers. Without an active handler the call fails
// with a NoActiveHandlerError carrying the ID and argument snapshot.
// Will-execute listeners fire before the handler, did-execute listeners only
// after a run that returned no error.
func (r *Registry) ExecuteCommand(ctx context.Context, commandID string, args ...any) (any, error) {
	log.Debug().Str("command", commandID).Msg("dispatching command")

	handler, ok := r.GetActiveHandler(commandID, args...)
	if !ok {
		return nil, &NoActiveHandlerError{CommandID: commandID, Args: args}
	}

	event := CommandEvent{CommandID: commandID, Args: args}
	notify(r.snapshotListeners(&r.willExecute), event)

	result, err := handler.Execute(ctx, args...)
	if err != nil {
		return result, err
	}

	notify(r.snapshotListeners(&r.didExecute), event)

	return result, nil
}

// OnWillExecuteCommand registers fn to run before every dispatched handler.
// The returned disposable stops delivery.
func (r *Registry) OnWillExecuteCommand(fn func(CommandEvent)) Disposable {
	return r.addListener(&r.willExecute, fn)
}

// OnDidExecuteCommand registers fn to run after every handler invocation
// that returned without error.
func (r *Registry) OnDidExecuteCommand(fn func(CommandEvent)) Disposable {
	return r.addListener(&r.didExecute, fn)
}

func (r *Registry) addListener(list *[]*commandListener, fn func(CommandEvent)) Disposable {
	listener := &commandListener{fn: fn}

	r.mu.Lock()
	*list = append(*list, listener)
	r.mu.Unlock()

	return DisposableFunc(func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		for i, l := range *list {
			if l == listener {
				*list = append((*list)[:i], (*list)[i+1:]...)
				return
			}
		}
	})
}

func (r *Registry) snapshotListeners(list *[]*commandListener) []*commandListener {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*commandListener, len(*list))
	copy(out, *list)
	return out
}

func notify(listeners []*commandListener, event CommandEvent) {
	for _, l := range listeners {
		l.fn(event)
	}
}

// AddRecentCommand moves ids to the front of the MRU history, newest first,
// deduplicating earlier occurrences. Recording is the host's decision;
// ExecuteCommand does not record by itself.
func (r *Registry) AddRecentCommand(ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		for i, existing := range r.recent {
			if existing == id {
				r.recent = append(r.recent[:i], r.recent[i+1:]...)
				break
			}
		}
		r.recent = append([]string{id}, r.recent...)
	}
}

// RecentCommands returns the MRU history, most recent first. IDs whose
// Command has since been unregistered are skipped.
func (r *Registry) RecentCommands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Command, 0, len(r.recent))
	for _, id := range r.recent {
		if cmd, ok := r.commands[id]; ok {
			out = append(out, cmd)
		}
	}

	return out
}

// ClearCommandHistory drops the MRU history.
func (r *Registry) ClearCommandHistory() {
	r.mu.Lock()
	r.recent = nil
	r.mu.Unlock()
}

// Commands returns a snapshot of all registered commands, sorted by ID.
func (r *Registry) Commands() []Command {
	r.mu.RLock()
	out := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		out = append(out, cmd)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CommandIDs returns a snapshot of all registered command IDs, sorted.
func (r *Registry) CommandIDs() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.commands))
	for id := range r.commands {
		out = append(out, id)
	}
	r.mu.RUnlock()

	sort.Strings(out)
	return out
}

// GetCommand returns the Command registered under id.
func (r *Registry) GetCommand(id string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmd, ok := r.commands[id]
	return cmd, ok
}

// HandlerCount reports how many handlers are currently registered for id.
func (r *Registry) HandlerCount(id string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.handlers[id])
}
