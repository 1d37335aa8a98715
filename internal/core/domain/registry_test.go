package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockHandler struct {
	result   any
	err      error
	enabled  bool
	visible  bool
	toggled  bool
	executed int
	lastArgs []any
}

func newMockHandler(result any) *mockHandler {
	return &mockHandler{result: result, enabled: true, visible: true}
}

func (m *mockHandler) Execute(_ context.Context, args ...any) (any, error) {
	m.executed++
	m.lastArgs = args
	return m.result, m.err
}

func (m *mockHandler) IsEnabled(_ ...any) bool { return m.enabled }
func (m *mockHandler) IsVisible(_ ...any) bool { return m.visible }
func (m *mockHandler) IsToggled(_ ...any) bool { return m.toggled }

// bareHandler implements none of the optional predicates.
type bareHandler struct {
	result any
}

func (b *bareHandler) Execute(_ context.Context, _ ...any) (any, error) {
	return b.result, nil
}

func TestRegisterCommand(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.RegisterCommand(Command{ID: "/test", Label: "Test"}, nil)
	require.NoError(t, err)

	cmd, ok := r.GetCommand("/test")
	assert.True(t, ok)
	assert.Equal(t, "Test", cmd.Label)
}

func TestRegisterCommandEmptyID(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.RegisterCommand(Command{Label: "no id"}, nil)
	require.ErrorIs(t, err, ErrCommandIDRequired)
}

func TestRegisterCommandDuplicate(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.RegisterCommand(Command{ID: "/test", Label: "first"}, nil)
	require.NoError(t, err)

	h := newMockHandler(nil)
	_, err = r.RegisterCommand(Command{ID: "/test", Label: "second"}, h)
	require.Error(t, err)

	var dup *DuplicateCommandError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "/test", dup.CommandID)

	// first registration intact, losing handler never added
	cmd, ok := r.GetCommand("/test")
	assert.True(t, ok)
	assert.Equal(t, "first", cmd.Label)
	assert.Equal(t, 0, r.HandlerCount("/test"))
}

func TestRegisterCommandWithHandler(t *testing.T) {
	r := NewRegistry(nil)
	h := newMockHandler("ok")

	_, err := r.RegisterCommand(Command{ID: "/test"}, h)
	require.NoError(t, err)

	got, ok := r.GetActiveHandler("/test")
	assert.True(t, ok)
	assert.Same(t, h, got.(*mockHandler))
}

func TestRegisterCommandCompositeDispose(t *testing.T) {
	r := NewRegistry(nil)
	h := newMockHandler("ok")

	d, err := r.RegisterCommand(Command{ID: "/test"}, h)
	require.NoError(t, err)

	d.Dispose()

	_, ok := r.GetCommand("/test")
	assert.False(t, ok)
	_, ok = r.GetActiveHandler("/test")
	assert.False(t, ok)

	// repeated dispose is a no-op
	d.Dispose()
}

func TestCompositeDisposeAfterManualUnregister(t *testing.T) {
	r := NewRegistry(nil)
	h := newMockHandler("ok")

	d, err := r.RegisterCommand(Command{ID: "/x"}, h)
	require.NoError(t, err)

	// command metadata released out of band first
	r.UnregisterCommand("/x")
	d.Dispose()

	_, ok := r.GetCommand("/x")
	assert.False(t, ok)
	_, ok = r.GetActiveHandler("/x")
	assert.False(t, ok)
}

func TestFirstRegisteredEligibleWins(t *testing.T) {
	type testCase struct {
		description string
		h1Enabled   bool
		h2Enabled   bool
		want        string
		wantFound   bool
	}

	testCases := []testCase{
		{
			description: "first enabled wins regardless of second",
			h1Enabled:   true,
			h2Enabled:   false,
			want:        "h1",
			wantFound:   true,
		},
		{
			description: "first disabled falls through to second",
			h1Enabled:   false,
			h2Enabled:   true,
			want:        "h2",
			wantFound:   true,
		},
		{
			description: "both enabled still picks first",
			h1Enabled:   true,
			h2Enabled:   true,
			want:        "h1",
			wantFound:   true,
		},
		{
			description: "none enabled finds nothing",
			h1Enabled:   false,
			h2Enabled:   false,
			wantFound:   false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			r := NewRegistry(nil)
			h1 := newMockHandler("h1")
			h1.enabled = tc.h1Enabled
			h2 := newMockHandler("h2")
			h2.enabled = tc.h2Enabled

			r.RegisterHandler("/x", h1)
			r.RegisterHandler("/x", h2)

			got, ok := r.GetActiveHandler("/x")
			assert.Equal(t, tc.wantFound, ok)
			if tc.wantFound {
				assert.Equal(t, tc.want, got.(*mockHandler).result)
			}
		})
	}
}

func TestPredicateDefaultsTrueWhenAbsent(t *testing.T) {
	r := NewRegistry(nil)
	r.RegisterHandler("/x", &bareHandler{result: "bare"})

	assert.True(t, r.IsEnabled("/x"))
	assert.True(t, r.IsVisible("/x"))
	// toggled defaults to off
	assert.False(t, r.IsToggled("/x"))
}

func TestGetVisibleHandler(t *testing.T) {
	r := NewRegistry(nil)
	h1 := newMockHandler("h1")
	h1.visible = false
	h2 := newMockHandler("h2")

	r.RegisterHandler("/x", h1)
	r.RegisterHandler("/x", h2)

	got, ok := r.GetVisibleHandler("/x")
	require.True(t, ok)
	assert.Equal(t, "h2", got.(*mockHandler).result)
}

func TestGetToggledHandler(t *testing.T) {
	r := NewRegistry(nil)
	h1 := newMockHandler("h1")
	h2 := newMockHandler("h2")
	h2.toggled = true

	r.RegisterHandler("/x", h1)
	r.RegisterHandler("/x", h2)

	got, ok := r.GetToggledHandler("/x")
	require.True(t, ok)
	assert.Equal(t, "h2", got.(*mockHandler).result)
	assert.True(t, r.IsToggled("/x"))
}

func TestDisposeHandlerRemovesOnlyItself(t *testing.T) {
	r := NewRegistry(nil)
	h1 := newMockHandler("h1")
	h2 := newMockHandler("h2")

	d1 := r.RegisterHandler("/x", h1)
	r.RegisterHandler("/x", h2)

	d1.Dispose()

	got, ok := r.GetActiveHandler("/x")
	require.True(t, ok)
	assert.Equal(t, "h2", got.(*mockHandler).result)

	// disposing again has no effect
	d1.Dispose()
	assert.Equal(t, 1, r.HandlerCount("/x"))
}

func TestSameHandlerRegisteredTwice(t *testing.T) {
	r := NewRegistry(nil)
	h := newMockHandler("h")

	d1 := r.RegisterHandler("/x", h)
	r.RegisterHandler("/x", h)
	assert.Equal(t, 2, r.HandlerCount("/x"))

	// each registration disposes independently even for the same value
	d1.Dispose()
	assert.Equal(t, 1, r.HandlerCount("/x"))

	d1.Dispose()
	assert.Equal(t, 1, r.HandlerCount("/x"))
}

func TestExecuteCommand(t *testing.T) {
	r := NewRegistry(nil)
	h := newMockHandler(42)
	r.RegisterHandler("/x", h)

	result, err := r.ExecuteCommand(context.Background(), "/x", "arg1", 2)
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 1, h.executed)
	assert.Equal(t, []any{"arg1", 2}, h.lastArgs)
}

func TestExecuteCommandNoActiveHandler(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.ExecuteCommand(context.Background(), "/missing", "arg")
	require.Error(t, err)

	var noHandler *NoActiveHandlerError
	require.ErrorAs(t, err, &noHandler)
	assert.Equal(t, "/missing", noHandler.CommandID)
	assert.Equal(t, []any{"arg"}, noHandler.Args)
	assert.Contains(t, err.Error(), "/missing")
}

func TestExecuteCommandAllHandlersDisabled(t *testing.T) {
	r := NewRegistry(nil)
	h := newMockHandler("h")
	h.enabled = false
	r.RegisterHandler("/x", h)

	_, err := r.ExecuteCommand(context.Background(), "/x")

	var noHandler *NoActiveHandlerError
	require.ErrorAs(t, err, &noHandler)
	assert.Equal(t, 0, h.executed)
}

func TestExecuteCommandHandlerErrorPassesThrough(t *testing.T) {
	r := NewRegistry(nil)
	handlerErr := errors.New("handler failed")
	h := newMockHandler(nil)
	h.err = handlerErr
	r.RegisterHandler("/x", h)

	_, err := r.ExecuteCommand(context.Background(), "/x")
	require.ErrorIs(t, err, handlerErr)
	assert.Equal(t, handlerErr, err)
}

type mockContribution struct {
	name     string
	err      error
	order    *[]string
	commands []Command
}

func (m *mockContribution) RegisterCommands(r *Registry) error {
	*m.order = append(*m.order, m.name)
	if m.err != nil {
		return m.err
	}

	for _, cmd := range m.commands {
		if _, err := r.RegisterCommand(cmd, nil); err != nil {
			return err
		}
	}

	return nil
}

func TestOnStart(t *testing.T) {
	var order []string
	r := NewRegistry(ContributionList{
		&mockContribution{name: "a", order: &order, commands: []Command{{ID: "/a"}}},
		&mockContribution{name: "b", order: &order, commands: []Command{{ID: "/b"}}},
	})

	require.NoError(t, r.OnStart())
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, []string{"/a", "/b"}, r.CommandIDs())
}

func TestOnStartAbortsOnFirstError(t *testing.T) {
	var order []string
	boom := errors.New("boom")
	r := NewRegistry(ContributionList{
		&mockContribution{name: "a", order: &order, commands: []Command{{ID: "/a"}}},
		&mockContribution{name: "b", order: &order, err: boom},
		&mockContribution{name: "c", order: &order, commands: []Command{{ID: "/c"}}},
	})

	err := r.OnStart()
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a", "b"}, order)

	_, ok := r.GetCommand("/c")
	assert.False(t, ok)
}

func TestOnStartNilProvider(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.OnStart())
}

func TestExecutionEvents(t *testing.T) {
	r := NewRegistry(nil)
	r.RegisterHandler("/x", newMockHandler("ok"))

	var will, did []CommandEvent
	r.OnWillExecuteCommand(func(e CommandEvent) { will = append(will, e) })
	r.OnDidExecuteCommand(func(e CommandEvent) { did = append(did, e) })

	_, err := r.ExecuteCommand(context.Background(), "/x", "arg")
	require.NoError(t, err)

	require.Len(t, will, 1)
	require.Len(t, did, 1)
	assert.Equal(t, "/x", will[0].CommandID)
	assert.Equal(t, []any{"arg"}, did[0].Args)
}

func TestDidExecuteSkippedOnError(t *testing.T) {
	r := NewRegistry(nil)
	h := newMockHandler(nil)
	h.err = errors.New("fail")
	r.RegisterHandler("/x", h)

	var will, did int
	r.OnWillExecuteCommand(func(CommandEvent) { will++ })
	r.OnDidExecuteCommand(func(CommandEvent) { did++ })

	_, err := r.ExecuteCommand(context.Background(), "/x")
	require.Error(t, err)
	assert.Equal(t, 1, will)
	assert.Equal(t, 0, did)
}

func TestEventsSkippedWhenNoHandler(t *testing.T) {
	r := NewRegistry(nil)

	var will int
	r.OnWillExecuteCommand(func(CommandEvent) { will++ })

	_, err := r.ExecuteCommand(context.Background(), "/missing")
	require.Error(t, err)
	assert.Equal(t, 0, will)
}

func TestListenerDisposeStopsDelivery(t *testing.T) {
	r := NewRegistry(nil)
	r.RegisterHandler("/x", newMockHandler("ok"))

	var did int
	d := r.OnDidExecuteCommand(func(CommandEvent) { did++ })

	_, err := r.ExecuteCommand(context.Background(), "/x")
	require.NoError(t, err)
	assert.Equal(t, 1, did)

	d.Dispose()
	d.Dispose()

	_, err = r.ExecuteCommand(context.Background(), "/x")
	require.NoError(t, err)
	assert.Equal(t, 1, did)
}

func TestRecentCommands(t *testing.T) {
	r := NewRegistry(nil)
	for _, id := range []string{"/a", "/b", "/c"} {
		_, err := r.RegisterCommand(Command{ID: id}, nil)
		require.NoError(t, err)
	}

	r.AddRecentCommand("/a")
	r.AddRecentCommand("/b")
	r.AddRecentCommand("/c")
	// re-recording moves to front instead of duplicating
	r.AddRecentCommand("/a")

	recent := r.RecentCommands()
	require.Len(t, recent, 3)
	assert.Equal(t, "/a", recent[0].ID)
	assert.Equal(t, "/c", recent[1].ID)
	assert.Equal(t, "/b", recent[2].ID)
}

func TestRecentCommandsSkipsUnregistered(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.RegisterCommand(Command{ID: "/a"}, nil)
	require.NoError(t, err)
	_, err = r.RegisterCommand(Command{ID: "/b"}, nil)
	require.NoError(t, err)

	r.AddRecentCommand("/a", "/b")
	r.UnregisterCommand("/b")

	recent := r.RecentCommands()
	require.Len(t, recent, 1)
	assert.Equal(t, "/a", recent[0].ID)
}

func TestClearCommandHistory(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.RegisterCommand(Command{ID: "/a"}, nil)
	require.NoError(t, err)

	r.AddRecentCommand("/a")
	r.ClearCommandHistory()

	assert.Empty(t, r.RecentCommands())
}

func TestCommandIDs(t *testing.T) {
	r := NewRegistry(nil)
	for _, id := range []string{"/c", "/a", "/b"} {
		_, err := r.RegisterCommand(Command{ID: id}, nil)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"/a", "/b", "/c"}, r.CommandIDs())

	commands := r.Commands()
	require.Len(t, commands, 3)
	assert.Equal(t, "/a", commands[0].ID)
}

func TestUnregisterCommandKeepsHandlers(t *testing.T) {
	r := NewRegistry(nil)
	h := newMockHandler("ok")
	_, err := r.RegisterCommand(Command{ID: "/x"}, nil)
	require.NoError(t, err)
	r.RegisterHandler("/x", h)

	r.UnregisterCommand("/x")

	_, ok := r.GetCommand("/x")
	assert.False(t, ok)
	_, ok = r.GetActiveHandler("/x")
	assert.True(t, ok)

	// re-registering after disposal is allowed again
	_, err = r.RegisterCommand(Command{ID: "/x"}, nil)
	require.NoError(t, err)
}

func TestHandlerWithoutRegisteredCommand(t *testing.T) {
	r := NewRegistry(nil)
	r.RegisterHandler("/orphan", newMockHandler("ok"))

	_, ok := r.GetCommand("/orphan")
	assert.False(t, ok)

	result, err := r.ExecuteCommand(context.Background(), "/orphan")
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}
