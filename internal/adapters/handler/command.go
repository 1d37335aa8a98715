package handler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cmdbot/internal/core/domain"
	"cmdbot/internal/core/port"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Command bridges Telegram updates to the command registry: it parses the
// slash command, dispatches it and replies with whatever the handler
// produced.
type Command struct {
	dispatcher port.CommandDispatcher
	sender     port.TextSender
	timeout    time.Duration
}

func NewCommand(dispatcher port.CommandDispatcher, sender port.TextSender, timeout time.Duration) *Command {
	return &Command{dispatcher: dispatcher, sender: sender, timeout: timeout}
}

// Handle is the go-telegram/bot entrypoint for "/" prefixed messages.
// Dispatch runs on its own goroutine so the update loop never blocks on a
// slow handler.
func (c *Command) Handle(_ context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	go c.dispatch(update)
}

func (c *Command) dispatch(update *models.Update) {
	text := update.Message.Text
	if update.Message.Caption != "" {
		text = update.Message.Caption
	}

	cmd := domain.ParseCommand(text)

	l := log.With().
		Str("invocationId", uuid.Must(uuid.NewV4()).String()).
		Str("command", cmd).
		Int64("chatId", update.Message.Chat.ID).
		Logger()

	l.Debug().Str("message", text).Msg("received command")

	message := &domain.Message{
		ID:       update.Message.ID,
		ChatID:   update.Message.Chat.ID,
		Username: getUserNameOrFirstName(update.Message.From),
		Text:     text,
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	go c.sender.SendChatAction(ctx, message.ChatID, domain.Typing)

	result, err := c.dispatcher.ExecuteCommand(ctx, cmd, message)

	var noHandler *domain.NoActiveHandlerError
	switch {
	case errors.As(err, &noHandler):
		l.Debug().Msg("no active handler for command")
		if _, err := c.sender.SendMessageReply(ctx, message, "unknown or unavailable command"); err != nil {
			l.Error().Err(err).Msg("failed to send reply")
		}
	case err != nil:
		l.Error().Err(err).Msg("command failed")
		_ = c.sender.NotifyAndReturnError(ctx, err, message)
	default:
		c.reply(ctx, &l, message, result)
	}
}

func (c *Command) reply(ctx context.Context, l *zerolog.Logger, message *domain.Message, result any) {
	var text string

	switch v := result.(type) {
	case nil:
		return
	case string:
		text = v
	case fmt.Stringer:
		text = v.String()
	default:
		text = fmt.Sprintf("%v", v)
	}

	if text == "" {
		return
	}

	if _, err := c.sender.SendMessageReply(ctx, message, text); err != nil {
		l.Error().Err(err).Msg("failed to send reply")
	}
}

func getUserNameOrFirstName(user *models.User) string {
	if user == nil {
		return ""
	}

	if user.Username == "" {
		return user.FirstName
	}

	return "@" + user.Username
}
