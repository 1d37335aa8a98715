package sender

import (
	"context"
	"fmt"
	"time"

	"cmdbot/internal/core/domain"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

//go:generate mockery --name TelegramBot

type TelegramBot interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
}

type TelegramSender struct {
	bot TelegramBot
}

func NewTelegramSender(bot TelegramBot) *TelegramSender {
	return &TelegramSender{bot: bot}
}

// TelegramMessageLimit is the maximum message length the Bot API accepts.
const TelegramMessageLimit = 4096

// SendMessageReply replies to the given message, splitting text into
// API-sized chunks when needed. Returns the ID of the last sent message.
func (s *TelegramSender) SendMessageReply(ctx context.Context, message *domain.Message, text string) (int, error) {
	var lastID int

	for _, chunk := range chunkMessage(text) {
		m, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: message.ChatID,
			Text:   chunk,
			ReplyParameters: &models.ReplyParameters{
				MessageID: message.ID,
				ChatID:    message.ChatID,
			},
		})
		if err != nil {
			return 0, err
		}

		lastID = m.ID
	}

	return lastID, nil
}

func chunkMessage(text string) []string {
	runes := []rune(text)
	if len(runes) <= TelegramMessageLimit {
		return []string{text}
	}

	var chunks []string
	for len(runes) > 0 {
		n := min(len(runes), TelegramMessageLimit)
		chunks = append(chunks, string(runes[:n]))
		runes = runes[n:]
	}

	return chunks
}

const ChatActionRepeatSeconds = 5

// SendChatAction keeps transmitting the action until ctx is done. Telegram
// drops chat actions after a few seconds, hence the repeat loop.
func (s *TelegramSender) SendChatAction(ctx context.Context, chatID int64, action domain.Action) {
	log.Debug().Int64("chatID", chatID).Msg("starting action routine")
	for {
		select {
		case <-ctx.Done():
			log.Debug().Int64("chatID", chatID).Msg("done, stopping action routine")
			return
		default:
		}

		var chatAction models.ChatAction
		switch action {
		case domain.Typing:
			chatAction = models.ChatActionTyping
		default:
			chatAction = models.ChatActionTyping
		}

		log.Debug().Int64("chatID", chatID).Msg("transmitting action")
		_, err := s.bot.SendChatAction(ctx, &bot.SendChatActionParams{
			ChatID: chatID,
			Action: chatAction,
		})
		if err != nil {
			log.Err(err).Msg("error sending chat action")
			return
		}

		time.Sleep(ChatActionRepeatSeconds * time.Second)
	}
}

// NotifyAndReturnError tells the chat the command failed and hands the
// original error back to the caller.
func (s *TelegramSender) NotifyAndReturnError(ctx context.Context, err error, message *domain.Message) error {
	_, sendErr := s.SendMessageReply(ctx, message, fmt.Sprintf("command failed: %s", err))
	if sendErr != nil {
		log.Error().Err(sendErr).Msg("failed to send error notification")
	}

	return err
}
