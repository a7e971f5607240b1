// Package notify pushes mutation notes to the managers' Telegram chats.
package notify

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Telegram sends plain-text messages to a fixed set of manager chats.
type Telegram struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
	logger  *zerolog.Logger
}

// NewTelegram creates a notifier. Delivery is best-effort: send failures
// are logged, never surfaced to the mutation path.
func NewTelegram(token string, chatIDs []int64, logger *zerolog.Logger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{bot: bot, chatIDs: chatIDs, logger: logger}, nil
}

// Notify fans the text out to every configured chat.
func (t *Telegram) Notify(ctx context.Context, text string) {
	for _, chatID := range t.chatIDs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			t.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("telegram notify failed")
		}
	}
}
