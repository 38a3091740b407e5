// Package alarm mirrors error-level log entries to a fixed operator
// chat through a secondary bot, so backend failures are noticed even
// when the user-facing chat stays silent.
package alarm

import (
	tele "gopkg.in/telebot.v3"
)

// Sink delivers one-line operator notifications.
type Sink interface {
	Emit(text string) error
}

// TelegramSink sends notifications to one operator chat. Send-only:
// the underlying bot never polls for updates.
type TelegramSink struct {
	bot  *tele.Bot
	chat *tele.Chat
}

// NewTelegramSink creates a sink using a dedicated alarm bot token.
// The token is verified against the Telegram API at construction time.
func NewTelegramSink(token string, chatID int64) (*TelegramSink, error) {
	bot, err := tele.NewBot(tele.Settings{
		Token:       token,
		Synchronous: true,
	})
	if err != nil {
		return nil, err
	}

	return &TelegramSink{
		bot:  bot,
		chat: &tele.Chat{ID: chatID},
	}, nil
}

// Emit sends one message to the operator chat.
func (s *TelegramSink) Emit(text string) error {
	_, err := s.bot.Send(s.chat, text)
	return err
}
