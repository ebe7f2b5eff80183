package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Update is a Telegram webhook update with the accessors the bot reads.
type Update struct {
	tgbotapi.Update
}

// Text returns the trimmed message text, or "" when the update carries none.
func (u *Update) Text() string {
	if u == nil || u.Message == nil {
		return ""
	}
	return strings.TrimSpace(u.Message.Text)
}

// ChatID returns the originating chat id and whether it is known.
func (u *Update) ChatID() (int64, bool) {
	if u == nil || u.Message == nil || u.Message.Chat == nil {
		return 0, false
	}
	return u.Message.Chat.ID, true
}

// Sender returns the sender's id (nil when absent) and username.
func (u *Update) Sender() (*int64, string) {
	if u == nil || u.Message == nil || u.Message.From == nil {
		return nil, ""
	}
	id := u.Message.From.ID
	return &id, u.Message.From.UserName
}
