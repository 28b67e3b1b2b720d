package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers rendered notification text to a user over Telegram.
// It implements notify.Notifier.
type Notifier struct {
	api *tgbotapi.BotAPI
}

// NewNotifier creates a Telegram-backed notifier.
func NewNotifier(api *tgbotapi.BotAPI) *Notifier {
	return &Notifier{api: api}
}

// Notify sends one message to one user. Errors are returned for the caller
// to log; the core treats delivery as fire-and-forget.
func (n *Notifier) Notify(userID int64, text string) error {
	// Telegram rejects invalid UTF-8.
	msg := tgbotapi.NewMessage(userID, strings.ToValidUTF8(text, " "))
	_, err := n.api.Send(msg)
	return err
}
