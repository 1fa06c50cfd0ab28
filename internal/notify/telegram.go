// Package notify announces published posts.
package notify

import (
	"context"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier sends a short announcement. Errors are informational only.
type Notifier interface {
	Notify(ctx context.Context, title, link string) error
}

// Telegram posts announcements to one chat through a bot.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram creates a notifier for token and chatID. endpoint and client
// may be empty/nil to use the public Bot API.
func NewTelegram(token string, chatID int64, endpoint string, client *http.Client) (*Telegram, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if client == nil {
		client = &http.Client{}
	}
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	return &Telegram{api: api, chatID: chatID}, nil
}

// Message formats the announcement text.
func Message(title, link string) string {
	return fmt.Sprintf("Published: %s\n%s", title, link)
}

func (t *Telegram) Notify(ctx context.Context, title, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, Message(title, link))
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}
	return nil
}
