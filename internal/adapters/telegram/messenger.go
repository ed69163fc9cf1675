package telegram

import (
	"context"

	"github.com/zatekoja/feedbackbot/internal/domain/providers"
	tgclient "github.com/zatekoja/feedbackbot/internal/infrastructure/clients/telegram"
)

// Messenger sends plain text messages through the Bot API.
type Messenger struct {
	client *tgclient.Client
}

// NewMessenger creates a Messenger on the shared client.
func NewMessenger(client *tgclient.Client) providers.Messenger {
	return &Messenger{client: client}
}

// SendText sends a plain text message to the chat.
func (m *Messenger) SendText(ctx context.Context, chatID int64, text string) error {
	_, err := m.client.SendMessage(ctx, tgclient.SendMessageRequest{
		ChatID: chatID,
		Text:   text,
	})
	return err
}
