package providers

import "context"

// Messenger sends a plain text message to a chat outside of the survey
// flow, e.g. a reviewer notification.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
}
