package repositories

import (
	"context"

	"github.com/zatekoja/feedbackbot/internal/domain/entities"
)

// ConversationStore keeps in-flight conversations keyed by user id with
// last-write-wins semantics. Get returns (nil, nil) when no conversation
// exists for the user.
type ConversationStore interface {
	Get(ctx context.Context, userID string) (*entities.Conversation, error)
	Put(ctx context.Context, conversation *entities.Conversation) error
	Delete(ctx context.Context, userID string) error
}
