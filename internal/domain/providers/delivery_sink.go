package providers

import (
	"context"

	"github.com/zatekoja/feedbackbot/internal/domain/entities"
)

// DeliverySink durably records a finalized feedback record. Append is
// invoked at most once per record, off the user-facing path; failures are
// logged by the caller and never rolled back into the conversation.
type DeliverySink interface {
	Append(ctx context.Context, record *entities.FeedbackRecord) error
}
