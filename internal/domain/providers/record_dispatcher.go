package providers

import "github.com/zatekoja/feedbackbot/internal/domain/entities"

// RecordDispatcher hands a finalized record off for background delivery.
// Dispatch must not block the caller: the user has already seen the
// thank-you message by the time delivery runs.
type RecordDispatcher interface {
	Dispatch(record *entities.FeedbackRecord)

	// Close drains queued records and stops the workers.
	Close() error
}
