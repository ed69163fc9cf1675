// Package delivery holds sink implementations with no external backing
// service.
package delivery

import (
	"context"
	"strings"

	"github.com/zatekoja/feedbackbot/internal/domain/entities"
	"github.com/zatekoja/feedbackbot/internal/domain/providers"
	"github.com/zatekoja/feedbackbot/internal/infrastructure/observability"
)

// LogSink writes finalized records to the structured log. Used in local
// development and as a fallback when no real sink is configured.
type LogSink struct{}

// NewLogSink creates a logging delivery sink.
func NewLogSink() providers.DeliverySink {
	return &LogSink{}
}

// Append logs the record at info level.
func (s *LogSink) Append(ctx context.Context, record *entities.FeedbackRecord) error {
	logger := observability.LoggerFromContext(ctx)
	logger.Info().
		Str("record_id", record.ID).
		Str("user_id", record.UserID).
		Str("expectations", record.Expectations).
		Str("risk", record.Risk).
		Str("row", strings.Join(record.Row, " | ")).
		Msg("Feedback record finalized")
	return nil
}
