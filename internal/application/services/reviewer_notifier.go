package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/zatekoja/feedbackbot/internal/domain/entities"
	"github.com/zatekoja/feedbackbot/internal/domain/providers"
)

// ReviewerNotifier summarizes finalized records to a human reviewer chat.
// Satisfied submissions are skipped; only dissatisfaction needs eyes.
type ReviewerNotifier struct {
	messenger providers.Messenger
	chatID    int64
}

// NewReviewerNotifier creates a notifier for the given reviewer chat.
func NewReviewerNotifier(messenger providers.Messenger, chatID int64) *ReviewerNotifier {
	return &ReviewerNotifier{messenger: messenger, chatID: chatID}
}

// NotifyRecord sends a short summary of the record to the reviewer.
func (n *ReviewerNotifier) NotifyRecord(ctx context.Context, record *entities.FeedbackRecord) error {
	if record.ReasonLabel == "" && record.PrimaryID == "" && record.SecondaryID == "" {
		return nil
	}

	var b strings.Builder
	b.WriteString("Новый отзыв, требующий внимания\n")
	fmt.Fprintf(&b, "Пользователь: %s\n", record.UserID)
	fmt.Fprintf(&b, "Ожидания: %s\n", record.Expectations)
	if record.Rating != nil {
		fmt.Fprintf(&b, "Оценка: %d\n", *record.Rating)
	}
	if record.ReasonLabel != "" {
		fmt.Fprintf(&b, "Причина: %s\n", record.ReasonLabel)
	}
	if record.Comment != "" {
		fmt.Fprintf(&b, "Комментарий: %s\n", record.Comment)
	}
	if record.PrimaryID != "" {
		fmt.Fprintf(&b, "ИНН: %s\n", record.PrimaryID)
	}
	if record.SecondaryID != "" {
		fmt.Fprintf(&b, "КПП/Телефон: %s\n", record.SecondaryID)
	}
	fmt.Fprintf(&b, "Риск оттока: %s", record.Risk)

	return n.messenger.SendText(ctx, n.chatID, b.String())
}
