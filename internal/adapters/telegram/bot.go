// Package telegram adapts Telegram updates into survey engine events and
// renders the engine's prompts back as messages.
package telegram

import (
	"context"
	"strconv"
	"time"

	"github.com/zatekoja/feedbackbot/internal/domain/entities"
	tgclient "github.com/zatekoja/feedbackbot/internal/infrastructure/clients/telegram"
	"github.com/zatekoja/feedbackbot/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/feedbackbot/pkg/errors"
)

const pollRetryDelay = 2 * time.Second

// UpdateProcessor consumes one inbound event and returns prompts to render.
type UpdateProcessor interface {
	Handle(ctx context.Context, event entities.InboundEvent) ([]entities.Prompt, error)
}

// Bot drives the survey engine from Telegram updates, in either long
// polling or webhook mode.
type Bot struct {
	client         *tgclient.Client
	engine         UpdateProcessor
	metrics        *observability.Metrics
	pollTimeoutSec int
}

// NewBot creates the transport adapter. metrics may be nil.
func NewBot(client *tgclient.Client, engine UpdateProcessor, metrics *observability.Metrics, pollTimeoutSec int) *Bot {
	return &Bot{
		client:         client,
		engine:         engine,
		metrics:        metrics,
		pollTimeoutSec: pollTimeoutSec,
	}
}

// Poll runs the long-polling loop until ctx is cancelled. Any previously
// registered webhook is removed first, the two delivery modes are
// mutually exclusive on the Bot API.
func (b *Bot) Poll(ctx context.Context) error {
	if err := b.client.DeleteWebhook(ctx); err != nil {
		return apperrors.NewExternalError("failed to delete webhook before polling", err)
	}

	logger := observability.LoggerFromContext(ctx)
	logger.Info().Int("timeout_sec", b.pollTimeoutSec).Msg("Starting Telegram long polling")

	var offset int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := b.client.GetUpdates(ctx, offset, b.pollTimeoutSec)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error().Err(err).Msg("Failed to fetch Telegram updates")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollRetryDelay):
			}
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate processes one update end to end. Malformed updates and
// engine validation rejections are logged and dropped; the loop never
// stops over a single bad update.
func (b *Bot) HandleUpdate(ctx context.Context, update tgclient.Update) {
	logger := observability.LoggerFromContext(ctx)

	event, chatID, lastMessageID, ok := b.toEvent(ctx, update)
	if !ok {
		logger.Warn().Int64("update_id", update.UpdateID).Msg("Dropping malformed Telegram update")
		b.metrics.RecordUpdate(ctx, true)
		return
	}

	prompts, err := b.engine.Handle(ctx, event)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			logger.Warn().Err(err).Int64("update_id", update.UpdateID).Msg("Dropping invalid inbound event")
			b.metrics.RecordUpdate(ctx, true)
			return
		}
		logger.Error().Err(err).Str("user_id", event.UserID).Msg("Survey engine failed to handle update")
		b.metrics.RecordUpdate(ctx, true)
		return
	}
	b.metrics.RecordUpdate(ctx, false)

	for _, prompt := range prompts {
		if err := b.render(ctx, chatID, lastMessageID, prompt); err != nil {
			logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to render prompt")
		}
	}
}

// toEvent extracts the engine event from an update. For button taps the
// tapped message id is returned so EditLast prompts can replace it.
func (b *Bot) toEvent(ctx context.Context, update tgclient.Update) (event entities.InboundEvent, chatID, lastMessageID int64, ok bool) {
	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		// Acknowledge immediately so the client stops the spinner, even
		// when the engine later ignores the tap.
		if err := b.client.AnswerCallbackQuery(ctx, cb.ID); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Failed to answer callback query")
		}

		chatID = cb.From.ID
		if cb.Message != nil {
			chatID = cb.Message.Chat.ID
			lastMessageID = cb.Message.MessageID
		}
		return entities.InboundEvent{
			UserID:  strconv.FormatInt(cb.From.ID, 10),
			Kind:    entities.EventButtonTap,
			Payload: cb.Data,
		}, chatID, lastMessageID, true

	case update.Message != nil && update.Message.From != nil:
		msg := update.Message
		return entities.InboundEvent{
			UserID:  strconv.FormatInt(msg.From.ID, 10),
			Kind:    entities.EventText,
			Payload: msg.Text,
		}, msg.Chat.ID, 0, true

	default:
		return entities.InboundEvent{}, 0, 0, false
	}
}

// render sends one prompt to the chat.
func (b *Bot) render(ctx context.Context, chatID, lastMessageID int64, prompt entities.Prompt) error {
	if prompt.EditLast && lastMessageID != 0 {
		return b.client.EditMessageText(ctx, tgclient.EditMessageTextRequest{
			ChatID:      chatID,
			MessageID:   lastMessageID,
			Text:        prompt.Text,
			ReplyMarkup: inlineMarkup(prompt.Keyboard),
		})
	}

	_, err := b.client.SendMessage(ctx, tgclient.SendMessageRequest{
		ChatID:      chatID,
		Text:        prompt.Text,
		ReplyMarkup: replyMarkup(prompt.Keyboard),
	})
	return err
}
