package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	tgclient "github.com/zatekoja/feedbackbot/internal/infrastructure/clients/telegram"
	"github.com/zatekoja/feedbackbot/internal/infrastructure/observability"
)

// UpdateHandler processes one Telegram update end to end.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgclient.Update)
}

// TelegramWebhookHandler receives updates pushed by Telegram in webhook
// mode.
type TelegramWebhookHandler struct {
	bot UpdateHandler
}

// NewTelegramWebhookHandler creates the webhook handler.
func NewTelegramWebhookHandler(bot UpdateHandler) *TelegramWebhookHandler {
	return &TelegramWebhookHandler{bot: bot}
}

// HandleWebhook decodes and processes one update. It always answers 200:
// Telegram re-delivers on any other status, and a malformed update will
// not get better on retry.
func (h *TelegramWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var update tgclient.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		observability.LoggerFromContext(r.Context()).Warn().
			Err(err).
			Msg("Dropping undecodable webhook payload")
		w.WriteHeader(http.StatusOK)
		return
	}

	h.bot.HandleUpdate(r.Context(), update)
	w.WriteHeader(http.StatusOK)
}
