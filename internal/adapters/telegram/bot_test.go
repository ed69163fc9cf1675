package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/feedbackbot/internal/domain/entities"
	tgclient "github.com/zatekoja/feedbackbot/internal/infrastructure/clients/telegram"
	apperrors "github.com/zatekoja/feedbackbot/pkg/errors"
)

type fakeEngine struct {
	mu      sync.Mutex
	events  []entities.InboundEvent
	prompts []entities.Prompt
	err     error
}

func (f *fakeEngine) Handle(_ context.Context, event entities.InboundEvent) ([]entities.Prompt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.prompts, f.err
}

type apiCall struct {
	method string
	body   map[string]interface{}
}

func newTestBot(t *testing.T, engine *fakeEngine) (*Bot, *[]apiCall) {
	t.Helper()

	var mu sync.Mutex
	calls := &[]apiCall{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		method := parts[len(parts)-1]

		body := map[string]interface{}{}
		_ = json.NewDecoder(r.Body).Decode(&body)

		mu.Lock()
		*calls = append(*calls, apiCall{method: method, body: body})
		mu.Unlock()

		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":     true,
			"result": tgclient.Message{MessageID: 1},
		})
	}))
	t.Cleanup(server.Close)

	client, err := tgclient.NewClient("test-token", tgclient.WithBaseURL(server.URL), tgclient.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	return NewBot(client, engine, nil, 30), calls
}

func methods(calls []apiCall) []string {
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.method
	}
	return out
}

func TestHandleUpdate_TextMessage(t *testing.T) {
	engine := &fakeEngine{prompts: []entities.Prompt{entities.TextPrompt("Спасибо!")}}
	bot, calls := newTestBot(t, engine)

	bot.HandleUpdate(context.Background(), tgclient.Update{
		UpdateID: 1,
		Message: &tgclient.Message{
			MessageID: 10,
			From:      &tgclient.User{ID: 42},
			Chat:      tgclient.Chat{ID: 42},
			Text:      "/start",
		},
	})

	require.Len(t, engine.events, 1)
	assert.Equal(t, entities.InboundEvent{
		UserID:  "42",
		Kind:    entities.EventText,
		Payload: "/start",
	}, engine.events[0])

	require.Equal(t, []string{"sendMessage"}, methods(*calls))
	assert.Equal(t, "Спасибо!", (*calls)[0].body["text"])
	assert.Equal(t, float64(42), (*calls)[0].body["chat_id"])
}

func TestHandleUpdate_CallbackAnswersAndEdits(t *testing.T) {
	engine := &fakeEngine{prompts: []entities.Prompt{{Text: "Комментарий:", EditLast: true}}}
	bot, calls := newTestBot(t, engine)

	bot.HandleUpdate(context.Background(), tgclient.Update{
		UpdateID: 2,
		CallbackQuery: &tgclient.CallbackQuery{
			ID:   "cb1",
			From: tgclient.User{ID: 42},
			Message: &tgclient.Message{
				MessageID: 10,
				Chat:      tgclient.Chat{ID: 42},
			},
			Data: "reason:2",
		},
	})

	require.Len(t, engine.events, 1)
	assert.Equal(t, entities.EventButtonTap, engine.events[0].Kind)
	assert.Equal(t, "reason:2", engine.events[0].Payload)

	require.Equal(t, []string{"answerCallbackQuery", "editMessageText"}, methods(*calls))
	edit := (*calls)[1].body
	assert.Equal(t, float64(10), edit["message_id"])
	assert.Equal(t, "Комментарий:", edit["text"])
}

func TestHandleUpdate_MalformedDropped(t *testing.T) {
	engine := &fakeEngine{}
	bot, calls := newTestBot(t, engine)

	bot.HandleUpdate(context.Background(), tgclient.Update{UpdateID: 3})

	assert.Empty(t, engine.events)
	assert.Empty(t, *calls)
}

func TestHandleUpdate_ValidationErrorDropped(t *testing.T) {
	engine := &fakeEngine{err: apperrors.NewValidationError("bad event")}
	bot, calls := newTestBot(t, engine)

	bot.HandleUpdate(context.Background(), tgclient.Update{
		UpdateID: 4,
		Message: &tgclient.Message{
			From: &tgclient.User{ID: 42},
			Chat: tgclient.Chat{ID: 42},
			Text: "hi",
		},
	})

	require.Len(t, engine.events, 1)
	assert.Empty(t, *calls)
}

func TestHandleUpdate_RendersAllPrompts(t *testing.T) {
	engine := &fakeEngine{prompts: []entities.Prompt{
		{Text: "Нам жаль 😔", Keyboard: &entities.Keyboard{Remove: true}},
		{Text: "Выберите причину:", Keyboard: &entities.Keyboard{
			Inline:  true,
			Options: []entities.ButtonOption{{Label: "Другое", Data: "reason:5"}},
		}},
	}}
	bot, calls := newTestBot(t, engine)

	bot.HandleUpdate(context.Background(), tgclient.Update{
		UpdateID: 5,
		Message: &tgclient.Message{
			From: &tgclient.User{ID: 42},
			Chat: tgclient.Chat{ID: 42},
			Text: "❌ Нет",
		},
	})

	assert.Equal(t, []string{"sendMessage", "sendMessage"}, methods(*calls))
}
