package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("test-token", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	require.NoError(t, err)
	return server, client
}

func TestNewClient_EmptyToken(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)
}

func TestClient_GetMe(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/getMe", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok": true,
			"result": User{
				ID:        42,
				IsBot:     true,
				FirstName: "FeedbackBot",
				Username:  "feedback_bot",
			},
		})
	})

	user, err := client.GetMe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "feedback_bot", user.Username)
}

func TestClient_GetUpdates(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/getUpdates", r.URL.Path)

		var req struct {
			Offset  int64 `json:"offset"`
			Timeout int   `json:"timeout"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(100), req.Offset)
		assert.Equal(t, 30, req.Timeout)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok": true,
			"result": []Update{
				{
					UpdateID: 100,
					Message: &Message{
						MessageID: 1,
						From:      &User{ID: 7},
						Chat:      Chat{ID: 7, Type: "private"},
						Text:      "/start",
					},
				},
				{
					UpdateID: 101,
					CallbackQuery: &CallbackQuery{
						ID:   "cb1",
						From: User{ID: 7},
						Data: "reason:2",
					},
				},
			},
		})
	})

	updates, err := client.GetUpdates(context.Background(), 100, 30)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, "/start", updates[0].Message.Text)
	assert.Equal(t, "reason:2", updates[1].CallbackQuery.Data)
}

func TestClient_SendMessage(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req SendMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(7), req.ChatID)
		assert.Equal(t, "Спасибо!", req.Text)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":     true,
			"result": Message{MessageID: 55, Chat: Chat{ID: 7}},
		})
	})

	msg, err := client.SendMessage(context.Background(), SendMessageRequest{
		ChatID: 7,
		Text:   "Спасибо!",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(55), msg.MessageID)
}

func TestClient_APIError(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":          false,
			"error_code":  401,
			"description": "Unauthorized",
		})
	})

	_, err := client.GetMe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unauthorized")
}

func TestClient_AnswerCallbackQuery(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/answerCallbackQuery", r.URL.Path)

		var req struct {
			CallbackQueryID string `json:"callback_query_id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "cb1", req.CallbackQueryID)

		json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "result": true})
	})

	err := client.AnswerCallbackQuery(context.Background(), "cb1")
	assert.NoError(t, err)
}

func TestClient_SetWebhook(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/setWebhook", r.URL.Path)

		var req struct {
			URL string `json:"url"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://bot.example.com/webhook", req.URL)

		json.NewEncoder(w).Encode(map[string]interface{}{"ok": true, "result": true})
	})

	err := client.SetWebhook(context.Background(), "https://bot.example.com/webhook")
	assert.NoError(t, err)
}
