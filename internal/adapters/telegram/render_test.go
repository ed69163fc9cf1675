package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/feedbackbot/internal/domain/entities"
	tgclient "github.com/zatekoja/feedbackbot/internal/infrastructure/clients/telegram"
)

func TestReplyMarkup_Nil(t *testing.T) {
	assert.Nil(t, replyMarkup(nil))
}

func TestReplyMarkup_Remove(t *testing.T) {
	markup := replyMarkup(&entities.Keyboard{Remove: true})
	remove, ok := markup.(tgclient.ReplyKeyboardRemove)
	require.True(t, ok)
	assert.True(t, remove.RemoveKeyboard)
}

func TestReplyMarkup_ReplyKeyboard(t *testing.T) {
	markup := replyMarkup(&entities.Keyboard{
		Options: []entities.ButtonOption{
			{Label: "✅ Да", Data: "✅ Да"},
			{Label: "❌ Нет", Data: "❌ Нет"},
		},
	})

	kb, ok := markup.(tgclient.ReplyKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.Keyboard, 2)
	assert.Equal(t, "✅ Да", kb.Keyboard[0][0].Text)
	assert.Equal(t, "❌ Нет", kb.Keyboard[1][0].Text)
	assert.True(t, kb.ResizeKeyboard)
}

func TestReplyMarkup_InlineKeyboard(t *testing.T) {
	markup := replyMarkup(&entities.Keyboard{
		Inline: true,
		Options: []entities.ButtonOption{
			{Label: "1. Тех.поддержка", Data: "reason:2"},
		},
	})

	kb, ok := markup.(*tgclient.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 1)
	assert.Equal(t, "1. Тех.поддержка", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "reason:2", kb.InlineKeyboard[0][0].CallbackData)
}

func TestInlineMarkup_NonInlineKeyboard(t *testing.T) {
	assert.Nil(t, inlineMarkup(nil))
	assert.Nil(t, inlineMarkup(&entities.Keyboard{
		Options: []entities.ButtonOption{{Label: "x", Data: "x"}},
	}))
}
