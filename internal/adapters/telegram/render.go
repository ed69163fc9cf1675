package telegram

import (
	"github.com/zatekoja/feedbackbot/internal/domain/entities"
	tgclient "github.com/zatekoja/feedbackbot/internal/infrastructure/clients/telegram"
)

// replyMarkup converts an engine keyboard into the Bot API markup for
// sendMessage. One button per row, matching the survey's vertical layout.
func replyMarkup(kb *entities.Keyboard) interface{} {
	if kb == nil {
		return nil
	}
	if kb.Remove {
		return tgclient.ReplyKeyboardRemove{RemoveKeyboard: true}
	}
	if kb.Inline {
		return inlineMarkup(kb)
	}

	rows := make([][]tgclient.KeyboardButton, 0, len(kb.Options))
	for _, opt := range kb.Options {
		rows = append(rows, []tgclient.KeyboardButton{{Text: opt.Label}})
	}
	return tgclient.ReplyKeyboardMarkup{
		Keyboard:       rows,
		ResizeKeyboard: true,
	}
}

// inlineMarkup converts an inline engine keyboard for editMessageText.
func inlineMarkup(kb *entities.Keyboard) *tgclient.InlineKeyboardMarkup {
	if kb == nil || !kb.Inline {
		return nil
	}
	rows := make([][]tgclient.InlineKeyboardButton, 0, len(kb.Options))
	for _, opt := range kb.Options {
		rows = append(rows, []tgclient.InlineKeyboardButton{{
			Text:         opt.Label,
			CallbackData: opt.Data,
		}})
	}
	return &tgclient.InlineKeyboardMarkup{InlineKeyboard: rows}
}
