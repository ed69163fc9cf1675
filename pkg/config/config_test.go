package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("SINK", SinkLog)
}

func TestLoad_MissingTokenIsFatal(t *testing.T) {
	os.Unsetenv("BOT_TOKEN")
	t.Setenv("SINK", SinkLog)

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "BOT_TOKEN")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, ModePolling, cfg.Telegram.Mode)
	assert.Equal(t, "rated", cfg.Flow.Variant)
	assert.Equal(t, "Europe/Warsaw", cfg.Flow.Timezone)
	assert.Equal(t, StoreMemory, cfg.Delivery.Store)
	assert.Equal(t, DispatcherInProc, cfg.Delivery.Dispatcher)
	assert.Equal(t, 10000, cfg.Server.Port)
	assert.Equal(t, "Лист1", cfg.Sheets.Worksheet)
	assert.Nil(t, cfg.Flow.RatingSkipsIdentifier)
}

func TestLoad_SheetsSinkRequiresCredentials(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("SINK", SinkSheets)
	os.Unsetenv("GOOGLE_SHEET_ID")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_SHEET_ID")

	t.Setenv("GOOGLE_SHEET_ID", "sheet-1")
	os.Unsetenv("GOOGLE_SERVICE_ACCOUNT_JSON")
	os.Unsetenv("GOOGLE_SERVICE_ACCOUNT_FILE")

	_, err = Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_SERVICE_ACCOUNT")

	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", `{"type":"service_account"}`)
	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "sheet-1", cfg.Sheets.SpreadsheetID)
}

func TestLoad_WebhookModeRequiresBase(t *testing.T) {
	setRequired(t)
	t.Setenv("TELEGRAM_MODE", ModeWebhook)
	os.Unsetenv("WEBHOOK_BASE")
	os.Unsetenv("RENDER_EXTERNAL_URL")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("WEBHOOK_BASE", "https://bot.example.com")
	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "https://bot.example.com/webhook", cfg.Telegram.WebhookURL())
}

func TestLoad_UnknownSelectorsRejected(t *testing.T) {
	setRequired(t)

	t.Setenv("SINK", "ftp")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("SINK", SinkLog)
	t.Setenv("STORE", "filesystem")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("STORE", StoreMemory)
	t.Setenv("DISPATCHER", "kafka")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_FlowOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("FLOW_VARIANT", "binary")
	t.Setenv("SECONDARY_ID_MIN_LEN", "8")
	t.Setenv("SECONDARY_ID_MAX_LEN", "10")
	t.Setenv("RATING_SKIPS_IDENTIFIER", "false")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "binary", cfg.Flow.Variant)
	assert.Equal(t, 8, cfg.Flow.SecondaryIDMinLen)
	assert.Equal(t, 10, cfg.Flow.SecondaryIDMaxLen)
	if assert.NotNil(t, cfg.Flow.RatingSkipsIdentifier) {
		assert.False(t, *cfg.Flow.RatingSkipsIdentifier)
	}
}
