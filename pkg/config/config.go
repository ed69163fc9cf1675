// Package config loads process configuration from the environment. Missing
// required values are reported as errors: the process must refuse to start
// rather than run degraded.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Delivery sink kinds.
const (
	SinkSheets   = "sheets"
	SinkPostgres = "postgres"
	SinkLog      = "log"
)

// Conversation store kinds.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Record dispatcher kinds.
const (
	DispatcherInProc = "inproc"
	DispatcherRedis  = "redis"
)

// Telegram transport modes.
const (
	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Telegram TelegramConfig
	Flow     FlowConfig
	Delivery DeliveryConfig
	Sheets   SheetsConfig
	Database DatabaseConfig
	Redis    RedisConfig
	OTEL     OTELConfig
}

// ServerConfig holds the health/webhook HTTP server configuration.
type ServerConfig struct {
	Host string
	Port int
}

// TelegramConfig holds bot transport configuration.
type TelegramConfig struct {
	Token          string
	Mode           string
	WebhookBase    string
	WebhookPath    string
	PollTimeoutSec int
	ReviewerChatID int64
}

// FlowConfig selects the survey flow variant and its toggles.
type FlowConfig struct {
	Variant           string
	Timezone          string
	SecondaryIDMinLen int
	SecondaryIDMaxLen int
	// Nil means "use the variant's default".
	RatingSkipsIdentifier *bool
}

// DeliveryConfig selects where finalized records go and how.
type DeliveryConfig struct {
	Sink       string
	Dispatcher string
	Store      string
	Workers    int
	Buffer     int
	// StoreTTLSec bounds how long an abandoned conversation survives in
	// the Redis store; zero keeps it forever.
	StoreTTLSec int
}

// SheetsConfig holds the Google Sheets sink configuration.
type SheetsConfig struct {
	SpreadsheetID      string
	Worksheet          string
	ServiceAccountJSON string
	ServiceAccountFile string
}

// DatabaseConfig holds the Postgres sink configuration.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// OTELConfig holds OpenTelemetry configuration.
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("PORT", 10000),
		},
		Telegram: TelegramConfig{
			Token:          getEnv("BOT_TOKEN", ""),
			Mode:           getEnv("TELEGRAM_MODE", ModePolling),
			WebhookBase:    getEnv("WEBHOOK_BASE", os.Getenv("RENDER_EXTERNAL_URL")),
			WebhookPath:    getEnv("WEBHOOK_PATH", "/webhook"),
			PollTimeoutSec: getEnvAsInt("TELEGRAM_POLL_TIMEOUT", 30),
			ReviewerChatID: getEnvAsInt64("REVIEWER_CHAT_ID", 0),
		},
		Flow: FlowConfig{
			Variant:               getEnv("FLOW_VARIANT", "rated"),
			Timezone:              getEnv("FLOW_TIMEZONE", "Europe/Warsaw"),
			SecondaryIDMinLen:     getEnvAsInt("SECONDARY_ID_MIN_LEN", 0),
			SecondaryIDMaxLen:     getEnvAsInt("SECONDARY_ID_MAX_LEN", 0),
			RatingSkipsIdentifier: getEnvAsBoolPtr("RATING_SKIPS_IDENTIFIER"),
		},
		Delivery: DeliveryConfig{
			Sink:        getEnv("SINK", SinkSheets),
			Dispatcher:  getEnv("DISPATCHER", DispatcherInProc),
			Store:       getEnv("STORE", StoreMemory),
			Workers:     getEnvAsInt("DISPATCHER_WORKERS", 2),
			Buffer:      getEnvAsInt("DISPATCHER_BUFFER", 256),
			StoreTTLSec: getEnvAsInt("STORE_TTL_SEC", 0),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:      getEnv("GOOGLE_SHEET_ID", ""),
			Worksheet:          getEnv("GOOGLE_SHEET_WORKSHEET", "Лист1"),
			ServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
			ServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "feedbackbot"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "feedbackbot"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("BOT_TOKEN is not set")
	}

	switch c.Telegram.Mode {
	case ModePolling:
	case ModeWebhook:
		if c.Telegram.WebhookBase == "" {
			return fmt.Errorf("TELEGRAM_MODE=webhook requires WEBHOOK_BASE or RENDER_EXTERNAL_URL")
		}
	default:
		return fmt.Errorf("unknown TELEGRAM_MODE %q", c.Telegram.Mode)
	}

	switch c.Delivery.Sink {
	case SinkSheets:
		if c.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("SINK=sheets requires GOOGLE_SHEET_ID")
		}
		if c.Sheets.ServiceAccountJSON == "" && c.Sheets.ServiceAccountFile == "" {
			return fmt.Errorf("SINK=sheets requires GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE")
		}
	case SinkPostgres, SinkLog:
	default:
		return fmt.Errorf("unknown SINK %q", c.Delivery.Sink)
	}

	switch c.Delivery.Store {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("unknown STORE %q", c.Delivery.Store)
	}

	switch c.Delivery.Dispatcher {
	case DispatcherInProc, DispatcherRedis:
	default:
		return fmt.Errorf("unknown DISPATCHER %q", c.Delivery.Dispatcher)
	}

	return nil
}

// WebhookURL is the full webhook endpoint registered with Telegram.
func (c *TelegramConfig) WebhookURL() string {
	return c.WebhookBase + c.WebhookPath
}

// DatabaseDSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address.
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsBoolPtr(key string) *bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return &boolVal
		}
	}
	return nil
}
