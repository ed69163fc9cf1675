package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/zatekoja/feedbackbot/internal/adapters/database"
	"github.com/zatekoja/feedbackbot/internal/adapters/delivery"
	"github.com/zatekoja/feedbackbot/internal/adapters/dispatch"
	"github.com/zatekoja/feedbackbot/internal/adapters/events"
	sheetssink "github.com/zatekoja/feedbackbot/internal/adapters/sheets"
	"github.com/zatekoja/feedbackbot/internal/adapters/store"
	teletransport "github.com/zatekoja/feedbackbot/internal/adapters/telegram"
	"github.com/zatekoja/feedbackbot/internal/api/handlers"
	"github.com/zatekoja/feedbackbot/internal/api/routes"
	"github.com/zatekoja/feedbackbot/internal/application/flow"
	"github.com/zatekoja/feedbackbot/internal/application/services"
	domainproviders "github.com/zatekoja/feedbackbot/internal/domain/providers"
	"github.com/zatekoja/feedbackbot/internal/domain/repositories"
	"github.com/zatekoja/feedbackbot/internal/infrastructure/clients/postgres"
	redisclient "github.com/zatekoja/feedbackbot/internal/infrastructure/clients/redis"
	sheetsclient "github.com/zatekoja/feedbackbot/internal/infrastructure/clients/sheets"
	tgclient "github.com/zatekoja/feedbackbot/internal/infrastructure/clients/telegram"
	"github.com/zatekoja/feedbackbot/internal/infrastructure/observability"
	"github.com/zatekoja/feedbackbot/pkg/config"
	"github.com/zatekoja/feedbackbot/pkg/retry"
	"github.com/zatekoja/feedbackbot/pkg/secrets"
)

func main() {
	// Local development convenience; production sets real env vars.
	_ = godotenv.Load()

	// Overlay secrets from Vault before reading configuration.
	vaultCfg := secrets.LoadVaultConfigFromEnv()
	if vaultCfg.Enabled {
		loaded, err := secrets.ApplyVaultSecrets(context.Background(), vaultCfg)
		if err != nil {
			log.Fatalf("Failed to load secrets from Vault: %v", err)
		}
		log.Printf("Loaded %d secrets from Vault", loaded)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("ENVIRONMENT"))
	logger := observability.GetLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := shutdown(shutdownCtx); err != nil {
					logger.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	variant, err := flow.ByName(cfg.Flow.Variant, flow.Options{
		SecondaryIDMinLen:         cfg.Flow.SecondaryIDMinLen,
		SecondaryIDMaxLen:         cfg.Flow.SecondaryIDMaxLen,
		HighRatingSkipsIdentifier: cfg.Flow.RatingSkipsIdentifier,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to resolve flow variant")
	}
	logger.Info().Str("variant", variant.Name).Msg("Survey flow configured")

	location, err := time.LoadLocation(cfg.Flow.Timezone)
	if err != nil {
		logger.Fatal().Err(err).Str("timezone", cfg.Flow.Timezone).Msg("Failed to load timezone")
	}

	// Telegram client; verify the token before anything else starts.
	botClient, err := tgclient.NewClient(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Telegram client")
	}
	err = retry.Do(ctx, retry.DefaultConfig(), func() error {
		me, err := botClient.GetMe(ctx)
		if err != nil {
			return err
		}
		logger.Info().Str("bot", me.Username).Msg("Telegram token verified")
		return nil
	}, func(attempt int, err error, nextDelay time.Duration) {
		logger.Warn().Int("attempt", attempt).Err(err).Dur("retry_in", nextDelay).Msg("Telegram getMe failed")
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to verify Telegram token")
	}

	// Redis is shared by the conversation store and the record bus.
	var redisConn *redisclient.Client
	if cfg.Delivery.Store == config.StoreRedis || cfg.Delivery.Dispatcher == config.DispatcherRedis {
		redisConn, err = redisclient.NewClient(&cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize Redis client")
		}
		defer redisConn.Close()
		logger.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Redis client initialized")
	}

	var conversations repositories.ConversationStore
	switch cfg.Delivery.Store {
	case config.StoreRedis:
		conversations = store.NewRedisStore(redisConn, time.Duration(cfg.Delivery.StoreTTLSec)*time.Second)
	default:
		conversations = store.NewMemoryStore()
	}

	var sink domainproviders.DeliverySink
	switch cfg.Delivery.Sink {
	case config.SinkSheets:
		client, err := sheetsclient.NewClient(ctx, &cfg.Sheets)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize Google Sheets client")
		}
		sink = sheetssink.NewSheetsSink(client, cfg.Sheets.SpreadsheetID, cfg.Sheets.Worksheet)
		logger.Info().Str("spreadsheet_id", cfg.Sheets.SpreadsheetID).Msg("Google Sheets sink initialized")
	case config.SinkPostgres:
		pgClient, err := postgres.NewClient(&cfg.Database)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
		}
		defer pgClient.Close()
		sink = database.NewRecordAdapter(pgClient)
		logger.Info().Msg("PostgreSQL sink initialized")
	default:
		sink = delivery.NewLogSink()
		logger.Info().Msg("Log sink initialized")
	}

	// Reviewer notifications ride on the same bot account.
	var notifier dispatch.RecordObserver
	if cfg.Telegram.ReviewerChatID != 0 {
		notifier = services.NewReviewerNotifier(teletransport.NewMessenger(botClient), cfg.Telegram.ReviewerChatID)
		logger.Info().Int64("chat_id", cfg.Telegram.ReviewerChatID).Msg("Reviewer notifications enabled")
	}

	localDispatcher := dispatch.NewAsyncDispatcher(sink, dispatch.Options{
		Workers:  cfg.Delivery.Workers,
		Buffer:   cfg.Delivery.Buffer,
		SinkName: cfg.Delivery.Sink,
		Notifier: notifier,
		Metrics:  metrics,
	})
	defer func() {
		if err := localDispatcher.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing dispatcher")
		}
	}()

	dispatcher := domainproviders.RecordDispatcher(localDispatcher)
	if cfg.Delivery.Dispatcher == config.DispatcherRedis {
		bus := events.NewRedisRecordBus(redisConn)
		if err := bus.Consume(ctx, localDispatcher); err != nil {
			logger.Fatal().Err(err).Msg("Failed to start record bus consumer")
		}
		defer func() {
			if err := bus.Close(); err != nil {
				logger.Error().Err(err).Msg("Error closing record bus")
			}
		}()
		dispatcher = bus
		logger.Info().Msg("Record bus initialized")
	}

	assembler := services.NewRecordAssembler(variant, location)
	engine := services.NewSurveyService(conversations, variant, assembler, dispatcher, metrics)
	bot := teletransport.NewBot(botClient, engine, metrics, cfg.Telegram.PollTimeoutSec)

	// The HTTP server always runs: health checks in polling mode, health
	// checks plus the webhook endpoint in webhook mode.
	var webhookHandler *handlers.TelegramWebhookHandler
	if cfg.Telegram.Mode == config.ModeWebhook {
		webhookHandler = handlers.NewTelegramWebhookHandler(bot)
	}

	router := routes.NewRouter(handlers.NewHealthHandler(), webhookHandler, cfg.Telegram.WebhookPath, metrics)
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", serverAddr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	switch cfg.Telegram.Mode {
	case config.ModeWebhook:
		if err := botClient.SetWebhook(ctx, cfg.Telegram.WebhookURL()); err != nil {
			logger.Fatal().Err(err).Msg("Failed to register webhook")
		}
		logger.Info().Str("url", cfg.Telegram.WebhookURL()).Msg("Webhook registered")
	default:
		go func() {
			if err := bot.Poll(ctx); err != nil && ctx.Err() == nil {
				logger.Fatal().Err(err).Msg("Polling loop failed")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error during server shutdown")
	}

	logger.Info().Msg("Stopped")
}
