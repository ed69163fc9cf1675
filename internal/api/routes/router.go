package routes

import (
	"net/http"

	"github.com/zatekoja/feedbackbot/internal/api/handlers"
	"github.com/zatekoja/feedbackbot/internal/api/middleware"
	"github.com/zatekoja/feedbackbot/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	healthHandler  *handlers.HealthHandler
	webhookHandler *handlers.TelegramWebhookHandler
	webhookPath    string

	metrics *observability.Metrics
}

// NewRouter creates a new router. webhookHandler may be nil in polling
// mode, only the health endpoints are served then.
func NewRouter(
	healthHandler *handlers.HealthHandler,
	webhookHandler *handlers.TelegramWebhookHandler,
	webhookPath string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:            http.NewServeMux(),
		healthHandler:  healthHandler,
		webhookHandler: webhookHandler,
		webhookPath:    webhookPath,
		metrics:        metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /{$}", r.healthHandler.Health)
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)

	if r.webhookHandler != nil {
		r.mux.HandleFunc("POST "+r.webhookPath, r.webhookHandler.HandleWebhook)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	return handler
}
