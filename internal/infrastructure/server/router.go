package server

import (
	"log/slog"
	"net/http"

	"github.com/presencelab/beacon-bridge/internal/adapter/handler"
	"github.com/presencelab/beacon-bridge/internal/adapter/handler/middleware"
	"github.com/presencelab/beacon-bridge/internal/infrastructure/observability"
)

// Handlers holds all HTTP handlers.
type Handlers struct {
	Webhook      *handler.TelegramWebhookHandler
	Echo         *handler.EchoHandler
	TestWrite    *handler.TestWriteHandler
	BeaconStatus *handler.BeaconStatusHandler
	Health       *handler.HealthHandler
	Ready        *handler.ReadyHandler
	Metrics      *handler.MetricsHandler
	Reload       *handler.ReloadHandler
}

// NewRouter creates the HTTP router with all handlers.
func NewRouter(handlers *Handlers, logger *slog.Logger, metrics *observability.Metrics) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoints
	mux.Handle("/health", handlers.Health)
	mux.Handle("/ready", handlers.Ready)
	mux.Handle("/", handlers.Health) // Root path returns health

	// Webhook endpoint
	mux.Handle("/webhook/telegram", handlers.Webhook)

	// Beacon state for pollers
	if handlers.BeaconStatus != nil {
		mux.Handle("/beacon", handlers.BeaconStatus)
	}

	// Diagnostics
	mux.Handle("/debug/echo", handlers.Echo)
	mux.Handle("/debug/test-write", handlers.TestWrite)

	// Operations
	if handlers.Metrics != nil {
		mux.Handle("/metrics", handlers.Metrics)
	}
	if handlers.Reload != nil {
		mux.Handle("/-/reload", handlers.Reload)
	}

	// Apply middleware stack
	var h http.Handler = mux
	h = middleware.Observability(metrics)(h)
	h = middleware.RequestID(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
