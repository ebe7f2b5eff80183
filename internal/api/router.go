package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/expense-bot/internal/api/handlers"
	"github.com/dvloznov/expense-bot/internal/api/middleware"
)

// WebhookPath is where Telegram delivers updates.
const WebhookPath = "/telegram/webhook"

// RouterConfig wires the HTTP surface.
type RouterConfig struct {
	Webhook       *handlers.WebhookHandler
	WebhookSecret string
	Log           zerolog.Logger
}

// NewRouter builds the server handler with the standard middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			handlers.Health(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	webhook := middleware.WebhookSecret(cfg.WebhookSecret)(http.HandlerFunc(cfg.Webhook.HandleUpdate))
	mux.HandleFunc(WebhookPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			webhook.ServeHTTP(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	return middleware.Recovery(cfg.Log)(
		middleware.Logger(cfg.Log)(
			middleware.RequestID(cfg.Log)(mux),
		),
	)
}
