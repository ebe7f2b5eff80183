package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/expense-bot/internal/api"
	"github.com/dvloznov/expense-bot/internal/api/handlers"
	"github.com/dvloznov/expense-bot/internal/config"
	"github.com/dvloznov/expense-bot/internal/extraction"
	"github.com/dvloznov/expense-bot/internal/extraction/gemini"
	"github.com/dvloznov/expense-bot/internal/ledger"
	"github.com/dvloznov/expense-bot/internal/logger"
	"github.com/dvloznov/expense-bot/internal/pipeline"
	"github.com/dvloznov/expense-bot/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Parse command-line flags
	port := flag.String("port", cfg.Port, "HTTP server port (or set PORT env)")
	flag.Parse()

	// Initialize logger
	log := logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	// Shared clients are built once and reused by every request
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider, err := gemini.NewProvider(ctx, gemini.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini provider")
	}
	extractor := extraction.NewClient(provider, cfg.DefaultTimezone,
		extraction.WithMaxRetries(cfg.GeminiMaxRetries),
	)

	sheetsService, err := ledger.NewSheetsService(ctx, ledger.Credentials{
		Email:      cfg.ServiceAccountEmail,
		PrivateKey: cfg.PrivateKey,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Sheets service")
	}
	sheet := ledger.NewSheetsWriter(sheetsService, cfg.SpreadsheetID, cfg.SheetName)

	bot := telegram.NewClient(cfg.TelegramBotToken, cfg.TelegramAPIBaseURL, nil)

	// Initialize handlers
	webhookHandler := handlers.NewWebhookHandler(
		pipeline.NewMessagePipeline(extractor, sheet, bot),
		bot,
		cfg.RequestTimeout,
		log,
	)

	handler := api.NewRouter(api.RouterConfig{
		Webhook:       webhookHandler,
		WebhookSecret: cfg.TelegramWebhookSecret,
		Log:           log,
	})

	// The pipeline may wait through several Gemini backoffs, so the write
	// deadline follows the request timeout.
	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().
			Str("port", *port).
			Str("model", cfg.GeminiModel).
			Str("sheet", sheet.Range()).
			Bool("webhook_secret", cfg.TelegramWebhookSecret != "").
			Msg("Starting webhook server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
