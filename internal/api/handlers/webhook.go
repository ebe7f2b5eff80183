package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/expense-bot/internal/api/middleware"
	"github.com/dvloznov/expense-bot/internal/logger"
	"github.com/dvloznov/expense-bot/internal/pipeline"
	"github.com/dvloznov/expense-bot/internal/telegram"
)

const (
	// SkippedNoText is reported when an update carries no usable text.
	SkippedNoText = "no-text-message"

	// failureNotifyTimeout bounds the best-effort apology message.
	failureNotifyTimeout = 10 * time.Second

	// maxUpdateBytes limits the size of a webhook body.
	maxUpdateBytes = 1 << 20
)

var errNoChat = errors.New("webhook: message has no chat id")

// Runner executes the message pipeline for one update.
type Runner interface {
	Execute(ctx context.Context, state *pipeline.PipelineState) error
}

// WebhookHandler handles Telegram webhook deliveries.
type WebhookHandler struct {
	runner   Runner
	notifier pipeline.Notifier
	timeout  time.Duration
	log      zerolog.Logger
}

// NewWebhookHandler creates a new webhook handler. timeout bounds the whole
// pipeline of one request; zero disables it.
func NewWebhookHandler(runner Runner, notifier pipeline.Notifier, timeout time.Duration, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		runner:   runner,
		notifier: notifier,
		timeout:  timeout,
		log:      log,
	}
}

// HandleUpdate handles POST /telegram/webhook
func (h *WebhookHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.requestLogger(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUpdateBytes)

	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn().Int64("limit", tooLarge.Limit).Msg("Rejected oversized update")
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		log.Debug().Err(err).Msg("Ignoring undecodable update")
		writeSkipped(w)
		return
	}

	text := update.Text()
	if text == "" {
		writeSkipped(w)
		return
	}

	chatID, ok := update.ChatID()
	if !ok {
		h.fail(ctx, w, log, 0, errNoChat)
		return
	}
	userID, username := update.Sender()

	log = log.With().Int64("chat_id", chatID).Int("update_id", update.UpdateID).Logger()
	ctx = logger.WithContext(ctx, log)

	runCtx := ctx
	if h.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	state := &pipeline.PipelineState{
		Text:     text,
		ChatID:   chatID,
		UserID:   userID,
		Username: username,
	}
	if err := h.runner.Execute(runCtx, state); err != nil {
		h.fail(ctx, w, log, chatID, err)
		return
	}

	log.Info().Msg("Message saved to ledger")
	middleware.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// fail logs err, tries to tell the chat, and answers 500 with err's message.
// A failed apology is only logged and never replaces err.
func (h *WebhookHandler) fail(ctx context.Context, w http.ResponseWriter, log zerolog.Logger, chatID int64, err error) {
	log.Error().Err(err).Msg("Failed to process message")

	if chatID != 0 {
		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureNotifyTimeout)
		defer cancel()
		if notifyErr := h.notifier.SendMessage(notifyCtx, chatID, telegram.FailureMessage); notifyErr != nil {
			log.Error().Err(notifyErr).Msg("Failed to send failure message to Telegram")
		}
	}

	middleware.WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
		"ok":    false,
		"error": err.Error(),
	})
}

func (h *WebhookHandler) requestLogger(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(logger.LoggerKey).(zerolog.Logger); ok {
		return l
	}
	return h.log
}

func writeSkipped(w http.ResponseWriter) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"skipped": SkippedNoText,
	})
}
