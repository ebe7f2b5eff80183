package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// DefaultBaseURL is the public Bot API endpoint.
const DefaultBaseURL = "https://api.telegram.org"

// ErrNotify wraps every failed Bot API call.
var ErrNotify = errors.New("telegram request failed")

// Client sends Bot API requests through tgbotapi with per-call contexts.
type Client struct {
	bot        *tgbotapi.BotAPI
	httpClient *http.Client
}

// NewClient creates a Bot API client. An empty baseURL uses DefaultBaseURL and
// a nil httpClient gets a 30 second timeout. No request is made until the
// first call.
func NewClient(token, baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	// tgbotapi.NewBotAPI calls getMe; build the struct directly instead.
	bot := &tgbotapi.BotAPI{
		Token:  token,
		Client: httpClient,
		Buffer: 100,
	}
	bot.SetAPIEndpoint(strings.TrimRight(baseURL, "/") + "/bot%s/%s")

	return &Client{bot: bot, httpClient: httpClient}
}

// SendMessage sends text to chatID without any markup processing.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := c.with(ctx).Request(tgbotapi.NewMessage(chatID, text))
	return wrapErr("sendMessage", err)
}

// SetWebhook registers webhookURL as the bot's webhook. When secret is non-empty,
// Telegram sends it back in the X-Telegram-Bot-Api-Secret-Token header.
func (c *Client) SetWebhook(ctx context.Context, webhookURL, secret string) error {
	cfg, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return wrapErr("setWebhook", err)
	}

	// WebhookConfig has no secret_token field, so send the params ourselves.
	params := tgbotapi.Params{"url": cfg.URL.String()}
	params.AddNonEmpty("secret_token", secret)
	if err := params.AddInterface("allowed_updates", []string{"message"}); err != nil {
		return wrapErr("setWebhook", err)
	}

	_, err = c.with(ctx).MakeRequest("setWebhook", params)
	return wrapErr("setWebhook", err)
}

// DeleteWebhook removes the bot's webhook.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	_, err := c.with(ctx).Request(tgbotapi.DeleteWebhookConfig{})
	return wrapErr("deleteWebhook", err)
}

// with returns a copy of the bot whose requests carry ctx.
func (c *Client) with(ctx context.Context) *tgbotapi.BotAPI {
	bot := *c.bot
	bot.Client = contextClient{ctx: ctx, client: c.httpClient}
	return &bot
}

// contextClient attaches a context to requests tgbotapi builds without one.
type contextClient struct {
	ctx    context.Context
	client *http.Client
}

func (c contextClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req.WithContext(c.ctx))
}

func wrapErr(method string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %s (%d): %s", ErrNotify, method, apiErr.Code, apiErr.Message)
	}

	// The request URL embeds the bot token; keep it out of the error.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	return fmt.Errorf("%w: %s: %w", ErrNotify, method, err)
}
