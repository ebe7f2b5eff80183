package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// ErrMissing is returned when required credentials are absent at startup.
var ErrMissing = errors.New("missing required environment variables")

// Defaults applied when the corresponding variable is unset.
const (
	DefaultPort           = "3000"
	DefaultGeminiModel    = "gemini-2.0-flash"
	DefaultMaxRetries     = 3
	DefaultSheetName      = "Sheet1"
	DefaultTimezone       = "Asia/Ho_Chi_Minh"
	DefaultRequestTimeout = 60 * time.Second
)

// MaxGeminiRetries is the largest accepted GEMINI_MAX_RETRIES.
const MaxGeminiRetries = 10

// Config is the process configuration, read once at startup.
type Config struct {
	Port           string
	RequestTimeout time.Duration

	TelegramBotToken      string
	TelegramWebhookSecret string
	TelegramAPIBaseURL    string

	GeminiAPIKey     string
	GeminiModel      string
	GeminiBaseURL    string
	GeminiMaxRetries int

	SpreadsheetID       string
	SheetName           string
	ServiceAccountEmail string
	PrivateKey          string

	DefaultTimezone string

	LogLevel  string
	LogFormat string
}

var requiredKeys = []string{
	"TELEGRAM_BOT_TOKEN",
	"GEMINI_API_KEY",
	"GOOGLE_SPREADSHEET_ID",
	"GOOGLE_SERVICE_ACCOUNT_EMAIL",
	"GOOGLE_PRIVATE_KEY",
}

// Load reads a .env file when one exists, then builds Config from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: loading .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds Config from an arbitrary key lookup, e.g. os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return v
		}
		return def
	}

	var missing []string
	for _, key := range requiredKeys {
		if get(key, "") == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}

	cfg := &Config{
		Port:                  get("PORT", DefaultPort),
		TelegramBotToken:      get("TELEGRAM_BOT_TOKEN", ""),
		TelegramWebhookSecret: get("TELEGRAM_WEBHOOK_SECRET", ""),
		TelegramAPIBaseURL:    get("TELEGRAM_API_BASE_URL", ""),
		GeminiAPIKey:          get("GEMINI_API_KEY", ""),
		GeminiModel:           get("GEMINI_MODEL", DefaultGeminiModel),
		GeminiBaseURL:         get("GEMINI_BASE_URL", ""),
		SpreadsheetID:         get("GOOGLE_SPREADSHEET_ID", ""),
		SheetName:             get("GOOGLE_SHEET_NAME", DefaultSheetName),
		ServiceAccountEmail:   get("GOOGLE_SERVICE_ACCOUNT_EMAIL", ""),
		PrivateKey:            UnescapePrivateKey(get("GOOGLE_PRIVATE_KEY", "")),
		DefaultTimezone:       get("DEFAULT_TIMEZONE", DefaultTimezone),
		LogLevel:              get("LOG_LEVEL", ""),
		LogFormat:             get("LOG_FORMAT", ""),
	}

	retries, err := strconv.Atoi(get("GEMINI_MAX_RETRIES", strconv.Itoa(DefaultMaxRetries)))
	if err != nil || retries < 0 || retries > MaxGeminiRetries {
		return nil, fmt.Errorf("config: invalid GEMINI_MAX_RETRIES %q", get("GEMINI_MAX_RETRIES", ""))
	}
	cfg.GeminiMaxRetries = retries

	timeout, err := time.ParseDuration(get("REQUEST_TIMEOUT", DefaultRequestTimeout.String()))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("config: invalid REQUEST_TIMEOUT %q", get("REQUEST_TIMEOUT", ""))
	}
	cfg.RequestTimeout = timeout

	if _, err := time.LoadLocation(cfg.DefaultTimezone); err != nil {
		return nil, fmt.Errorf("config: invalid DEFAULT_TIMEZONE %q: %w", cfg.DefaultTimezone, err)
	}

	return cfg, nil
}

// UnescapePrivateKey turns literal "\n" sequences from single-line env values into newlines.
func UnescapePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}
