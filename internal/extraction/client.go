package extraction

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/expense-bot/internal/domain"
	"github.com/dvloznov/expense-bot/internal/logger"
)

const (
	// DefaultMaxRetries is how many times a 429 response is retried.
	DefaultMaxRetries = 3

	// MaxRetries caps the retry budget so the doubled backoff cannot overflow.
	MaxRetries = 10

	// DefaultInitialBackoff is the first retry delay; each further retry doubles it.
	DefaultInitialBackoff = time.Second
)

// Client turns free-form text into a domain.Record through a Provider.
type Client struct {
	provider       Provider
	schema         Schema
	instruction    string
	maxRetries     int
	initialBackoff time.Duration
	sleep          func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithMaxRetries sets the retry budget for rate-limited responses, clamped
// to MaxRetries.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = min(n, MaxRetries)
		}
	}
}

// WithInitialBackoff sets the delay before the first retry.
func WithInitialBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.initialBackoff = d
		}
	}
}

// WithSleep replaces the backoff wait, mainly for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// NewClient creates an extraction client. timezone is the IANA zone the model
// should assume when the user gives no date.
func NewClient(provider Provider, timezone string, opts ...Option) *Client {
	c := &Client{
		provider:       provider,
		schema:         ExtractionSchema,
		instruction:    BuildInstruction(ExtractionSchema, timezone),
		maxRetries:     DefaultMaxRetries,
		initialBackoff: DefaultInitialBackoff,
		sleep:          sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Instruction returns the system instruction sent with every request.
func (c *Client) Instruction() string {
	return c.instruction
}

// Extract sends rawText to the provider and decodes the returned JSON.
// Rate-limited responses are retried with exponential backoff; every other
// failure, including unparseable output, is returned immediately.
func (c *Client) Extract(ctx context.Context, rawText string) (*domain.Record, error) {
	log := logger.FromContext(ctx)

	req := Request{
		Instruction: c.instruction,
		Text:        rawText,
		Schema:      c.schema,
	}

	var (
		text string
		err  error
	)
	for attempt := 0; ; attempt++ {
		text, err = c.provider.Generate(ctx, req)
		if err == nil {
			break
		}
		if !IsRateLimited(err) {
			return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
		}
		if attempt >= c.maxRetries {
			return nil, fmt.Errorf("%w: %w after %d retries: %w", ErrExtraction, ErrRateLimited, attempt, err)
		}

		delay := c.initialBackoff << attempt
		log.Warn().
			Int("attempt", attempt+1).
			Int("max_retries", c.maxRetries).
			Dur("backoff", delay).
			Msg("Extraction provider rate limited, backing off")

		if err := c.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("%w: waiting to retry: %w", ErrExtraction, err)
		}
	}

	if text == "" {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, ErrEmptyResponse)
	}

	fields, err := parseModelJSON(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	return domain.RecordFromMap(fields), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
