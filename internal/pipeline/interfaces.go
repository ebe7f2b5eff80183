package pipeline

import (
	"context"

	"github.com/dvloznov/expense-bot/internal/domain"
)

// Extractor turns free-form text into a record.
// *extraction.Client is the production implementation.
type Extractor interface {
	Extract(ctx context.Context, rawText string) (*domain.Record, error)
}

// Notifier sends a plain-text reply to a chat.
// *telegram.Client is the production implementation.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Appender persists one ledger row.
// *ledger.SheetsWriter is the production implementation.
type Appender interface {
	Append(ctx context.Context, row domain.LedgerRow) error
}
