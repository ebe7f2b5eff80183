package domain

import (
	"fmt"
	"time"
)

// Record is the structured output of one extraction.
// Field values are kept exactly as the model returned them: numbers arrive as
// json.Number, strings as string, and fields the model omitted stay nil. The
// spreadsheet performs its own type coercion, so nothing is reformatted here.
type Record struct {
	Amount   interface{} // from "amount"
	Purpose  interface{} // from "purpose"
	Category interface{} // from "category"
	Time     interface{} // from "time", ISO-8601
	Source   interface{} // from "source", "chưa rõ" when unknown

	// RawMessage is always the trimmed incoming text, never the model's echo.
	RawMessage string
}

// RecordFromMap builds a Record from a decoded model response.
// The model's "raw_message" is ignored on purpose; callers stamp it.
func RecordFromMap(m map[string]interface{}) *Record {
	return &Record{
		Amount:   m["amount"],
		Purpose:  m["purpose"],
		Category: m["category"],
		Time:     m["time"],
		Source:   m["source"],
	}
}

// Display renders a field value for chat messages. Missing values render empty.
func Display(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// LedgerRow is one append-only row of the spreadsheet ledger.
type LedgerRow struct {
	IngestedAt time.Time
	ChatID     int64
	UserID     *int64 // nil when the update has no sender
	Username   string
	Record     *Record
}

// NewLedgerRow stamps a record with request metadata.
func NewLedgerRow(ingestedAt time.Time, chatID int64, userID *int64, username string, rec *Record) LedgerRow {
	return LedgerRow{
		IngestedAt: ingestedAt,
		ChatID:     chatID,
		UserID:     userID,
		Username:   username,
		Record:     rec,
	}
}

// LedgerColumns names the sheet columns in the order Values returns them.
var LedgerColumns = []string{
	"ingested_at",
	"chat_id",
	"user_id",
	"username",
	"amount",
	"purpose",
	"category",
	"time",
	"source",
	"raw_message",
}

// ingestedAtLayout matches JavaScript's Date.toISOString output.
const ingestedAtLayout = "2006-01-02T15:04:05.000Z"

// Values returns the fixed 10-column ordering written to the sheet.
func (r LedgerRow) Values() []interface{} {
	rec := r.Record
	if rec == nil {
		rec = &Record{}
	}
	var userID interface{}
	if r.UserID != nil {
		userID = *r.UserID
	}
	return []interface{}{
		r.IngestedAt.UTC().Format(ingestedAtLayout),
		r.ChatID,
		userID,
		r.Username,
		rec.Amount,
		rec.Purpose,
		rec.Category,
		rec.Time,
		rec.Source,
		rec.RawMessage,
	}
}
