package ledger

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/dvloznov/expense-bot/internal/domain"
)

// ErrPersistence wraps every failed append.
var ErrPersistence = errors.New("ledger append failed")

const (
	// columnRange covers the ten ledger columns.
	columnRange = "A:J"

	// headerRange is the first row of the ledger columns.
	headerRange = "A1:J1"

	valueInputOption = "USER_ENTERED"
	insertDataOption = "INSERT_ROWS"
)

// Credentials identify the service account used to write the sheet.
type Credentials struct {
	Email      string
	PrivateKey string
}

// NewSheetsService builds the process-wide Sheets client. ctx must outlive the
// service because it is used for token refreshes.
func NewSheetsService(ctx context.Context, creds Credentials, opts ...option.ClientOption) (*sheets.Service, error) {
	if creds.Email == "" || creds.PrivateKey == "" {
		return nil, errors.New("ledger: service account email and private key are required")
	}

	conf := &jwt.Config{
		Email:      creds.Email,
		PrivateKey: []byte(creds.PrivateKey),
		TokenURL:   google.JWTTokenURL,
		Scopes:     []string{sheets.SpreadsheetsScope},
	}

	opts = append([]option.ClientOption{option.WithHTTPClient(conf.Client(ctx))}, opts...)
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("ledger: create sheets service: %w", err)
	}
	return srv, nil
}

// SheetsWriter appends ledger rows to a Google Sheets range.
type SheetsWriter struct {
	service       *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsWriter creates a writer over a shared, already authenticated service.
func NewSheetsWriter(service *sheets.Service, spreadsheetID, sheetName string) *SheetsWriter {
	return &SheetsWriter{
		service:       service,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}
}

// Range returns the A1 range rows are appended to, e.g. "Sheet1!A:J".
func (w *SheetsWriter) Range() string {
	return fmt.Sprintf("%s!%s", w.sheetName, columnRange)
}

// Append writes row as a new sheet row. Values are passed through unformatted.
func (w *SheetsWriter) Append(ctx context.Context, row domain.LedgerRow) error {
	vr := &sheets.ValueRange{
		Values: [][]interface{}{row.Values()},
	}

	_, err := w.service.Spreadsheets.Values.
		Append(w.spreadsheetID, w.Range(), vr).
		ValueInputOption(valueInputOption).
		InsertDataOption(insertDataOption).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("%w: spreadsheet %s range %s: %w", ErrPersistence, w.spreadsheetID, w.Range(), err)
	}
	return nil
}

// EnsureHeader writes domain.LedgerColumns into the first row when it is
// empty. It reports whether the header was written. A non-empty first row is
// left alone, even if it differs.
func (w *SheetsWriter) EnsureHeader(ctx context.Context) (bool, error) {
	rng := fmt.Sprintf("%s!%s", w.sheetName, headerRange)

	existing, err := w.service.Spreadsheets.Values.Get(w.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("%w: reading header %s: %w", ErrPersistence, rng, err)
	}
	if len(existing.Values) > 0 && len(existing.Values[0]) > 0 {
		return false, nil
	}

	header := make([]interface{}, len(domain.LedgerColumns))
	for i, name := range domain.LedgerColumns {
		header[i] = name
	}
	_, err = w.service.Spreadsheets.Values.
		Update(w.spreadsheetID, rng, &sheets.ValueRange{Values: [][]interface{}{header}}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return false, fmt.Errorf("%w: writing header %s: %w", ErrPersistence, rng, err)
	}
	return true, nil
}
