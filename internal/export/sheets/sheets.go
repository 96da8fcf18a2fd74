// Package sheets appends exported transactions to a Google Sheets tab.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"solde/internal/core"
	"solde/internal/log"
)

// Config selects the target spreadsheet and the service account.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Appender struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
}

// New creates an Appender authenticated with a service account. Inline JSON
// wins over the file; GOOGLE_APPLICATION_CREDENTIALS is the last fallback.
func New(ctx context.Context, cfg Config) (*Appender, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	credentialsJSON, err := loadCredentials(ctx, cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, cfg.SpreadsheetID, cfg.SheetName), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheet string) *Appender {
	if strings.TrimSpace(sheet) == "" {
		sheet = "Transactions"
	}
	return &Appender{svc: svc, spreadsheetID: spreadsheetID, sheet: sheet}
}

func loadCredentials(ctx context.Context, cfg Config) ([]byte, error) {
	inline := strings.TrimSpace(cfg.CredentialsJSON)
	file := strings.TrimSpace(cfg.CredentialsFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		slog.DebugContext(ctx, "Using inline service account credentials", log.FieldComponent, log.ComponentSheets)
		return []byte(inline), nil
	case file != "":
		slog.DebugContext(ctx, "Reading service account credentials", log.FieldComponent, log.ComponentSheets, "path", file)
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// Row builds the exported row: created_at, text, amount, id. The amount is an
// exact JSON number so the sheet stores a number regardless of its locale.
func Row(t core.Transaction) []any {
	return []any{
		t.CreatedAt.UTC().Format(time.DateTime),
		escapeFormula(t.Text),
		json.Number(t.Amount.StringFixed(2)),
		t.ID,
	}
}

// escapeFormula keeps user text from being evaluated as a formula.
func escapeFormula(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@':
		return "'" + s
	}
	return s
}

// AppendTransaction adds t as a new row after the last one of the sheet and
// returns the updated range.
func (a *Appender) AppendTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if a.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if t.ID == "" {
		return "", errors.New("transaction without id")
	}

	rng := fmt.Sprintf("%s!A:D", a.sheet)
	vr := &gsheet.ValueRange{Values: [][]any{Row(t)}}
	resp, err := a.svc.Spreadsheets.Values.Append(a.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", a.sheet, err)
	}
	if resp.Updates != nil {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}
