package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"solde/internal/core"
)

func sample() core.Transaction {
	return core.Transaction{
		ID:        "0b7c2a",
		Text:      "Restaurant à Paris",
		Amount:    decimal.RequireFromString("-150.5"),
		CreatedAt: time.Date(2024, 1, 14, 18, 30, 0, 0, time.UTC),
	}
}

func TestRow(t *testing.T) {
	row := Row(sample())
	if len(row) != 4 {
		t.Fatalf("expected 4 cells, got %d", len(row))
	}
	if row[0] != "2024-01-14 18:30:00" {
		t.Errorf("created_at = %v", row[0])
	}
	if row[1] != "Restaurant à Paris" {
		t.Errorf("text = %v", row[1])
	}
	if n, ok := row[2].(json.Number); !ok || n.String() != "-150.50" {
		t.Errorf("amount = %#v", row[2])
	}
	if row[3] != "0b7c2a" {
		t.Errorf("id = %v", row[3])
	}
}

func TestEscapeFormula(t *testing.T) {
	tests := map[string]string{
		"":                 "",
		"Courses":          "Courses",
		"=HYPERLINK(\"x\")": "'=HYPERLINK(\"x\")",
		"+33 taxi":         "'+33 taxi",
		"-remboursement":   "'-remboursement",
		"@home":            "'@home",
	}
	for in, want := range tests {
		if got := escapeFormula(in); got != want {
			t.Errorf("escapeFormula(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewMissingConfig(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	if _, err := New(context.Background(), Config{}); err == nil || !strings.Contains(err.Error(), "spreadsheet") {
		t.Fatalf("expected missing spreadsheet error, got %v", err)
	}
	if _, err := New(context.Background(), Config{SpreadsheetID: "x"}); err == nil || !strings.Contains(err.Error(), "credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}
	if _, err := New(context.Background(), Config{SpreadsheetID: "x", CredentialsFile: "/does/not/exist.json"}); err == nil {
		t.Fatal("expected error for unreadable credentials file")
	}
}

type fakeSheets struct {
	mu     sync.Mutex
	path   string
	query  string
	values [][]any
	status int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.path = r.URL.Path
	f.query = r.URL.RawQuery
	var body struct {
		Values [][]any `json:"values"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	f.values = body.Values

	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"forbidden"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-id","updates":{"updatedRange":"Transactions!A2:D2","updatedRows":1}}`))
}

func newTestAppender(t *testing.T, f *fakeSheets) *Appender {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return NewWithService(svc, "sheet-id", "")
}

func TestAppendTransaction(t *testing.T) {
	f := &fakeSheets{}
	a := newTestAppender(t, f)

	ref, err := a.AppendTransaction(context.Background(), sample())
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "Transactions!A2:D2" {
		t.Errorf("ref = %q", ref)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !strings.HasPrefix(f.path, "/v4/spreadsheets/sheet-id/values/") || !strings.HasSuffix(f.path, ":append") {
		t.Errorf("unexpected path %q", f.path)
	}
	if !strings.Contains(f.query, "valueInputOption=USER_ENTERED") {
		t.Errorf("query = %q", f.query)
	}
	if len(f.values) != 1 || len(f.values[0]) != 4 || f.values[0][3] != "0b7c2a" {
		t.Errorf("values = %v", f.values)
	}
}

func TestAppendTransactionErrors(t *testing.T) {
	f := &fakeSheets{status: http.StatusForbidden}
	a := newTestAppender(t, f)

	if _, err := a.AppendTransaction(context.Background(), sample()); err == nil {
		t.Fatal("expected error from a 403 response")
	}
	if _, err := a.AppendTransaction(context.Background(), core.Transaction{}); err == nil {
		t.Fatal("expected error for a transaction without id")
	}
	if _, err := (&Appender{}).AppendTransaction(context.Background(), sample()); err == nil {
		t.Fatal("expected error without service")
	}
}
