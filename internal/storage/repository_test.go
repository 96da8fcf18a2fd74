package storage

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"solde/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "solde.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteCreateAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Millisecond)
	}

	inputs := []core.NewTransaction{
		{Text: "Salaire", Amount: decimal.NewFromInt(2500)},
		{Text: "Restaurant à Paris 🍽️", Amount: decimal.RequireFromString("150.75")},
		{Text: "Café & croissant", Amount: decimal.RequireFromString("-0.50")},
	}
	ids := map[string]bool{}
	for _, n := range inputs {
		tx, err := repo.Create(ctx, n)
		if err != nil {
			t.Fatalf("create %q: %v", n.Text, err)
		}
		ids[tx.ID] = true
	}
	if len(ids) != len(inputs) {
		t.Fatalf("expected unique ids, got %v", ids)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(list))
	}
	if list[0].Text != "Café & croissant" || list[2].Text != "Salaire" {
		t.Fatalf("expected newest first, got %q ... %q", list[0].Text, list[2].Text)
	}
	if !list[1].Amount.Equal(decimal.RequireFromString("150.75")) {
		t.Fatalf("decimal not preserved: %s", list[1].Amount)
	}
	if !list[0].CreatedAt.Equal(base.Add(3 * time.Millisecond)) {
		t.Fatalf("created_at not preserved: %v", list[0].CreatedAt)
	}
}

func TestSQLiteTieBreakOnInsertionOrder(t *testing.T) {
	repo := newTestRepo(t)
	fixed := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	a, _ := repo.Create(context.Background(), core.NewTransaction{Text: "a", Amount: decimal.NewFromInt(1)})
	b, _ := repo.Create(context.Background(), core.NewTransaction{Text: "b", Amount: decimal.NewFromInt(1)})
	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list[0].ID != b.ID || list[1].ID != a.ID {
		t.Fatalf("expected latest insert first")
	}
}

func TestSQLiteRejectsInvalid(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.Create(context.Background(), core.NewTransaction{Text: strings.Repeat("A", 300), Amount: decimal.NewFromInt(1)})
	if !errors.Is(err, core.ErrTextTooLong) {
		t.Fatalf("expected ErrTextTooLong, got %v", err)
	}
	list, _ := repo.List(context.Background())
	if len(list) != 0 {
		t.Fatalf("nothing should have been stored")
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solde.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	repo.Close()
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second migration run: %v", err)
	}
}
