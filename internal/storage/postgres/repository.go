package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"solde/internal/core"
)

type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Pool.Ping(ctx)
}

// Create implements transactions.Creator. The id is generated here; the
// timestamp comes from the database clock.
func (r *Repository) Create(ctx context.Context, n core.NewTransaction) (core.Transaction, error) {
	if err := n.Validate(); err != nil {
		return core.Transaction{}, err
	}

	t := core.Transaction{ID: uuid.NewString(), Text: n.Text, Amount: n.Amount}
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO transactions (id, text, amount)
		 VALUES ($1, $2, $3)
		 RETURNING created_at`,
		t.ID, t.Text, t.Amount.StringFixed(2),
	).Scan(&t.CreatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	t.CreatedAt = t.CreatedAt.UTC()

	slog.InfoContext(ctx, "Transaction saved to Postgres", "id", t.ID, "amount", t.Amount.StringFixed(2))
	return t, nil
}

// List implements transactions.Lister
func (r *Repository) List(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id::text, text, amount::text, created_at
		 FROM transactions
		 ORDER BY created_at DESC, seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	return r.scanTransactions(rows)
}

func (r *Repository) scanTransactions(rows pgx.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		var (
			t      core.Transaction
			amount string
		)
		if err := rows.Scan(&t.ID, &t.Text, &amount, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount of %s: %w", t.ID, err)
		}
		t.Amount = d
		t.CreatedAt = t.CreatedAt.UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}
