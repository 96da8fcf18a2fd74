package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"solde/internal/config"
	"solde/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}

	cfg := &config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", EventsBackend: "nats", NATSURL: "nats://localhost:4222"}
	bc, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bc.Type != SQLiteBackend || bc.Events != NATSEvents || bc.SQLiteDBPath != "x.db" {
		t.Fatalf("unexpected backend config: %+v", bc)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "memory", EventsBackend: "kafka"}); err == nil {
		t.Fatal("expected error for unknown events backend")
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"memory", Config{Type: MemoryBackend}, true},
		{"sqlite without path", Config{Type: SQLiteBackend}, false},
		{"postgres without url", Config{Type: PostgresBackend}, false},
		{"amqp incomplete", Config{Type: MemoryBackend, Events: AMQPEvents, AMQPURL: "amqp://x"}, false},
		{"nats without url", Config{Type: MemoryBackend, Events: NATSEvents}, false},
		{"unknown type", Config{Type: "csv"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); (err == nil) != tc.ok {
				t.Fatalf("Validate() = %v, want ok=%v", err, tc.ok)
			}
		})
	}
}

func TestCreateBackend(t *testing.T) {
	f := NewFactory(nil)
	ctx := context.Background()

	for _, cfg := range []Config{
		{Type: MemoryBackend, Events: NoEvents},
		{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "solde.db")},
	} {
		t.Run(cfg.Type.String(), func(t *testing.T) {
			res, err := f.CreateBackend(ctx, cfg)
			if err != nil {
				t.Fatalf("CreateBackend: %v", err)
			}
			defer res.Cleanup()

			if err := res.Backend.Ping(ctx); err != nil {
				t.Fatalf("ping: %v", err)
			}
			if _, err := res.Backend.Create(ctx, core.NewTransaction{Text: "Salaire", Amount: decimal.NewFromInt(2500)}); err != nil {
				t.Fatalf("create: %v", err)
			}
			totals, err := res.Backend.Totals(ctx)
			if err != nil || totals.IncomeText() != "2500.00 €" {
				t.Fatalf("unexpected totals %+v err=%v", totals, err)
			}
		})
	}
}

func TestCreateBackendUnreachableBusStillStores(t *testing.T) {
	f := NewFactory(nil)
	res, err := f.CreateBackend(context.Background(), Config{
		Type:    MemoryBackend,
		Events:  NATSEvents,
		NATSURL: "nats://127.0.0.1:1",
	})
	if err != nil {
		t.Fatalf("bus failure must not prevent startup: %v", err)
	}
	defer res.Cleanup()
	if _, err := res.Backend.Create(context.Background(), core.NewTransaction{Text: "x", Amount: decimal.NewFromInt(-1)}); err != nil {
		t.Fatalf("create: %v", err)
	}
}
