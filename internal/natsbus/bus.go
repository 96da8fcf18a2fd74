// Package natsbus publishes and consumes TransactionCreated events over NATS.
package natsbus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"solde/internal/core"
	"solde/internal/log"
)

const (
	DefaultSubject = "transactions.created"
	handleTimeout  = 30 * time.Second
)

func logger() *slog.Logger {
	return slog.Default().With(log.FieldComponent, log.ComponentNATS)
}

type Bus struct {
	nc      *nats.Conn
	subject string
}

// Connect dials url with reconnects enabled.
func Connect(url, subject string) (*Bus, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	nc, err := nats.Connect(url,
		nats.Name("solde"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger().Warn("NATS disconnected", "error", err, log.FieldErrorType, log.ErrorTypeNetwork)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger().Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &Bus{nc: nc, subject: subject}, nil
}

func (b *Bus) Subject() string { return b.subject }

// PublishTransactionCreated publishes ev and flushes so a broken connection
// surfaces as an error here rather than later.
func (b *Bus) PublishTransactionCreated(ctx context.Context, ev core.TransactionCreated) error {
	body, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.nc.Publish(b.subject, body); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	if err := b.nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush NATS: %w", err)
	}
	logger().InfoContext(ctx, "Published transaction created event", "id", ev.ID, "subject", b.subject)
	return nil
}

// Consume runs handler for every event until ctx is done. NATS core has no
// redelivery, so handler errors are only logged.
func (b *Bus) Consume(ctx context.Context, handler func(context.Context, core.TransactionCreated) error) error {
	sub, err := b.nc.Subscribe(b.subject, func(msg *nats.Msg) {
		hctx, cancel := context.WithTimeout(ctx, handleTimeout)
		defer cancel()

		ev, err := core.TransactionCreatedFromJSON(msg.Data)
		if err != nil {
			logger().ErrorContext(hctx, "Failed to decode event", "error", err, "subject", msg.Subject)
			return
		}
		if err := handler(hctx, ev); err != nil {
			logger().ErrorContext(hctx, "Failed to handle event", "error", err, "id", ev.ID)
			return
		}
		logger().InfoContext(hctx, "Processed transaction created event", "id", ev.ID)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", b.subject, err)
	}
	logger().InfoContext(ctx, "Subscribed to NATS subject", "subject", b.subject)

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		logger().WarnContext(ctx, "Failed to drain NATS subscription", "error", err)
	}
	return ctx.Err()
}

func (b *Bus) Close() error {
	if b.nc != nil {
		return b.nc.Drain()
	}
	return nil
}
