// Package publisher announces completed ingestion and purge operations on
// Kafka so downstream consumers can refresh derived data.
package publisher

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/resilience"
)

const (
	EventIngested = "ingested"
	EventPurged   = "purged"
)

// Event is the JSON payload written to the topic.
type Event struct {
	ID           string    `json:"event_id"`
	Type         string    `json:"type"`
	Entity       string    `json:"entity"`
	Table        string    `json:"table"`
	RowsInserted int64     `json:"rows_inserted,omitempty"`
	RowsRejected int       `json:"rows_rejected,omitempty"`
	RowsDeleted  int64     `json:"rows_deleted,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Producer is satisfied by *kafka.Producer.
type Producer interface {
	Publish(ctx context.Context, event kafka.Event) error
}

type Publisher struct {
	producer Producer
	breaker  *resilience.Breaker
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a Publisher. A nil producer turns every call into a no-op,
// which is how the service runs with Kafka disabled. Each publish is bounded
// by timeout, and publishing stops for a while after repeated failures.
func New(producer Producer, timeout time.Duration, log *slog.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		breaker:  resilience.NewBreaker("kafka-publish", resilience.BreakerConfig{}, log),
		timeout:  timeout,
		logger:   logger.WithComponent(log, "publisher"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Ingested publishes the outcome of a committed upload.
func (p *Publisher) Ingested(ctx context.Context, res *ingestion.Result) error {
	return p.publish(ctx, Event{
		Type:         EventIngested,
		Entity:       res.Entity.String(),
		Table:        res.Summary.Table,
		RowsInserted: res.Summary.RowsInserted,
		RowsRejected: res.Report.TotalRejected,
	})
}

// Purged publishes that every row of entity was deleted.
func (p *Publisher) Purged(ctx context.Context, entity ingestion.EntityType, deleted int64) error {
	return p.publish(ctx, Event{
		Type:        EventPurged,
		Entity:      entity.String(),
		Table:       entity.Table(),
		RowsDeleted: deleted,
	})
}

func (p *Publisher) publish(ctx context.Context, ev Event) error {
	if p == nil || p.producer == nil {
		return nil
	}
	ev.ID = uuid.NewString()
	ev.RequestID = logger.RequestID(ctx)
	ev.OccurredAt = p.now()

	err := p.breaker.Execute(func() error {
		return resilience.WithTimeout(ctx, p.timeout, "kafka publish", func(ctx context.Context) error {
			return p.producer.Publish(ctx, kafka.Event{Key: ev.Table, Value: ev})
		})
	})
	if err != nil {
		logger.FromContext(ctx, p.logger).Error("failed to publish event",
			"type", ev.Type,
			"table", ev.Table,
			"event_id", ev.ID,
			"error", err,
		)
		return err
	}
	return nil
}
