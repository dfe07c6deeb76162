// Package orchestrator runs one upload through the ingestion pipeline:
// preconditions, parse, row count, normalize, classify, insert. Side
// effects after the commit (events, cache invalidation) are best effort.
package orchestrator

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/ingestion/normalizer"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/ingestion/parser"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/ingestion/validator"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/tracing"
)

// Store is the write side of the persistence gateway.
type Store interface {
	Insert(ctx context.Context, entity ingestion.EntityType, rows []ingestion.RawRow) (ingestion.InsertSummary, error)
	DeleteAll(ctx context.Context, entity ingestion.EntityType) (int64, error)
}

// Notifier announces committed changes.
type Notifier interface {
	Ingested(ctx context.Context, res *ingestion.Result) error
	Purged(ctx context.Context, entity ingestion.EntityType, deleted int64) error
}

// Invalidator drops cached aggregates after the underlying tables change.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type Option func(*Orchestrator)

func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

func WithInvalidator(inv Invalidator) Option {
	return func(o *Orchestrator) { o.invalidator = inv }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

type Orchestrator struct {
	store       Store
	notifier    Notifier
	invalidator Invalidator
	metrics     *metrics.Metrics
	maxLines    int
	delimiter   rune
	logger      *slog.Logger
}

func New(store Store, cfg config.IngestionConfig, log *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:     store,
		maxLines:  cfg.MaxLines,
		delimiter: cfg.DelimiterRune(),
		logger:    logger.WithComponent(log, "orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Ingest validates and stores one upload for entity. A nil upload means no
// file was sent. Any returned error leaves the store untouched.
func (o *Orchestrator) Ingest(ctx context.Context, entity ingestion.EntityType, upload *ingestion.Upload) (res *ingestion.Result, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "ingestion.Ingest", attribute.String("entity", entity.String()))
	defer func() {
		tracing.End(span, err)
		if err != nil {
			o.metrics.ObserveFailure(entity.String(), apperrors.Kind(err))
		}
		o.metrics.ObserveDuration(entity.String(), time.Since(start).Seconds())
	}()

	if !entity.Valid() {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "unknown entity %s", entity)
	}
	if err := validator.ValidateUpload(upload); err != nil {
		return nil, err
	}

	rows, err := o.parse(ctx, upload.Content)
	if err != nil {
		return nil, err
	}
	if err := validator.ValidateRowCount(len(rows), o.maxLines); err != nil {
		return nil, err
	}

	rows = normalizer.Normalize(entity, rows)
	accepted, report := validator.Classify(entity, rows)
	o.metrics.ObserveRows(entity.String(), report.TotalAccepted, report.TotalRejected)

	summary, err := o.insert(ctx, entity, accepted)
	if err != nil {
		return nil, err
	}
	o.metrics.ObserveInserted(entity.String(), summary.RowsInserted)

	res = &ingestion.Result{Entity: entity, Report: report, Summary: summary}
	logger.FromContext(ctx, o.logger).Info("upload ingested",
		"entity", entity.String(),
		"file", upload.FileName,
		"accepted", report.TotalAccepted,
		"rejected", report.TotalRejected,
		"rows_inserted", summary.RowsInserted,
	)

	if summary.RowsInserted > 0 {
		o.afterCommit(ctx, func(ctx context.Context) error {
			if o.notifier == nil {
				return nil
			}
			return o.notifier.Ingested(ctx, res)
		})
	}
	return res, nil
}

// Purge deletes every row of entity and returns how many were removed.
func (o *Orchestrator) Purge(ctx context.Context, entity ingestion.EntityType) (deleted int64, err error) {
	ctx, span := tracing.StartSpan(ctx, "ingestion.Purge", attribute.String("entity", entity.String()))
	defer func() { tracing.End(span, err) }()

	if !entity.Valid() {
		return 0, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "unknown entity %s", entity)
	}
	deleted, err = o.store.DeleteAll(ctx, entity)
	if err != nil {
		o.metrics.ObserveFailure(entity.String(), apperrors.Kind(err))
		return 0, err
	}
	if deleted == 0 {
		return 0, nil
	}

	o.afterCommit(ctx, func(ctx context.Context) error {
		if o.notifier == nil {
			return nil
		}
		return o.notifier.Purged(ctx, entity, deleted)
	})
	return deleted, nil
}

func (o *Orchestrator) parse(ctx context.Context, content []byte) (rows []ingestion.RawRow, err error) {
	_, span := tracing.StartSpan(ctx, "ingestion.Parse", attribute.Int("bytes", len(content)))
	defer func() { tracing.End(span, err) }()
	return parser.Parse(content, o.delimiter)
}

func (o *Orchestrator) insert(ctx context.Context, entity ingestion.EntityType, rows []ingestion.RawRow) (summary ingestion.InsertSummary, err error) {
	ctx, span := tracing.StartSpan(ctx, "ingestion.Insert",
		attribute.String("table", entity.Table()),
		attribute.Int("rows", len(rows)),
	)
	defer func() { tracing.End(span, err) }()
	return o.store.Insert(ctx, entity, rows)
}

// afterCommit runs notify and then drops cached aggregates. Failures are
// logged only: the data is already committed.
func (o *Orchestrator) afterCommit(ctx context.Context, notify func(context.Context) error) {
	log := logger.FromContext(ctx, o.logger)
	if err := notify(ctx); err != nil {
		log.Warn("change notification failed", "error", err)
	}
	if o.invalidator == nil {
		return
	}
	if err := o.invalidator.Invalidate(ctx); err != nil {
		log.Warn("aggregate cache invalidation failed", "error", err)
	}
}
