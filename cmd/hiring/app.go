package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/analytics/cache"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/ingestion/orchestrator"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/ingestion/persistence"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/ingestion/publisher"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/tracing"
)

const tracingFlushTimeout = 5 * time.Second

// app is the wired object graph shared by the subcommands.
type app struct {
	db           *postgres.Client
	gateway      *persistence.Gateway
	redis        *redis.Client
	cache        *cache.Cache
	metrics      *metrics.Metrics
	orchestrator *orchestrator.Orchestrator
	engine       *analytics.Engine

	closers []func() error
}

// newApp installs tracing, connects to PostgreSQL and, when enabled, Kafka
// and Redis. A Redis failure only disables the aggregate cache.
func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	a := &app{}

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing, log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error {
		flushCtx, cancel := context.WithTimeout(context.Background(), tracingFlushTimeout)
		defer cancel()
		return shutdownTracing(flushCtx)
	})

	db, err := postgres.New(ctx, cfg.Postgres, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.db = db
	a.closers = append(a.closers, db.Close)
	a.gateway = persistence.New(db, log)
	log.Info("connected to postgres", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)

	if cfg.Metrics.Enabled {
		a.metrics = metrics.New()
	}

	var producer publisher.Producer
	if cfg.Kafka.Enabled {
		p := kafka.NewProducer(cfg.Kafka, log)
		producer = p
		a.closers = append(a.closers, p.Close)
		log.Info("kafka producer initialized", "topic", cfg.Kafka.Topic)
	}

	if cfg.Redis.Enabled {
		rc, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("redis unavailable, aggregate cache disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			a.redis = rc
			a.cache = cache.New(rc, cfg.Redis.CacheTTL, log)
			a.closers = append(a.closers, rc.Close)
			log.Info("aggregate cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	opts := []orchestrator.Option{
		orchestrator.WithNotifier(publisher.New(producer, cfg.Kafka.PublishTimeout, log)),
		orchestrator.WithMetrics(a.metrics),
	}
	if a.cache != nil {
		opts = append(opts, orchestrator.WithInvalidator(a.cache))
	}
	a.orchestrator = orchestrator.New(a.gateway, cfg.Ingestion, log, opts...)
	a.engine = analytics.NewEngine(a.gateway, a.cache, a.metrics, log)
	return a, nil
}

// Close releases connections in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
