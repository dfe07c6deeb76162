package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/analytics"
	ingesthandler "github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/ingestion/handler"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/router"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/health"
)

func newServeCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), g)
		},
	}
}

// runServe wires the HTTP server and blocks until SIGINT/SIGTERM, then
// drains in-flight requests within the shutdown timeout.
func runServe(parent context.Context, g *globals) error {
	cfg, log := g.cfg, g.log
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting hiring service", "port", cfg.Server.Port)
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	checker := health.NewChecker(log)
	checker.Register("postgres", a.gateway.Ping)
	if a.redis != nil {
		checker.Register("redis", a.redis.Ping)
	}

	serveMetrics := cfg.Metrics.Port == 0
	if a.metrics != nil && !serveMetrics {
		shutdownMetrics := a.metrics.StartServer(cfg.Metrics.Port, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			shutdownMetrics(shutdownCtx)
		}()
	}

	handler := router.New(router.Deps{
		Ingestion:      ingesthandler.New(a.orchestrator, cfg.Server.MaxUploadBytes, log),
		Analytics:      analytics.NewHandler(a.engine, log),
		Health:         checker,
		Metrics:        a.metrics,
		ServeMetrics:   serveMetrics,
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSOrigins:    cfg.Server.CORSOrigins,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
	}()

	log.Info("hiring service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	log.Info("hiring service stopped")
	return nil
}
