// Package router wires up all HTTP routes and applies the middleware chain
// (RequestID → Tracing → CORS → Metrics → Timeout).
package router

import (
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/ingestion"
	ingesthandler "github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/ingestion/handler"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/metrics"
	pkgmw "github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/tracing"
)

type Deps struct {
	Ingestion *ingesthandler.Handler
	Analytics *analytics.Handler
	Health    *health.Checker
	// Metrics is optional. When set, HTTP metrics are recorded and, if
	// ServeMetrics is true, exposed on GET /metrics.
	Metrics        *metrics.Metrics
	ServeMetrics   bool
	RequestTimeout time.Duration
	CORSOrigins    []string
}

// New builds the full HTTP handler with all routes and middleware.
//
// Route table:
//
//	POST   /departments                                                   → upload departments
//	POST   /jobs                                                          → upload jobs
//	POST   /employees                                                     → upload hire events
//	DELETE /departments, /jobs, /employees                                → purge table
//	GET    /quantity_employees_hired_by_quarters/{year}                   → quarterly report
//	GET    /quantity_employees_hired_more_than_year_mean_by_department/{year} → above-mean report
//	GET    /health/live, /health/ready                                    → health
//	GET    /metrics                                                       → Prometheus
//
// Middleware chain (outermost first):
//
//	RequestID → Tracing → CORS → Metrics → Timeout → handler
func New(d Deps) http.Handler {
	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("GET /health/live", d.Health.LiveHandler())
	mux.HandleFunc("GET /health/ready", d.Health.ReadyHandler())

	// Ingestion API
	for _, entity := range ingestion.EntityTypes {
		path := "/" + entity.Table()
		mux.HandleFunc("POST "+path, d.Ingestion.Upload(entity))
		mux.HandleFunc("DELETE "+path, d.Ingestion.Purge(entity))
	}

	// Analytics API
	mux.HandleFunc("GET /quantity_employees_hired_by_quarters/{year}", d.Analytics.Quarterly)
	mux.HandleFunc("GET /quantity_employees_hired_more_than_year_mean_by_department/{year}", d.Analytics.AboveMean)

	if d.Metrics != nil && d.ServeMetrics {
		mux.Handle("GET /metrics", d.Metrics.Handler())
	}

	// Applied inside-out:
	// request → RequestID → Tracing → CORS → Metrics → Timeout → mux
	var chain http.Handler = mux
	if d.RequestTimeout > 0 {
		chain = pkgmw.Timeout(d.RequestTimeout)(chain)
	}
	if d.Metrics != nil {
		chain = pkgmw.Metrics(d.Metrics)(chain)
	}
	chain = corsHandler(d.CORSOrigins).Handler(chain)
	chain = tracing.Middleware(chain)
	chain = pkgmw.RequestID(chain)

	return chain
}

func corsHandler(origins []string) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", pkgmw.RequestIDHeader},
		ExposedHeaders: []string{pkgmw.RequestIDHeader},
		MaxAge:         86400,
	})
}
