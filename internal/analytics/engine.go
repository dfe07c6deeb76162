// Package analytics answers the yearly hiring reports over persisted data.
package analytics

import (
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/analytics/cache"
	apperrors "github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/tracing"
)

const (
	ReportQuarterly = "quarterly"
	ReportAboveMean = "above_mean"
)

const (
	minYear = 1
	maxYear = 9999
)

// monthlyHiresQuery counts hires per (department, job, month) for one year.
// Hires whose department or job is unknown are dropped by the inner joins.
const monthlyHiresQuery = `
SELECT d.department AS department,
       j.job AS job,
       EXTRACT(MONTH FROM e.datetime)::int AS month,
       COUNT(*) AS hires
FROM employees e
JOIN departments d ON d.id = e.department_id
JOIN jobs j ON j.id = e.job_id
WHERE e.datetime >= make_date($1, 1, 1)
  AND e.datetime < make_date($1 + 1, 1, 1)
GROUP BY d.department, j.job, month`

// departmentHiresQuery counts hires per department for one year. A
// department without hires that year has no row.
const departmentHiresQuery = `
SELECT d.id AS id,
       d.department AS department,
       COUNT(*) AS hired
FROM employees e
JOIN departments d ON d.id = e.department_id
WHERE e.datetime >= make_date($1, 1, 1)
  AND e.datetime < make_date($1 + 1, 1, 1)
GROUP BY d.id, d.department`

// Reader is the read path of the persistence gateway.
type Reader interface {
	Select(ctx context.Context, dest any, query string, args ...any) error
}

type Engine struct {
	reader  Reader
	cache   *cache.Cache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewEngine creates an Engine. cache and m may be nil.
func NewEngine(reader Reader, c *cache.Cache, m *metrics.Metrics, log *slog.Logger) *Engine {
	return &Engine{
		reader:  reader,
		cache:   c,
		metrics: m,
		logger:  logger.WithComponent(log, "analytics-engine"),
	}
}

// QuarterlyHiresByDepartmentAndJob returns, for year, the hires of every
// (department, job) pair split by quarter, ordered by department then job.
func (e *Engine) QuarterlyHiresByDepartmentAndJob(ctx context.Context, year int) (rows []QuarterlyHires, err error) {
	ctx, span := tracing.StartSpan(ctx, "analytics.Quarterly", attribute.Int("year", year))
	defer func() { tracing.End(span, err) }()

	if err := validateYear(year); err != nil {
		return nil, err
	}
	rows, hit, err := cache.Fetch(ctx, e.cache, cache.Key(ReportQuarterly, year),
		func(ctx context.Context) ([]QuarterlyHires, error) {
			var monthly []MonthlyHires
			if err := e.reader.Select(ctx, &monthly, monthlyHiresQuery, year); err != nil {
				return nil, err
			}
			return BucketQuarters(monthly), nil
		})
	if err != nil {
		return nil, err
	}
	e.observe(ctx, ReportQuarterly, year, len(rows), hit)
	return nonNil(rows), nil
}

// DepartmentsAboveYearlyMean returns the departments that hired strictly
// more than the mean of all departments that hired at least once in year.
func (e *Engine) DepartmentsAboveYearlyMean(ctx context.Context, year int) (rows []DepartmentHires, err error) {
	ctx, span := tracing.StartSpan(ctx, "analytics.AboveMean", attribute.Int("year", year))
	defer func() { tracing.End(span, err) }()

	if err := validateYear(year); err != nil {
		return nil, err
	}
	rows, hit, err := cache.Fetch(ctx, e.cache, cache.Key(ReportAboveMean, year),
		func(ctx context.Context) ([]DepartmentHires, error) {
			var counts []DepartmentHires
			if err := e.reader.Select(ctx, &counts, departmentHiresQuery, year); err != nil {
				return nil, err
			}
			return AboveMean(counts), nil
		})
	if err != nil {
		return nil, err
	}
	e.observe(ctx, ReportAboveMean, year, len(rows), hit)
	return nonNil(rows), nil
}

func (e *Engine) observe(ctx context.Context, report string, year, rows int, hit bool) {
	source := "store"
	if hit {
		source = "cache"
	}
	e.metrics.ObserveAggregate(report, source)
	logger.FromContext(ctx, e.logger).Debug("aggregate served",
		"report", report,
		"year", year,
		"rows", rows,
		"source", source,
	)
}

func validateYear(year int) error {
	if year < minYear || year > maxYear {
		return apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"year must be between %d and %d", minYear, maxYear)
	}
	return nil
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
