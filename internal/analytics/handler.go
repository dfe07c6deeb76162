package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/logger"
)

// Reporter is satisfied by *Engine.
type Reporter interface {
	QuarterlyHiresByDepartmentAndJob(ctx context.Context, year int) ([]QuarterlyHires, error)
	DepartmentsAboveYearlyMean(ctx context.Context, year int) ([]DepartmentHires, error)
}

type Handler struct {
	reporter Reporter
	logger   *slog.Logger
}

func NewHandler(reporter Reporter, log *slog.Logger) *Handler {
	return &Handler{
		reporter: reporter,
		logger:   logger.WithComponent(log, "analytics-handler"),
	}
}

// Quarterly serves GET .../{year} with the quarterly report.
func (h *Handler) Quarterly(w http.ResponseWriter, r *http.Request) {
	year, ok := h.year(w, r)
	if !ok {
		return
	}
	rows, err := h.reporter.QuarterlyHiresByDepartmentAndJob(r.Context(), year)
	if err != nil {
		h.fail(w, r, ReportQuarterly, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}

// AboveMean serves GET .../{year} with the above-mean report.
func (h *Handler) AboveMean(w http.ResponseWriter, r *http.Request) {
	year, ok := h.year(w, r)
	if !ok {
		return
	}
	rows, err := h.reporter.DepartmentsAboveYearlyMean(r.Context(), year)
	if err != nil {
		h.fail(w, r, ReportAboveMean, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) year(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.PathValue("year")
	year, err := strconv.Atoi(raw)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "year must be an integer, got "+strconv.Quote(raw))
		return 0, false
	}
	return year, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, report string, err error) {
	statusCode := apperrors.HTTPStatusCode(err)
	if statusCode >= http.StatusInternalServerError {
		logger.FromContext(r.Context(), h.logger).Error("aggregate query failed",
			"report", report,
			"error", err,
			"status_code", statusCode,
		)
	}
	h.writeError(w, statusCode, apperrors.Message(err))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write analytics response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
