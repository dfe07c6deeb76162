package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/logger"
)

// FormField is the multipart field carrying the uploaded file.
const FormField = "file"

// Ingester is satisfied by *orchestrator.Orchestrator.
type Ingester interface {
	Ingest(ctx context.Context, entity ingestion.EntityType, upload *ingestion.Upload) (*ingestion.Result, error)
	Purge(ctx context.Context, entity ingestion.EntityType) (int64, error)
}

type Handler struct {
	ingester       Ingester
	maxUploadBytes int64
	logger         *slog.Logger
}

func New(ing Ingester, maxUploadBytes int64, log *slog.Logger) *Handler {
	return &Handler{
		ingester:       ing,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.WithComponent(log, "ingestion-handler"),
	}
}

// Upload returns the POST handler for entity.
func (h *Handler) Upload(entity ingestion.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.FromContext(ctx, h.logger)

		upload, err := h.readUpload(w, r)
		if err != nil {
			h.fail(w, log, entity, err)
			return
		}

		res, err := h.ingester.Ingest(ctx, entity, upload)
		if err != nil {
			h.fail(w, log, entity, err)
			return
		}
		h.writeJSON(w, http.StatusCreated, res.Response())
	}
}

// Purge returns the DELETE handler for entity.
func (h *Handler) Purge(entity ingestion.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		deleted, err := h.ingester.Purge(ctx, entity)
		if err != nil {
			h.fail(w, logger.FromContext(ctx, h.logger), entity, err)
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]any{
			"total_deleted_rows": deleted,
			"message":            fmt.Sprintf("%d rows deleted from %s", deleted, entity.Table()),
		})
	}
}

// readUpload extracts the multipart file. A request without one yields a
// nil upload so the orchestrator reports it uniformly.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (*ingestion.Upload, error) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	file, header, err := r.FormFile(FormField)
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return nil, nil
	case err != nil:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.Newf(apperrors.ErrTooManyRows, http.StatusUnprocessableEntity,
				"File too large! Limit is %d bytes.", tooLarge.Limit)
		}
		return nil, apperrors.New(apperrors.ErrMalformedInput, http.StatusBadRequest, "invalid multipart body")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrMalformedInput, http.StatusBadRequest, "could not read uploaded file")
	}
	return &ingestion.Upload{FileName: header.Filename, Content: content}, nil
}

func (h *Handler) fail(w http.ResponseWriter, log *slog.Logger, entity ingestion.EntityType, err error) {
	statusCode := apperrors.HTTPStatusCode(err)
	if statusCode >= http.StatusInternalServerError {
		log.Error("ingestion failed", "entity", entity.String(), "error", err, "status_code", statusCode)
	} else {
		log.Info("ingestion refused", "entity", entity.String(), "error", err, "status_code", statusCode)
	}
	h.writeError(w, statusCode, apperrors.Message(err))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
