package validator

import (
	"net/http"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/errors"
)

// CSVExtension is the only accepted upload suffix.
const CSVExtension = ".csv"

// ValidateUpload checks that a file was sent and that it is named like a
// CSV file. A nil upload means no file was sent.
func ValidateUpload(u *ingestion.Upload) error {
	if u == nil {
		return apperrors.New(apperrors.ErrUnsupportedMediaType, http.StatusBadRequest, "No file sent!")
	}
	if !strings.HasSuffix(strings.ToLower(u.FileName), CSVExtension) {
		return apperrors.New(apperrors.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType, "File must be a CSV!")
	}
	return nil
}

// ValidateRowCount enforces 1 <= n <= maxLines.
func ValidateRowCount(n, maxLines int) error {
	if n > maxLines {
		return apperrors.Newf(apperrors.ErrTooManyRows, http.StatusUnprocessableEntity,
			"Too many records! Must be at most %d lines.", maxLines)
	}
	if n == 0 {
		return apperrors.New(apperrors.ErrEmptyInput, http.StatusUnprocessableEntity,
			"File is empty! Send at least 1 record.")
	}
	return nil
}
