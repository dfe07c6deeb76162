package persistence

import (
	"errors"
	"net/http"

	"github.com/lib/pq"

	apperrors "github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/errors"
)

// classify maps a driver failure onto the store error taxonomy. Errors that
// already carry a sentinel pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return apperrors.New(apperrors.ErrStorage, http.StatusInternalServerError, err.Error())
	}

	switch pqErr.Code {
	case "23505": // unique_violation
		msg := "Duplicate entry"
		if pqErr.Detail != "" {
			msg += ": " + pqErr.Detail
		}
		return apperrors.New(apperrors.ErrConflict, http.StatusConflict, msg)
	case "42P01": // undefined_table
		return apperrors.New(apperrors.ErrSchema, http.StatusInternalServerError, "Table does not exist!")
	case "42703", "3F000", "3D000": // undefined_column, invalid_schema_name, invalid_catalog_name
		return apperrors.New(apperrors.ErrSchema, http.StatusInternalServerError, pqErr.Message)
	case "28000", "28P01": // invalid_authorization_specification, invalid_password
		return apperrors.New(apperrors.ErrAuth, http.StatusInternalServerError, "Username or password incorrect!")
	default:
		return apperrors.Newf(apperrors.ErrStorage, http.StatusInternalServerError, "database error (%s): %s", pqErr.Code, pqErr.Message)
	}
}
