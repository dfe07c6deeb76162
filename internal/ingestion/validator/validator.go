// Package validator classifies parsed rows into accepted and rejected sets
// and enforces the upload-level preconditions (file present, CSV extension,
// row count bounds).
package validator

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/ingestion"
)

// hireRow mirrors the employees column order; field order drives the order
// of reported violations.
type hireRow struct {
	ID           string `csv:"id" validate:"required"`
	Name         string `csv:"name" validate:"required"`
	Datetime     string `csv:"datetime" validate:"required"`
	DepartmentID string `csv:"department_id" validate:"required"`
	JobID        string `csv:"job_id" validate:"required"`
}

func newHireRow(r ingestion.RawRow) hireRow {
	return hireRow{
		ID:           r.Field(0),
		Name:         r.Field(1),
		Datetime:     r.Field(2),
		DepartmentID: r.Field(3),
		JobID:        r.Field(4),
	}
}

var structValidator = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("csv")
	})
	return v
}()

// Classify validates every row and returns the accepted rows (source order
// preserved) together with the report. It never fails: row-level problems
// end up in the report.
func Classify(entity ingestion.EntityType, rows []ingestion.RawRow) ([]ingestion.RawRow, ingestion.Report) {
	accepted := make([]ingestion.RawRow, 0, len(rows))
	report := ingestion.Report{Rejections: []ingestion.Rejection{}}
	for _, row := range rows {
		outcome := ClassifyRow(entity, row)
		if outcome.IsAccepted() {
			accepted = append(accepted, outcome.Row)
			report.TotalAccepted++
			continue
		}
		report.TotalRejected++
		report.Rejections = append(report.Rejections, *outcome.Rejection)
	}
	return accepted, report
}

// ClassifyRow applies the rule of entity to a single row. Departments and
// jobs are only checked for field count; hire events additionally need all
// five fields non-empty.
func ClassifyRow(entity ingestion.EntityType, row ingestion.RawRow) ingestion.Outcome {
	var reasons []string
	if entity == ingestion.HireEvent {
		reasons = missingHireFields(row)
		if len(row.Fields) > entity.Arity() {
			reasons = append(reasons, arityReason(entity, row))
		}
	} else if len(row.Fields) != entity.Arity() {
		reasons = append(reasons, arityReason(entity, row))
	}

	if len(reasons) == 0 {
		return ingestion.Accepted(row)
	}
	return ingestion.Rejected(ingestion.Rejection{
		Line:   row.Line,
		ID:     idOf(row),
		Errors: reasons,
	})
}

func missingHireFields(row ingestion.RawRow) []string {
	err := structValidator.Struct(newHireRow(row))
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	reasons := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		reasons = append(reasons, fmt.Sprintf("Missing value for '%s'", fe.Field()))
	}
	return reasons
}

func arityReason(entity ingestion.EntityType, row ingestion.RawRow) string {
	return fmt.Sprintf("Expected %d fields, got %d", entity.Arity(), len(row.Fields))
}

func idOf(row ingestion.RawRow) *string {
	if id := row.Field(0); id != "" {
		return &id
	}
	return nil
}
