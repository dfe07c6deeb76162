// Package ingestion defines the row, entity, and result types shared by the
// upload pipeline (parser, normalizer, validator, persistence, orchestrator).
package ingestion

import (
	"fmt"
	"strings"
)

// EntityType selects the expected row shape and the destination table.
type EntityType int

const (
	Department EntityType = iota + 1
	Job
	HireEvent
)

type entitySpec struct {
	name    string
	table   string
	columns []string
}

var entitySpecs = map[EntityType]entitySpec{
	Department: {name: "departments", table: "departments", columns: []string{"id", "department"}},
	Job:        {name: "jobs", table: "jobs", columns: []string{"id", "job"}},
	HireEvent:  {name: "employees", table: "employees", columns: []string{"id", "name", "datetime", "department_id", "job_id"}},
}

// EntityTypes lists every entity type in a stable order.
var EntityTypes = []EntityType{Department, Job, HireEvent}

func (e EntityType) String() string {
	if s, ok := entitySpecs[e]; ok {
		return s.name
	}
	return fmt.Sprintf("EntityType(%d)", int(e))
}

func (e EntityType) Table() string { return entitySpecs[e].table }

// Columns returns the column order rows of this type are written with.
func (e EntityType) Columns() []string {
	return append([]string(nil), entitySpecs[e].columns...)
}

func (e EntityType) Arity() int { return len(entitySpecs[e].columns) }

func (e EntityType) Valid() bool {
	_, ok := entitySpecs[e]
	return ok
}

// ParseEntityType accepts the plural resource name or its singular alias.
func ParseEntityType(s string) (EntityType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "departments", "department":
		return Department, nil
	case "jobs", "job":
		return Job, nil
	case "employees", "employee", "hires", "hire":
		return HireEvent, nil
	}
	return 0, fmt.Errorf("unknown entity type %q", s)
}

// RawRow is one parsed source line. Line is the 1-based physical line number.
type RawRow struct {
	Line   int
	Fields []string
}

// Field returns the i-th field, or "" when the row is shorter.
func (r RawRow) Field(i int) string {
	if i < 0 || i >= len(r.Fields) {
		return ""
	}
	return r.Fields[i]
}

// Upload is a file handed to the orchestrator by a transport.
type Upload struct {
	FileName string
	Content  []byte
}

// Rejection explains why one row was not accepted.
type Rejection struct {
	Line   int      `json:"line"`
	ID     *string  `json:"id"`
	Errors []string `json:"errors"`
}

// Outcome is the classification of one row: exactly one of Row (accepted)
// or Rejection is meaningful.
type Outcome struct {
	Row       RawRow
	Rejection *Rejection
}

func Accepted(row RawRow) Outcome { return Outcome{Row: row} }

func Rejected(r Rejection) Outcome { return Outcome{Rejection: &r} }

func (o Outcome) IsAccepted() bool { return o.Rejection == nil }

// Report summarises the validation split of one upload. Rejections keep
// source line order.
type Report struct {
	TotalAccepted int
	TotalRejected int
	Rejections    []Rejection
}

// Total is the number of rows that were classified.
func (r Report) Total() int { return r.TotalAccepted + r.TotalRejected }

// InsertSummary is what the store reports after a committed bulk insert.
type InsertSummary struct {
	Table        string
	RowsInserted int64
}

// Result is the outcome of a successful ingestion call.
type Result struct {
	Entity  EntityType
	Report  Report
	Summary InsertSummary
}

// CountResponse is returned when every row was accepted.
type CountResponse struct {
	TotalInsertedRows int64  `json:"total_inserted_rows"`
	Message           string `json:"message"`
}

// DetailedResponse is returned when at least one row was rejected.
type DetailedResponse struct {
	TotalInsertedRows int64       `json:"total_inserted_rows"`
	TotalRejectedRows int         `json:"total_rejected_rows"`
	RejectRecords     []Rejection `json:"reject_records"`
}

// Response picks the caller-facing shape: callers tell them apart by the
// presence of reject_records.
func (r *Result) Response() any {
	if r.Report.TotalRejected == 0 {
		return CountResponse{
			TotalInsertedRows: r.Summary.RowsInserted,
			Message:           fmt.Sprintf("%d rows inserted into %s", r.Summary.RowsInserted, r.Entity.Table()),
		}
	}
	return DetailedResponse{
		TotalInsertedRows: r.Summary.RowsInserted,
		TotalRejectedRows: r.Report.TotalRejected,
		RejectRecords:     r.Report.Rejections,
	}
}
