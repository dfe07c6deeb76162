package analytics

// QuarterlyHires is one row of the quarterly report: hires for a
// (department, job) pair split by calendar quarter.
type QuarterlyHires struct {
	Department string `json:"department"`
	Job        string `json:"job"`
	Q1         uint64 `json:"Q1"`
	Q2         uint64 `json:"Q2"`
	Q3         uint64 `json:"Q3"`
	Q4         uint64 `json:"Q4"`
}

// Total is the yearly hire count of the row.
func (q QuarterlyHires) Total() uint64 { return q.Q1 + q.Q2 + q.Q3 + q.Q4 }

// DepartmentHires is one row of the above-mean report.
type DepartmentHires struct {
	ID         int64  `json:"id" db:"id"`
	Department string `json:"department" db:"department"`
	Hired      uint64 `json:"hired" db:"hired"`
}

// MonthlyHires is what the store returns for the quarterly report before
// months are folded into quarters.
type MonthlyHires struct {
	Department string `db:"department"`
	Job        string `db:"job"`
	Month      int    `db:"month"`
	Hires      uint64 `db:"hires"`
}
