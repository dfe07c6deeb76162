// Package export renders aggregate reports as terminal tables and as an
// xlsx workbook.
package export

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/xuri/excelize/v2"

	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/analytics"
)

const (
	SheetQuarterly = "Quarterly"
	SheetAboveMean = "AboveMean"
)

var (
	quarterlyHeader = []any{"Department", "Job", "Q1", "Q2", "Q3", "Q4"}
	aboveMeanHeader = []any{"ID", "Department", "Hired"}
)

// QuarterlyTable writes rows as a text table with a hire total footer.
func QuarterlyTable(w io.Writer, year int, rows []analytics.QuarterlyHires) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle(fmt.Sprintf("Hires by quarter, %d", year))
	tbl.AppendHeader(table.Row(quarterlyHeader))

	var total uint64
	for _, r := range rows {
		tbl.AppendRow(table.Row{r.Department, r.Job, r.Q1, r.Q2, r.Q3, r.Q4})
		total += r.Total()
	}
	tbl.AppendFooter(table.Row{"", fmt.Sprintf("Total: %d hires", total)})
	tbl.Render()
}

// AboveMeanTable writes rows as a text table.
func AboveMeanTable(w io.Writer, year int, rows []analytics.DepartmentHires) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle(fmt.Sprintf("Departments above the %d hiring mean", year))
	tbl.AppendHeader(table.Row(aboveMeanHeader))
	for _, r := range rows {
		tbl.AppendRow(table.Row{r.ID, r.Department, r.Hired})
	}
	tbl.AppendFooter(table.Row{"", fmt.Sprintf("%d departments", len(rows))})
	tbl.Render()
}

// Workbook builds a workbook with one sheet per report. The caller owns
// the returned file and must Close it.
func Workbook(quarterly []analytics.QuarterlyHires, aboveMean []analytics.DepartmentHires) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetQuarterly); err != nil {
		f.Close()
		return nil, fmt.Errorf("renaming default sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetAboveMean); err != nil {
		f.Close()
		return nil, fmt.Errorf("creating sheet %s: %w", SheetAboveMean, err)
	}

	qRows := make([][]any, 0, len(quarterly))
	for _, r := range quarterly {
		qRows = append(qRows, []any{r.Department, r.Job, r.Q1, r.Q2, r.Q3, r.Q4})
	}
	mRows := make([][]any, 0, len(aboveMean))
	for _, r := range aboveMean {
		mRows = append(mRows, []any{r.ID, r.Department, r.Hired})
	}

	if err := writeSheet(f, SheetQuarterly, quarterlyHeader, qRows); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSheet(f, SheetAboveMean, aboveMeanHeader, mRows); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// WriteWorkbook builds the workbook and writes it to w.
func WriteWorkbook(w io.Writer, quarterly []analytics.QuarterlyHires, aboveMean []analytics.DepartmentHires) error {
	f, err := Workbook(quarterly, aboveMean)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
