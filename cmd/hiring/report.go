package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/analytics/export"
)

func newReportCmd(g *globals) *cobra.Command {
	var (
		year     int
		xlsxPath string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the yearly hiring reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, g.cfg, g.log)
			if err != nil {
				return err
			}
			defer a.Close()

			quarterly, err := a.engine.QuarterlyHiresByDepartmentAndJob(ctx, year)
			if err != nil {
				return err
			}
			aboveMean, err := a.engine.DepartmentsAboveYearlyMean(ctx, year)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			export.QuarterlyTable(out, year, quarterly)
			fmt.Fprintln(out)
			export.AboveMeanTable(out, year, aboveMean)

			if xlsxPath == "" {
				return nil
			}
			if err := writeWorkbookFile(xlsxPath, quarterly, aboveMean); err != nil {
				return err
			}
			fmt.Fprintf(out, "workbook written to %s\n", xlsxPath)
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "calendar year to report on")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write both reports to this xlsx file")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

// writeWorkbookFile writes both reports to path. A failed close is reported,
// since it can mean the workbook never reached the disk.
func writeWorkbookFile(path string, quarterly []analytics.QuarterlyHires, aboveMean []analytics.DepartmentHires) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()
	return export.WriteWorkbook(f, quarterly, aboveMean)
}
