package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/ingestion"
)

func newIngestCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <departments|jobs|employees> <file.csv>",
		Short: "Load a CSV file into a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := ingestion.ParseEntityType(args[0])
			if err != nil {
				return err
			}
			upload, err := readUpload(args[1])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, g.cfg, g.log)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.orchestrator.Ingest(ctx, entity, upload)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res.Response())
		},
	}
}

func readUpload(path string) (*ingestion.Upload, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &ingestion.Upload{FileName: filepath.Base(path), Content: content}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
