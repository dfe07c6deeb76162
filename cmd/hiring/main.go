// Command hiring runs the hiring analytics service and its operator tools.
//
// The service accepts department, job and hire uploads as CSV files,
// stores the valid rows in PostgreSQL and serves two yearly hiring reports.
//
// Usage:
//
//	hiring serve  [--config configs/development.yaml]
//	hiring ingest <departments|jobs|employees> <file.csv>
//	hiring purge  <departments|jobs|employees>...
//	hiring report --year 2021 [--xlsx report.xlsx]
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/pkg/logger"
)

// globals holds what every subcommand needs once flags are parsed.
type globals struct {
	configPath string
	envFiles   []string

	cfg *config.Config
	log *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:           "hiring",
		Short:         "Hiring data ingestion and reporting",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.load()
		},
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "configs/development.yaml", "path to config file")
	root.PersistentFlags().StringSliceVar(&g.envFiles, "env-file", []string{".env"}, "dotenv files applied before the config is read")

	root.AddCommand(
		newServeCmd(g),
		newIngestCmd(g),
		newPurgeCmd(g),
		newReportCmd(g),
	)
	return root
}

func (g *globals) load() error {
	if _, err := config.LoadDotEnv(g.envFiles...); err != nil {
		return fmt.Errorf("loading env files: %w", err)
	}
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	g.cfg = cfg
	g.log = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(g.log)
	return nil
}
