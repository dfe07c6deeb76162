package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/hiring-analytics/internal/ingestion"
)

func newPurgeCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "purge <departments|jobs|employees>...",
		Short: "Delete every row of the given tables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entities, err := parseEntities(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, g.cfg, g.log)
			if err != nil {
				return err
			}
			defer a.Close()

			for _, entity := range entities {
				deleted, err := a.orchestrator.Purge(ctx, entity)
				if err != nil {
					return fmt.Errorf("purging %s: %w", entity, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d rows deleted from %s\n", deleted, entity.Table())
			}
			return nil
		},
	}
}

func parseEntities(args []string) ([]ingestion.EntityType, error) {
	entities := make([]ingestion.EntityType, 0, len(args))
	for _, arg := range args {
		entity, err := ingestion.ParseEntityType(arg)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
