package main

import (
	"context"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create indexes and bring stored documents to the current schema",
	Long: `migrate creates the MongoDB indexes (unique user email, event owner,
event datetime), applies the PostgreSQL migrations when USER_STORE=postgres,
and rewrites legacy "date" fields and string timestamps into the "datetime"
date field.

serve creates the indexes and applies SQL migrations itself. Run migrate once
after upgrading a database that holds events written by older versions: such
events are readable, but sorting by datetime only orders BSON dates correctly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		b, err := openBackends(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer b.close()

		if err := b.schema(ctx, logger); err != nil {
			return err
		}

		report, err := b.mongo.MigrateEventDates(ctx)
		if err != nil {
			return err
		}
		logger.Info().Int("migrated", report.Migrated).Strs("skipped", report.Skipped).Msg("event dates migrated")

		return nil
	},
}
