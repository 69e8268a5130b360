package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/safar/go-b2b-store/internal/config"
	"github.com/safar/go-b2b-store/internal/database"
	"github.com/safar/go-b2b-store/migrations"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Apply or roll back the database schema",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{database.MigrateUp, database.MigrateDown},
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.Driver != config.StoreDriverPostgres {
			log.Warn().Str("driver", cfg.Database.Driver).Msg("nothing to migrate")
			return nil
		}

		db, err := database.NewConnection(&cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := database.Migrate(cmd.Context(), db, migrations.FS, args[0])
		if err != nil {
			return err
		}
		log.Info().Str("direction", args[0]).Int("files", n).Msg("migrations applied")
		return nil
	},
}
