package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/safar/go-b2b-store/internal/api"
	"github.com/safar/go-b2b-store/internal/config"
	"github.com/safar/go-b2b-store/internal/database"
	"github.com/safar/go-b2b-store/internal/memstore"
	"github.com/safar/go-b2b-store/internal/seed"
	"github.com/safar/go-b2b-store/internal/store"
	"github.com/safar/go-b2b-store/migrations"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "b2b-store",
	Short:         "B2B tactical equipment store backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		cfg.Log.Configure()
		return nil
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type backend interface {
	api.Store
	seed.Store
}

// openBackend returns the configured repository and a function releasing it.
// The Postgres schema is brought up to date before the store is handed out.
func openBackend(ctx context.Context) (backend, func(), error) {
	if cfg.Database.Driver == config.StoreDriverMemory {
		log.Warn().Msg("using in-memory store, data is lost on exit")
		return memstore.New(), func() {}, nil
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Msg("connected to database")

	if _, err := database.Migrate(ctx, db, migrations.FS, database.MigrateUp); err != nil {
		db.Close()
		return nil, nil, err
	}

	return store.New(db), func() { db.Close() }, nil
}

func loadSeed(ctx context.Context, b backend) error {
	ds, err := seed.Parse(nil)
	if err != nil {
		return err
	}
	_, err = seed.NewLoader(b, cfg.Auth.BcryptCost).Load(ctx, ds)
	return err
}
