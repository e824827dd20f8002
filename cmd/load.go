package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ventodata/sigel-etl/internal/export"
	"github.com/ventodata/sigel-etl/internal/store"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load an exported table into a local SQLite database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		path, _ := cmd.Flags().GetString("file")
		dbPath, _ := cmd.Flags().GetString("db")
		if path == "" {
			path = cfg.Export.Path
		}
		if dbPath == "" {
			dbPath = cfg.Store.Path
		}

		recs, err := export.ReadCSV(path)
		if err != nil {
			return eris.Wrap(err, "load")
		}

		db, err := store.NewSQLite(dbPath)
		if err != nil {
			return eris.Wrap(err, "load")
		}
		defer db.Close() //nolint:errcheck

		if err := db.Migrate(ctx); err != nil {
			return eris.Wrap(err, "load")
		}

		n, err := db.ReplaceAll(ctx, recs)
		if err != nil {
			return eris.Wrap(err, "load")
		}

		fmt.Printf("%d records loaded into %s\n", n, dbPath)
		return nil
	},
}

func init() {
	loadCmd.Flags().String("file", "", "exported CSV to load (default: from config)")
	loadCmd.Flags().String("db", "", "SQLite database path (default: from config)")
	rootCmd.AddCommand(loadCmd)
}
