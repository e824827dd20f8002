package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ventodata/sigel-etl/internal/sigel"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Count objects in the SIGEL wind-turbine layer",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client := sigel.NewClient(sigel.Options{
			URL:        cfg.Sigel.URL,
			BatchSize:  cfg.Sigel.BatchSize,
			Timeout:    time.Duration(cfg.Sigel.TimeoutSecs) * time.Second,
			RatePerSec: cfg.Sigel.RatePerSec,
			UserAgent:  cfg.Sigel.UserAgent,
		})

		ids, err := client.FetchObjectIDs(ctx)
		if err != nil {
			return eris.Wrap(err, "count")
		}

		fmt.Printf("%d objects\n", len(ids))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(countCmd)
}
