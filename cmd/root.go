package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ventodata/sigel-etl/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sigel-etl",
	Short: "ANEEL SIGEL wind-turbine catalog exporter",
	Long:  "Fetches the full wind-turbine layer from the ANEEL SIGEL catalog, applies the hand-audited data corrections, and exports one cleaned flat table.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		// One run ID per invocation, bound to every log line.
		zap.ReplaceGlobals(zap.L().With(zap.String("run_id", uuid.New().String())))

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
