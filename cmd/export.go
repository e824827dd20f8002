package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ventodata/sigel-etl/internal/export"
	"github.com/ventodata/sigel-etl/internal/pipeline"
	"github.com/ventodata/sigel-etl/internal/sigel"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Fetch, clean, and export the full turbine table",
	Long: `Runs the whole pipeline in one pass: discovers every object ID in the
SIGEL wind-turbine layer, fetches full records in batches, projects
coordinates, applies the correction table, removes duplicates, and writes
the final table. The run either produces a complete cleaned file or no
file at all.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		outPath, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")
		if outPath == "" {
			outPath = cfg.Export.Path
		}
		if format == "" {
			format = cfg.Export.Format
		}

		rules, err := pipeline.LoadRules()
		if err != nil {
			return eris.Wrap(err, "export: load correction rules")
		}

		loc, err := time.LoadLocation(cfg.Export.Timezone)
		if err != nil {
			return eris.Wrapf(err, "export: load timezone %s", cfg.Export.Timezone)
		}

		client := sigel.NewClient(sigel.Options{
			URL:        cfg.Sigel.URL,
			BatchSize:  cfg.Sigel.BatchSize,
			Timeout:    time.Duration(cfg.Sigel.TimeoutSecs) * time.Second,
			RatePerSec: cfg.Sigel.RatePerSec,
			UserAgent:  cfg.Sigel.UserAgent,
		})

		res, err := pipeline.Run(ctx, client, rules, loc)
		if err != nil {
			return eris.Wrap(err, "export")
		}

		switch format {
		case "csv":
			err = export.WriteCSV(outPath, res.Records)
		case "xlsx":
			err = export.WriteXLSX(outPath, res.Records)
		default:
			return eris.Errorf("export: unknown format %q", format)
		}
		if err != nil {
			return eris.Wrap(err, "export")
		}

		zap.L().Info("export complete",
			zap.String("path", outPath),
			zap.String("format", format),
			zap.Int("records", len(res.Records)),
		)
		fmt.Printf("%d records written to %s\n", len(res.Records), outPath)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("output", "", "output file path (default: from config)")
	exportCmd.Flags().String("format", "", "output format: csv or xlsx (default: from config)")
	rootCmd.AddCommand(exportCmd)
}
