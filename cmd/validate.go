package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ventodata/sigel-etl/internal/export"
	"github.com/ventodata/sigel-etl/internal/model"
	"github.com/ventodata/sigel-etl/internal/pipeline"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check an exported table against the cleaning invariants",
	Long: `Re-reads an exported CSV and verifies the guarantees the pipeline makes:
unique object IDs, canonical operational-status labels, plausible nominal
power, and known UF codes. Exits non-zero on any violation.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("file")
		if path == "" {
			path = cfg.Export.Path
		}

		recs, err := export.ReadCSV(path)
		if err != nil {
			return eris.Wrap(err, "validate")
		}

		rules, err := pipeline.LoadRules()
		if err != nil {
			return eris.Wrap(err, "validate: load correction rules")
		}

		var violations []string
		seen := make(map[int64]struct{}, len(recs))
		for _, rec := range recs {
			if _, dup := seen[rec.ObjectID]; dup {
				violations = append(violations, fmt.Sprintf("duplicate OBJECTID %d", rec.ObjectID))
			}
			seen[rec.ObjectID] = struct{}{}

			if !model.ValidOperation(rec.Operation) {
				violations = append(violations, fmt.Sprintf("OBJECTID %d: OPERACAO %q outside canonical set", rec.ObjectID, rec.Operation))
			}
			if rec.PowerMW != nil && (*rec.PowerMW < rules.PowerRange.MinMW || *rec.PowerMW > rules.PowerRange.MaxMW) {
				violations = append(violations, fmt.Sprintf("OBJECTID %d: POT_MW %v outside plausible range", rec.ObjectID, *rec.PowerMW))
			}
			if rec.UF != "" && !model.ValidUF(rec.UF) {
				violations = append(violations, fmt.Sprintf("OBJECTID %d: unknown UF %q", rec.ObjectID, rec.UF))
			}
			if (rec.Latitude == nil) != (rec.Longitude == nil) {
				violations = append(violations, fmt.Sprintf("OBJECTID %d: partial coordinates", rec.ObjectID))
			}
		}

		if len(violations) > 0 {
			for _, v := range violations {
				fmt.Println(v)
			}
			return eris.Errorf("validate: %d violations in %s", len(violations), path)
		}

		fmt.Printf("%s: %d records, all invariants hold\n", path, len(recs))
		return nil
	},
}

func init() {
	validateCmd.Flags().String("file", "", "exported CSV to validate (default: from config)")
	rootCmd.AddCommand(validateCmd)
}
