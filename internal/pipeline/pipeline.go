// Package pipeline cleans the raw SIGEL turbine table: coordinate
// projection, hand-curated field corrections, and duplicate removal. Stages
// run strictly forward over one in-memory table.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ventodata/sigel-etl/internal/model"
)

// Fetcher produces the raw consolidated table.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]model.Turbine, error)
}

// Result is the cleaned table plus per-stage accounting.
type Result struct {
	Records []model.Turbine
	Summary Summary
	Fetched int
	Removed int
}

// Run executes the full fetch → project → normalize → dedupe sequence.
// Fetch failures are fatal; data-quality conditions are absorbed into the
// table and reported in the summary.
func Run(ctx context.Context, f Fetcher, rules *RuleSet, loc *time.Location) (*Result, error) {
	recs, err := f.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	fetched := len(recs)

	Project(recs)

	sum := NewNormalizer(rules, loc).Normalize(recs)

	recs = Dedupe(recs, rules.DropWindFarms)

	zap.L().Info("pipeline: table cleaned",
		zap.Int("fetched", fetched),
		zap.Int("kept", len(recs)),
		zap.Int("removed", fetched-len(recs)),
		zap.Int("uf_overridden", sum.UFOverridden),
		zap.Int("power_corrected", sum.PowerCorrected),
		zap.Int("power_out_of_range", sum.PowerOutOfRange),
		zap.Int("status_normalized", sum.StatusNormalized),
		zap.Int("status_out_of_set", sum.StatusOutOfSet),
		zap.Int("uf_out_of_set", sum.UFOutOfSet),
		zap.Int("missing_geometry", sum.MissingGeometry),
	)

	return &Result{
		Records: recs,
		Summary: sum,
		Fetched: fetched,
		Removed: fetched - len(recs),
	}, nil
}
