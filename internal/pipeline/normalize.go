package pipeline

import (
	"math"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ventodata/sigel-etl/internal/model"
)

// Normalizer applies the hand-curated correction table to a fetched table.
// Every rule is idempotent and keyed by wind-farm identity or field value,
// so normalizing an already-normalized table is a no-op.
type Normalizer struct {
	rules *RuleSet
	loc   *time.Location

	ufByFarm     map[string]string
	statusByFold map[string]model.Operation
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// accentFold lowercases s and strips combining marks, so status spellings
// like "NAO" and "não" compare equal.
func accentFold(s string) string {
	folded, _, err := transform.String(accentStripper, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// NewNormalizer builds a normalizer from the rule table. Timestamps are
// reinterpreted in loc.
func NewNormalizer(rules *RuleSet, loc *time.Location) *Normalizer {
	n := &Normalizer{
		rules:        rules,
		loc:          loc,
		ufByFarm:     make(map[string]string, len(rules.UFOverrides)),
		statusByFold: make(map[string]model.Operation),
	}
	for _, o := range rules.UFOverrides {
		n.ufByFarm[o.WindFarm] = o.UF
	}
	for _, s := range []model.Operation{model.OperationYes, model.OperationNo, model.OperationUnknown} {
		n.statusByFold[accentFold(string(s))] = s
	}
	return n
}

// Summary counts the data-quality conditions observed during one pass.
// Conditions are absorbed into the data, never raised as errors.
type Summary struct {
	UFOverridden     int
	PowerCorrected   int
	PowerOutOfRange  int
	StatusNormalized int
	StatusOutOfSet   int
	UFOutOfSet       int
	MissingGeometry  int
}

// Normalize applies every correction rule to the table in place and returns
// the pass summary.
func (n *Normalizer) Normalize(recs []model.Turbine) Summary {
	var sum Summary
	for i := range recs {
		rec := &recs[i]

		if uf, ok := n.ufByFarm[rec.WindFarm]; ok && rec.UF != uf {
			rec.UF = uf
			sum.UFOverridden++
		}

		corrected, outOfRange := n.normalizePower(rec)
		if corrected {
			sum.PowerCorrected++
		}
		if outOfRange {
			sum.PowerOutOfRange++
		}

		switch n.normalizeStatus(rec) {
		case statusRewritten:
			sum.StatusNormalized++
		case statusOutOfSet:
			sum.StatusOutOfSet++
		}

		if rec.UpdatedAt != nil {
			local := rec.UpdatedAt.In(n.loc)
			rec.UpdatedAt = &local
		}

		if rec.UF != "" && !model.ValidUF(rec.UF) {
			sum.UFOutOfSet++
		}
		if !rec.HasGeometry() {
			sum.MissingGeometry++
		}
	}
	return sum
}

// normalizePower applies the per-farm documented overrides, then the general
// magnitude-scale rule: a value one factor of 1000 above the plausible range
// was entered in kW, one factor below in GW. The rescale is applied only
// when the result lands inside the plausible range; anything further out is
// left unchanged for manual review and counted in the summary, which keeps
// the rule idempotent.
func (n *Normalizer) normalizePower(rec *model.Turbine) (corrected, outOfRange bool) {
	if rec.PowerMW == nil {
		return false, false
	}
	v := *rec.PowerMW

	for _, o := range n.rules.PowerOverrides {
		if !floatEq(v, o.BadValue) {
			continue
		}
		for _, farm := range o.WindFarms {
			if rec.WindFarm == farm {
				canonical := o.CorrectedMW
				rec.PowerMW = &canonical
				return true, false
			}
		}
	}

	lo, hi := n.rules.PowerRange.MinMW, n.rules.PowerRange.MaxMW
	if v >= lo && v <= hi {
		return false, false
	}

	var rescaled float64
	switch {
	case v > hi:
		rescaled = v / 1000
	case v > 0:
		rescaled = v * 1000
	}
	if rescaled >= lo && rescaled <= hi {
		rec.PowerMW = &rescaled
		return true, false
	}
	return false, true
}

type statusResult int

const (
	statusUnchanged statusResult = iota
	statusRewritten
	statusOutOfSet
)

// normalizeStatus collapses the OPERACAO field into the canonical label set.
// Unmatched non-empty values pass through unchanged and are only counted.
func (n *Normalizer) normalizeStatus(rec *model.Turbine) statusResult {
	raw := strings.TrimSpace(rec.Operation)

	if raw == "" {
		rec.Operation = string(model.OperationUnknown)
		return statusRewritten
	}
	if alias, ok := n.rules.StatusAliases[raw]; ok {
		if rec.Operation != alias {
			rec.Operation = alias
			return statusRewritten
		}
		return statusUnchanged
	}
	if canonical, ok := n.statusByFold[accentFold(raw)]; ok {
		if rec.Operation != string(canonical) {
			rec.Operation = string(canonical)
			return statusRewritten
		}
		return statusUnchanged
	}
	return statusOutOfSet
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
