package pipeline

import (
	"strconv"
	"strings"

	"github.com/ventodata/sigel-etl/internal/model"
)

// Dedupe filters the normalized table down to one record per turbine,
// preserving fetch order and keeping the first record seen:
//
//  1. records of wind farms on the drop list are removed outright;
//  2. one record per identity key (OBJECTID);
//  3. one record per natural key (wind farm, denomination, lat, lon),
//     which catches upstream re-registrations under fresh object IDs.
//
// Records are never mutated here, only filtered.
func Dedupe(recs []model.Turbine, dropWindFarms []string) []model.Turbine {
	dropped := make(map[string]struct{}, len(dropWindFarms))
	for _, farm := range dropWindFarms {
		dropped[farm] = struct{}{}
	}

	seenID := make(map[int64]struct{}, len(recs))
	seenNatural := make(map[string]struct{}, len(recs))

	out := make([]model.Turbine, 0, len(recs))
	for _, rec := range recs {
		if _, ok := dropped[rec.WindFarm]; ok {
			continue
		}
		if _, ok := seenID[rec.ObjectID]; ok {
			continue
		}
		nat := naturalKey(rec)
		if _, ok := seenNatural[nat]; ok {
			continue
		}
		seenID[rec.ObjectID] = struct{}{}
		seenNatural[nat] = struct{}{}
		out = append(out, rec)
	}
	return out
}

func naturalKey(rec model.Turbine) string {
	parts := []string{rec.WindFarm, rec.Denomination, coordKey(rec.Latitude), coordKey(rec.Longitude)}
	return strings.Join(parts, "\x1f")
}

func coordKey(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
