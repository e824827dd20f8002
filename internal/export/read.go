package export

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/ventodata/sigel-etl/internal/model"
)

// ReadCSV parses a file previously written by WriteCSV back into records.
// The header must match Columns exactly. Geometry is not reconstructed;
// only the projected latitude/longitude scalars survive a round trip.
func ReadCSV(path string) ([]model.Turbine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "export: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "export: read csv")
	}
	if len(rows) == 0 {
		return nil, eris.New("export: missing header row")
	}

	header := rows[0]
	if len(header) != len(Columns) {
		return nil, eris.Errorf("export: expected %d columns, got %d", len(Columns), len(header))
	}
	for i, col := range Columns {
		if header[i] != col {
			return nil, eris.Errorf("export: column %d is %q, want %q", i, header[i], col)
		}
	}

	recs := make([]model.Turbine, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseRow(row)
		if err != nil {
			return nil, eris.Wrapf(err, "export: row %d", i+2)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func parseRow(row []string) (model.Turbine, error) {
	objectID, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return model.Turbine{}, eris.Wrapf(err, "parse OBJECTID %q", row[0])
	}

	rec := model.Turbine{
		ObjectID:     objectID,
		WindFarm:     row[1],
		Denomination: row[2],
		Operation:    row[7],
		UF:           row[8],
		CEG:          row[9],
		Owner:        row[10],
		Origin:       row[11],
	}

	if rec.PowerMW, err = parseFloatCell(row[3]); err != nil {
		return model.Turbine{}, eris.Wrap(err, "parse POT_MW")
	}
	if rec.TowerHeightM, err = parseFloatCell(row[4]); err != nil {
		return model.Turbine{}, eris.Wrap(err, "parse ALT_TORRE")
	}
	if rec.TotalHeightM, err = parseFloatCell(row[5]); err != nil {
		return model.Turbine{}, eris.Wrap(err, "parse ALT_TOTAL")
	}
	if rec.RotorDiamM, err = parseFloatCell(row[6]); err != nil {
		return model.Turbine{}, eris.Wrap(err, "parse DIAM_ROTOR")
	}
	if rec.Latitude, err = parseFloatCell(row[14]); err != nil {
		return model.Turbine{}, eris.Wrap(err, "parse latitude")
	}
	if rec.Longitude, err = parseFloatCell(row[15]); err != nil {
		return model.Turbine{}, eris.Wrap(err, "parse longitude")
	}

	if row[12] != "" {
		v, err := strconv.ParseInt(row[12], 10, 64)
		if err != nil {
			return model.Turbine{}, eris.Wrap(err, "parse EOL_VERSAO_ID")
		}
		rec.VersionID = &v
	}
	if row[13] != "" {
		ts, err := time.Parse(TimeLayout, row[13])
		if err != nil {
			return model.Turbine{}, eris.Wrap(err, "parse DATA_ATUALIZACAO")
		}
		rec.UpdatedAt = &ts
	}

	return rec, nil
}

func parseFloatCell(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "parse float %q", s)
	}
	return &v, nil
}
