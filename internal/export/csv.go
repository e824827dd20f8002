package export

import (
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"

	"github.com/ventodata/sigel-etl/internal/model"
)

// WriteCSV writes the full table to path as UTF-8 comma-separated values
// with a header row, overwriting any existing file. Any write failure is
// fatal; there is no partial-output mode.
func WriteCSV(path string, recs []model.Turbine) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		_ = f.Close()
		return eris.Wrap(err, "export: write header")
	}
	for _, rec := range recs {
		if err := w.Write(Row(rec)); err != nil {
			_ = f.Close()
			return eris.Wrapf(err, "export: write record %d", rec.ObjectID)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return eris.Wrap(err, "export: flush")
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "export: close %s", path)
	}
	return nil
}
