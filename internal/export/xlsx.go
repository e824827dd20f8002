package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/ventodata/sigel-etl/internal/model"
)

// WriteXLSX writes the table to path as a single-sheet workbook with the
// same columns as the CSV output.
func WriteXLSX(path string, recs []model.Turbine) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("turbines")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range Columns {
		header.AddCell().Value = col
	}

	for _, rec := range recs {
		row := sheet.AddRow()
		for _, cell := range Row(rec) {
			row.AddCell().Value = cell
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
