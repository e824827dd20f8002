// Package export serializes the cleaned turbine table to flat files.
package export

import (
	"strconv"
	"time"

	"github.com/ventodata/sigel-etl/internal/model"
)

// Columns is the fixed output column order. Attribute columns keep their
// upstream SIGEL names; latitude/longitude are the projected scalars.
var Columns = []string{
	"OBJECTID",
	"NOME_EOL",
	"DEN_AEG",
	"POT_MW",
	"ALT_TORRE",
	"ALT_TOTAL",
	"DIAM_ROTOR",
	"OPERACAO",
	"UF",
	"CEG",
	"PROPRIETARIO",
	"ORIGEM",
	"EOL_VERSAO_ID",
	"DATA_ATUALIZACAO",
	"latitude",
	"longitude",
}

// TimeLayout is the single textual timestamp format of the output table,
// wall-clock time in the export timezone with its UTC offset.
const TimeLayout = "2006-01-02 15:04:05 -07:00"

// Row renders one record in Columns order. Null fields become empty cells.
func Row(rec model.Turbine) []string {
	return []string{
		strconv.FormatInt(rec.ObjectID, 10),
		rec.WindFarm,
		rec.Denomination,
		formatFloat(rec.PowerMW),
		formatFloat(rec.TowerHeightM),
		formatFloat(rec.TotalHeightM),
		formatFloat(rec.RotorDiamM),
		rec.Operation,
		rec.UF,
		rec.CEG,
		rec.Owner,
		rec.Origin,
		formatInt(rec.VersionID),
		formatTime(rec.UpdatedAt),
		formatFloat(rec.Latitude),
		formatFloat(rec.Longitude),
	}
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func formatTime(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format(TimeLayout)
}
