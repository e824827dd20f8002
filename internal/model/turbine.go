// Package model defines the wind-turbine record and its enumerated domains.
package model

import (
	"time"

	"github.com/twpayne/go-geom"
)

// Operation is the OPERACAO categorical field: whether a turbine is in
// commercial operation.
type Operation string

const (
	OperationYes     Operation = "Sim"
	OperationNo      Operation = "Não"
	OperationUnknown Operation = "Sem informação"
)

// ValidOperation reports whether s is one of the canonical OPERACAO labels.
func ValidOperation(s string) bool {
	switch Operation(s) {
	case OperationYes, OperationNo, OperationUnknown:
		return true
	}
	return false
}

// ufCodes is the set of the 27 Brazilian federative-unit codes.
var ufCodes = map[string]struct{}{
	"AC": {}, "AL": {}, "AP": {}, "AM": {}, "BA": {}, "CE": {}, "DF": {},
	"ES": {}, "GO": {}, "MA": {}, "MT": {}, "MS": {}, "MG": {}, "PA": {},
	"PB": {}, "PR": {}, "PE": {}, "PI": {}, "RJ": {}, "RN": {}, "RS": {},
	"RO": {}, "RR": {}, "SC": {}, "SP": {}, "SE": {}, "TO": {},
}

// ValidUF reports whether code is a known federative-unit abbreviation.
func ValidUF(code string) bool {
	_, ok := ufCodes[code]
	return ok
}

// Turbine is one physical wind turbine as catalogued by SIGEL.
// Field names mirror the upstream attribute names; OBJECTID is the
// identity key. Optional numeric and timestamp fields are pointers so a
// missing upstream value survives the pipeline as a null, not a zero.
type Turbine struct {
	ObjectID      int64      // OBJECTID
	WindFarm      string     // NOME_EOL
	Denomination  string     // DEN_AEG
	PowerMW       *float64   // POT_MW, nominal rating in megawatts
	TowerHeightM  *float64   // ALT_TORRE
	TotalHeightM  *float64   // ALT_TOTAL
	RotorDiamM    *float64   // DIAM_ROTOR
	Operation     string     // OPERACAO
	UF            string     // UF
	CEG           string     // CEG
	Owner         string     // PROPRIETARIO
	Origin        string     // ORIGEM
	VersionID     *int64     // EOL_VERSAO_ID
	UpdatedAt     *time.Time // DATA_ATUALIZACAO, normalized to America/Sao_Paulo

	// Geometry is the source point location, nil when the feature carried
	// no geometry. Latitude/Longitude are derived from it by the projector
	// and stay nil for geometry-less records.
	Geometry  *geom.Point
	Latitude  *float64
	Longitude *float64
}

// HasGeometry reports whether the record carries a usable point location.
func (t *Turbine) HasGeometry() bool {
	return t.Geometry != nil && len(t.Geometry.FlatCoords()) >= 2
}
