package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ventodata/sigel-etl/internal/model"
)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	rules, err := LoadRules()
	require.NoError(t, err)
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	return NewNormalizer(rules, loc)
}

func power(rec model.Turbine) float64 {
	if rec.PowerMW == nil {
		return -1
	}
	return *rec.PowerMW
}

func TestNormalizePowerOverrides(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		farm string
		in   float64
		want float64
	}{
		{"São Manoel", 4200, 4.2},
		{"Asa Branca III", 6750, 6.75},
		{"Asa Branca III", 3032, 3.032},
		{"Ventos de Santa Inês", 0.0042, 4.2},
		{"Ventos de São Carlos", 0.0042, 4.2},
		{"Ventos de Santa Rosa", 0.0042, 4.2},
		{"Juramento", 0.006, 6},
		{"Serra da Gameleira", 0.0062, 6.2},
		{"Serra do Alagamar", 0.0062, 6.2},
		{"Ventos de Santa Dulce", 0.0062, 6.2},
	}
	for _, tt := range tests {
		t.Run(tt.farm, func(t *testing.T) {
			in := tt.in
			recs := []model.Turbine{{ObjectID: 1, WindFarm: tt.farm, PowerMW: &in}}
			sum := n.Normalize(recs)
			assert.Equal(t, tt.want, power(recs[0]))
			assert.Equal(t, 1, sum.PowerCorrected)
		})
	}
}

func TestNormalizePowerMagnitudeRule(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"kilowatts entered as megawatts", 4200, 4.2},
		{"just above range", 150, 0.15},
		{"megawatts entered as gigawatts", 0.02, 20},
		{"in range untouched", 3.0, 3.0},
		{"boundary min untouched", 0.05, 0.05},
		{"boundary max untouched", 100, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			recs := []model.Turbine{{ObjectID: 1, WindFarm: "Parque Qualquer", PowerMW: &in}}
			n.Normalize(recs)
			assert.InDelta(t, tt.want, power(recs[0]), 1e-9)
		})
	}

	// Null power survives as null.
	recs := []model.Turbine{{ObjectID: 1, WindFarm: "Parque Qualquer"}}
	sum := n.Normalize(recs)
	assert.Nil(t, recs[0].PowerMW)
	assert.Equal(t, 0, sum.PowerCorrected)
}

func TestNormalizePowerFarOutOfRangePassesThrough(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		name string
		in   float64
	}{
		{"two orders above range", 150000},
		{"two orders below range", 0.00001},
		{"zero", 0},
		{"negative", -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			recs := []model.Turbine{{ObjectID: 1, WindFarm: "Parque Qualquer", PowerMW: &in}}

			sum := n.Normalize(recs)
			assert.Equal(t, tt.in, power(recs[0]), "no rescale lands in range, value is left for manual review")
			assert.Equal(t, 0, sum.PowerCorrected)
			assert.Equal(t, 1, sum.PowerOutOfRange)

			n.Normalize(recs)
			assert.Equal(t, tt.in, power(recs[0]), "second pass must not rewrite the value")
		})
	}
}

func TestNormalizeStatus(t *testing.T) {
	n := newTestNormalizer(t)

	tests := []struct {
		in   string
		want string
	}{
		{"1", "Sim"},
		{"", "Sem informação"},
		{"  ", "Sem informação"},
		{"Sim", "Sim"},
		{"sim", "Sim"},
		{"SIM", "Sim"},
		{"Não", "Não"},
		{"NAO", "Não"},
		{"nao", "Não"},
		{"Sem informação", "Sem informação"},
		{"sem informacao", "Sem informação"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			recs := []model.Turbine{{ObjectID: 1, Operation: tt.in}}
			n.Normalize(recs)
			assert.Equal(t, tt.want, recs[0].Operation)
			assert.True(t, model.ValidOperation(recs[0].Operation))
		})
	}
}

func TestNormalizeStatusOutOfSetPassesThrough(t *testing.T) {
	n := newTestNormalizer(t)

	recs := []model.Turbine{{ObjectID: 1, Operation: "Operando"}}
	sum := n.Normalize(recs)

	assert.Equal(t, "Operando", recs[0].Operation, "unmatched values are left for manual review")
	assert.Equal(t, 1, sum.StatusOutOfSet)
	assert.Equal(t, 0, sum.StatusNormalized)
}

func TestNormalizeUFOverrides(t *testing.T) {
	n := newTestNormalizer(t)

	recs := []model.Turbine{
		{ObjectID: 1, WindFarm: "Asa Branca III", UF: ""},
		{ObjectID: 2, WindFarm: "Barra XI", UF: "RN"},
		{ObjectID: 3, WindFarm: "Parque Qualquer", UF: "BA"},
	}
	sum := n.Normalize(recs)

	assert.Equal(t, "RN", recs[0].UF)
	assert.Equal(t, "MG", recs[1].UF)
	assert.Equal(t, "BA", recs[2].UF)
	assert.Equal(t, 2, sum.UFOverridden)
}

func TestNormalizeUFOutOfSetCounted(t *testing.T) {
	n := newTestNormalizer(t)

	recs := []model.Turbine{{ObjectID: 1, WindFarm: "Parque Qualquer", UF: "ZZ"}}
	sum := n.Normalize(recs)

	assert.Equal(t, "ZZ", recs[0].UF)
	assert.Equal(t, 1, sum.UFOutOfSet)
}

func TestNormalizeTimestamp(t *testing.T) {
	n := newTestNormalizer(t)

	// 2024-08-26 00:00:00 UTC == 2024-08-25 21:00:00 in São Paulo.
	ts := time.UnixMilli(1724630400000).UTC()
	recs := []model.Turbine{{ObjectID: 1, UpdatedAt: &ts}}
	n.Normalize(recs)

	require.NotNil(t, recs[0].UpdatedAt)
	assert.Equal(t, "America/Sao_Paulo", recs[0].UpdatedAt.Location().String())
	assert.Equal(t, ts.Unix(), recs[0].UpdatedAt.Unix(), "instant is preserved")
	assert.Equal(t, 21, recs[0].UpdatedAt.Hour())
	assert.Equal(t, 25, recs[0].UpdatedAt.Day())
}

func TestNormalizeIdempotent(t *testing.T) {
	n := newTestNormalizer(t)

	p1, p2, p3, p4 := 4200.0, 0.0042, 2.5, 150000.0
	ts := time.UnixMilli(1724630400000).UTC()
	recs := []model.Turbine{
		{ObjectID: 1, WindFarm: "São Manoel", PowerMW: &p1, Operation: "1", UF: "SP", UpdatedAt: &ts},
		{ObjectID: 2, WindFarm: "Ventos de Santa Inês", PowerMW: &p2, Operation: "", UF: "BA"},
		{ObjectID: 3, WindFarm: "Asa Branca III", PowerMW: &p3, Operation: "Operando"},
		{ObjectID: 4, WindFarm: "Barra XI", UF: "RN"},
		{ObjectID: 5, WindFarm: "Parque Qualquer", PowerMW: &p4},
	}

	n.Normalize(recs)
	once := make([]model.Turbine, len(recs))
	copy(once, recs)

	n.Normalize(recs)
	require.Equal(t, once, recs, "normalizing twice must equal normalizing once")
}
