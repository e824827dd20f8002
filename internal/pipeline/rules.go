package pipeline

import (
	_ "embed"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed corrections.yaml
var correctionsYAML []byte

// UFOverride rewrites the UF code for every record of one wind farm.
type UFOverride struct {
	WindFarm string `yaml:"wind_farm"`
	UF       string `yaml:"uf"`
}

// PowerOverride replaces one documented bad nominal-power value for the
// named wind farms with its canonical value.
type PowerOverride struct {
	WindFarms   []string `yaml:"wind_farms"`
	BadValue    float64  `yaml:"bad_value"`
	CorrectedMW float64  `yaml:"corrected_mw"`
}

// PowerRange bounds the plausible nominal power of a single turbine.
type PowerRange struct {
	MinMW float64 `yaml:"min_mw"`
	MaxMW float64 `yaml:"max_mw"`
}

// RuleSet is the full hand-curated correction table, loaded once at start.
type RuleSet struct {
	UFOverrides    []UFOverride      `yaml:"uf_overrides"`
	PowerOverrides []PowerOverride   `yaml:"power_overrides"`
	PowerRange     PowerRange        `yaml:"power_range"`
	StatusAliases  map[string]string `yaml:"status_aliases"`
	DropWindFarms  []string          `yaml:"drop_wind_farms"`
}

// LoadRules parses the embedded correction table.
func LoadRules() (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(correctionsYAML, &rs); err != nil {
		return nil, eris.Wrap(err, "pipeline: parse corrections")
	}
	if rs.PowerRange.MinMW <= 0 || rs.PowerRange.MaxMW <= rs.PowerRange.MinMW {
		return nil, eris.Errorf("pipeline: invalid power range [%v, %v]",
			rs.PowerRange.MinMW, rs.PowerRange.MaxMW)
	}
	return &rs, nil
}
