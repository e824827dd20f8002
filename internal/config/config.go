// Package config loads application configuration and initializes logging.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. Every knob ships with a
// working default; a config file or SIGEL_* environment variables override.
type Config struct {
	Sigel  SigelConfig  `yaml:"sigel" mapstructure:"sigel"`
	Export ExportConfig `yaml:"export" mapstructure:"export"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// SigelConfig configures the ANEEL SIGEL catalog client.
type SigelConfig struct {
	URL         string  `yaml:"url" mapstructure:"url"`
	BatchSize   int     `yaml:"batch_size" mapstructure:"batch_size"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// ExportConfig configures the output table.
type ExportConfig struct {
	Path     string `yaml:"path" mapstructure:"path"`
	Format   string `yaml:"format" mapstructure:"format"`
	Timezone string `yaml:"timezone" mapstructure:"timezone"`
}

// StoreConfig configures the local SQLite database used by `load`.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SIGEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("sigel.url", "https://sigel.aneel.gov.br/arcgis/rest/services/PORTAL/WFS/MapServer/0/query")
	v.SetDefault("sigel.batch_size", 1000)
	v.SetDefault("sigel.timeout_secs", 60)
	v.SetDefault("sigel.rate_per_sec", 5)
	v.SetDefault("sigel.user_agent", "sigel-etl/1.0")
	v.SetDefault("export.path", "data.csv")
	v.SetDefault("export.format", "csv")
	v.SetDefault("export.timezone", "America/Sao_Paulo")
	v.SetDefault("store.path", "turbines.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
