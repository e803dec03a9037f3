// Package config loads application configuration from an optional yaml
// file with STOCKLOADER_* environment overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"stockloader/internal/tzone"
)

// Config is the full application configuration.
type Config struct {
	LogLevel string         `mapstructure:"log_level"` // debug | info | warn | error
	Datafeed DatafeedConfig `mapstructure:"datafeed"`
	Yahoo    ProviderConfig `mapstructure:"yahoo"`
	Stooq    ProviderConfig `mapstructure:"stooq"`
	Database DatabaseConfig `mapstructure:"database"`
	Export   ExportConfig   `mapstructure:"export"`
}

// DatafeedConfig selects and authenticates the native datafeed.
type DatafeedConfig struct {
	Name     string `mapstructure:"name"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// ProviderConfig tunes one HTTP-backed provider client.
type ProviderConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
}

// DatabaseConfig locates the bar store.
type DatabaseConfig struct {
	Path     string `mapstructure:"path"`
	Timezone string `mapstructure:"timezone"`
}

// ExportConfig controls optional packet export of downloaded bars.
type ExportConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Format  string `mapstructure:"format"` // csv | parquet | json
	Dir     string `mapstructure:"dir"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("database.path", "data/bars.db")
	v.SetDefault("database.timezone", tzone.DefaultName)
	v.SetDefault("export.enabled", false)
	v.SetDefault("export.format", "csv")
	v.SetDefault("export.dir", "data/packets")
}

// Load reads configuration. path may be empty, leaving defaults plus
// environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("STOCKLOADER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch strings.ToLower(strings.TrimSpace(cfg.Export.Format)) {
	case "csv", "parquet", "json":
	default:
		return fmt.Errorf("unsupported export.format %q (use: csv, parquet, json)", cfg.Export.Format)
	}
	if cfg.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	return nil
}
