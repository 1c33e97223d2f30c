// Package config loads the application configuration from YAML
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Storage driver names
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Config represents the application configuration
type Config struct {
	Storage struct {
		Driver  string `yaml:"driver"`   // json or sqlite
		DataDir string `yaml:"data_dir"` // JSON collection directory
		DBPath  string `yaml:"db_path"`  // SQLite database file
	} `yaml:"storage"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool `yaml:"enabled"`
		Port    int  `yaml:"port"`
	} `yaml:"metrics"`
	Freshness struct {
		RefreshOnStartup bool `yaml:"refresh_on_startup"` // stamp expiry dates from recent purchases
		SweepMinutes     int  `yaml:"sweep_minutes"`      // expiry alert interval, 0 disables
	} `yaml:"freshness"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	cfg.Storage.Driver = DriverJSON
	cfg.Storage.DataDir = "data"
	cfg.Storage.DBPath = "larder.db"
	cfg.Server.Port = 8080
	cfg.Metrics.Enabled = true
	cfg.Metrics.Port = 9090
	cfg.Freshness.RefreshOnStartup = true
	cfg.Freshness.SweepMinutes = 60
	return cfg
}

// Load reads a YAML configuration file, filling unset fields with
// defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverJSON, DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server port must be positive, got %d", c.Server.Port)
	}
	if c.Metrics.Enabled && c.Metrics.Port <= 0 {
		return fmt.Errorf("metrics port must be positive, got %d", c.Metrics.Port)
	}
	return nil
}
