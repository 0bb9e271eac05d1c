package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port                 int    `envconfig:"PORT" default:"8080"`
	LogLevel             string `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL          string `envconfig:"DATABASE_URL" required:"true"`
	Version              string `envconfig:"VERSION" default:"dev"`
	BcryptCost           int    `envconfig:"BCRYPT_COST" default:"12"`
	SweepIntervalMinutes int    `envconfig:"SWEEP_INTERVAL_MINUTES" default:"30"`
	TimeLocation         string `envconfig:"TIME_LOCATION" default:"UTC"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Location resolves the configured IANA timezone name. Week and month
// boundaries are always computed in this location.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeLocation)
	if err != nil {
		return nil, fmt.Errorf("loading time location %q: %w", c.TimeLocation, err)
	}
	return loc, nil
}
