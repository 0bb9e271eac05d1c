package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flockhq/flock/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/flock")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "dev", cfg.Version)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 30, cfg.SweepIntervalMinutes)
	assert.Equal(t, "UTC", cfg.TimeLocation)
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "placeholder") // register restore
	require.NoError(t, os.Unsetenv("DATABASE_URL"))

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/flock")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TIME_LOCATION", "Africa/Lagos")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "Africa/Lagos", cfg.TimeLocation)
}

func TestLocation(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/flock")
	t.Setenv("TIME_LOCATION", "UTC")

	cfg, err := config.Load()
	require.NoError(t, err)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLocation_InvalidName(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/flock")
	t.Setenv("TIME_LOCATION", "Mars/Olympus")

	cfg, err := config.Load()
	require.NoError(t, err)

	_, err = cfg.Location()
	assert.Error(t, err)
}
