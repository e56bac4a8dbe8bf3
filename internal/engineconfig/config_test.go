package engineconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ranking.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
meta:
  name: niftyrank
  version: "2"
return_window:
  slack_days: 10
  min_days: 340
  max_days: 390
  min_history: 13
rounding:
  decimals: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "2", cfg.Meta.Version)
	assert.Equal(t, 10, cfg.ReturnWindow.SlackDays)
	assert.Equal(t, 340, cfg.ReturnWindow.MinDays)
	// Untouched sections keep defaults
	assert.Equal(t, 0.75, cfg.Movers.Threshold)
	assert.Equal(t, "0 0 7 1 * *", cfg.Schedule.Cron)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	path := writeConfig(t, `
return_window:
  slack_dayz: 10
`)

	_, err := Load(path)
	require.Error(t, err, "typo in field name must fail, not silently default")
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.ReturnWindow.SlackDays)
	assert.Equal(t, int32(2), cfg.Rounding.Decimals)
	assert.Equal(t, 13, cfg.ReturnWindow.MinHistory)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}, ok: true},
		{name: "inverted window", mutate: func(c *Config) { c.ReturnWindow.MinDays = 400 }, ok: false},
		{name: "min_history below 13", mutate: func(c *Config) { c.ReturnWindow.MinHistory = 12 }, ok: false},
		{name: "negative slack", mutate: func(c *Config) { c.ReturnWindow.SlackDays = -1 }, ok: false},
		{name: "excessive decimals", mutate: func(c *Config) { c.Rounding.Decimals = 9 }, ok: false},
		{name: "mover threshold too low", mutate: func(c *Config) { c.Movers.Threshold = 0.4 }, ok: false},
		{name: "empty cron", mutate: func(c *Config) { c.Schedule.Cron = "" }, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestHashIsReproducible(t *testing.T) {
	a, err := Hash(Default())
	require.NoError(t, err)
	b, err := Hash(Default())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	changed := Default()
	changed.ReturnWindow.SlackDays = 14
	c, err := Hash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
