package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-optimizer/contentscore/scoring"
)

var configKeys = []string{
	"PORT", "GIN_MODE", "DEV_MODE", "DATA_DIR", "LOG_LEVEL", "LOG_FORMAT",
	"RATE_LIMIT", "RATE_BURST", "THRESHOLDS_FILE", "CACHE_TTL", "FETCH_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8082", cfg.Port)
	assert.Equal(t, "release", cfg.GinMode)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 2.0, cfg.RateLimit)
	assert.Equal(t, 5.0, cfg.RateBurst)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("GIN_MODE", "debug")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("RATE_LIMIT", "10")
	t.Setenv("CACHE_TTL", "1m")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "debug", cfg.GinMode)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, 10.0, cfg.RateLimit)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
}

func TestFromEnvInvalid(t *testing.T) {
	cases := map[string]string{
		"DEV_MODE":   "sometimes",
		"RATE_LIMIT": "fast",
		"RATE_BURST": "0",
		"GIN_MODE":   "verbose",
		"CACHE_TTL":  "forever",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadEnvFiles(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("PORT")
	dir := t.TempDir()
	first := filepath.Join(dir, "first.env")
	second := filepath.Join(dir, "second.env")
	require.NoError(t, os.WriteFile(second, []byte("PORT=7000\n"), 0644))

	loadEnvFiles(first, second)
	t.Cleanup(func() { os.Unsetenv("PORT") })

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
}

func TestThresholdsOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
title_length:
  optimal: {min: 45, max: 65}
  acceptable: {min: 35, max: 75}
language_countries:
  eo: [global]
`), 0644))

	cfg := Config{ThresholdsFile: path}
	th, err := cfg.Thresholds()
	require.NoError(t, err)

	def := scoring.DefaultThresholds()
	assert.Equal(t, scoring.Band{Min: 45, Max: 65}, th.TitleLength.Optimal)
	assert.Equal(t, def.MetaTitleLength, th.MetaTitleLength)
	assert.Equal(t, def.ContentWordsOptimal, th.ContentWordsOptimal)
	assert.Contains(t, th.LanguageCountries, "eo")
	assert.Contains(t, th.LanguageCountries, "en")
}

func TestThresholdsDefaultWithoutFile(t *testing.T) {
	th, err := Config{}.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, scoring.DefaultThresholds().TitleLength, th.TitleLength)
}

func TestThresholdsOverlayErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadThresholds(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("title_length: [1, 2"), 0644))
	_, err = LoadThresholds(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("intro_percent: 0\n"), 0644))
	_, err = LoadThresholds(invalid)
	assert.Error(t, err)
}
