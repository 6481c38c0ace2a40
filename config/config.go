package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/seo-optimizer/contentscore/scoring"
)

// Config holds the server and CLI settings
type Config struct {
	Port           string
	GinMode        string
	DevMode        bool
	DataDir        string
	LogLevel       string
	LogFormat      string
	RateLimit      float64 // requests per second per client
	RateBurst      float64
	ThresholdsFile string
	CacheTTL       time.Duration
	FetchTimeout   time.Duration
}

// Load reads .env.development, falling back to .env, then builds the config
// from the environment.
func Load() (Config, error) {
	loadEnvFiles(".env.development", ".env")
	return FromEnv()
}

// loadEnvFiles loads the first env file that exists. Variables already set
// in the process environment win.
func loadEnvFiles(paths ...string) {
	for _, p := range paths {
		if err := godotenv.Load(p); err == nil {
			return
		}
	}
	slog.Debug("no .env file found, using environment variables")
}

// FromEnv builds the config from environment variables with defaults
func FromEnv() (Config, error) {
	cfg := Config{
		Port:           getEnv("PORT", "8082"),
		GinMode:        getEnv("GIN_MODE", gin.ReleaseMode),
		DataDir:        getEnv("DATA_DIR", "./data"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		ThresholdsFile: os.Getenv("THRESHOLDS_FILE"),
	}

	var err error
	if cfg.DevMode, err = getBool("DEV_MODE", false); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit, err = getFloat("RATE_LIMIT", 2); err != nil {
		return Config{}, err
	}
	if cfg.RateBurst, err = getFloat("RATE_BURST", 5); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", 30*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.FetchTimeout, err = getDuration("FETCH_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}

	switch cfg.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return Config{}, fmt.Errorf("GIN_MODE: unknown mode %q", cfg.GinMode)
	}
	if cfg.RateLimit <= 0 || cfg.RateBurst < 1 {
		return Config{}, fmt.Errorf("RATE_LIMIT must be positive and RATE_BURST at least 1")
	}
	return cfg, nil
}

// Thresholds returns the default thresholds with THRESHOLDS_FILE applied
func (c Config) Thresholds() (scoring.Thresholds, error) {
	if c.ThresholdsFile == "" {
		return scoring.DefaultThresholds(), nil
	}
	return LoadThresholds(c.ThresholdsFile)
}

// LoadThresholds overlays a YAML file on the default thresholds. Keys left
// out of the file keep their defaults; language_countries entries are merged
// per language.
func LoadThresholds(path string) (scoring.Thresholds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scoring.Thresholds{}, fmt.Errorf("failed to read thresholds file: %w", err)
	}
	th := scoring.DefaultThresholds()
	if err := yaml.Unmarshal(data, &th); err != nil {
		return scoring.Thresholds{}, fmt.Errorf("failed to parse thresholds file: %w", err)
	}
	if err := th.Validate(); err != nil {
		return scoring.Thresholds{}, fmt.Errorf("invalid thresholds in %s: %w", path, err)
	}
	return th, nil
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getBool(key string, def bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getFloat(key string, def float64) (float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
