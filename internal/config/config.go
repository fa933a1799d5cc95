// Package config loads the application configuration and per-repository
// algorithm tuning.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/sevigo/review-scout/internal/logger"
)

// Config holds the application's configuration values.
type Config struct {
	// DataDir is the base directory holding crawled repository corpora,
	// one subdirectory per repository ("{owner}-{repo}").
	DataDir string

	// CacheDir holds the persisted score cache. Deleting it forces full
	// recomputation.
	CacheDir string

	// CacheDisabled forces every score computation to bypass the cache.
	CacheDisabled bool

	// OutputDir receives JSON and CSV evaluation artifacts.
	OutputDir string

	// MaxWorkers bounds the per-PR scoring worker pool.
	MaxWorkers int

	// KValues are the cutoffs for precision/recall/hit-rate metrics.
	KValues []int

	// DatabaseDSN, when set, enables the Postgres evaluation-run archive.
	DatabaseDSN string

	Logger logger.Config
}

// LoadConfig reads configuration from environment variables and an optional
// .env file, sets sensible defaults, and validates required fields. It uses
// the Viper library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(".env")
	v.SetConfigType("env")

	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("CACHE_DIR", defaultCacheDir())
	v.SetDefault("OUTPUT_DIR", "evaluation_results")
	v.SetDefault("MAX_WORKERS", 4)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_OUTPUT", "stderr")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	}

	cfg := &Config{
		DataDir:       v.GetString("DATA_DIR"),
		CacheDir:      v.GetString("CACHE_DIR"),
		CacheDisabled: v.GetBool("NO_CACHE"),
		OutputDir:     v.GetString("OUTPUT_DIR"),
		MaxWorkers:    v.GetInt("MAX_WORKERS"),
		KValues:       []int{1, 3, 5, 10},
		DatabaseDSN:   v.GetString("DATABASE_DSN"),
		Logger: logger.Config{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			Output: v.GetString("LOG_OUTPUT"),
		},
	}

	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("RS_DATA_DIR must be set")
	}

	return cfg, nil
}

// defaultCacheDir places the score cache under the user cache directory,
// falling back to a local directory when none is available.
func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ".review-scout-cache"
	}
	return filepath.Join(base, "review-scout")
}
