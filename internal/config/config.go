package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultBatchSize is the page size used by incremental loaders when the
// config does not set one.
const DefaultBatchSize = 100

// Config represents the global ~/.atendo/config.toml.
type Config struct {
	APIBaseURL     string `toml:"api_base_url"`
	AuthToken      string `toml:"auth_token"`
	DefaultProfile string `toml:"default_profile"`
	BatchSize      int    `toml:"batch_size"`
}

// Load reads config from the given path. Returns zero config and error if file missing.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &cfg, nil
}

// ApplyEnv loads a .env file from the working directory (if present) and
// applies ATENDO_* environment overrides on top of the file config.
func ApplyEnv(cfg *Config) {
	_ = godotenv.Load()
	if v := os.Getenv("ATENDO_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("ATENDO_TOKEN"); v != "" {
		cfg.AuthToken = v
	}
	if v := os.Getenv("ATENDO_PROFILE"); v != "" {
		cfg.DefaultProfile = v
	}
	if v := os.Getenv("ATENDO_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BatchSize = n
		}
	}
}

// Save writes config to the given path, creating parent dirs as needed.
// The token lives in this file, so it is written 0600.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
