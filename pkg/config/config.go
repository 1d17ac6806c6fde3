package config

import (
	"os"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// Config holds all application configuration.
// Configure via YAML file (/config/toshokan.yaml) or environment variables.
// Environment variables use uppercase with underscores (e.g., LIBRARY_DIR).
type Config struct {
	// Library settings
	LibraryDir string `koanf:"library_dir" json:"library_dir" validate:"required"`
	CacheDir   string `koanf:"cache_dir" json:"cache_dir" default:"/config/cache"`
	CoverDir   string `koanf:"cover_dir" json:"cover_dir" default:"/config/covers"`

	// Archive settings
	CoverPattern    string `koanf:"cover_pattern" json:"cover_pattern"`
	ThumbnailFormat string `koanf:"thumbnail_format" json:"thumbnail_format" default:"jpeg" validate:"oneof=jpeg png"`
	ThumbnailHeight int    `koanf:"thumbnail_height" json:"thumbnail_height" default:"330" validate:"gt=0"`

	// Scan settings
	WorkerProcesses       int `koanf:"worker_processes" json:"worker_processes" default:"2" validate:"gt=0"`
	DownloadRetentionDays int `koanf:"download_retention_days" json:"download_retention_days" default:"14" validate:"gte=0"`

	// Internal settings (computed, not from config file)
	Hostname string `koanf:"-" json:"-"`
}

// New creates a new Config by loading from file and environment variables.
// Load order (later sources override earlier):
//  1. Defaults
//  2. Config file (/config/toshokan.yaml or CONFIG_FILE env var)
//  3. Environment variables
func New() (*Config, error) {
	k := koanf.New(".")

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set config defaults")
	}

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "/config/toshokan.yaml"
	}
	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		// File not existing is fine - we'll use defaults and env vars
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to load config file %s", configPath)
		}
	}

	// Load environment variables (LIBRARY_DIR -> library_dir)
	err := k.Load(env.Provider("", ".", strings.ToLower), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load environment variables")
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get hostname")
	}
	cfg.Hostname = hostname

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}
