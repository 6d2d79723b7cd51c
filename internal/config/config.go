package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the catalog builder and the relay
type Config struct {
	// Catalog builder
	InputDir  string `yaml:"input_dir" validate:"required"`
	OutputDir string `yaml:"output_dir" validate:"required"`
	StatsTopN int    `yaml:"stats_top_n" validate:"gte=1"`

	// Logging
	LogLevel  string `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `yaml:"log_format" validate:"oneof=json console"`

	// Live-arrival relay
	RelayPort       int           `yaml:"relay_port" validate:"gt=0,lte=65535"`
	UpstreamURL     string        `yaml:"upstream_url" validate:"required,url"`
	UpstreamTimeout time.Duration `yaml:"-" validate:"gt=0"`

	// UpstreamTimeoutSeconds mirrors UpstreamTimeout for the YAML file
	UpstreamTimeoutSeconds int `yaml:"upstream_timeout_seconds" validate:"-"`
}

func defaults() *Config {
	return &Config{
		InputDir:               "data/wiener_linien",
		OutputDir:              ".",
		StatsTopN:              5,
		LogLevel:               "info",
		LogFormat:              "json",
		RelayPort:              3001,
		UpstreamURL:            "https://www.wienerlinien.at/ogd_realtime/monitor",
		UpstreamTimeoutSeconds: 15,
	}
}

// Load reads configuration from an optional YAML file (CONFIG_FILE) and
// environment variables, environment winning. The result is validated.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.InputDir = getEnv("CATALOG_INPUT_DIR", cfg.InputDir)
	cfg.OutputDir = getEnv("CATALOG_OUTPUT_DIR", cfg.OutputDir)
	cfg.StatsTopN = getEnvInt("STATS_TOP_N", cfg.StatsTopN)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.RelayPort = getEnvInt("RELAY_PORT", cfg.RelayPort)
	cfg.UpstreamURL = getEnv("RELAY_UPSTREAM_URL", cfg.UpstreamURL)
	cfg.UpstreamTimeoutSeconds = getEnvInt("RELAY_TIMEOUT_SECONDS", cfg.UpstreamTimeoutSeconds)

	// Derived values
	cfg.UpstreamTimeout = time.Duration(cfg.UpstreamTimeoutSeconds) * time.Second

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// RelayAddr returns the listen address for the relay server
func (c *Config) RelayAddr() string {
	return ":" + strconv.Itoa(c.RelayPort)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
