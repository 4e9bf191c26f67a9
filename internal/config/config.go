// Package config resolves process settings for the guide binary.
//
// Precedence, lowest first: built-in defaults, the YAML file, the .env file,
// GUIDE_* environment variables. Command-line flags are applied by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/guide/pkg/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvScenario        = "GUIDE_SCENARIO"
	EnvPort            = "GUIDE_PORT"
	EnvLogLevel        = "GUIDE_LOG_LEVEL"
	EnvCleanPeriod     = "GUIDE_CLEAN_PERIOD"
	EnvSessionLifetime = "GUIDE_SESSION_LIFETIME"
	EnvRedisURL        = "GUIDE_REDIS_URL"
	EnvActions         = "GUIDE_ACTIONS"
)

// DefaultPort is the HTTP port used by serve.
const DefaultPort = 8080

// Config holds the process settings.
type Config struct {
	// Scenario is a file, a directory of step documents or a redis:// URL.
	Scenario        string        `yaml:"scenario"`
	Port            int           `yaml:"port"`
	LogLevel        string        `yaml:"log_level"`
	CleanPeriod     time.Duration `yaml:"clean_period"`
	SessionLifetime time.Duration `yaml:"session_lifetime"`
	// RedisURL is used by publish and by redis:// scenarios without an explicit address.
	RedisURL string `yaml:"redis_url"`
	// Actions lists action names known to validate when no registry is linked in.
	Actions []string `yaml:"actions"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Port:            DefaultPort,
		LogLevel:        "info",
		CleanPeriod:     domain.DefaultCleanPeriod,
		SessionLifetime: domain.DefaultMaxSessionLifetime,
	}
}

// Load resolves the configuration. An empty path skips the YAML file; a
// missing envFile is ignored.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config %s: %w", path, err)
		}
	}

	if envFile != "" {
		// godotenv never overrides variables already set in the environment.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvScenario); ok {
		c.Scenario = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvRedisURL); ok {
		c.RedisURL = v
	}
	if v, ok := os.LookupEnv(EnvActions); ok {
		c.Actions = splitList(v)
	}
	if v, ok := os.LookupEnv(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.Port = port
	}
	if v, ok := os.LookupEnv(EnvCleanPeriod); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCleanPeriod, err)
		}
		c.CleanPeriod = d
	}
	if v, ok := os.LookupEnv(EnvSessionLifetime); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSessionLifetime, err)
		}
		c.SessionLifetime = d
	}
	return nil
}

// Validate rejects settings the runtime cannot honor.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.CleanPeriod <= 0 {
		return fmt.Errorf("clean period must be positive, got %s", c.CleanPeriod)
	}
	if c.SessionLifetime <= 0 {
		return fmt.Errorf("session lifetime must be positive, got %s", c.SessionLifetime)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
