package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 60*time.Second, cfg.CleanPeriod)
	assert.Equal(t, 3600*time.Second, cfg.SessionLifetime)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "guide.yaml", `
scenario: ./scenario.yaml
port: 9090
clean_period: 5s
session_lifetime: 10m
actions: [brew, list_menu]
`)

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, "./scenario.yaml", cfg.Scenario)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.CleanPeriod)
	assert.Equal(t, 10*time.Minute, cfg.SessionLifetime)
	assert.Equal(t, []string{"brew", "list_menu"}, cfg.Actions)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "guide.yaml", "port: 9090\n")

	t.Setenv(EnvPort, "7070")
	t.Setenv(EnvSessionLifetime, "90s")
	t.Setenv(EnvActions, "a, b ,,c")

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.SessionLifetime)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Actions)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "GUIDE_REDIS_URL=redis://localhost:6379/2\nGUIDE_LOG_LEVEL=debug\n")

	// Registered so the variables set by godotenv are restored afterwards.
	t.Setenv(EnvRedisURL, "")
	os.Unsetenv(EnvRedisURL)
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379/2", cfg.RedisURL)
	// Real environment wins over the .env file.
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "absent.yaml"), "")
		assert.Error(t, err)
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv(EnvCleanPeriod, "soon")
		_, err := Load("", "")
		assert.ErrorContains(t, err, EnvCleanPeriod)
	})

	t.Run("bad port", func(t *testing.T) {
		t.Setenv(EnvPort, "0")
		_, err := Load("", "")
		assert.ErrorContains(t, err, "invalid port")
	})

	t.Run("non positive lifetime", func(t *testing.T) {
		path := writeFile(t, dir, "zero.yaml", "session_lifetime: 0s\n")
		_, err := Load(path, "")
		assert.ErrorContains(t, err, "session lifetime")
	})
}
