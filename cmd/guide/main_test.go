package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenario = `initial_step: start
terminal_step: end
steps:
  start:
    reprompt: Ready?
    events:
      go:
        next: end
  end:
    reprompt: Done.
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), ".env")))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "guide version")
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", writeScenario(t, scenario))
	require.NoError(t, err)
	assert.Contains(t, out, "2 steps, 1 transitions")
}

func TestGraphCommand(t *testing.T) {
	out, err := execute(t, "graph", writeScenario(t, scenario), "--highlight", "end")
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "class end_ current;")
}

func TestPublishCommand_RequiresRedis(t *testing.T) {
	t.Setenv("GUIDE_REDIS_URL", "")
	_, err := execute(t, "publish", writeScenario(t, scenario))
	assert.ErrorContains(t, err, "no redis url")
}
