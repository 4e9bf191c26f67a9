package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/guide/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_YAML(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "crossroads.yaml"))
	require.NoError(t, err)

	sc, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "top", sc.InitialStep)
	assert.Equal(t, "down", sc.TerminalStep)
	assert.Equal(t, "Say first, second or short.", sc.DefaultHelp)

	names := make([]string, 0, len(sc.Steps))
	for _, s := range sc.Steps {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"top", "left", "right", "down"}, names, "document order must be kept")

	top := sc.Steps[0]
	assert.Equal(t, "Where to?", top.Reprompt)
	assert.Equal(t, "You are at the top.", top.Help)
	assert.Equal(t, domain.Event{Name: "short", Next: "down", Action: "note"}, top.Events["short"])

	left := sc.Steps[1]
	assert.Equal(t, domain.Event{Name: "hint"}, left.Events["hint"], "null event is allowed")

	assert.True(t, sc.Steps[3].Terminal(), "null step is a terminal step")
}

func TestParse_JSON(t *testing.T) {
	data := []byte(`{
		"initial_step": "a",
		"terminal_step": "b",
		"steps": {
			"a": {"reprompt": "again", "events": {"go": {"next": "b", "prompt": "going"}}},
			"b": null
		}
	}`)

	sc, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, sc.Steps, 2)
	assert.Equal(t, "going", sc.Steps[0].Events["go"].Prompt)
}

func TestParse_DuplicateStep(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "YAML",
			data: "initial_step: a\nterminal_step: b\nsteps:\n  a:\n    events:\n      go: {next: b}\n  b: ~\n  a: ~\n",
		},
		{
			name: "JSON",
			data: `{"initial_step": "a", "terminal_step": "a", "steps": {"a": null, "a": null}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.ErrorIs(t, err, domain.ErrDuplicateStep)

			var dup *domain.DuplicateStepError
			require.ErrorAs(t, err, &dup)
			assert.Equal(t, "a", dup.Step)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"Not YAML", "initial_step: [unclosed"},
		{"Empty", ""},
		{"Scalar Root", "just a string"},
		{"Missing Steps", "initial_step: a\nterminal_step: a\n"},
		{"Missing Initial", "terminal_step: a\nsteps:\n  a: ~\n"},
		{"Unknown Key", "initial_step: a\nterminal_step: a\nflavor: x\nsteps:\n  a: ~\n"},
		{"Wrong Type", "initial_step: a\nterminal_step: a\nsteps:\n  a:\n    events:\n      go:\n        next: 5\n"},
		{"Steps As List", "initial_step: a\nterminal_step: a\nsteps:\n  - a\n"},
		{"Duplicate Event", "initial_step: a\nterminal_step: a\nsteps:\n  a:\n    events:\n      go: ~\n      go: ~\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.ErrorIs(t, err, domain.ErrMalformedScenario)
		})
	}
}

func TestDecodeStep(t *testing.T) {
	step, err := DecodeStep("top", map[string]any{
		"reprompt": "Where to?",
		"events": map[string]any{
			"first": map[string]any{"next": "left", "action": "note"},
			"hint":  nil,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Where to?", step.Reprompt)
	assert.Equal(t, domain.Event{Name: "first", Next: "left", Action: "note"}, step.Events["first"])
	assert.Equal(t, domain.Event{Name: "hint"}, step.Events["hint"])

	terminal, err := DecodeStep("end", nil)
	require.NoError(t, err)
	assert.True(t, terminal.Terminal())

	_, err = DecodeStep("bad", map[string]any{"events": "nope"})
	assert.ErrorIs(t, err, domain.ErrMalformedScenario)
}
