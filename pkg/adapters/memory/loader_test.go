package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/guide/pkg/adapters/memory"
	"github.com/aretw0/guide/pkg/domain"
	"github.com/aretw0/guide/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `
initial_step: a
terminal_step: b
steps:
  a:
    reprompt: Go?
    events:
      go: {next: b}
  b: ~
`

var want = &domain.Scenario{
	InitialStep:  "a",
	TerminalStep: "b",
	Steps: []domain.Step{
		{Name: "a", Events: map[string]domain.Event{"go": {Next: "b"}}},
		{Name: "b"},
	},
}

func TestLoader_Contract(t *testing.T) {
	t.Run("Document", func(t *testing.T) {
		tests.ScenarioLoaderContractTest(t, memory.NewLoader(doc), want)
	})
	t.Run("Scenario", func(t *testing.T) {
		tests.ScenarioLoaderContractTest(t, memory.NewFromScenario(*want), want)
	})
	t.Run("Steps", func(t *testing.T) {
		tests.ScenarioLoaderContractTest(t, memory.NewFromSteps("a", "b", want.Steps...), want)
	})
}

func TestLoader_Errors(t *testing.T) {
	_, err := memory.NewLoader("").Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrMalformedScenario)

	_, err = memory.NewLoader("initial_step: a").Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrMalformedScenario)
}

func TestLoader_ReturnsCopies(t *testing.T) {
	loader := memory.NewFromSteps("a", "b", want.Steps...)

	first, err := loader.Load(context.Background())
	require.NoError(t, err)
	first.Steps[0] = domain.Step{Name: "tampered"}

	second, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", second.Steps[0].Name)
}
