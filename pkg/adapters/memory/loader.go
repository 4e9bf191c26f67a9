package memory

import (
	"context"
	"fmt"

	"github.com/aretw0/guide/pkg/domain"
	"github.com/aretw0/guide/pkg/scenario"
)

// Loader implements ports.ScenarioLoader from a document or a scenario held in memory.
type Loader struct {
	data     []byte
	scenario *domain.Scenario
}

// NewLoader creates a loader parsing the raw YAML/JSON document on every Load.
func NewLoader(data string) *Loader {
	return &Loader{data: []byte(data)}
}

// NewFromScenario creates a loader returning a copy of sc.
// This skips parsing, improving DX for tests.
func NewFromScenario(sc domain.Scenario) *Loader {
	return &Loader{scenario: &sc}
}

// NewFromSteps builds a scenario out of the given steps.
func NewFromSteps(initial, terminal string, steps ...domain.Step) *Loader {
	return NewFromScenario(domain.Scenario{
		InitialStep:  initial,
		TerminalStep: terminal,
		Steps:        steps,
	})
}

// Load implements ports.ScenarioLoader.
func (l *Loader) Load(_ context.Context) (*domain.Scenario, error) {
	if l.scenario != nil {
		sc := *l.scenario
		sc.Steps = append([]domain.Step(nil), l.scenario.Steps...)
		return &sc, nil
	}
	if len(l.data) == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrMalformedScenario)
	}
	return scenario.Parse(l.data)
}
