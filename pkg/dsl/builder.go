package dsl

import (
	"github.com/aretw0/guide/pkg/adapters/memory"
	"github.com/aretw0/guide/pkg/domain"
)

// Builder manages the scenario construction.
type Builder struct {
	scenario domain.Scenario
	steps    map[string]*StepBuilder
	order    []string
}

// New creates a new scenario builder.
func New(initial, terminal string) *Builder {
	return &Builder{
		scenario: domain.Scenario{InitialStep: initial, TerminalStep: terminal},
		steps:    make(map[string]*StepBuilder),
	}
}

// DefaultHelp sets the help answered by steps without their own.
func (b *Builder) DefaultHelp(help string) *Builder {
	b.scenario.DefaultHelp = help
	return b
}

// Step creates a step in the scenario.
// If the step already exists, it returns the existing builder.
func (b *Builder) Step(name string) *StepBuilder {
	if sb, ok := b.steps[name]; ok {
		return sb
	}
	sb := &StepBuilder{
		step:    domain.Step{Name: name},
		builder: b,
	}
	b.steps[name] = sb
	b.order = append(b.order, name)
	return sb
}

// Scenario returns the raw scenario, steps in declaration order.
func (b *Builder) Scenario() domain.Scenario {
	sc := b.scenario
	sc.Steps = make([]domain.Step, 0, len(b.order))
	for _, name := range b.order {
		sc.Steps = append(sc.Steps, b.steps[name].Build())
	}
	return sc
}

// Build returns the scenario as a memory loader. Validation happens when the
// loader is consumed by scenario.Load or guide.New.
func (b *Builder) Build() *memory.Loader {
	return memory.NewFromScenario(b.Scenario())
}
