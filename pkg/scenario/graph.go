package scenario

import (
	"context"
	"fmt"

	"github.com/aretw0/guide/pkg/domain"
	"github.com/aretw0/guide/pkg/ports"
)

// Graph is a validated scenario together with its compiled rules.
type Graph struct {
	initial     string
	terminal    string
	defaultHelp string
	order       []string
	steps       map[string]domain.Step
	rules       []domain.TransitionRule
}

// Build validates sc and compiles it into a Graph.
// The terminal step must be defined as well.
func Build(sc *domain.Scenario, actions ports.ActionCatalog) (*Graph, error) {
	if sc == nil {
		return nil, fmt.Errorf("%w: nil scenario", domain.ErrMalformedScenario)
	}

	if err := Validate(sc.InitialStep, sc.Steps, actions); err != nil {
		return nil, err
	}

	g := &Graph{
		initial:     sc.InitialStep,
		terminal:    sc.TerminalStep,
		defaultHelp: sc.DefaultHelp,
		order:       make([]string, 0, len(sc.Steps)),
		steps:       make(map[string]domain.Step, len(sc.Steps)),
		rules:       Compile(sc.Steps),
	}
	for _, s := range sc.Steps {
		g.order = append(g.order, s.Name)
		g.steps[s.Name] = copyStep(s)
	}

	if _, ok := g.steps[g.terminal]; !ok {
		return nil, &domain.UndefinedStepError{Step: g.terminal}
	}

	return g, nil
}

// Load reads the scenario from loader and builds it.
func Load(ctx context.Context, loader ports.ScenarioLoader, actions ports.ActionCatalog) (*Graph, error) {
	sc, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}
	return Build(sc, actions)
}

func (g *Graph) InitialStep() string  { return g.initial }
func (g *Graph) TerminalStep() string { return g.terminal }
func (g *Graph) DefaultHelp() string  { return g.defaultHelp }

// Step returns the named step.
func (g *Graph) Step(name string) (domain.Step, bool) {
	s, ok := g.steps[name]
	return s, ok
}

// Steps returns the steps in declaration order.
func (g *Graph) Steps() []domain.Step {
	out := make([]domain.Step, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.steps[name])
	}
	return out
}

// Rules returns a copy of the compiled transition rules.
func (g *Graph) Rules() []domain.TransitionRule {
	out := make([]domain.TransitionRule, len(g.rules))
	copy(out, g.rules)
	return out
}

// Scenario rebuilds the document view of the graph.
func (g *Graph) Scenario() domain.Scenario {
	return domain.Scenario{
		InitialStep:  g.initial,
		TerminalStep: g.terminal,
		DefaultHelp:  g.defaultHelp,
		Steps:        g.Steps(),
	}
}

func copyStep(s domain.Step) domain.Step {
	if s.Events == nil {
		return s
	}
	events := make(map[string]domain.Event, len(s.Events))
	for k, v := range s.Events {
		if v.Name == "" {
			v.Name = k
		}
		events[k] = v
	}
	s.Events = events
	return s
}
