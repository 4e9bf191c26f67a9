package tests

import (
	"context"
	"sort"
	"testing"

	"github.com/aretw0/guide/pkg/domain"
	"github.com/aretw0/guide/pkg/ports"
)

// ScenarioLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.ScenarioLoader.
// Step order is not part of the contract; names and edges are.
func ScenarioLoaderContractTest(t *testing.T, loader ports.ScenarioLoader, want *domain.Scenario) {
	t.Helper()

	got, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error loading scenario: %v", err)
	}

	t.Run("Entry Points", func(t *testing.T) {
		if got.InitialStep != want.InitialStep {
			t.Errorf("initial step = %q, want %q", got.InitialStep, want.InitialStep)
		}
		if got.TerminalStep != want.TerminalStep {
			t.Errorf("terminal step = %q, want %q", got.TerminalStep, want.TerminalStep)
		}
	})

	t.Run("Steps", func(t *testing.T) {
		gotNames := stepNames(got.Steps)
		wantNames := stepNames(want.Steps)
		if len(gotNames) != len(wantNames) {
			t.Fatalf("steps = %v, want %v", gotNames, wantNames)
		}
		for i := range wantNames {
			if gotNames[i] != wantNames[i] {
				t.Errorf("steps = %v, want %v", gotNames, wantNames)
				break
			}
		}
	})

	t.Run("Events", func(t *testing.T) {
		index := make(map[string]domain.Step, len(got.Steps))
		for _, s := range got.Steps {
			index[s.Name] = s
		}
		for _, ws := range want.Steps {
			gs := index[ws.Name]
			if len(gs.Events) != len(ws.Events) {
				t.Errorf("step %s: %d events, want %d", ws.Name, len(gs.Events), len(ws.Events))
				continue
			}
			for name, we := range ws.Events {
				ge, ok := gs.Events[name]
				if !ok {
					t.Errorf("step %s: event %s missing", ws.Name, name)
					continue
				}
				if ge.Next != we.Next || ge.Action != we.Action {
					t.Errorf("step %s event %s = %+v, want %+v", ws.Name, name, ge, we)
				}
			}
		}
	})
}

func stepNames(steps []domain.Step) []string {
	names := make([]string, 0, len(steps))
	for _, s := range steps {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}
