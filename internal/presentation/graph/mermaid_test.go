package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/guide/internal/presentation/graph"
	"github.com/aretw0/guide/pkg/domain"
	"github.com/sebdah/goldie/v2"
)

func crossroads() domain.Scenario {
	return domain.Scenario{
		InitialStep:  "top",
		TerminalStep: "down",
		Steps: []domain.Step{
			{Name: "top", Events: map[string]domain.Event{
				"first":  {Next: "left"},
				"second": {Next: "right"},
				"short":  {Next: "down", Action: "note"},
				"hint":   {Action: "explain"},
			}},
			{Name: "left", Events: map[string]domain.Event{"third": {Next: "down"}}},
			{Name: "right", Events: map[string]domain.Event{"fourth": {Next: "down"}}},
			{Name: "down"},
		},
	}
}

func TestGenerateMermaid_Golden(t *testing.T) {
	g := goldie.New(t)

	t.Run("Plain", func(t *testing.T) {
		g.Assert(t, "crossroads", []byte(graph.GenerateMermaid(crossroads(), nil)))
	})

	t.Run("Overlay", func(t *testing.T) {
		out := graph.GenerateMermaid(crossroads(), &graph.GraphOverlay{
			VisitedSteps: []string{"top", "top"},
			CurrentStep:  "left",
		})
		g.Assert(t, "crossroads_overlay", []byte(out))
	})
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		scenario domain.Scenario
		contains []string
	}{
		{
			name: "ID Sanitization",
			scenario: domain.Scenario{Steps: []domain.Step{
				{Name: "flows/pick.size"},
				{Name: "hyphen-ated"},
			}},
			contains: []string{
				"flows_pick_size[\"flows/pick.size\"]",
				"hyphen_ated[\"hyphen-ated\"]",
			},
		},
		{
			name: "Label Escaping",
			scenario: domain.Scenario{Steps: []domain.Step{
				{Name: "a", Events: map[string]domain.Event{`say "hi"`: {Next: "a"}}},
			}},
			contains: []string{
				`a -- "say 'hi'" --> a`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.scenario, nil)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() missing %q\nGot:\n%s", want, got)
				}
			}
			if strings.Contains(got, "classDef") {
				t.Error("no overlay styles expected without overlay")
			}
		})
	}
}
