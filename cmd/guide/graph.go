package main

import (
	"fmt"

	"github.com/aretw0/guide/internal/cli"
	"github.com/aretw0/guide/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [scenario]",
	Short: "Export the scenario visualization",
	Long:  `Validates the scenario and outputs a Mermaid diagram (graph TD) of its steps and events.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		logger := newLogger(cmd, cfg, true)

		loader, err := cli.NewLoader(cfg.Scenario, logger)
		if err != nil {
			return err
		}
		g, err := cli.Validate(cmd.Context(), loader, nil, cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if step, _ := cmd.Flags().GetString("highlight"); step != "" {
			if _, ok := g.Step(step); !ok {
				return fmt.Errorf("step %q not defined in scenario", step)
			}
			overlay = &graph.GraphOverlay{CurrentStep: step}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(g.Scenario(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("highlight", "", "Step to highlight as current")
}
