package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/guide/pkg/ports"
	"github.com/aretw0/guide/pkg/scenario"
)

// Validate loads and checks the scenario once, printing a summary to out.
// Action references are only checked when actions is not empty.
func Validate(ctx context.Context, loader ports.ScenarioLoader, actions []string, out io.Writer) (*scenario.Graph, error) {
	var catalog ports.ActionCatalog
	if len(actions) > 0 {
		catalog = EchoActions(actions, nil)
	}

	g, err := scenario.Load(ctx, loader, catalog)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "✓ Scenario is valid: %d steps, %d transitions (initial %q, terminal %q)\n",
		len(g.Steps()), len(g.Rules()), g.InitialStep(), g.TerminalStep())
	return g, nil
}

// WatchValidate validates the scenario every time its source changes, until
// ctx is cancelled. Validation failures are reported, not returned.
func WatchValidate(ctx context.Context, loader ports.ScenarioLoader, actions []string, out io.Writer, logger *slog.Logger) error {
	w, ok := loader.(ports.Watchable)
	if !ok {
		return fmt.Errorf("scenario source does not support watching")
	}
	changes, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}

	for {
		if _, err := Validate(ctx, loader, actions, out); err != nil {
			fmt.Fprintf(out, "✗ %v\n", err)
		}
		printSystemMessage(out, "Waiting for changes...")

		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Info("Change detected, validating again")
		}
	}
}
