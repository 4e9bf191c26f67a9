package main

import (
	"fmt"

	"github.com/aretw0/guide/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [scenario]",
	Short: "Check the scenario for consistency",
	Long: `Loads the scenario and reports duplicate steps, undefined steps, undefined
actions (when --actions is given) and steps unreachable from the initial step.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		logger := newLogger(cmd, cfg, false)

		loader, err := cli.NewLoader(cfg.Scenario, logger)
		if err != nil {
			return err
		}

		watch, _ := cmd.Flags().GetBool("watch")
		if watch {
			ctx := cli.NewSignalContext(cmd.Context())
			defer ctx.Cancel()
			return cli.WatchValidate(ctx, loader, cfg.Actions, cmd.OutOrStdout(), logger)
		}

		if _, err := cli.Validate(cmd.Context(), loader, cfg.Actions, cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolP("watch", "w", false, "Validate again on every change of the scenario source")
	validateCmd.Flags().StringSlice("actions", nil, "Known action names; enables the undefined action check")
}
