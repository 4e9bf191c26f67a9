package main

import (
	"os"

	"github.com/aretw0/guide/internal/cli"
	"github.com/aretw0/guide/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat [scenario]",
	Short: "Walk the scenario in an interactive terminal session",
	Long: `Starts one session and reads events from the terminal. Type an event name,
optionally followed by key=value arguments. Commands: :back :help :step :goto :attrs :quit.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		logger := newLogger(cmd, cfg, true)

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		sup, err := cli.NewSupervisor(ctx, supervisorOptions(cfg), logger)
		if err != nil {
			return err
		}

		chat := &cli.Chat{
			Dialogue: sup,
			In:       os.Stdin,
			Out:      cmd.OutOrStdout(),
			Logger:   logger,
		}
		chat.SessionID, _ = cmd.Flags().GetString("session")
		chat.ShowSteps, _ = cmd.Flags().GetBool("steps")

		if tui.IsInteractive() {
			tui.PrintBanner(cmd.OutOrStdout())
			chat.Renderer = tui.NewRenderer()
		}
		return chat.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("session", "", "Session ID (default: random UUID)")
	chatCmd.Flags().Bool("steps", false, "Show the step name before each answer")
	chatCmd.Flags().StringSlice("actions", nil, "Action names to register with echo handlers (default: every referenced action)")
}
