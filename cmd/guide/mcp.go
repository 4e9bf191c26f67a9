package main

import (
	"github.com/aretw0/guide/internal/cli"
	mcpAdapter "github.com/aretw0/guide/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp [scenario]",
	Short: "Start the MCP server",
	Long:  `Exposes the session lifecycle as Model Context Protocol tools over stdio (default) or SSE.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		sse, _ := cmd.Flags().GetBool("sse")
		// Stdio carries the protocol, so logs stay off unless asked for.
		logger := newLogger(cmd, cfg, !sse)

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		sup, err := cli.NewSupervisor(ctx, supervisorOptions(cfg), logger)
		if err != nil {
			return err
		}
		go sup.Run(ctx)

		server := mcpAdapter.NewServer(sup, mcpAdapter.WithLogger(logger))
		if sse {
			return server.ServeSSE(ctx, cfg.Port)
		}
		return server.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().Bool("sse", false, "Serve over SSE instead of stdio")
	mcpCmd.Flags().IntP("port", "p", 8080, "Port for the SSE transport")
	mcpCmd.Flags().StringSlice("actions", nil, "Action names to register with echo handlers (default: every referenced action)")
}
