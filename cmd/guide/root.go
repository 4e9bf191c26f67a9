package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/guide/internal/cli"
	"github.com/aretw0/guide/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "guide",
	Short: "Guide drives multi-turn dialogues as per-session state machines",
	Long: `Guide validates a dialogue scenario (steps connected by events) and serves
one state machine per session over HTTP, MCP or an interactive terminal chat.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading GUIDE_* variables")
	rootCmd.PersistentFlags().StringP("scenario", "s", "", "Scenario file, step directory or redis:// URL")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// loadConfig resolves the configuration and applies command-line overrides.
// A positional argument, when present, names the scenario.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	cfg, err := config.Load(path, envFile)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("scenario") {
		cfg.Scenario, _ = cmd.Flags().GetString("scenario")
	}
	if len(args) > 0 {
		cfg.Scenario = args[0]
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if f := cmd.Flags().Lookup("port"); f != nil && f.Changed {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}
	if f := cmd.Flags().Lookup("actions"); f != nil && f.Changed {
		cfg.Actions, _ = cmd.Flags().GetStringSlice("actions")
	}
	if f := cmd.Flags().Lookup("redis"); f != nil && f.Changed {
		cfg.RedisURL, _ = cmd.Flags().GetString("redis")
	}

	if cfg.Scenario == "" {
		return nil, fmt.Errorf("no scenario given (use --scenario, an argument or %s)", config.EnvScenario)
	}
	return cfg, cfg.Validate()
}

func newLogger(cmd *cobra.Command, cfg *config.Config, quiet bool) *slog.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.NewLogger(cfg.LogLevel, debug, quiet)
}

func supervisorOptions(cfg *config.Config) cli.Options {
	return cli.Options{
		Scenario:        cfg.Scenario,
		Actions:         cfg.Actions,
		CleanPeriod:     cfg.CleanPeriod,
		SessionLifetime: cfg.SessionLifetime,
	}
}
