package main

import (
	"fmt"
	"os"

	"github.com/aretw0/guide/pkg/adapters/redis"
	"github.com/spf13/cobra"
)

var publishCmd = &cobra.Command{
	Use:   "publish <file>",
	Short: "Publish a scenario document to Redis",
	Long: `Validates the document shape and stores it under a Redis key, notifying every
server that loads the scenario from redis:// so it can pick up the change.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		if cfg.RedisURL == "" {
			return fmt.Errorf("no redis url given (use --redis or GUIDE_REDIS_URL)")
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		loader, err := redis.NewFromURL(cfg.RedisURL, redis.WithName(name))
		if err != nil {
			return err
		}
		defer loader.Close()

		if err := loader.Put(cmd.Context(), data); err != nil {
			return fmt.Errorf("publish failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Published %s as scenario %q\n", args[0], name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
	publishCmd.Flags().String("redis", "", "Redis URL (redis://host:6379/0)")
	publishCmd.Flags().String("name", "default", "Scenario name")
}
