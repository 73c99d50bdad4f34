package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yairfalse/awsvars/config"
	"github.com/yairfalse/awsvars/telemetry"
)

// cacheCmd groups cache maintenance subcommands
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the on-disk result cache",
}

// cacheFlushCmd represents the cache flush command
var cacheFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Delete all cached results",
	Long: `Delete every cached result for the configured cache directory.
The next vars run fetches everything fresh.`,
	Example: `  awsvars cache flush
  awsvars cache flush -c /etc/awsvars.yaml`,
	RunE: runCacheFlush,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheFlushCmd)
}

func runCacheFlush(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(rootConfigPath)
	if err != nil {
		return err
	}

	logger := telemetry.NewConsoleLogger("awsvars", rootDebug)
	if err := newCacheManager(cfg, logger).Flush(); err != nil {
		return fmt.Errorf("failed to flush cache: %w", err)
	}

	fmt.Println("cache flushed")
	return nil
}
