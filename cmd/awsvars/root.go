package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	rootCmd = &cobra.Command{
		Use:   "awsvars",
		Short: "AWS infrastructure variable discovery",
		Long: `awsvars - AWS infrastructure variable discovery

awsvars discovers VPCs, subnets, security groups and ELB target groups
across your configured regions and profiles, arranges them into
tag-hierarchy indexes, and emits the result as a variable snapshot for
provisioning tooling to consume.

Results are cached on disk and reused until they expire or the watched
environment changes. A profile ruleset can select an AWS profile from
the invocation's variables and exchange its credentials for a
temporary session.`,
		Version: version,
	}

	rootConfigPath string
	rootDebug      bool
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`awsvars {{.Version}} - AWS infrastructure variable discovery
`)
	rootCmd.PersistentFlags().StringVarP(&rootConfigPath, "config", "c", "awsvars.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable debug logging")
}
