package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yairfalse/awsvars/cache"
	"github.com/yairfalse/awsvars/config"
	"github.com/yairfalse/awsvars/profiles"
	"github.com/yairfalse/awsvars/telemetry"
	"github.com/yairfalse/awsvars/vars"
)

// profileOverrideEnv names a profile directly, bypassing rule matching.
const profileOverrideEnv = "AWSVARS_PROFILE"

var (
	varsExtraVars  []string
	varsProfile    string
	varsFlushCache bool
	varsFormat     string
)

// varsCmd represents the vars command
var varsCmd = &cobra.Command{
	Use:   "vars",
	Short: "Discover resources and emit the variable snapshot",
	Long: `Discover AWS resources across the configured regions and profiles
and emit them as a variable snapshot.

Extra variables passed with -e participate in profile matching when
the configuration declares profile rules. A matched profile's
credentials are exchanged for a temporary session and exported
alongside the snapshot.`,
	Example: `  awsvars vars                              # Snapshot with defaults
  awsvars vars -e env=staging               # Match profile rules against env=staging
  awsvars vars --profile production         # Force a profile, skip matching
  awsvars vars --flush-cache                # Discard cached results first
  awsvars vars --format env                 # Emit shell export lines instead of JSON`,
	RunE: runVars,
}

func init() {
	rootCmd.AddCommand(varsCmd)

	varsCmd.Flags().StringArrayVarP(&varsExtraVars, "extra-vars", "e", nil, "Extra variable as key=value (repeatable)")
	varsCmd.Flags().StringVar(&varsProfile, "profile", "", "Profile override, bypasses rule matching")
	varsCmd.Flags().BoolVar(&varsFlushCache, "flush-cache", false, "Discard all cached results before fetching")
	varsCmd.Flags().StringVarP(&varsFormat, "format", "f", "json", "Output format: json, env")
}

func runVars(cmd *cobra.Command, args []string) error {
	if varsFormat != "json" && varsFormat != "env" {
		return fmt.Errorf("invalid output format: %s (must be one of: json, env)", varsFormat)
	}

	extraVars, err := parseExtraVars(varsExtraVars)
	if err != nil {
		return err
	}

	override := varsProfile
	if override == "" {
		override = os.Getenv(profileOverrideEnv)
	}

	cfg, err := config.LoadConfig(rootConfigPath)
	if err != nil {
		return err
	}

	logger := telemetry.NewConsoleLogger("awsvars", rootDebug)
	runner := vars.NewRunner(cfg, newCacheManager(cfg, logger), profiles.NewExchanger(nil), vars.RunnerOptions{
		Logger: logger,
	})

	out, err := runner.Run(cmd.Context(), vars.RunInput{
		ExtraVars:       extraVars,
		ProfileOverride: override,
		FlushCache:      varsFlushCache,
	})
	if err != nil {
		return err
	}

	if varsFormat == "env" {
		writeEnvExports(out.Env)
		return nil
	}

	data, err := json.MarshalIndent(out.Snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// newCacheManager builds the cache manager from config, defaulting the
// directory when the config leaves it unset.
func newCacheManager(cfg *config.Config, logger zerolog.Logger) *cache.Manager {
	dir := cfg.CacheDir
	if dir == "" {
		dir = defaultCacheDir()
	}
	return cache.NewManager(cache.Options{
		Dir:     dir,
		MaxAge:  cfg.CacheTTL(),
		Enabled: cfg.CacheEnabled(),
		EnvVars: cfg.CacheEnvVars,
		Logger:  logger,
	})
}

// parseExtraVars splits repeated key=value flags into a map.
func parseExtraVars(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	extraVars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid extra var %q (expected key=value)", pair)
		}
		extraVars[key] = value
	}
	return extraVars, nil
}

// writeEnvExports prints the credential environment as shell export
// lines, sorted for stable output.
func writeEnvExports(env map[string]string) {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("export %s='%s'\n", k, strings.ReplaceAll(env[k], "'", `'\''`))
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "awsvars")
	}
	return filepath.Join(os.TempDir(), "awsvars")
}
