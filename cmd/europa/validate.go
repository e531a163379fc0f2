package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"mercator-hq/europa/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load and validate a configuration file, reporting every problem found.

Validation checks the whole file and collects all errors rather than
stopping at the first one. Environment variable overrides (EUROPA_*) are
applied before validation, so the command checks the configuration the
service would actually run with.

Examples:
  # Validate the default config file
  europa validate

  # Validate a specific file
  europa validate --config /etc/europa/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verrs config.ValidationError
		if errors.As(err, &verrs) {
			fmt.Printf("Configuration file %s is invalid:\n", cfgFile)
			for _, fe := range verrs.Errors {
				fmt.Printf("  - %s: %s\n", fe.Field, fe.Message)
			}
			return fmt.Errorf("%d validation error(s)", len(verrs.Errors))
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Printf("Configuration file %s is valid\n", cfgFile)
	if verbose {
		fmt.Println()
		fmt.Printf("Service:          %s\n", cfg.Service)
		fmt.Printf("Log level:        %s (%s)\n", cfg.Telemetry.Logging.Level, cfg.Telemetry.Logging.Format)
		fmt.Printf("Tracing enabled:  %t\n", cfg.Telemetry.Tracing.Enabled)
		if cfg.Telemetry.Tracing.Enabled {
			fmt.Printf("Sampler:          %s\n", cfg.Telemetry.Tracing.Sampler)
			fmt.Printf("Exporter:         %s (%s)\n", cfg.Telemetry.Tracing.Exporter, cfg.Telemetry.Tracing.Endpoint)
		}
		fmt.Printf("Metrics enabled:  %t\n", cfg.Telemetry.Metrics.Enabled)
		fmt.Printf("Max span age:     %s\n", cfg.Registry.MaxSpanAge)
		fmt.Printf("Sweep schedule:   %s\n", cfg.Registry.SweepSchedule)
	}
	return nil
}
