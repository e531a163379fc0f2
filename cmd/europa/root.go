package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "europa",
	Short: "Mercator Europa - HTTP request tracing filters",
	Long: `Mercator Europa is a request tracing filter library for HTTP services.

It provides server and client filters that open an OpenTelemetry span per
HTTP exchange, tag it with a configurable selection of request fields, and
propagate trace context across service boundaries:
  - Server filters continue inbound traces or start new ones
  - Client filters parent outbound spans under the ambient server span
  - Fail-open design: broken trace headers never fail a request

For more information, visit: https://github.com/mercator-hq/europa`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
