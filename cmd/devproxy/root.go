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
	Use:   "devproxy",
	Short: "DevProxy - hardened development HTTP proxy",
	Long: `DevProxy is a development HTTP proxy that refuses to be lenient.

Every inbound request is parsed in stages, each stage with its own size
cap and deadline, so oversized or stalled requests are rejected with a
deterministic error instead of consuming the server. Admitted requests
are either echoed back, forwarded byte-exact to a single upstream, or
answered with Prometheus metrics.`,
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
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
