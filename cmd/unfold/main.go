// Package main is the entry point for the unfold command.
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "unfold",
	Short: "Expand code in place and fold it back",
	Long: `unfold replaces call sites with their expansions, keeps track of every
expansion it made, and restores the original text on request.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.Version = version

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to configuration file (default ./"+configFileName+")")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error), overrides the config file")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
