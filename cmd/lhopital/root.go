package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lhopital",
	Short: "lhopital computes limits of rational expressions",
	Long: `lhopital computes limits of real-valued rational expressions of one
variable, resolving 0/0 indeterminate forms by repeated symbolic
differentiation (L'Hôpital's Rule).`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log per-iteration solver progress to stderr")
}

// newLogger builds the command logger. Logs go to stderr so stdout stays
// clean for results and JSON-RPC traffic.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
