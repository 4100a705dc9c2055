package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "railway",
	Short: "Railway reversible-programming-language interpreter",
	Long: `railway runs programs written in Railway, a reversible imperative
language: every construct it executes forwards has a well-defined inverse,
and the interpreter can run a program backwards as readily as forwards.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}
