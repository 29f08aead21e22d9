// Package cmd implements the CLI commands for planforge.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "planforge",
	Short: "versioned plans and parallel agent dispatch",
	Long: `planforge - versioned plan and command documents, dispatched in parallel
  - load/flatten  sync markdown plans with the versioned store
  - worktree      fan approved plans out to coding agents in git worktrees`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
