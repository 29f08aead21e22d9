package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpriess/planforge/internal/disksync"
)

var flattenCmd = &cobra.Command{
	Use:   "flatten",
	Short: "Write stored documents back to the directory tree",
	Long: `Write every stored plan and command back to its on-disk location:
plans under their status subdirectory, commands under their category
subdirectory. Directories are created as needed.

Documents that cannot be placed (a plan without a project, a command whose
category is no longer configured) are reported and skipped.

Examples:
  planforge flatten
  planforge flatten --plans-dir ./docs/plans`,
	RunE: runFlatten,
}

var (
	flattenPlansDir    string
	flattenCommandsDir string
)

func init() {
	flattenCmd.Flags().StringVar(&flattenPlansDir, "plans-dir", "", "Override the configured plans directory")
	flattenCmd.Flags().StringVar(&flattenCommandsDir, "commands-dir", "", "Override the configured commands directory")
	rootCmd.AddCommand(flattenCmd)
}

func runFlatten(cmd *cobra.Command, args []string) error {
	cfg, paths, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore(cfg, paths)
	if err != nil {
		return err
	}
	defer store.Close()

	engine := newEngine(cfg)
	ctx := cmd.Context()

	plansDir := cfg.Plans.Dir
	if flattenPlansDir != "" {
		plansDir = flattenPlansDir
	}
	commandsDir := cfg.Commands.Dir
	if flattenCommandsDir != "" {
		commandsDir = flattenCommandsDir
	}

	var written, skipped int
	report := func(entries []disksync.FlattenEntry) {
		for _, entry := range entries {
			if entry.Success {
				written++
				fmt.Printf("  %s>%s %s\n", colorGreen, colorReset, entry.Path)
			} else {
				skipped++
				fmt.Printf("  %s!%s %s: %s [%s]\n", colorRed, colorReset, entry.Name, entry.Message, entry.Kind)
			}
		}
	}

	fmt.Printf("%sPlans%s (%s)\n", colorBold, colorReset, plansDir)
	planEntries, err := engine.FlattenPlans(ctx, store, plansDir)
	if err != nil {
		return err
	}
	report(planEntries)

	fmt.Printf("%sCommands%s (%s)\n", colorBold, colorReset, commandsDir)
	cmdEntries, err := engine.FlattenCommands(ctx, store, commandsDir)
	if err != nil {
		return err
	}
	report(cmdEntries)

	fmt.Printf("\n%d written, %d skipped\n", written, skipped)
	return nil
}
