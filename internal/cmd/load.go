package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpriess/planforge/internal/disksync"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load plan and command files into the versioned store",
	Long: `Load markdown files from the plans and commands directories into the
versioned document store.

Unchanged files are skipped, changed files get a new version, and new files
are created. Filenames that violate the naming convention are normalized on
disk first. One bad file never aborts the batch.

Examples:
  planforge load
  planforge load --plans-only
  planforge load --plans-dir ./docs/plans`,
	RunE: runLoad,
}

var (
	loadPlansDir    string
	loadCommandsDir string
	loadPlansOnly   bool
	loadCmdsOnly    bool
)

func init() {
	loadCmd.Flags().StringVar(&loadPlansDir, "plans-dir", "", "Override the configured plans directory")
	loadCmd.Flags().StringVar(&loadCommandsDir, "commands-dir", "", "Override the configured commands directory")
	loadCmd.Flags().BoolVar(&loadPlansOnly, "plans-only", false, "Load only plans")
	loadCmd.Flags().BoolVar(&loadCmdsOnly, "commands-only", false, "Load only commands")
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
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
	if loadPlansDir != "" {
		plansDir = loadPlansDir
	}
	commandsDir := cfg.Commands.Dir
	if loadCommandsDir != "" {
		commandsDir = loadCommandsDir
	}

	var created, updated, unchanged, failed int

	ingest := func(result *disksync.LoadResult) {
		opResults := store.BulkUpsert(ctx, result.Documents)
		result.MergeOpResults(opResults)

		for _, res := range opResults {
			if !res.Success {
				continue
			}
			switch {
			case res.Note != "":
				unchanged++
			case res.Version == 1:
				created++
				fmt.Printf("  %s+%s %s (v1)\n", colorGreen, colorReset, res.Name)
			default:
				updated++
				fmt.Printf("  %s~%s %s (v%d)\n", colorCyan, colorReset, res.Name, res.Version)
			}
		}
		for _, loadErr := range result.Errors {
			failed++
			fmt.Printf("  %s!%s %s: %s [%s]\n", colorRed, colorReset, loadErr.File, loadErr.Message, loadErr.Kind)
		}
	}

	if !loadCmdsOnly {
		fmt.Printf("%sPlans%s (%s)\n", colorBold, colorReset, plansDir)
		ingest(engine.LoadPlans(plansDir))
	}
	if !loadPlansOnly {
		fmt.Printf("%sCommands%s (%s)\n", colorBold, colorReset, commandsDir)
		ingest(engine.LoadCommands(commandsDir))
	}

	fmt.Printf("\n%d created, %d updated, %d unchanged, %d failed\n", created, updated, unchanged, failed)
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed to load", failed)
	}
	return nil
}
