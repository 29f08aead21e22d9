package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpriess/planforge/internal/agent"
	"github.com/mpriess/planforge/internal/document"
	"github.com/mpriess/planforge/internal/execx"
	"github.com/mpriess/planforge/internal/worktree"
)

var worktreeCmd = &cobra.Command{
	Use:   "worktree",
	Short: "Run approved plans in parallel git worktrees",
}

var worktreeSpawnCmd = &cobra.Command{
	Use:   "spawn",
	Short: "Create a worktree per approved plan and dispatch the coding agent",
	Long: `For every plan in the approved directory, create a feature branch and
git worktree, then dispatch the configured coding agent into each worktree
concurrently. Plans whose branch or worktree already exists are skipped,
so the command is safe to rerun.

Examples:
  planforge worktree spawn
  planforge worktree spawn --dry-run`,
	RunE: runWorktreeSpawn,
}

var worktreeFinalizeCmd = &cobra.Command{
	Use:   "finalize <worktree-dir>",
	Short: "Commit, push, and open a pull request for a worktree",
	Long: `Commit all changes in the worktree, push its branch, and open a pull
request via the gh CLI. With --cleanup the worktree is removed afterwards;
a cleanup failure is a warning, not an error, once the PR exists.

Examples:
  planforge worktree finalize ../myrepo-add-feature
  planforge worktree finalize ../myrepo-add-feature --cleanup -m "Add feature"`,
	Args: cobra.ExactArgs(1),
	RunE: runWorktreeFinalize,
}

var (
	spawnDryRun     bool
	finalizeMessage string
	finalizePRTitle string
	finalizePRBody  string
	finalizeCleanup bool
)

func init() {
	worktreeSpawnCmd.Flags().BoolVar(&spawnDryRun, "dry-run", false, "Create worktrees but do not dispatch agents")
	worktreeFinalizeCmd.Flags().StringVarP(&finalizeMessage, "message", "m", "", "Commit message")
	worktreeFinalizeCmd.Flags().StringVar(&finalizePRTitle, "title", "", "Pull request title")
	worktreeFinalizeCmd.Flags().StringVar(&finalizePRBody, "body", "", "Pull request body")
	worktreeFinalizeCmd.Flags().BoolVar(&finalizeCleanup, "cleanup", false, "Remove the worktree after the PR is opened")

	worktreeCmd.AddCommand(worktreeSpawnCmd)
	worktreeCmd.AddCommand(worktreeFinalizeCmd)
	rootCmd.AddCommand(worktreeCmd)
}

// newOrchestrator wires the orchestrator from configuration, rooted at the
// current working directory.
func newOrchestrator() (*worktree.Orchestrator, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	command, err := cfg.AgentCommand()
	if err != nil {
		return nil, err
	}

	repoRoot, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}

	runner := execx.NewRunner()
	timeout := time.Duration(cfg.Agent.TimeoutMins) * time.Minute
	ag := agent.New(runner, command, timeout)

	approvedDir := filepath.Join(repoRoot, cfg.Plans.Dir, document.StatusDirs[document.StatusApproved])
	return worktree.New(runner, ag, repoRoot, approvedDir), nil
}

func runWorktreeSpawn(cmd *cobra.Command, args []string) error {
	o, err := newOrchestrator()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	report := o.ValidateEnvironment(ctx)
	for _, warning := range report.Warnings {
		fmt.Printf("%sWarning:%s %s\n", colorYellow, colorReset, warning)
	}
	if !report.OK {
		return fmt.Errorf("%s", report.Message)
	}

	plans, err := o.ListApprovedPlans()
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		fmt.Printf("%sNo approved plans found%s\n", colorDim, colorReset)
		return nil
	}

	var worktrees []worktree.Worktree
	for _, plan := range plans {
		wt := o.CreateWorktree(ctx, plan)
		worktrees = append(worktrees, wt)

		switch wt.Status {
		case worktree.StatusCreated:
			fmt.Printf("  %s+%s %s -> %s\n", colorGreen, colorReset, wt.Branch, wt.Dir)
		case worktree.StatusSkipped:
			fmt.Printf("  %s=%s %s: %s\n", colorDim, colorReset, filepath.Base(plan), wt.Message)
		case worktree.StatusFailed:
			fmt.Printf("  %s!%s %s: %s\n", colorRed, colorReset, filepath.Base(plan), wt.Message)
		}
	}

	if spawnDryRun {
		fmt.Println("\nDry run: agents not dispatched")
		return nil
	}

	fmt.Println("\nDispatching agents...")
	results := o.DispatchAll(ctx, plans, worktrees)

	var failed int
	for _, res := range results {
		name := filepath.Base(res.PlanFile)
		if res.Success {
			fmt.Printf("  %sok%s   %s\n", colorGreen, colorReset, name)
		} else {
			failed++
			fmt.Printf("  %sfail%s %s: %s [%s]\n", colorRed, colorReset, name, res.Message, res.Reason)
		}
	}

	fmt.Printf("\n%d dispatched, %d failed\n", len(results), failed)
	if failed > 0 {
		return fmt.Errorf("%d agent run(s) failed", failed)
	}
	return nil
}

func runWorktreeFinalize(cmd *cobra.Command, args []string) error {
	o, err := newOrchestrator()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	result := o.Finalize(ctx, args[0], worktree.FinalizeOptions{
		CommitMessage: finalizeMessage,
		PRTitle:       finalizePRTitle,
		PRBody:        finalizePRBody,
		Cleanup:       finalizeCleanup,
	})

	if !result.Success {
		return fmt.Errorf("%s", result.Message)
	}

	fmt.Printf("%s%s%s\n", colorGreen, result.Message, colorReset)
	if result.PRNumber > 0 {
		fmt.Printf("Pull request #%d\n", result.PRNumber)
	}
	if result.Warning != "" {
		fmt.Printf("%sWarning:%s %s\n", colorYellow, colorReset, result.Warning)
	}
	return nil
}
