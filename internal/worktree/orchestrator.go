// Package worktree fans approved plan documents out into isolated git
// worktrees, dispatches each one to the external coding agent concurrently,
// and finalizes completed worktrees into pull requests.
package worktree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mpriess/planforge/internal/agent"
	"github.com/mpriess/planforge/internal/document"
	"github.com/mpriess/planforge/internal/execx"
)

// Status of one worktree after a creation attempt. Skips are expected
// steady-state on reruns, not failures.
type Status string

const (
	StatusCreated Status = "created"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Worktree is the ephemeral record of one plan's working tree. It is
// derived fresh from git and filesystem state on every run; nothing about
// it is persisted.
type Worktree struct {
	PlanFile string
	Branch   string
	Dir      string
	Status   Status
	Message  string
}

// EnvReport is the outcome of ValidateEnvironment. A fatal problem sets
// Err/Message; non-fatal observations accumulate as warnings.
type EnvReport struct {
	OK       bool
	Err      document.ErrorKind
	Message  string
	Warnings []string
}

// Orchestrator drives worktree creation, agent dispatch and finalization.
// All git and PR-tool interaction goes through the execx.Runner so tests
// can fake it deterministically.
type Orchestrator struct {
	runner      execx.Runner
	agent       *agent.Agent
	repoRoot    string
	approvedDir string

	// lookPath is swappable in tests; defaults to exec.LookPath.
	lookPath func(file string) (string, error)
}

// New creates an orchestrator for the repository at repoRoot whose approved
// plans live in approvedDir.
func New(runner execx.Runner, ag *agent.Agent, repoRoot, approvedDir string) *Orchestrator {
	return &Orchestrator{
		runner:      runner,
		agent:       ag,
		repoRoot:    repoRoot,
		approvedDir: approvedDir,
		lookPath:    defaultLookPath,
	}
}

// ValidateEnvironment runs the precondition checks in fixed order,
// short-circuiting on the first fatal problem:
//  1. the working directory must be a git repository (fatal)
//  2. the tree should be clean (warning only, run proceeds)
//  3. the approved-plans directory must exist (fatal)
func (o *Orchestrator) ValidateEnvironment(ctx context.Context) EnvReport {
	report := EnvReport{}

	res, err := o.runner.Run(ctx, o.repoRoot, "git", "rev-parse", "--is-inside-work-tree")
	if err != nil || res.ExitCode != 0 {
		report.Err = document.ErrGit
		report.Message = "not a git repository: run planforge from inside the target repo"
		return report
	}

	res, err = o.runner.Run(ctx, o.repoRoot, "git", "status", "--porcelain")
	if err == nil && res.ExitCode == 0 && strings.TrimSpace(res.Stdout) != "" {
		report.Warnings = append(report.Warnings,
			"working tree has uncommitted changes; new worktrees branch from the last commit")
	}

	if info, err := os.Stat(o.approvedDir); err != nil || !info.IsDir() {
		report.Err = document.ErrDirectory
		report.Message = fmt.Sprintf("approved plans directory %s does not exist", o.approvedDir)
		return report
	}

	report.OK = true
	return report
}

// ListApprovedPlans returns the plan files in the approved directory in
// sorted order.
func (o *Orchestrator) ListApprovedPlans() ([]string, error) {
	entries, err := os.ReadDir(o.approvedDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read approved plans: %w", err)
	}

	var plans []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".md" || ext == ".toml" {
			plans = append(plans, filepath.Join(o.approvedDir, e.Name()))
		}
	}
	sort.Strings(plans)
	return plans, nil
}

// CreateWorktree derives the branch and directory for a plan and creates
// the worktree. An already-existing branch (local or remote) or target
// directory yields a skip; only an actual git failure yields StatusFailed,
// with stderr captured verbatim.
func (o *Orchestrator) CreateWorktree(ctx context.Context, planFile string) Worktree {
	slug := document.Slug(filepath.Base(planFile))
	repoName := filepath.Base(o.repoRoot)

	wt := Worktree{
		PlanFile: planFile,
		Branch:   "feature/" + slug,
		Dir:      filepath.Join(filepath.Dir(o.repoRoot), repoName+"-"+slug),
	}

	res, err := o.runner.Run(ctx, o.repoRoot, "git", "branch", "--list", wt.Branch)
	if err != nil {
		wt.Status = StatusFailed
		wt.Message = fmt.Sprintf("git branch --list: %v", err)
		return wt
	}
	if strings.TrimSpace(res.Stdout) != "" {
		wt.Status = StatusSkipped
		wt.Message = fmt.Sprintf("branch %s already exists locally", wt.Branch)
		return wt
	}

	res, err = o.runner.Run(ctx, o.repoRoot, "git", "branch", "-r", "--list", "origin/"+wt.Branch)
	if err != nil {
		wt.Status = StatusFailed
		wt.Message = fmt.Sprintf("git branch -r --list: %v", err)
		return wt
	}
	if strings.TrimSpace(res.Stdout) != "" {
		wt.Status = StatusSkipped
		wt.Message = fmt.Sprintf("branch %s already exists on origin", wt.Branch)
		return wt
	}

	if _, err := os.Stat(wt.Dir); err == nil {
		wt.Status = StatusSkipped
		wt.Message = fmt.Sprintf("directory %s already exists", wt.Dir)
		return wt
	}

	res, err = o.runner.Run(ctx, o.repoRoot, "git", "worktree", "add", wt.Dir, "-b", wt.Branch)
	if err != nil {
		wt.Status = StatusFailed
		wt.Message = fmt.Sprintf("git worktree add: %v", err)
		return wt
	}
	if res.ExitCode != 0 {
		wt.Status = StatusFailed
		wt.Message = strings.TrimSpace(res.Stderr)
		return wt
	}

	wt.Status = StatusCreated
	return wt
}

// DispatchAll runs the agent for every created worktree concurrently and
// gathers all results. A panic inside one dispatch becomes a failed result
// for that worktree instead of aborting the batch; one agent's failure
// never cancels the others. Plan files with no matching created worktree
// are silently excluded.
func (o *Orchestrator) DispatchAll(ctx context.Context, planFiles []string, worktrees []Worktree) []agent.Result {
	byPlan := make(map[string]Worktree, len(worktrees))
	for _, wt := range worktrees {
		if wt.Status == StatusCreated {
			byPlan[filepath.Base(wt.PlanFile)] = wt
		}
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []agent.Result
	)

	for _, planFile := range planFiles {
		wt, ok := byPlan[filepath.Base(planFile)]
		if !ok {
			continue
		}

		wg.Add(1)
		go func(planFile string, wt Worktree) {
			defer wg.Done()

			res := o.dispatchOne(ctx, planFile, wt)

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}(planFile, wt)
	}

	wg.Wait()
	return results
}

// dispatchOne wraps a single agent dispatch, converting a panic into a
// failed result attributed to the originating plan.
func (o *Orchestrator) dispatchOne(ctx context.Context, planFile string, wt Worktree) (res agent.Result) {
	defer func() {
		if r := recover(); r != nil {
			res = agent.Result{
				PlanFile:    planFile,
				WorktreeDir: wt.Dir,
				Reason:      agent.ReasonStartFailed,
				Message:     fmt.Sprintf("dispatch panicked: %v", r),
			}
		}
	}()
	return o.agent.Dispatch(ctx, planFile, wt.Dir)
}

// RemoveWorktree force-removes a worktree directory from the main repo.
func (o *Orchestrator) RemoveWorktree(ctx context.Context, worktreeDir string) error {
	res, err := o.runner.Run(ctx, o.repoRoot, "git", "worktree", "remove", worktreeDir, "--force")
	if err != nil {
		return fmt.Errorf("git worktree remove: %w", err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("git worktree remove: %s", strings.TrimSpace(res.Stderr))
	}
	return nil
}
