package worktree

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// FinalizeOptions configures the commit→push→PR→cleanup pipeline. Empty
// strings are auto-derived from the worktree name and commit SHA.
type FinalizeOptions struct {
	CommitMessage string
	PRTitle       string
	PRBody        string
	Cleanup       bool
}

// FinalizeResult reports the pipeline outcome. Steps records which stages
// ran, in order. A cleanup failure after a successful PR surfaces as a
// Warning on a success result.
type FinalizeResult struct {
	Success  bool
	Message  string
	Steps    []string
	PRURL    string
	PRNumber int
	Warning  string
}

func defaultLookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// Finalize commits all changes in the worktree, pushes its branch, opens a
// pull request via the gh CLI, and optionally removes the worktree. Each
// stage's failure short-circuits the remaining stages with a stage-tagged
// message.
func (o *Orchestrator) Finalize(ctx context.Context, worktreeDir string, opts FinalizeOptions) FinalizeResult {
	result := FinalizeResult{}

	// Stage 1: commit.
	result.Steps = append(result.Steps, "commit")

	res, err := o.runner.Run(ctx, worktreeDir, "git", "status", "--porcelain")
	if err != nil || res.ExitCode != 0 {
		result.Message = fmt.Sprintf("Failed to inspect worktree: %s", runFailure(res.Stderr, err))
		return result
	}
	if strings.TrimSpace(res.Stdout) == "" {
		// Nothing changed: distinctly reported, nothing further attempted.
		result.Success = true
		result.Message = fmt.Sprintf("No changes to commit in %s", worktreeDir)
		return result
	}

	if res, err = o.runner.Run(ctx, worktreeDir, "git", "add", "-A"); err != nil || res.ExitCode != 0 {
		result.Message = fmt.Sprintf("Failed to stage changes: %s", runFailure(res.Stderr, err))
		return result
	}

	message := opts.CommitMessage
	if message == "" {
		message = "Implement " + worktreeSlug(worktreeDir)
	}
	if res, err = o.runner.Run(ctx, worktreeDir, "git", "commit", "-m", message); err != nil || res.ExitCode != 0 {
		result.Message = fmt.Sprintf("Failed to commit changes: %s", runFailure(res.Stderr, err))
		return result
	}

	// Stage 2: push.
	result.Steps = append(result.Steps, "push")
	if res, err = o.runner.Run(ctx, worktreeDir, "git", "push", "-u", "origin", "HEAD"); err != nil || res.ExitCode != 0 {
		result.Message = fmt.Sprintf("Failed to push branch: %s", runFailure(res.Stderr, err))
		return result
	}

	// Stage 3: pull request.
	result.Steps = append(result.Steps, "pr")
	if _, err := o.lookPath("gh"); err != nil {
		result.Message = "Failed to open pull request: gh CLI not found in PATH"
		return result
	}

	title, body := opts.PRTitle, opts.PRBody
	if title == "" {
		title = "Implement " + worktreeSlug(worktreeDir)
	}
	if body == "" {
		sha := "unknown"
		if res, err = o.runner.Run(ctx, worktreeDir, "git", "rev-parse", "HEAD"); err == nil && res.ExitCode == 0 {
			sha = strings.TrimSpace(res.Stdout)
		}
		body = fmt.Sprintf("Automated PR for %s (commit %s)", worktreeSlug(worktreeDir), sha)
	}

	res, err = o.runner.Run(ctx, worktreeDir, "gh", "pr", "create", "--title", title, "--body", body)
	if err != nil || res.ExitCode != 0 {
		result.Message = fmt.Sprintf("Failed to open pull request: %s", runFailure(res.Stderr, err))
		return result
	}
	result.PRURL = strings.TrimSpace(res.Stdout)
	result.PRNumber = parsePRNumber(result.PRURL)

	// Stage 4: optional cleanup. Failure here no longer sinks the run.
	if opts.Cleanup {
		result.Steps = append(result.Steps, "cleanup")
		if err := o.RemoveWorktree(ctx, worktreeDir); err != nil {
			result.Warning = fmt.Sprintf("worktree cleanup failed: %v", err)
		}
	}

	result.Success = true
	result.Message = fmt.Sprintf("Opened pull request %s", result.PRURL)
	return result
}

// worktreeSlug recovers the plan slug from a worktree directory named
// <repo>-<slug>.
func worktreeSlug(worktreeDir string) string {
	base := filepath.Base(worktreeDir)
	if i := strings.Index(base, "-"); i >= 0 && i+1 < len(base) {
		return base[i+1:]
	}
	return base
}

// parsePRNumber extracts the PR number from the numeric suffix of a PR URL
// path (e.g. .../pull/42 -> 42). Returns 0 when no number is present.
func parsePRNumber(url string) int {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	i := strings.LastIndex(url, "/")
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(url[i+1:])
	if err != nil {
		return 0
	}
	return n
}

// runFailure formats a stage failure from stderr or the runner error.
func runFailure(stderr string, err error) string {
	if msg := strings.TrimSpace(stderr); msg != "" {
		return msg
	}
	if err != nil {
		return err.Error()
	}
	return "command failed"
}
