// Package agent dispatches plan documents to the external coding-agent CLI.
// The agent is spawned as a subprocess rooted at the target worktree; its
// exit code is the entire contract (0 = success, nonzero = failure with
// stderr as the detail).
package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mpriess/planforge/internal/execx"
)

// DefaultTimeout is the hard wall-clock limit for one agent run.
const DefaultTimeout = 10 * time.Minute

// instructionTemplate is prefixed to every plan body before dispatch.
const instructionTemplate = `Implement the following plan in this repository.
Work through it step by step, commit your changes as you go, and stop when
the plan is complete.

`

// FailureReason distinguishes the three ways a dispatch can fail.
type FailureReason string

const (
	ReasonNone        FailureReason = ""
	ReasonStartFailed FailureReason = "start_failed"
	ReasonExitNonzero FailureReason = "exit_nonzero"
	ReasonTimeout     FailureReason = "timeout"
)

// Result is the outcome of dispatching one plan to the agent.
type Result struct {
	PlanFile    string
	WorktreeDir string
	Success     bool
	Output      string
	Reason      FailureReason
	Message     string
}

// Agent runs the external coding-agent CLI.
type Agent struct {
	runner  execx.Runner
	command []string // executable + leading args, e.g. ["claude"]
	timeout time.Duration
}

// New creates an agent around the given command line. An empty command
// defaults to "claude"; a zero timeout defaults to DefaultTimeout.
func New(runner execx.Runner, command []string, timeout time.Duration) *Agent {
	if len(command) == 0 {
		command = []string{"claude"}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Agent{runner: runner, command: command, timeout: timeout}
}

// Dispatch reads the plan file, builds the instruction prompt, and runs the
// agent inside worktreeDir. All runtime failures are folded into the
// Result; Dispatch never returns an error.
func (a *Agent) Dispatch(ctx context.Context, planFile, worktreeDir string) Result {
	res := Result{PlanFile: planFile, WorktreeDir: worktreeDir}

	content, err := os.ReadFile(planFile)
	if err != nil {
		res.Reason = ReasonStartFailed
		res.Message = fmt.Sprintf("failed to read plan: %v", err)
		return res
	}

	prompt := instructionTemplate + StripFrontmatter(string(content))
	args := append(append([]string{}, a.command[1:]...),
		"-p", prompt, "--dangerously-skip-permissions")

	runCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	out, err := a.runner.Run(runCtx, worktreeDir, a.command[0], args...)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		res.Reason = ReasonTimeout
		res.Message = fmt.Sprintf("agent timed out after %s on %s", a.timeout, filepath.Base(planFile))
	case err != nil:
		res.Reason = ReasonStartFailed
		res.Message = fmt.Sprintf("failed to start agent: %v", err)
	case out.ExitCode != 0:
		res.Reason = ReasonExitNonzero
		res.Message = fmt.Sprintf("agent exited with code %d: %s", out.ExitCode, strings.TrimSpace(out.Stderr))
	default:
		res.Success = true
	}
	res.Output = out.Stdout
	return res
}

// StripFrontmatter removes a leading YAML frontmatter block delimited by
// "---" lines, if present, so the agent receives only the plan body.
func StripFrontmatter(content string) string {
	trimmed := strings.TrimPrefix(content, "\ufeff")
	if !strings.HasPrefix(trimmed, "---") {
		return content
	}

	lines := strings.SplitAfter(trimmed, "\n")
	if len(lines) == 0 || strings.TrimSpace(strings.TrimSuffix(lines[0], "\n")) != "---" {
		return content
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(strings.TrimSuffix(lines[i], "\n")) == "---" {
			return strings.TrimLeft(strings.Join(lines[i+1:], ""), "\n")
		}
	}
	// Unterminated frontmatter: leave the content alone.
	return content
}
