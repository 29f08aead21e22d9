// Package execx defines the narrow command-execution contract used for all
// external tools (git, the coding agent, the PR CLI): arguments in, exit
// code plus captured output out. Orchestration logic depends only on the
// Runner interface so tests can substitute a deterministic fake.
package execx

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Result captures a finished command's output and exit code.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes one external command to completion.
//
// A non-zero exit is not an error: it is reported through Result.ExitCode.
// The returned error is non-nil only when the process could not be started
// or the context expired; in the latter case the process group has been
// killed and reaped before Run returns, so no subprocess outlives the call.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (Result, error)
}

// ErrNotStarted is wrapped into the error when the executable could not be
// launched at all (missing binary, permission).
var ErrNotStarted = errors.New("process could not be started")

type execRunner struct{}

// NewRunner returns the real Runner backed by os/exec.
func NewRunner() Runner {
	return &execRunner{}
}

func (r *execRunner) Run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Run in its own process group so a timeout kill reaches any children
	// the tool spawned.
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return Result{ExitCode: -1}, errors.Join(ErrNotStarted, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		res := Result{
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			ExitCode: exitCode(err),
		}
		return res, nil

	case <-ctx.Done():
		killProcessGroup(cmd)
		<-done // reap; never leave an orphaned subprocess behind
		res := Result{
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			ExitCode: -1,
		}
		return res, ctx.Err()
	}
}

func exitCode(waitErr error) int {
	if waitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
