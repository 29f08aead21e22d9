package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpriess/planforge/internal/execx"
)

// fakeRunner returns a canned result and records the invocation.
type fakeRunner struct {
	result execx.Result
	err    error
	delay  time.Duration

	dir  string
	name string
	args []string
}

func (f *fakeRunner) Run(ctx context.Context, dir, name string, args ...string) (execx.Result, error) {
	f.dir, f.name, f.args = dir, name, args
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return execx.Result{ExitCode: -1}, ctx.Err()
		}
	}
	return f.result, f.err
}

func writePlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "add_feature.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDispatch_Success(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{result: execx.Result{Stdout: "done", ExitCode: 0}}
	a := New(runner, []string{"claude"}, 0)

	res := a.Dispatch(context.Background(), writePlan(t, "# Plan\nsteps"), "/tmp/wt")

	assert.True(t, res.Success)
	assert.Equal(t, ReasonNone, res.Reason)
	assert.Equal(t, "done", res.Output)
	assert.Equal(t, "/tmp/wt", runner.dir, "agent must run rooted at the worktree")
	assert.Equal(t, "claude", runner.name)
	require.Len(t, runner.args, 3)
	assert.Equal(t, "-p", runner.args[0])
	assert.Contains(t, runner.args[1], "# Plan")
	assert.Equal(t, "--dangerously-skip-permissions", runner.args[2])
}

func TestDispatch_PromptStripsFrontmatter(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{result: execx.Result{ExitCode: 0}}
	a := New(runner, nil, 0)

	plan := writePlan(t, "---\ntitle: x\nstatus: approved\n---\n\n# Body\n")
	a.Dispatch(context.Background(), plan, "/tmp/wt")

	assert.NotContains(t, runner.args[1], "title: x")
	assert.Contains(t, runner.args[1], "# Body")
}

func TestDispatch_NonzeroExit(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{result: execx.Result{ExitCode: 2, Stderr: "boom"}}
	a := New(runner, nil, 0)

	res := a.Dispatch(context.Background(), writePlan(t, "body"), "/tmp/wt")

	assert.False(t, res.Success)
	assert.Equal(t, ReasonExitNonzero, res.Reason)
	assert.Contains(t, res.Message, "exited with code 2")
	assert.Contains(t, res.Message, "boom")
}

func TestDispatch_StartFailure(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{err: errors.Join(execx.ErrNotStarted, errors.New("no such file"))}
	a := New(runner, []string{"missing-agent"}, 0)

	res := a.Dispatch(context.Background(), writePlan(t, "body"), "/tmp/wt")

	assert.False(t, res.Success)
	assert.Equal(t, ReasonStartFailed, res.Reason)
	assert.Contains(t, res.Message, "failed to start agent")
}

func TestDispatch_Timeout(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{delay: time.Second}
	a := New(runner, nil, 50*time.Millisecond)

	res := a.Dispatch(context.Background(), writePlan(t, "body"), "/tmp/wt")

	assert.False(t, res.Success)
	assert.Equal(t, ReasonTimeout, res.Reason)
	assert.Contains(t, res.Message, "timed out after")
}

func TestDispatch_UnreadablePlan(t *testing.T) {
	t.Parallel()

	a := New(&fakeRunner{}, nil, 0)
	res := a.Dispatch(context.Background(), filepath.Join(t.TempDir(), "missing.md"), "/tmp/wt")

	assert.False(t, res.Success)
	assert.Equal(t, ReasonStartFailed, res.Reason)
	assert.Contains(t, res.Message, "failed to read plan")
}

func TestStripFrontmatter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"no frontmatter", "# Plan\nbody", "# Plan\nbody"},
		{"with frontmatter", "---\na: 1\n---\nbody", "body"},
		{"blank line after block", "---\na: 1\n---\n\nbody\n", "body\n"},
		{"unterminated block left alone", "---\na: 1\nbody", "---\na: 1\nbody"},
		{"dashes mid-document untouched", "body\n---\nmore", "body\n---\nmore"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFrontmatter(tt.content))
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	a := New(&fakeRunner{}, nil, 0)
	assert.Equal(t, []string{"claude"}, a.command)
	assert.Equal(t, DefaultTimeout, a.timeout)
}
