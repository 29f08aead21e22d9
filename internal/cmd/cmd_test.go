package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func setupHome(t *testing.T) {
	t.Helper()
	t.Setenv("PLANFORGE_HOME", t.TempDir())
	t.Setenv("PLANFORGE_PROJECT", "myapp")
}

func TestCommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"load", "flatten", "list", "history", "rm", "worktree", "ask", "config", "version"} {
		assert.True(t, names[want], "command %s not registered", want)
	}
}

func TestLoadListFlatten_EndToEnd(t *testing.T) {
	setupHome(t)

	plansDir := t.TempDir()
	approved := filepath.Join(plansDir, "approved")
	require.NoError(t, os.MkdirAll(approved, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(approved, "add_feature.md"),
		[]byte("# Add feature\nsteps"), 0644))

	require.NoError(t, execute(t, "load", "--plans-only", "--plans-dir", plansDir))

	// Reloading unchanged content is a clean no-op.
	require.NoError(t, execute(t, "load", "--plans-only", "--plans-dir", plansDir))

	require.NoError(t, execute(t, "list", "--kind", "plan"))

	require.NoError(t, execute(t, "history", "myapp_approved_add_feature.md"))

	outDir := t.TempDir()
	require.NoError(t, execute(t, "flatten", "--plans-dir", outDir, "--commands-dir", t.TempDir()))

	content, err := os.ReadFile(filepath.Join(outDir, "approved", "add_feature.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Add feature\nsteps", string(content))
}

func TestRm_DeletesStoredDocument(t *testing.T) {
	setupHome(t)

	plansDir := t.TempDir()
	drafts := filepath.Join(plansDir, "drafts")
	require.NoError(t, os.MkdirAll(drafts, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(drafts, "old_idea.md"), []byte("x"), 0644))

	require.NoError(t, execute(t, "load", "--plans-only", "--plans-dir", plansDir))
	require.NoError(t, execute(t, "rm", "myapp_draft_old_idea.md"))

	// Gone now.
	require.Error(t, execute(t, "rm", "myapp_draft_old_idea.md"))
}

func TestHistory_UnknownDocument(t *testing.T) {
	setupHome(t)
	require.Error(t, execute(t, "history", "nope.md"))
}

func TestList_RejectsUnknownKind(t *testing.T) {
	setupHome(t)
	require.Error(t, execute(t, "list", "--kind", "recipe"))
}

func TestAsk_RequiresOptIn(t *testing.T) {
	setupHome(t)

	err := execute(t, "ask", "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI features are disabled")
}

func TestConfig_SetAndGet(t *testing.T) {
	setupHome(t)

	require.NoError(t, execute(t, "config", "ai.enabled", "true"))
	require.NoError(t, execute(t, "config", "ai.enabled"))
	require.Error(t, execute(t, "config", "ai.provider", "bogus"))
}
