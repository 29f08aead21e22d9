package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "plans", cfg.Plans.Dir)
	assert.Equal(t, "commands", cfg.Commands.Dir)
	assert.Equal(t, "claude", cfg.Agent.Command)
	assert.Equal(t, 10, cfg.Agent.TimeoutMins)
	assert.False(t, cfg.AI.Enabled)
	assert.Equal(t, "auto", cfg.AI.Provider)
	assert.Equal(t, 24, cfg.AI.CacheTTLHours)
}

func TestLoadFromFile_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
project: myapp
agent:
  command: "claude --model opus"
`), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "myapp", cfg.Project)
	assert.Equal(t, "claude --model opus", cfg.Agent.Command)
	// Untouched sections keep their defaults.
	assert.Equal(t, "plans", cfg.Plans.Dir)
	assert.Equal(t, []string{"git", "testing", "refactoring"}, cfg.Commands.Categories)
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agent: [unclosed"), 0644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadFromFile_InvalidProviderRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ai:
  provider: bedrock
`), 0644))

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ai.provider")
}

func TestSaveAndReload_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Project = "myapp"
	cfg.Commands.Categories = []string{"git"}
	cfg.Agent.TimeoutMins = 5
	require.NoError(t, cfg.SaveToFile(path))

	reloaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "myapp", reloaded.Project)
	assert.Equal(t, []string{"git"}, reloaded.Commands.Categories)
	assert.Equal(t, 5, reloaded.Agent.TimeoutMins)
}

func TestAgentCommand_ShellQuoting(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Agent.Command = `claude --append-system-prompt "be brief"`

	args, err := cfg.AgentCommand()
	require.NoError(t, err)
	assert.Equal(t, []string{"claude", "--append-system-prompt", "be brief"}, args)
}

func TestAgentCommand_EmptyRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Agent.Command = "   "

	_, err := cfg.AgentCommand()
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PLANFORGE_PROJECT", "envproj")
	t.Setenv("PLANFORGE_AI_ENABLED", "true")
	t.Setenv("PLANFORGE_AI_PROVIDER", "openai")

	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "envproj", cfg.Project)
	assert.True(t, cfg.AI.Enabled)
	assert.Equal(t, "openai", cfg.AI.Provider)
}

func TestEnvOverrides_InvalidProviderIgnored(t *testing.T) {
	t.Setenv("PLANFORGE_AI_PROVIDER", "bogus")

	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "auto", cfg.AI.Provider)
}

func TestGetSet_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Set("project", "myapp"))
	require.NoError(t, cfg.Set("ai.enabled", "true"))
	require.NoError(t, cfg.Set("commands.categories", "git, docs"))
	require.NoError(t, cfg.Set("agent.timeout_mins", "20"))

	v, err := cfg.Get("project")
	require.NoError(t, err)
	assert.Equal(t, "myapp", v)

	v, err = cfg.Get("ai.enabled")
	require.NoError(t, err)
	assert.Equal(t, "true", v)

	v, err = cfg.Get("commands.categories")
	require.NoError(t, err)
	assert.Equal(t, "git,docs", v)

	assert.Equal(t, 20, cfg.Agent.TimeoutMins)
}

func TestSet_Rejections(t *testing.T) {
	cfg := DefaultConfig()

	assert.Error(t, cfg.Set("ai.provider", "bogus"))
	assert.Error(t, cfg.Set("agent.timeout_mins", "-1"))
	assert.Error(t, cfg.Set("plans.dir", ""))
	assert.Error(t, cfg.Set("nosuch.key", "x"))
	assert.Error(t, cfg.Set("toolong.key.path", "x"))

	_, err := cfg.Get("nosuch.key")
	assert.Error(t, err)
}

func TestDefaultPaths_HomeOverride(t *testing.T) {
	t.Setenv("PLANFORGE_HOME", "/tmp/pf-test")

	paths := DefaultPaths()
	assert.Equal(t, "/tmp/pf-test", paths.BaseDir)
	assert.Equal(t, filepath.Join("/tmp/pf-test", "config.yaml"), paths.ConfigFile())
	assert.Equal(t, filepath.Join("/tmp/pf-test", "state.db"), paths.DatabaseFile())
}
