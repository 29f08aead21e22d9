// Package config provides configuration management for planforge.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"
)

// Config represents the planforge configuration.
type Config struct {
	Project  string         `yaml:"project"`
	Plans    PlansConfig    `yaml:"plans"`
	Commands CommandsConfig `yaml:"commands"`
	Agent    AgentConfig    `yaml:"agent"`
	AI       AIConfig       `yaml:"ai"`
	Storage  StorageConfig  `yaml:"storage"`
}

// PlansConfig holds plan directory settings.
type PlansConfig struct {
	Dir string `yaml:"dir"` // Root of the drafts/approved/completed tree
}

// CommandsConfig holds command directory settings.
type CommandsConfig struct {
	Dir        string   `yaml:"dir"`        // Root of the category subdirectories
	Categories []string `yaml:"categories"` // Allowed category subdirectory names
}

// AgentConfig holds coding-agent dispatch settings.
type AgentConfig struct {
	Command     string `yaml:"command"`      // Agent command line, shell-quoted
	TimeoutMins int    `yaml:"timeout_mins"` // Per-dispatch timeout (0 = default)
}

// AIConfig holds AI-related settings.
type AIConfig struct {
	Enabled       bool   `yaml:"enabled"`         // Must opt-in to AI features
	Provider      string `yaml:"provider"`        // anthropic, openai, gemini, xai or auto
	Model         string `yaml:"model"`           // Provider-specific model
	CacheTTLHours int    `yaml:"cache_ttl_hours"` // AI response cache lifetime
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `yaml:"db_path"` // SQLite path (overrides default)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Project: "",
		Plans: PlansConfig{
			Dir: "plans",
		},
		Commands: CommandsConfig{
			Dir:        "commands",
			Categories: []string{"git", "testing", "refactoring"},
		},
		Agent: AgentConfig{
			Command:     "claude",
			TimeoutMins: 10,
		},
		AI: AIConfig{
			Enabled:       false, // Must opt-in
			Provider:      "auto",
			Model:         "",
			CacheTTLHours: 24,
		},
		Storage: StorageConfig{
			DBPath: "", // Use default from paths
		},
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	paths := DefaultPaths()
	return LoadFromFile(paths.ConfigFile())
}

// LoadFromFile loads configuration from the specified file.
// If the file doesn't exist, returns default configuration.
// Environment variable overrides are applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil // Return defaults if file doesn't exist
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	paths := DefaultPaths()
	return c.SaveToFile(paths.ConfigFile())
}

// SaveToFile saves the configuration to the specified file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// AgentCommand parses the configured agent command line into argv form.
func (c *Config) AgentCommand() ([]string, error) {
	args, err := shlex.Split(c.Agent.Command)
	if err != nil {
		return nil, fmt.Errorf("invalid agent.command: %w", err)
	}
	if len(args) == 0 {
		return nil, errors.New("agent.command is empty")
	}
	return args, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Plans.Dir == "" {
		return errors.New("plans.dir must not be empty")
	}

	if c.Commands.Dir == "" {
		return errors.New("commands.dir must not be empty")
	}

	if _, err := c.AgentCommand(); err != nil {
		return err
	}

	if c.Agent.TimeoutMins < 0 {
		return errors.New("agent.timeout_mins must be >= 0")
	}

	if !isValidProvider(c.AI.Provider) {
		return fmt.Errorf("ai.provider must be anthropic, openai, gemini, xai, or auto (got: %s)", c.AI.Provider)
	}

	if c.AI.CacheTTLHours < 0 {
		return errors.New("ai.cache_ttl_hours must be >= 0")
	}

	return nil
}

func isValidProvider(provider string) bool {
	switch provider {
	case "anthropic", "openai", "gemini", "xai", "auto":
		return true
	default:
		return false
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
// Environment variables override config file values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("PLANFORGE_PROJECT"); v != "" {
		c.Project = v
	}
	if v := os.Getenv("PLANFORGE_DB_PATH"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("PLANFORGE_AGENT_COMMAND"); v != "" {
		c.Agent.Command = v
	}
	if v := os.Getenv("PLANFORGE_AI_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.AI.Enabled = b
		}
	}
	if v := os.Getenv("PLANFORGE_AI_PROVIDER"); v != "" {
		if isValidProvider(v) {
			c.AI.Provider = v
		}
	}
}

// Get retrieves a configuration value by dot-separated key.
// For example: "agent.command" or "ai.enabled"
func (c *Config) Get(key string) (string, error) {
	parts := strings.Split(key, ".")
	if len(parts) == 1 && parts[0] == "project" {
		return c.Project, nil
	}
	if len(parts) != 2 {
		return "", errors.New("key must be 'project' or in format 'section.key'")
	}

	section, field := parts[0], parts[1]

	switch section {
	case "plans":
		if field == "dir" {
			return c.Plans.Dir, nil
		}
	case "commands":
		switch field {
		case "dir":
			return c.Commands.Dir, nil
		case "categories":
			return strings.Join(c.Commands.Categories, ","), nil
		}
	case "agent":
		switch field {
		case "command":
			return c.Agent.Command, nil
		case "timeout_mins":
			return strconv.Itoa(c.Agent.TimeoutMins), nil
		}
	case "ai":
		switch field {
		case "enabled":
			return strconv.FormatBool(c.AI.Enabled), nil
		case "provider":
			return c.AI.Provider, nil
		case "model":
			return c.AI.Model, nil
		case "cache_ttl_hours":
			return strconv.Itoa(c.AI.CacheTTLHours), nil
		}
	case "storage":
		if field == "db_path" {
			return c.Storage.DBPath, nil
		}
	default:
		return "", fmt.Errorf("unknown section: %s", section)
	}
	return "", fmt.Errorf("unknown field: %s", key)
}

// Set sets a configuration value by dot-separated key.
func (c *Config) Set(key, value string) error {
	parts := strings.Split(key, ".")
	if len(parts) == 1 && parts[0] == "project" {
		c.Project = value
		return nil
	}
	if len(parts) != 2 {
		return errors.New("key must be 'project' or in format 'section.key'")
	}

	section, field := parts[0], parts[1]

	switch section {
	case "plans":
		if field == "dir" {
			if value == "" {
				return errors.New("plans.dir must not be empty")
			}
			c.Plans.Dir = value
			return nil
		}
	case "commands":
		switch field {
		case "dir":
			if value == "" {
				return errors.New("commands.dir must not be empty")
			}
			c.Commands.Dir = value
			return nil
		case "categories":
			var categories []string
			for _, cat := range strings.Split(value, ",") {
				if cat = strings.TrimSpace(cat); cat != "" {
					categories = append(categories, cat)
				}
			}
			c.Commands.Categories = categories
			return nil
		}
	case "agent":
		switch field {
		case "command":
			if _, err := shlex.Split(value); err != nil {
				return fmt.Errorf("invalid value for agent.command: %w", err)
			}
			c.Agent.Command = value
			return nil
		case "timeout_mins":
			v, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid value for timeout_mins: %w", err)
			}
			if v < 0 {
				return errors.New("invalid timeout_mins: must be non-negative")
			}
			c.Agent.TimeoutMins = v
			return nil
		}
	case "ai":
		switch field {
		case "enabled":
			v, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid value for enabled: %w", err)
			}
			c.AI.Enabled = v
			return nil
		case "provider":
			if !isValidProvider(value) {
				return fmt.Errorf("invalid provider: %s (must be anthropic, openai, gemini, xai, or auto)", value)
			}
			c.AI.Provider = value
			return nil
		case "model":
			c.AI.Model = value
			return nil
		case "cache_ttl_hours":
			v, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid value for cache_ttl_hours: %w", err)
			}
			if v < 0 {
				return errors.New("invalid cache_ttl_hours: must be non-negative")
			}
			c.AI.CacheTTLHours = v
			return nil
		}
	case "storage":
		if field == "db_path" {
			c.Storage.DBPath = value
			return nil
		}
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
	return fmt.Errorf("unknown field: %s", key)
}

// ListKeys returns user-facing configuration keys.
func ListKeys() []string {
	return []string{
		"project",
		"plans.dir",
		"commands.dir",
		"commands.categories",
		"agent.command",
		"agent.timeout_mins",
		"ai.enabled",
		"ai.provider",
		"ai.model",
		"ai.cache_ttl_hours",
		"storage.db_path",
	}
}
