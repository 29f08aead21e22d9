package config

import (
	"os"
	"path/filepath"
)

// Paths holds the filesystem locations planforge uses for its own state.
// Everything lives under one dot-directory in the user's home.
type Paths struct {
	// BaseDir is the planforge state directory (~/.planforge)
	BaseDir string
}

// DefaultPaths returns the default paths rooted at ~/.planforge.
// PLANFORGE_HOME overrides the base directory.
func DefaultPaths() *Paths {
	if base := os.Getenv("PLANFORGE_HOME"); base != "" {
		return &Paths{BaseDir: base}
	}
	return &Paths{BaseDir: filepath.Join(homeDir(), ".planforge")}
}

// ConfigFile returns the path to the main configuration file.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir, "config.yaml")
}

// DatabaseFile returns the path to the SQLite database.
func (p *Paths) DatabaseFile() string {
	return filepath.Join(p.BaseDir, "state.db")
}

// EnsureDirectories creates all necessary directories.
func (p *Paths) EnsureDirectories() error {
	return os.MkdirAll(p.BaseDir, 0755)
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}
