package cmd

import (
	"fmt"

	"github.com/mpriess/planforge/internal/config"
	"github.com/mpriess/planforge/internal/disksync"
	"github.com/mpriess/planforge/internal/document"
	"github.com/mpriess/planforge/internal/storage"
)

// loadConfig loads the configuration from the default location.
func loadConfig() (*config.Config, *config.Paths, error) {
	paths := config.DefaultPaths()
	cfg, err := config.LoadFromFile(paths.ConfigFile())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, paths, nil
}

// openStore opens the SQLite store at the configured path, creating the
// state directory if necessary.
func openStore(cfg *config.Config, paths *config.Paths) (storage.Store, error) {
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	dbPath := cfg.Storage.DBPath
	if dbPath == "" {
		dbPath = paths.DatabaseFile()
	}
	return storage.NewSQLiteStore(dbPath)
}

// newEngine builds the disk sync engine from configuration.
func newEngine(cfg *config.Config) *disksync.Engine {
	return disksync.NewEngine(cfg.Project, document.NewCategorySet(cfg.Commands.Categories))
}
