package main

import (
	"inkstone/internal/config"
	"inkstone/internal/index"
	"inkstone/internal/intel"
	"inkstone/internal/registry"
	"inkstone/internal/space"
	"inkstone/internal/tasks"
)

// withManager wires the registry, index, task runner, and analyzer
// into one Manager, runs fn, and closes the index afterwards.
func withManager(cfg *config.Config, fn func(m *space.Manager) error) error {
	reg, err := registry.Open(cfg.RegistryPath)
	if err != nil {
		return err
	}

	ix, err := index.Open(cfg.DBPath, cfg.IndexedAttributes)
	if err != nil {
		return err
	}
	defer ix.Close()

	analyzer, err := intel.FromConfig(cfg.Analyzer)
	if err != nil {
		return err
	}

	return fn(space.NewManager(reg, ix, tasks.NewRunner(), analyzer))
}
