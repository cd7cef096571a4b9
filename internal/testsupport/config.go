// Package testsupport provides fixtures shared by tests across packages.
package testsupport

import (
	"path/filepath"
	"testing"

	"talisman/internal/config"
)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Cache.Dir = filepath.Join(base, "cache")
	cfg.Output.Dir = filepath.Join(base, "out")
	return &cfg
}
