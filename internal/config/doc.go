// Package config loads, normalizes, and validates the talisman TOML
// configuration.
//
// Load resolves the config path (explicit flag, then the user config dir,
// then a project-local talisman.toml), overlays the file onto Default(), and
// returns a fully expanded configuration. Flags may still override individual
// values after loading; the CLI owns that precedence.
package config
