package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBundle(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateBundle() error {
	set := 0
	for _, v := range []string{c.Bundle.Patch, c.Bundle.URL, c.Bundle.Local} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return errors.New("bundle: set at most one of patch, url, local")
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Mode {
	case "none", "memory", "disk":
	default:
		return fmt.Errorf("cache.mode: unsupported value %q (expected none, memory, or disk)", c.Cache.Mode)
	}
	if c.Cache.Mode == "disk" && c.Cache.Dir == "" {
		return errors.New("cache.dir must be set when cache.mode is disk")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (expected console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
