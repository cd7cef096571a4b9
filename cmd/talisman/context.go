package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"talisman/internal/bundle"
	"talisman/internal/config"
	"talisman/internal/index"
	"talisman/internal/logging"
)

type commandContext struct {
	configFlag   *string
	patchFlag    *string
	urlFlag      *string
	localFlag    *string
	cacheFlag    *string
	cacheDirFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, patchFlag, urlFlag, localFlag, cacheFlag, cacheDirFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		patchFlag:    patchFlag,
		urlFlag:      urlFlag,
		localFlag:    localFlag,
		cacheFlag:    cacheFlag,
		cacheDirFlag: cacheDirFlag,
	}
}

// ensureConfig loads the configuration once and overlays command-line
// bundle and cache flags on top of it. A flag that names a bundle source
// replaces all configured sources so the result still has at most one.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}

		if patch := flagValue(c.patchFlag); patch != "" {
			cfg.Bundle = config.Bundle{Patch: patch}
		}
		if url := flagValue(c.urlFlag); url != "" {
			cfg.Bundle = config.Bundle{URL: url}
		}
		if local := flagValue(c.localFlag); local != "" {
			expanded, err := config.ExpandPath(local)
			if err != nil {
				c.configErr = fmt.Errorf("resolve --local path: %w", err)
				return
			}
			cfg.Bundle = config.Bundle{Local: expanded}
		}
		if mode := flagValue(c.cacheFlag); mode != "" {
			cfg.Cache.Mode = strings.ToLower(mode)
		}
		if dir := flagValue(c.cacheDirFlag); dir != "" {
			expanded, err := config.ExpandPath(dir)
			if err != nil {
				c.configErr = fmt.Errorf("resolve --cache-dir path: %w", err)
				return
			}
			cfg.Cache.Dir = expanded
		}

		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func flagValue(flag *string) string {
	if flag == nil {
		return ""
	}
	return strings.TrimSpace(*flag)
}

func (c *commandContext) newLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: os.Stderr,
	})
}

// openIndex builds the bundle filesystem chain chosen by configuration and
// returns an index over it. The closer releases the disk cache when one is
// in play and is a no-op otherwise.
func (c *commandContext) openIndex(cfg *config.Config) (*index.Index, func() error, error) {
	fs, closer, err := c.openBundleFs(cfg)
	if err != nil {
		return nil, nil, err
	}
	return index.New(fs), closer, nil
}

func (c *commandContext) openBundleFs(cfg *config.Config) (bundle.Fs, func() error, error) {
	var backend bundle.Fs
	switch {
	case cfg.Bundle.Local != "":
		backend = bundle.NewLocalFs(cfg.Bundle.Local)
	case cfg.Bundle.URL != "":
		fs, err := bundle.NewWebFs(cfg.Bundle.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("bundle mirror: %w", err)
		}
		backend = fs
	case cfg.Bundle.Patch != "":
		fs, err := bundle.NewCDNFs(cfg.Bundle.Patch)
		if err != nil {
			return nil, nil, fmt.Errorf("patch CDN: %w", err)
		}
		backend = fs
	default:
		return nil, nil, fmt.Errorf("no bundle source configured; set --patch, --url, or --local (or the [bundle] config section)")
	}

	noop := func() error { return nil }
	switch cfg.Cache.Mode {
	case "", "none":
		return backend, noop, nil
	case "memory":
		return bundle.NewCachedFs(backend, bundle.NewMemoryCache()), noop, nil
	case "disk":
		cache, err := bundle.OpenDiskCache(cfg.Cache.Dir, int64(cfg.Cache.MaxMiB)*1024*1024)
		if err != nil {
			return nil, nil, fmt.Errorf("open disk cache: %w", err)
		}
		return bundle.NewCachedFs(backend, cache), cache.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache mode %q", cfg.Cache.Mode)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
