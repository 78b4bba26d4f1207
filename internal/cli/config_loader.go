// filepath: internal/cli/config_loader.go
package cli

import (
	"fmt"
	"os"

	"github.com/patrickmn/go-cache"

	"shapehub/internal/config"
	"shapehub/internal/library"
	"shapehub/internal/logging"
	"shapehub/internal/repository"
)

// resolveConfigPath returns the config file path to use. The environment
// variable only applies while the flag still holds its default.
func resolveConfigPath(globalOptions *GlobalOptions) string {
	cfgPath := globalOptions.CfgFilePath
	if envPath := os.Getenv("SHAPEHUB_CONFIG_PATH"); envPath != "" && cfgPath == "config.toml" {
		cfgPath = envPath
	}
	return cfgPath
}

// loadConfig loads the configuration file and layers the overrides on top:
// file values first, then environment variables, then CLI flags, with
// command-specific flag overrides applied last.
func loadConfig(globalOptions *GlobalOptions, overrides ...func(*config.Config)) (*config.Config, error) {
	cfgPath := resolveConfigPath(globalOptions)

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		if os.IsNotExist(err) {
			// A missing file is fine, defaults and overrides carry it.
			cfg = &config.Config{}
		} else {
			return nil, fmt.Errorf("failed to load configuration from %s: %w", cfgPath, err)
		}
	}

	// Apply overrides (env vars and global CLI flags)
	applyOverrides(cfg, globalOptions)

	// Command-specific flags take precedence over everything
	for _, override := range overrides {
		override(cfg)
	}

	applyDefaults(cfg)

	// Validate and parse sizes/intervals
	if err := cfg.ParseAndValidate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	// Initialize logging
	logging.Init(cfg.Logging.Level)

	return cfg, nil
}

func applyOverrides(c *config.Config, globalOptions *GlobalOptions) {
	getEnv := func(key string) string { return os.Getenv(key) }

	// --- Environment Variables ---
	if v := getEnv("SHAPEHUB_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := getEnv("SHAPEHUB_LIBRARY_ROOT"); v != "" {
		c.Library.Root = v
	}

	// --- CLI Flags ---
	if globalOptions.LogLevel != "" {
		c.Logging.Level = globalOptions.LogLevel
	}
	if globalOptions.LibraryRoot != "" {
		c.Library.Root = globalOptions.LibraryRoot
	}
}

func applyDefaults(c *config.Config) {
	// The backend serves a single local user; never bind beyond loopback
	// unless the config file says so explicitly.
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8765
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// openLibrary resolves the configured library root, makes sure the directory
// skeleton exists and opens the repository over it.
func openLibrary(cfg *config.Config) (*library.Paths, *repository.Repository, error) {
	paths, err := library.NewPaths(cfg.Library.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve library root: %w", err)
	}
	if err := paths.EnsureLayout(); err != nil {
		return nil, nil, err
	}

	var c *cache.Cache
	if !cfg.Cache.Disabled {
		c = cache.New(cfg.CacheTTL, cfg.CacheCleanupInterval)
	}

	return paths, repository.NewRepository(paths, c), nil
}
