// filepath: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"shapehub/internal/shared"
)

// Config holds the application's configuration.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Library     LibraryConfig     `toml:"library"`
	Cache       CacheConfig       `toml:"cache"`
	Maintenance MaintenanceConfig `toml:"maintenance"`
	Logging     LoggingConfig     `toml:"logging"`

	// Runtime computed values, never read from the file.
	MaxUploadSizeBytes   int64         `toml:"-"`
	CacheTTL             time.Duration `toml:"-"`
	CacheCleanupInterval time.Duration `toml:"-"`
	SweepInterval        time.Duration `toml:"-"`
}

// ServerConfig holds the HTTP listener configuration.
type ServerConfig struct {
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	MaxUploadSize string `toml:"max_upload_size"` // e.g. "8MB", "512KB"
}

// LibraryConfig locates the shape library on disk.
type LibraryConfig struct {
	// Root is the library directory. Empty selects the per-user default
	// location under the OS config directory.
	Root string `toml:"root"`
}

// CacheConfig holds settings for the in-memory shape-file cache.
// The cache is on unless explicitly disabled.
type CacheConfig struct {
	Disabled        bool   `toml:"disabled"`
	TTL             string `toml:"ttl"`              // e.g. "5m"; "0" keeps entries until evicted
	CleanupInterval string `toml:"cleanup_interval"` // e.g. "10m"
}

// MaintenanceConfig holds settings for the background integrity sweep.
type MaintenanceConfig struct {
	SweepInterval string `toml:"sweep_interval"` // e.g. "1h"; "0" disables the sweep
	AutoRepair    bool   `toml:"auto_repair"`
}

// LoggingConfig holds the logging configuration.
type LoggingConfig struct {
	Level        string `toml:"level"`
	AuditEnabled bool   `toml:"audit_enabled"`
}

// LoadConfig loads the configuration from a TOML file.
func LoadConfig(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveConfig writes the current configuration back to a TOML file.
// The serve command uses it to persist a starter configuration on first run.
func SaveConfig(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file for saving: %w", err)
	}
	defer f.Close()
	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config to file: %w", err)
	}
	return nil
}

// ParseAndValidate processes configuration strings into runtime values.
// It sets defaults if values are missing and parses human-readable sizes
// and intervals.
func (c *Config) ParseAndValidate() error {
	if c.Server.MaxUploadSize == "" {
		c.Server.MaxUploadSize = "8MB"
	}
	sizeBytes, err := shared.ParseSize(c.Server.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	c.MaxUploadSizeBytes = sizeBytes

	if c.Cache.TTL == "" {
		c.Cache.TTL = "5m"
	}
	ttl, err := shared.ParseDuration(c.Cache.TTL)
	if err != nil {
		return fmt.Errorf("invalid cache ttl: %w", err)
	}
	c.CacheTTL = ttl

	if c.Cache.CleanupInterval == "" {
		c.Cache.CleanupInterval = "10m"
	}
	cleanup, err := shared.ParseDuration(c.Cache.CleanupInterval)
	if err != nil {
		return fmt.Errorf("invalid cache cleanup_interval: %w", err)
	}
	c.CacheCleanupInterval = cleanup

	if c.Maintenance.SweepInterval == "" {
		c.Maintenance.SweepInterval = "1h"
	}
	sweep, err := shared.ParseDuration(c.Maintenance.SweepInterval)
	if err != nil {
		return fmt.Errorf("invalid sweep_interval: %w", err)
	}
	c.SweepInterval = sweep

	return nil
}
