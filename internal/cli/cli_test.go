package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shapehub/internal/config"
)

func TestConfigPrecedence(t *testing.T) {
	// We cannot easily run the root command in tests because serve blocks on
	// the HTTP server. Instead, we test the loadConfig and applyOverrides logic.

	t.Run("Defaults", func(t *testing.T) {
		globalOptions := &GlobalOptions{CfgFilePath: "nonexistent.toml"}

		cfg, err := loadConfig(globalOptions)
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
		assert.Equal(t, 8765, cfg.Server.Port)
		assert.Equal(t, "info", cfg.Logging.Level)
	})

	t.Run("Environment Overrides Defaults", func(t *testing.T) {
		globalOptions := &GlobalOptions{CfgFilePath: "nonexistent.toml"}

		os.Setenv("SHAPEHUB_LOG_LEVEL", "warn")
		os.Setenv("SHAPEHUB_LIBRARY_ROOT", "/tmp/shape-library")
		defer os.Unsetenv("SHAPEHUB_LOG_LEVEL")
		defer os.Unsetenv("SHAPEHUB_LIBRARY_ROOT")

		cfg, err := loadConfig(globalOptions)
		require.NoError(t, err)

		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.Equal(t, "/tmp/shape-library", cfg.Library.Root)
	})

	t.Run("Flags Override Environment", func(t *testing.T) {
		globalOptions := &GlobalOptions{
			CfgFilePath: "nonexistent.toml",
			LogLevel:    "debug",
		}

		os.Setenv("SHAPEHUB_LOG_LEVEL", "warn")
		defer os.Unsetenv("SHAPEHUB_LOG_LEVEL")

		cfg, err := loadConfig(globalOptions)
		require.NoError(t, err)

		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("Config File Loading", func(t *testing.T) {
		content := []byte(`
[server]
port = 6060
[logging]
level = "error"
`)
		tmpFile := filepath.Join(t.TempDir(), "test_config.toml")
		require.NoError(t, os.WriteFile(tmpFile, content, 0644))

		globalOptions := &GlobalOptions{CfgFilePath: tmpFile}

		cfg, err := loadConfig(globalOptions)
		require.NoError(t, err)

		assert.Equal(t, 6060, cfg.Server.Port)
		assert.Equal(t, "error", cfg.Logging.Level)
	})

	t.Run("Config Path From Environment", func(t *testing.T) {
		content := []byte(`
[server]
port = 6061
`)
		tmpFile := filepath.Join(t.TempDir(), "env_config.toml")
		require.NoError(t, os.WriteFile(tmpFile, content, 0644))

		os.Setenv("SHAPEHUB_CONFIG_PATH", tmpFile)
		defer os.Unsetenv("SHAPEHUB_CONFIG_PATH")

		// The env path only applies while the flag still holds its default.
		globalOptions := &GlobalOptions{CfgFilePath: "config.toml"}

		cfg, err := loadConfig(globalOptions)
		require.NoError(t, err)

		assert.Equal(t, 6061, cfg.Server.Port)
	})

	t.Run("Command Overrides Win", func(t *testing.T) {
		globalOptions := &GlobalOptions{CfgFilePath: "nonexistent.toml"}

		serveOptions := &ServeOptions{Port: 7070, MaxUpload: "4MB"}

		cfg, err := loadConfig(globalOptions, serveOptions.applyTo)
		require.NoError(t, err)

		assert.Equal(t, 7070, cfg.Server.Port)
		assert.Equal(t, "4MB", cfg.Server.MaxUploadSize)
		assert.Equal(t, int64(4194304), cfg.MaxUploadSizeBytes)
	})
}

func TestServeOptions_EnvVars(t *testing.T) {
	os.Setenv("SHAPEHUB_PORT", "9090")
	os.Setenv("SHAPEHUB_AUDIT_ENABLED", "true")
	os.Setenv("SHAPEHUB_SEED_FILE", "seed.toml")
	defer os.Unsetenv("SHAPEHUB_PORT")
	defer os.Unsetenv("SHAPEHUB_AUDIT_ENABLED")
	defer os.Unsetenv("SHAPEHUB_SEED_FILE")

	options := &ServeOptions{}
	options.registerEnvVars(&cobra.Command{})

	assert.Equal(t, 9090, options.Port)
	assert.True(t, options.AuditEnabled)
	assert.Equal(t, "seed.toml", options.SeedFile)
}

func TestServeOptions_FlagsBeatEnvVars(t *testing.T) {
	os.Setenv("SHAPEHUB_PORT", "9090")
	defer os.Unsetenv("SHAPEHUB_PORT")

	// A value bound by flag parsing is already set when the env fallback runs.
	options := &ServeOptions{Port: 7070}
	options.registerEnvVars(&cobra.Command{})

	assert.Equal(t, 7070, options.Port)
}

func TestApplyOverrides(t *testing.T) {
	// Direct test of the applyOverrides logic
	c := &config.Config{
		Server:  config.ServerConfig{Port: 8080},
		Logging: config.LoggingConfig{Level: "info"},
	}

	globalOptions := &GlobalOptions{
		LogLevel:    "debug",
		LibraryRoot: "/somewhere/else",
	}

	applyOverrides(c, globalOptions)

	assert.Equal(t, "debug", c.Logging.Level)
	assert.Equal(t, "/somewhere/else", c.Library.Root)
	assert.Equal(t, 8080, c.Server.Port)
}

func TestNewRootCMD_Commands(t *testing.T) {
	rootCMD := NewRootCMD()

	names := make([]string, 0)
	for _, cmd := range rootCMD.Commands() {
		names = append(names, cmd.Name())
	}

	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "repair")
	assert.Contains(t, names, "seed")
	assert.Contains(t, names, "export")
	assert.Contains(t, names, "import")
}
