package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), dataDir)
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, 5000, cfg.Database.BusyTimeout)
	assert.False(t, cfg.RemoteEnabled())
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Storage, cfg.Storage)
}

func TestLoad_OverlaysYAML(t *testing.T) {
	path := writeConfig(t, `
storage:
  driver: json
  file: list.json
database:
  busy_timeout: 250
remote:
  url: https://files.example.com
  remember_me: true
`)
	dataDir := t.TempDir()

	cfg, err := Load(path, dataDir)
	require.NoError(t, err)

	assert.Equal(t, DriverJSON, cfg.Storage.Driver)
	assert.Equal(t, filepath.Join(dataDir, "list.json"), cfg.SnapshotFile())
	assert.Equal(t, 250, cfg.Database.BusyTimeout)
	assert.Equal(t, 4, cfg.Database.MaxOpenConns, "unset keys keep defaults")
	assert.Equal(t, "https://files.example.com", cfg.Remote.URL)
	assert.True(t, cfg.Remote.RememberMe)
	assert.Equal(t, dataDir, cfg.DataDir, "data dir is never read from yaml")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "storage: [unterminated")

	_, err := Load(path, t.TempDir())
	assert.ErrorContains(t, err, "parse config file")
}

func TestLoad_InvalidDriver(t *testing.T) {
	path := writeConfig(t, "storage:\n  driver: postgres\n")

	_, err := Load(path, t.TempDir())
	assert.ErrorContains(t, err, "storage.driver")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty data dir", mutate: func(c *Config) { c.DataDir = "" }, wantErr: "data directory"},
		{name: "unknown theme", mutate: func(c *Config) { c.UI.Theme = "solarized" }, wantErr: "ui.theme"},
		{name: "bad driver", mutate: func(c *Config) { c.Storage.Driver = "redis" }, wantErr: "storage.driver"},
		{name: "no connections", mutate: func(c *Config) { c.Database.MaxOpenConns = 0 }, wantErr: "max_open_conns"},
		{name: "negative idle", mutate: func(c *Config) { c.Database.MaxIdleConns = -1 }, wantErr: "max_idle_conns"},
		{name: "negative busy timeout", mutate: func(c *Config) { c.Database.BusyTimeout = -5 }, wantErr: "busy_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.DataDir = t.TempDir()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSnapshotFile_Absolute(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/data"
	cfg.Storage.File = "/elsewhere/state.json"

	assert.Equal(t, "/elsewhere/state.json", cfg.SnapshotFile())
}
