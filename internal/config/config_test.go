package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, cfg *Config) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))
	return path
}

func TestRoundTrip(t *testing.T) {
	cfg := Default("Test Org")
	cfg.Organization.ID = 3
	cfg.AMQP.Enabled = true

	path := writeConfig(t, cfg)
	got, err := Load(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, int64(3), got.Organization.ID)
	assert.Equal(t, "Test Org", got.Organization.Name)
	assert.Equal(t, int64(1), got.User.ID)
	assert.Equal(t, filepath.Join(dir, "finanza.db"), got.Database.Path)
	assert.Equal(t, "info", got.Logging.Level)
	assert.Equal(t, "console", got.Logging.Format)
	assert.True(t, got.AMQP.Enabled)
	assert.Equal(t, "ledger_events", got.AMQP.Queue)
	assert.Equal(t, filepath.Join(dir, "import"), got.Import.Dir)
	assert.Equal(t, filepath.Join(dir, "logs"), got.Audit.Dir)
}

func TestDefaults(t *testing.T) {
	cfg := Default("My Company")

	assert.Equal(t, "My Company", cfg.Organization.Name)
	assert.Zero(t, cfg.Organization.ID)
	assert.Equal(t, "finanza.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.AMQP.Enabled)
	assert.Equal(t, "finanza", cfg.AMQP.Exchange)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
}

func TestLoad_EnvOverride(t *testing.T) {
	cfg := Default("Env Org")
	cfg.Organization.ID = 1
	path := writeConfig(t, cfg)

	t.Setenv("FINANZA_LOGGING_LEVEL", "debug")
	t.Setenv("FINANZA_DATABASE_PATH", "/var/lib/finanza/ledger.db")

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", got.Logging.Level)
	assert.Equal(t, "/var/lib/finanza/ledger.db", got.Database.Path)
}

func TestLoad_DotEnv(t *testing.T) {
	cfg := Default("Dotenv Org")
	cfg.Organization.ID = 1
	path := writeConfig(t, cfg)

	// godotenv never overrides variables that are already set; make sure the
	// test starts from an unset variable and cleans up afterwards.
	t.Setenv("FINANZA_LOGGING_FORMAT", "")
	require.NoError(t, os.Unsetenv("FINANZA_LOGGING_FORMAT"))

	envFile := filepath.Join(filepath.Dir(path), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("FINANZA_LOGGING_FORMAT=json\n"), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", got.Logging.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing org", func(c *Config) { c.Organization.ID = 0 }, "organization.id"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"amqp without url", func(c *Config) { c.AMQP.Enabled = true; c.AMQP.URL = "" }, "amqp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("Org")
			cfg.Organization.ID = 1
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default("Test Org")
	path := writeConfig(t, cfg)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: Test Org")
	assert.Contains(t, contents, "path: finanza.db")
	assert.Contains(t, contents, "queue: ledger_events")
}
