package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5*time.Second, cfg.BusyTimeout())
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cfg.yaml", `
db: /var/lib/tarefas.db
addr: ":8080"
log_level: debug
busy_timeout_ms: 250
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/tarefas.db", cfg.DBPath)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, 250*time.Millisecond, cfg.BusyTimeout())
	assert.Equal(t, DriverSQLite, cfg.Driver)
	assert.Equal(t, path, cfg.File)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cfg.toml", `
driver = "postgres"
pg_dsn = "postgres://localhost/tarefas?sslmode=disable"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Driver)
	assert.Equal(t, "postgres://localhost/tarefas?sslmode=disable", cfg.PgDSN)
	require.NoError(t, cfg.Validate())
}

func TestLoad_ProjectFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tarefas.toml", `addr = ":9000"`)
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "tarefas.toml", cfg.File)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "cfg.yaml", "db: from-file.db\n")
	t.Setenv(EnvDB, "from-env.db")
	t.Setenv(EnvBusyTimeoutMS, "100")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.DBPath)
	assert.Equal(t, 100, cfg.BusyTimeoutMS)
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, dir, "cfg.json", `{}`))
	assert.Error(t, err)

	_, err = Load(writeFile(t, dir, "broken.toml", `addr = `))
	assert.Error(t, err)

	t.Setenv(EnvBusyTimeoutMS, "soon")
	_, err = Load(writeFile(t, dir, "ok.yaml", "addr: ':1'\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Driver = "mysql" }},
		{"empty sqlite path", func(c *Config) { c.DBPath = "" }},
		{"postgres without dsn", func(c *Config) { c.Driver = DriverPostgres }},
		{"zero busy timeout", func(c *Config) { c.BusyTimeoutMS = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
