package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFillsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 9000\n"))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "llama3:8b", cfg.LLM.Model)
	assert.Equal(t, 60*time.Second, cfg.LLMTimeout())
	assert.Equal(t, []string{"vessel_001", "vessel_002"}, cfg.Generator.Vessels)
	assert.False(t, cfg.ArchiveEnabled())
}

func TestLoadMySQLDriverDefaultsPort(t *testing.T) {
	cfg, err := Load(writeConfig(t, "database:\n  driver: mysql\n"))
	require.NoError(t, err)

	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t,
		"demo:demo_password@tcp(localhost:3306)/maritime?parseTime=true&charset=utf8mb4&loc=UTC",
		cfg.MySQLDSN())
}

func TestPostgresDSN(t *testing.T) {
	cfg, err := Load(writeConfig(t, "database:\n  host: db.internal\n  password: secret\n"))
	require.NoError(t, err)

	assert.Equal(t,
		"host=db.internal port=5432 user=demo password=secret dbname=maritime sslmode=disable",
		cfg.PostgresDSN())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
