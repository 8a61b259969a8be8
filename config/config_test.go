package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(envPath, "")
	t.Setenv(envLogLevel, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	t.Setenv(envPath, "")
	t.Setenv(envLogLevel, "")

	path := filepath.Join(t.TempDir(), "filex.yaml")
	err := os.WriteFile(path, []byte("path: data/app.db\nexportDir: out\nlog:\n  level: debug\n"), 0o644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "data/app.db", cfg.Path)
	assert.Equal(t, "out", cfg.ExportDir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv(envPath, "env.db")
	t.Setenv(envLogLevel, "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Log.Format = "xml"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Path = ""
	assert.Error(t, cfg.Validate())
}

func TestLogger(t *testing.T) {
	logger, err := Default().Logger()
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
