package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rethinking.yaml")

	require.NoError(t, os.WriteFile(path, []byte("interpreter: docker exec -i r R --no-echo\ntimeout: 30s\nseed: 11\nworkers: 2\n"), 0o644))

	t.Setenv("RETHINKING_LOG_LEVEL", "debug")
	t.Setenv("RETHINKING_SEED", "12")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "docker exec -i r R --no-echo", cfg.Interpreter)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, uint64(12), cfg.Seed)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "d", cfg.Variable)
}

func TestLoadFromWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rethinking.yaml"), []byte("variable: howell\n"), 0o644))
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "howell", cfg.Variable)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "rethinking.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: -1\n"), 0o644))

	_, err = Load(path)
	assert.ErrorContains(t, err, "workers")
}
