package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/injgraph/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
root = "example.com/app/services"
keep_harness = true
cache_size = 4
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "example.com/app/services", cfg.Root)
	assert.True(t, cfg.KeepHarness)
	assert.Equal(t, 4, cfg.CacheSize)
	assert.Equal(t, DefaultListen, cfg.Listen)
}

func TestLoad_UnknownKey(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, "colour = \"blue\"\n")

	_, err := Load(dir)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ConfigurationErrorCode))
	assert.Contains(t, err.Error(), "colour")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, "listen = \":9000\"\ncache_size = 4\n")
	t.Setenv("INJGRAPH_LISTEN", ":9999")
	t.Setenv("INJGRAPH_CACHE_SIZE", "32")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Listen)
	assert.Equal(t, 32, cfg.CacheSize)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, EnvFile, "INJGRAPH_OUTPUT=graph.tsv\n")
	t.Setenv("INJGRAPH_OUTPUT", "")
	os.Unsetenv("INJGRAPH_OUTPUT")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "graph.tsv", cfg.Output)
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("INJGRAPH_KEEP_HARNESS", "sometimes")

	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ConfigurationErrorCode))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.CacheSize = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.GoCommand = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_Listen(t *testing.T) {
	cfg := Default()
	cfg.Listen = "8080"

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ConfigurationErrorCode))
	assert.Contains(t, err.Error(), "listen")
}
