package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"rolechain/internal/transport"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"ROLECHAIN_HOME", "ROLECHAIN_RELAY", "ROLECHAIN_SCHEME", "ROLECHAIN_LINKAGE", "ROLECHAIN_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Layers(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFilename)

	file := DefaultConfig()
	file.Home = dir
	file.Scheme = "books"
	file.Linkage = "ancestor"
	require.NoError(t, file.Save(path))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "books", c.Scheme)
	require.Equal(t, "ancestor", c.Linkage)
	require.Equal(t, "info", c.LogLevel)

	t.Setenv("ROLECHAIN_SCHEME", "ledger")
	t.Setenv("ROLECHAIN_LOG_LEVEL", "debug")
	c, err = LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "ledger", c.Scheme)
	require.Equal(t, "debug", c.LogLevel)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ROLECHAIN_HOME", t.TempDir())

	c, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "ledger", c.Scheme)
	require.Equal(t, "adjacent", c.Linkage)
}

func TestLoadConfig_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("ROLECHAIN_HOME", t.TempDir())

	t.Setenv("ROLECHAIN_LINKAGE", "sideways")
	_, err := LoadConfig("")
	require.Error(t, err)

	t.Setenv("ROLECHAIN_LINKAGE", "")
	t.Setenv("ROLECHAIN_LOG_LEVEL", "loud")
	_, err = LoadConfig("")
	require.Error(t, err)
}

func TestNewWire_InProcess(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Home = t.TempDir()

	w, err := NewWire(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer w.Close()

	require.IsType(t, &transport.Broker{}, w.Transport)
	require.NotNil(t, w.Identity)
	require.NotNil(t, w.Journal)
}
