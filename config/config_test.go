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
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, uint(9), cfg.Wallet.Count)
	assert.Equal(t, "http://127.0.0.1:8545", cfg.General.RPCURL)

	timeout, err := cfg.QueryTimeout()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, timeout)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[general]
rpc_url = "https://rpc.example.org"

[wallet]
count = 3

[refresh]
query_timeout = "2s"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://rpc.example.org", cfg.General.RPCURL)
	assert.Equal(t, uint(3), cfg.Wallet.Count)
	assert.Equal(t, 4, cfg.Refresh.Concurrency) // Default
	assert.Equal(t, "info", cfg.Log.Level)      // Default

	timeout, err := cfg.QueryTimeout()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, timeout)
}

func TestLoadConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad timeout":          "[refresh]\nquery_timeout = \"soon\"\n",
		"negative concurrency": "[refresh]\nconcurrency = -1\n",
		"bad level":            "[log]\nlevel = \"loud\"\n",
		"malformed toml":       "[wallet\n",
		"negative timeout":     "[refresh]\nquery_timeout = \"-1s\"\n",
		"zero count":           "[wallet]\ncount = 0\n",
		"zero concurrency":     "[refresh]\nconcurrency = 0\n",
		"empty rpc url":        "[general]\nrpc_url = \"\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_ZeroCountRejected(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "[wallet]\ncount = 0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wallet.count must be at least 1")
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Wallet.Count = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.General.RPCURL = ""
	assert.Error(t, cfg.Validate())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadOrDefault(t *testing.T) {
	cfg, found, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, found, err = LoadOrDefault(writeConfig(t, "[wallet]\ncount = 2\n"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, uint(2), cfg.Wallet.Count)
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.General.RPCURL = "http://node:8545"
	cfg.Log.File = "/tmp/walletview.log"

	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLogFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.File = "/var/log/wv.log"
	file, err := cfg.LogFile()
	require.NoError(t, err)
	assert.Equal(t, "/var/log/wv.log", file)

	cfg.Log.File = ""
	file, err = cfg.LogFile()
	require.NoError(t, err)
	assert.Equal(t, "walletview.log", filepath.Base(file))
}
