package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseConfigFile_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"api_base_url":          "https://www.example/api",
		"online_check_interval": "15s",
		"request_timeout":       2500000000,
		"real_auth":             true,
	})

	t.Run("loads from flags", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseConfigFile(cfg)

		assert.Equal(t, "https://www.example/api", cfg.APIBaseURL)
		assert.Equal(t, 15*time.Second, cfg.OnlineCheckInterval)
		assert.Equal(t, 2500*time.Millisecond, cfg.RequestTimeout)
		assert.True(t, cfg.RealAuth)
		assert.Empty(t, cfg.DataDir, "omitted keys keep the current value")
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			APIBaseURL:          "http://defaults:1234",
			OnlineCheckInterval: 42 * time.Second,
		}
		parseConfigFile(cfg)

		assert.Equal(t, "http://defaults:1234", cfg.APIBaseURL)
		assert.Equal(t, 42*time.Second, cfg.OnlineCheckInterval)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseConfigFile(cfg) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "nope.json")}

		require.Panics(t, func() { parseConfigFile(&Config{}) })
	})
}

func Test_parseConfigFile_YAML(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "sk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_base_url: https://yaml.example/api
request_timeout: 45s
online_check_interval: 2000000000
debug: true
data_dir: /var/lib/sk
`), 0o600))

	os.Args = []string{"testbin", "-c", path}
	cfg := &Config{}
	parseConfigFile(cfg)

	assert.Equal(t, "https://yaml.example/api", cfg.APIBaseURL)
	assert.Equal(t, 45*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2*time.Second, cfg.OnlineCheckInterval)
	assert.True(t, cfg.Debug)
	assert.False(t, cfg.RealAuth)
	assert.Equal(t, "/var/lib/sk", cfg.DataDir)

	bad := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("request_timeout: [oops"), 0o600))
	os.Args = []string{"testbin", "-config", bad}
	require.Panics(t, func() { parseConfigFile(&Config{}) })
}
