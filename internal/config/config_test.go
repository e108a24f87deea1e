package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogsearch/internal/search"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blogsearch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_YAML(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	os.Unsetenv(EnvAPIKey)

	path := writeFile(t, `
upstream:
  api_key: secret
  timeout: 2s
  rate_limit: 5
web_adapter:
  host: 127.0.0.1
  port: 9090
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Upstream.APIKey)
	assert.Equal(t, DefaultBaseURL, cfg.Upstream.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.Upstream.Timeout)
	assert.Equal(t, 5.0, cfg.Upstream.RateLimit)
	assert.Equal(t, "127.0.0.1:9090", cfg.WebAdapter.Address())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "upstream:\n  api_key: from-file\n")
	t.Setenv(EnvAPIKey, "from-env")
	t.Setenv(EnvAddr, "localhost:7000")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Upstream.APIKey)
	assert.Equal(t, "localhost", cfg.WebAdapter.Host)
	assert.Equal(t, 7000, cfg.WebAdapter.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_MalformedAddr(t *testing.T) {
	path := writeFile(t, "upstream:\n  api_key: k\n")
	t.Setenv(EnvLogLevel, "")

	for _, addr := range []string{"localhost", "localhost:http", ":"} {
		t.Run(addr, func(t *testing.T) {
			t.Setenv(EnvAddr, addr)

			_, err := Load(path)
			var cerr *search.ConfigurationError
			require.True(t, errors.As(err, &cerr), "got %v", err)
			assert.Equal(t, EnvAddr, cerr.Field)
		})
	}
}

func TestLoad_MissingCredential(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	path := writeFile(t, "log:\n  level: info\n")

	_, err := Load(path)
	require.Error(t, err)

	var cerr *search.ConfigurationError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, "upstream.api_key", cerr.Field)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_DefaultPathAbsent(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvAPIKey, "k")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "k", cfg.Upstream.APIKey)
	assert.Equal(t, "0.0.0.0:8080", cfg.WebAdapter.Address())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Upstream.APIKey = "k"
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.Upstream.BaseURL = "not a url"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Upstream.RateLimit = -1
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.WebAdapter.Port = 70000
	assert.Error(t, bad.Validate())
}
