package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "http", cfg.Engine)
	assert.Equal(t, "goquery", cfg.Parser)
	assert.True(t, cfg.RandomUserAgent)
	assert.True(t, cfg.Headless)
	assert.Equal(t, Duration(time.Second), cfg.Wait)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"engine: browser\nbrowser: firefox\nwait: 2s\nproxy: proxyhost:8080\n",
	), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "browser", cfg.Engine)
	assert.Equal(t, "firefox", cfg.Browser)
	assert.Equal(t, Duration(2*time.Second), cfg.Wait)
	assert.Equal(t, "proxyhost:8080", cfg.Proxy)
	// Untouched keys keep defaults.
	assert.Equal(t, "goquery", cfg.Parser)
	assert.True(t, cfg.RandomUserAgent)
}

func TestDefaultEnvOverrides(t *testing.T) {
	t.Setenv("WEBMINER_PROXY", "proxyhost:3128")
	t.Setenv("WEBMINER_USER_AGENT", "custom-agent/1.0")

	cfg := Default()
	assert.Equal(t, "proxyhost:3128", cfg.Proxy)
	assert.Equal(t, "custom-agent/1.0", cfg.UserAgent)
	assert.False(t, cfg.RandomUserAgent)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestScraperConfigMapping(t *testing.T) {
	cfg := Default()
	cfg.Engine = "browser"
	cfg.Proxy = "proxyhost:8080"

	sc := cfg.ScraperConfig()
	assert.Equal(t, "proxyhost:8080", sc.Proxy)
	assert.True(t, sc.Headless)
	assert.NoError(t, sc.Validate())
}
