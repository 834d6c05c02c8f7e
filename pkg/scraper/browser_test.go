package scraper

// These tests cover the browser variant's lifecycle guards and
// configuration without launching a real browser process.

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrealenzi11/go-web-miner/pkg/htmlparse"
)

func TestBrowserRetrieveBeforeStart(t *testing.T) {
	s, err := NewBrowserScraper(DefaultConfig())
	require.NoError(t, err)

	_, err = s.RetrieveHTML(context.Background(), "http://localhost/", RetrieveOptions{})
	var lifecycleErr *LifecycleError
	require.ErrorAs(t, err, &lifecycleErr)
	assert.Equal(t, "retrieve", lifecycleErr.Op)

	_, err = s.ExtractText("<html></html>")
	assert.ErrorAs(t, err, &lifecycleErr)

	_, err = s.ExtractLinks("<html></html>")
	assert.ErrorAs(t, err, &lifecycleErr)
}

func TestBrowserQuitIsAlwaysSafe(t *testing.T) {
	s, err := NewBrowserScraper(DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, s.Quit())
	require.NoError(t, s.Quit())
}

func TestBrowserInvalidConfigRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Browser = Browser("safari")
	_, err := NewBrowserScraper(cfg)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "browser", cfgErr.Field)

	cfg = DefaultConfig()
	cfg.Parser = htmlparse.Backend("lxml")
	_, err = NewBrowserScraper(cfg)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "parser", cfgErr.Field)
}

func TestBrowserBinaryCandidates(t *testing.T) {
	assert.NotEmpty(t, browserBinaries[BrowserChrome])
	assert.NotEmpty(t, browserBinaries[BrowserFirefox])
	assert.Contains(t, browserBinaries[BrowserFirefox], "firefox")
}
