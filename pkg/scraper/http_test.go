package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrealenzi11/go-web-miner/pkg/fingerprint"
)

const testPage = `<html><body>
<p>Hello</p>
<script>ignored()</script>
<a href="https://example.com/a">x</a>
<a href="https://example.com/a">y</a>
<a href="/relative">z</a>
</body></html>`

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func newStartedHTTPScraper(t *testing.T, cfg Config) *HTTPScraper {
	t.Helper()
	s, err := NewHTTPScraper(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Quit() })
	return s
}

func TestHTTPRetrieveBeforeStart(t *testing.T) {
	s, err := NewHTTPScraper(DefaultConfig())
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

func TestHTTPStartTwiceFails(t *testing.T) {
	s := newStartedHTTPScraper(t, DefaultConfig())

	err := s.Start()
	var lifecycleErr *LifecycleError
	require.ErrorAs(t, err, &lifecycleErr)
	assert.Equal(t, "start", lifecycleErr.Op)
}

func TestHTTPQuitIsAlwaysSafe(t *testing.T) {
	s, err := NewHTTPScraper(DefaultConfig())
	require.NoError(t, err)

	// Never started.
	require.NoError(t, s.Quit())
	// Twice in a row.
	require.NoError(t, s.Quit())

	// After Quit, operations fail with a lifecycle error again.
	_, err = s.RetrieveHTML(context.Background(), "http://localhost/", RetrieveOptions{})
	var lifecycleErr *LifecycleError
	assert.ErrorAs(t, err, &lifecycleErr)
}

func TestHTTPRestartAfterQuit(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testPage))
	})

	s, err := NewHTTPScraper(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, s.Start())
	require.NoError(t, s.Quit())

	require.NoError(t, s.Start())
	defer s.Quit()

	body, err := s.RetrieveHTML(context.Background(), srv.URL, RetrieveOptions{})
	require.NoError(t, err)
	assert.Contains(t, body, "Hello")
}

func TestHTTPRetrieveExtractRoundTrip(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testPage))
	})
	s := newStartedHTTPScraper(t, DefaultConfig())

	body, err := s.RetrieveHTML(context.Background(), srv.URL, RetrieveOptions{})
	require.NoError(t, err)
	assert.Contains(t, body, "Hello")

	text, err := s.ExtractText(body)
	require.NoError(t, err)
	assert.Contains(t, text, "Hello")
	assert.NotContains(t, text, "ignored")

	links, err := s.ExtractLinks(body)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a"}, links)
}

func TestHTTPNonSuccessStatus(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})
	s := newStartedHTTPScraper(t, DefaultConfig())

	_, err := s.RetrieveHTML(context.Background(), srv.URL, RetrieveOptions{})
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.Equal(t, srv.URL, fetchErr.URL)
}

func TestHTTPNonHTMLContentWrapped(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("just some text"))
	})
	s := newStartedHTTPScraper(t, DefaultConfig())

	body, err := s.RetrieveHTML(context.Background(), srv.URL, RetrieveOptions{})
	require.NoError(t, err)
	assert.Contains(t, body, "<html>")
	assert.Contains(t, body, "<body>")
	assert.Contains(t, body, "just some text")
}

func TestHTTPRandomUserAgentDrawnPerStart(t *testing.T) {
	members := map[string]bool{}
	for _, ua := range fingerprint.DefaultUserAgents().Agents() {
		members[ua] = true
	}

	var seen []string
	srv := newTestServer(t, func(_ http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.UserAgent())
	})

	cfg := DefaultConfig()
	cfg.RandomUserAgent = true
	for i := 0; i < 5; i++ {
		s, err := NewHTTPScraper(cfg)
		require.NoError(t, err)
		require.NoError(t, s.Start())
		_, err = s.RetrieveHTML(context.Background(), srv.URL, RetrieveOptions{})
		require.NoError(t, err)
		require.NoError(t, s.Quit())
	}

	require.Len(t, seen, 5)
	for _, ua := range seen {
		assert.True(t, members[ua], "user agent %q not from the pool", ua)
	}
}

func TestHTTPPinnedUserAgent(t *testing.T) {
	var got string
	srv := newTestServer(t, func(_ http.ResponseWriter, r *http.Request) {
		got = r.UserAgent()
	})

	cfg := DefaultConfig()
	cfg.RandomUserAgent = false
	cfg.UserAgent = "webminer-test/1.0"
	s := newStartedHTTPScraper(t, cfg)

	_, err := s.RetrieveHTML(context.Background(), srv.URL, RetrieveOptions{})
	require.NoError(t, err)
	assert.Equal(t, "webminer-test/1.0", got)
}

func TestHTTPWaitHonorsContextCancel(t *testing.T) {
	s := newStartedHTTPScraper(t, DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := s.RetrieveHTML(ctx, "http://localhost/", RetrieveOptions{Wait: 5 * time.Second})
	elapsed := time.Since(start)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, elapsed, time.Second)
}

func TestHTTPInvalidProxyRejected(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Proxy = "not a proxy"

	_, err := NewHTTPScraper(cfg)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "proxy", cfgErr.Field)
}
