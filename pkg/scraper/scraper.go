// Package scraper exposes two interchangeable page retrieval strategies
// behind one interface: a plain HTTP fetcher and a headless-browser
// fetcher driven over the Chrome DevTools Protocol. Both delegate HTML
// parsing to the pluggable backends in pkg/htmlparse.
//
// A Scraper owns exactly one underlying resource (an HTTP session or a
// browser process), acquired in Start and released in Quit. Instances
// are not safe for concurrent use without external synchronization.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/andrealenzi11/go-web-miner/pkg/fingerprint"
	"github.com/andrealenzi11/go-web-miner/pkg/htmlparse"
)

// Engine selects the retrieval strategy.
type Engine string

const (
	EngineHTTP    Engine = "http"
	EngineBrowser Engine = "browser"
)

// Browser selects the automation engine for the browser variant.
// The matching binary must be discoverable on PATH.
type Browser string

const (
	BrowserChrome  Browser = "chrome"
	BrowserFirefox Browser = "firefox"
)

// Lifecycle states. A scraper may be started again after Quit.
const (
	stateUnstarted = "not started"
	stateStarted   = "started"
	stateStopped   = "stopped"
)

const defaultTimeout = 30 * time.Second

// Config is the immutable configuration shared by both scraper
// variants. The zero value is usable; DefaultConfig returns the
// recommended defaults.
//
// When RandomUserAgent or RandomScreenResolution is set, a fresh value
// is drawn from the fixed fingerprint pool once per Start and pins the
// corresponding explicit field for that session.
type Config struct {
	// UserAgent pins the User-Agent header / browser UA override.
	UserAgent string
	// ScreenResolution pins the browser window size.
	ScreenResolution fingerprint.Resolution
	// RandomUserAgent draws the user agent from the embedded pool at Start.
	RandomUserAgent bool
	// RandomScreenResolution draws the window size from the fixed pool at Start.
	RandomScreenResolution bool
	// Parser selects the HTML parser backend. Default: goquery.
	Parser htmlparse.Backend
	// Proxy is the outbound proxy, as "host:port" or a URL.
	Proxy string
	// Browser selects the automation engine (browser variant only).
	Browser Browser
	// Headless runs the browser without a visible window.
	Headless bool
	// Timeout bounds each fetch and the browser launch.
	Timeout time.Duration
}

// DefaultConfig mirrors the historical defaults: randomized UA and
// resolution, goquery parser, headless Chrome, 30s timeout.
func DefaultConfig() Config {
	return Config{
		RandomUserAgent:        true,
		RandomScreenResolution: true,
		Parser:                 htmlparse.BackendGoquery,
		Browser:                BrowserChrome,
		Headless:               true,
		Timeout:                defaultTimeout,
	}
}

func (c Config) withDefaults() Config {
	if c.Parser == "" {
		c.Parser = htmlparse.BackendGoquery
	}
	if c.Browser == "" {
		c.Browser = BrowserChrome
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}

// Validate checks the configuration; failures are *ConfigError.
func (c Config) Validate() error {
	if c.Parser != "" && !c.Parser.Valid() {
		return &ConfigError{
			Field:  "parser",
			Value:  string(c.Parser),
			Reason: fmt.Sprintf("supported backends: %v", htmlparse.Backends()),
		}
	}
	if c.Browser != "" && c.Browser != BrowserChrome && c.Browser != BrowserFirefox {
		return &ConfigError{
			Field:  "browser",
			Value:  string(c.Browser),
			Reason: "supported browsers: chrome, firefox",
		}
	}
	if c.Proxy != "" {
		if _, err := proxyURL(c.Proxy); err != nil {
			return &ConfigError{Field: "proxy", Value: c.Proxy, Reason: err.Error()}
		}
	}
	return nil
}

// proxyURL normalizes "host:port" or URL proxy notation.
func proxyURL(proxy string) (*url.URL, error) {
	raw := proxy
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("accepted formats: 'host:port' or URL: %w", err)
	}
	if u.Hostname() == "" || u.Port() == "" {
		return nil, fmt.Errorf("accepted formats: 'host:port' or URL with explicit port")
	}
	return u, nil
}

// RetrieveOptions tunes a single RetrieveHTML call.
type RetrieveOptions struct {
	// Wait is a settle delay. The browser variant sleeps after
	// navigation so script-driven DOM updates can finish; the HTTP
	// variant sleeps before the request, for interface symmetry.
	Wait time.Duration
	// DeleteCookies clears the cookie jar (HTTP) or browser cookies
	// before the fetch.
	DeleteCookies bool
}

// Scraper is the common capability set of both retrieval strategies.
type Scraper interface {
	// Start acquires the underlying resource: an HTTP session or a
	// browser process. Starting an already-started scraper fails with
	// *LifecycleError; a failed Start leaves the scraper restartable.
	Start() error
	// RetrieveHTML fetches the page and returns its HTML text.
	RetrieveHTML(ctx context.Context, pageURL string, opts RetrieveOptions) (string, error)
	// ExtractText parses htmlBody with the configured backend and
	// returns normalized visible text.
	ExtractText(htmlBody string) (string, error)
	// ExtractLinks parses htmlBody and returns the de-duplicated set of
	// absolute http(s) links.
	ExtractLinks(htmlBody string) ([]string, error)
	// Quit releases the resource. Always safe: a no-op when never
	// started, idempotent when called twice.
	Quit() error
}

// New builds a scraper for the given engine.
func New(engine Engine, cfg Config) (Scraper, error) {
	switch engine {
	case EngineHTTP:
		return NewHTTPScraper(cfg)
	case EngineBrowser:
		return NewBrowserScraper(cfg)
	default:
		return nil, &ConfigError{
			Field:  "engine",
			Value:  string(engine),
			Reason: "supported engines: http, browser",
		}
	}
}

// With runs fn between Start and a deferred Quit, so the resource is
// released even when fn fails.
func With(s Scraper, fn func(Scraper) error) error {
	if err := s.Start(); err != nil {
		return err
	}
	defer func() { _ = s.Quit() }()
	return fn(s)
}

// identity is the per-session fingerprint drawn at Start.
type identity struct {
	userAgent  string
	resolution fingerprint.Resolution
}

func drawIdentity(cfg Config, logger *slog.Logger) identity {
	id := identity{userAgent: cfg.UserAgent, resolution: cfg.ScreenResolution}
	if cfg.RandomUserAgent {
		id.userAgent = fingerprint.RandomUserAgent()
		logger.Info("user agent selected", "user_agent", id.userAgent)
	}
	if cfg.RandomScreenResolution {
		id.resolution = fingerprint.RandomResolution()
		logger.Info("screen resolution selected", "resolution", id.resolution.String())
	}
	return id
}

// sleepCtx waits for d unless ctx is done first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
