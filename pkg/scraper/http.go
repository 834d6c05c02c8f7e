package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/andrealenzi11/go-web-miner/pkg/extract"
	"github.com/andrealenzi11/go-web-miner/pkg/htmlparse"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 8 << 20

// HTTPScraper retrieves pages with a pooled HTTP session. No script
// execution; Wait and DeleteCookies are honored for interface symmetry.
type HTTPScraper struct {
	cfg    Config
	parser htmlparse.Parser
	logger *slog.Logger

	mu     sync.Mutex
	state  string
	client *http.Client
	id     identity
}

// NewHTTPScraper builds the HTTP variant. The configuration is
// validated up front; no resource is acquired until Start.
func NewHTTPScraper(cfg Config) (*HTTPScraper, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	parser, err := htmlparse.NewParser(cfg.Parser)
	if err != nil {
		return nil, err
	}
	return &HTTPScraper{
		cfg:    cfg,
		parser: parser,
		logger: slog.Default().With("engine", EngineHTTP),
		state:  stateUnstarted,
	}, nil
}

// Start opens the HTTP session: cookie jar, pooled transport, proxy.
func (s *HTTPScraper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateStarted {
		return &LifecycleError{Op: "start", State: s.state}
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("create cookie jar: %w", err)
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if s.cfg.Proxy != "" {
		pu, err := proxyURL(s.cfg.Proxy)
		if err != nil {
			return &ConfigError{Field: "proxy", Value: s.cfg.Proxy, Reason: err.Error()}
		}
		transport.Proxy = http.ProxyURL(pu)
	}

	s.id = drawIdentity(s.cfg, s.logger)
	s.client = &http.Client{
		Transport: transport,
		Jar:       jar,
		Timeout:   s.cfg.Timeout,
	}
	s.state = stateStarted
	s.logger.Info("scraper started")
	return nil
}

// RetrieveHTML performs a single GET and returns the response body.
// Responses that do not look like HTML documents are wrapped in a
// minimal html/body shell.
func (s *HTTPScraper) RetrieveHTML(ctx context.Context, pageURL string, opts RetrieveOptions) (string, error) {
	s.mu.Lock()
	if s.state != stateStarted {
		state := s.state
		s.mu.Unlock()
		return "", &LifecycleError{Op: "retrieve", State: state}
	}
	client := s.client
	if opts.DeleteCookies {
		jar, err := cookiejar.New(nil)
		if err != nil {
			s.mu.Unlock()
			return "", fmt.Errorf("reset cookie jar: %w", err)
		}
		client.Jar = jar
	}
	s.mu.Unlock()

	if err := sleepCtx(ctx, opts.Wait); err != nil {
		return "", &FetchError{URL: pageURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: err}
	}
	s.setRequestHeaders(req)

	resp, err := client.Do(req)
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{
			URL:        pageURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: fmt.Errorf("read response: %w", err)}
	}

	return wrapIfNotHTML(string(body)), nil
}

// setRequestHeaders sets browser-like headers on the request.
func (s *HTTPScraper) setRequestHeaders(req *http.Request) {
	req.Header.Set("User-Agent", s.id.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	if !s.id.resolution.IsZero() {
		// Fingerprint diversity only; nothing is rendered here.
		req.Header.Set("Viewport-Width", strconv.Itoa(s.id.resolution.Width))
		req.Header.Set("Sec-CH-Viewport-Width", strconv.Itoa(s.id.resolution.Width))
	}
}

// ExtractText parses htmlBody and returns its normalized visible text.
func (s *HTTPScraper) ExtractText(htmlBody string) (string, error) {
	if err := s.requireStarted("extract text"); err != nil {
		return "", err
	}
	doc, err := s.parser.Parse(htmlBody)
	if err != nil {
		return "", err
	}
	return extract.Text(doc), nil
}

// ExtractLinks parses htmlBody and returns its absolute links, de-duplicated.
func (s *HTTPScraper) ExtractLinks(htmlBody string) ([]string, error) {
	if err := s.requireStarted("extract links"); err != nil {
		return nil, err
	}
	doc, err := s.parser.Parse(htmlBody)
	if err != nil {
		return nil, err
	}
	return extract.Links(doc), nil
}

// Quit closes the session. Safe to call at any point in the lifecycle.
func (s *HTTPScraper) Quit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		s.client.CloseIdleConnections()
		s.client = nil
	}
	if s.state == stateStarted {
		s.logger.Info("scraper stopped")
	}
	s.state = stateStopped
	return nil
}

func (s *HTTPScraper) requireStarted(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateStarted {
		return &LifecycleError{Op: op, State: s.state}
	}
	return nil
}

// wrapIfNotHTML wraps bare content (JSON endpoints, plain text) in a
// minimal document so the extraction helpers always get a parseable page.
func wrapIfNotHTML(content string) string {
	lower := strings.ToLower(content)
	if strings.Contains(lower, "<html") || strings.Contains(lower, "<body") {
		return content
	}
	return "<html>\n  <body>\n" + content + "\n  </body>\n</html>"
}
