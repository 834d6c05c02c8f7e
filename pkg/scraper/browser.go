package scraper

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/andrealenzi11/go-web-miner/pkg/extract"
	"github.com/andrealenzi11/go-web-miner/pkg/htmlparse"
)

// BrowserScraper retrieves pages through a real browser process driven
// over the DevTools protocol, so page scripts run before the DOM is
// serialized. The process lives from Start to Quit; a crash while
// running surfaces as a FetchError on the next call, never an
// auto-restart.
type BrowserScraper struct {
	cfg    Config
	parser htmlparse.Parser
	logger *slog.Logger

	mu          sync.Mutex
	state       string
	id          identity
	browserCtx  context.Context
	cancelAlloc context.CancelFunc
	cancelCtx   context.CancelFunc
}

// NewBrowserScraper builds the browser variant. The configuration is
// validated up front; the browser is not launched until Start.
func NewBrowserScraper(cfg Config) (*BrowserScraper, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	parser, err := htmlparse.NewParser(cfg.Parser)
	if err != nil {
		return nil, err
	}
	return &BrowserScraper{
		cfg:    cfg,
		parser: parser,
		logger: slog.Default().With("engine", EngineBrowser, "browser", cfg.Browser),
		state:  stateUnstarted,
	}, nil
}

// Start launches the browser process. On failure every partial resource
// is released and the scraper stays restartable.
func (s *BrowserScraper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateStarted {
		return &LifecycleError{Op: "start", State: s.state}
	}

	execPath, err := resolveBrowserPath(s.cfg.Browser)
	if err != nil {
		return &FetchError{Err: err}
	}

	id := drawIdentity(s.cfg, s.logger)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(
		context.Background(),
		buildAllocatorOptions(s.cfg, id, execPath)...,
	)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	// An empty task list forces the process to launch now, so Start
	// fails fast instead of deferring launch errors to the first fetch.
	launchCtx, cancelLaunch := context.WithTimeout(browserCtx, s.cfg.Timeout)
	defer cancelLaunch()
	if err := chromedp.Run(launchCtx); err != nil {
		cancelCtx()
		cancelAlloc()
		return &FetchError{Err: err}
	}

	s.id = id
	s.browserCtx = browserCtx
	s.cancelAlloc = cancelAlloc
	s.cancelCtx = cancelCtx
	s.state = stateStarted
	s.logger.Info("browser started", "exec_path", execPath, "headless", s.cfg.Headless)
	return nil
}

// RetrieveHTML navigates to the page, sleeps opts.Wait so asynchronous
// script-driven DOM updates can settle, then returns the rendered DOM
// serialized and prettified.
func (s *BrowserScraper) RetrieveHTML(ctx context.Context, pageURL string, opts RetrieveOptions) (string, error) {
	s.mu.Lock()
	if s.state != stateStarted {
		state := s.state
		s.mu.Unlock()
		return "", &LifecycleError{Op: "retrieve", State: state}
	}
	browserCtx := s.browserCtx
	s.mu.Unlock()

	runCtx, cancel := context.WithTimeout(browserCtx, s.cfg.Timeout+opts.Wait)
	defer cancel()
	stop := propagateCancel(ctx, cancel)
	defer stop()

	tasks := chromedp.Tasks{}
	if opts.DeleteCookies {
		tasks = append(tasks, chromedp.ActionFunc(func(ctx context.Context) error {
			return network.ClearBrowserCookies().Do(ctx)
		}))
	}
	var rendered string
	tasks = append(tasks,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(opts.Wait),
		chromedp.OuterHTML("html", &rendered),
	)

	if err := chromedp.Run(runCtx, tasks); err != nil {
		return "", &FetchError{URL: pageURL, Err: err}
	}
	return extract.Prettify(rendered), nil
}

// ExtractText parses htmlBody and returns its normalized visible text.
func (s *BrowserScraper) ExtractText(htmlBody string) (string, error) {
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
func (s *BrowserScraper) ExtractLinks(htmlBody string) ([]string, error) {
	if err := s.requireStarted("extract links"); err != nil {
		return nil, err
	}
	doc, err := s.parser.Parse(htmlBody)
	if err != nil {
		return nil, err
	}
	return extract.Links(doc), nil
}

// Quit clears cookies, terminates the browser process and releases the
// contexts. Safe to call at any point in the lifecycle.
func (s *BrowserScraper) Quit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateStarted && s.browserCtx != nil {
		clearCtx, cancel := context.WithTimeout(s.browserCtx, 5*time.Second)
		// Best effort: an already-crashed browser must not block Quit.
		_ = chromedp.Run(clearCtx, chromedp.ActionFunc(func(ctx context.Context) error {
			return network.ClearBrowserCookies().Do(ctx)
		}))
		cancel()
		_ = chromedp.Cancel(s.browserCtx)
		s.logger.Info("browser stopped")
	}
	if s.cancelCtx != nil {
		s.cancelCtx()
		s.cancelCtx = nil
	}
	if s.cancelAlloc != nil {
		s.cancelAlloc()
		s.cancelAlloc = nil
	}
	s.browserCtx = nil
	s.state = stateStopped
	return nil
}

func (s *BrowserScraper) requireStarted(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateStarted {
		return &LifecycleError{Op: op, State: s.state}
	}
	return nil
}

// propagateCancel cancels the chromedp run when the caller's context is
// done first. The returned stop func releases the watcher.
func propagateCancel(caller context.Context, cancel context.CancelFunc) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-caller.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}
