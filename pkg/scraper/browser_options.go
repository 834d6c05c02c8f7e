package scraper

import (
	"fmt"
	"os/exec"

	"github.com/chromedp/chromedp"

	"github.com/andrealenzi11/go-web-miner/pkg/fingerprint"
)

// browserBinaries lists the executable names probed on PATH, in order,
// for each automation engine.
var browserBinaries = map[Browser][]string{
	BrowserChrome:  {"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "chrome"},
	BrowserFirefox: {"firefox", "firefox-esr"},
}

// resolveBrowserPath finds the browser executable on PATH. For Chrome an
// empty path is returned when nothing matches, letting chromedp fall
// back to its own discovery; Firefox has no such fallback.
func resolveBrowserPath(browser Browser) (string, error) {
	for _, name := range browserBinaries[browser] {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	if browser == BrowserChrome {
		return "", nil
	}
	return "", fmt.Errorf("no %s executable found on PATH (tried %v)", browser, browserBinaries[browser])
}

// buildAllocatorOptions translates the configuration into browser
// launch capabilities. These are launch-time only; changing them
// requires a new Start.
func buildAllocatorOptions(cfg Config, id identity, execPath string) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("incognito", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-client-side-phishing-detection", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("no-first-run", true),
	)

	if id.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(id.userAgent))
	}
	if !id.resolution.IsZero() {
		opts = append(opts, chromedp.WindowSize(id.resolution.Width, id.resolution.Height))
	} else {
		def := fingerprint.Resolutions[0]
		opts = append(opts, chromedp.WindowSize(def.Width, def.Height))
	}
	if cfg.Proxy != "" {
		opts = append(opts, chromedp.ProxyServer(cfg.Proxy))
	}
	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}

	return opts
}
