// Command webminer fetches web pages over plain HTTP or a headless
// browser and prints the extracted HTML, text, links or markdown.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/andrealenzi11/go-web-miner/internal/config"
	"github.com/andrealenzi11/go-web-miner/pkg/extract"
	"github.com/andrealenzi11/go-web-miner/pkg/scraper"
)

var (
	version = "dev"

	flagConfig        string
	flagEngine        string
	flagBrowser       string
	flagParser        string
	flagProxy         string
	flagUserAgent     string
	flagWait          time.Duration
	flagTimeout       time.Duration
	flagDeleteCookies bool
	flagHeadful       bool
	flagConcurrency   int
	flagOutput        string
)

var rootCmd = &cobra.Command{
	Use:     "webminer",
	Short:   "Fetch web pages over HTTP or a headless browser and extract text and links",
	Version: version,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [URL...]",
	Short: "Retrieve one or more pages and print the extracted output",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return runFetch(cmd.Context(), cfg, args)
	},
}

// loadConfig layers the optional YAML file under explicitly set flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("engine") {
		cfg.Engine = flagEngine
	}
	if flags.Changed("browser") {
		cfg.Browser = flagBrowser
	}
	if flags.Changed("parser") {
		cfg.Parser = flagParser
	}
	if flags.Changed("proxy") {
		cfg.Proxy = flagProxy
	}
	if flags.Changed("user-agent") {
		cfg.UserAgent = flagUserAgent
		cfg.RandomUserAgent = false
	}
	if flags.Changed("wait") {
		cfg.Wait = config.Duration(flagWait)
	}
	if flags.Changed("timeout") {
		cfg.Timeout = config.Duration(flagTimeout)
	}
	if flags.Changed("delete-cookies") {
		cfg.DeleteCookies = flagDeleteCookies
	}
	if flags.Changed("headful") {
		cfg.Headless = !flagHeadful
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = flagConcurrency
	}
	return cfg, nil
}

type fetchResult struct {
	url    string
	output string
}

// runFetch retrieves every URL with its own scraper instance; instances
// are single-caller resources, so concurrency lives out here.
func runFetch(ctx context.Context, cfg config.Config, urls []string) error {
	scraperCfg := cfg.ScraperConfig()
	if err := scraperCfg.Validate(); err != nil {
		return err
	}

	var (
		mu      sync.Mutex
		results []fetchResult
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for _, pageURL := range urls {
		pageURL := pageURL
		g.Go(func() error {
			s, err := scraper.New(scraper.Engine(cfg.Engine), scraperCfg)
			if err != nil {
				return err
			}
			return scraper.With(s, func(s scraper.Scraper) error {
				body, err := s.RetrieveHTML(ctx, pageURL, scraper.RetrieveOptions{
					Wait:          cfg.Wait.Std(),
					DeleteCookies: cfg.DeleteCookies,
				})
				if err != nil {
					return err
				}
				output, err := renderOutput(s, body, pageURL)
				if err != nil {
					return err
				}
				mu.Lock()
				results = append(results, fetchResult{url: pageURL, output: output})
				mu.Unlock()
				slog.Info("page fetched", "url", pageURL, "bytes", len(body))
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].url < results[j].url })
	for _, r := range results {
		if len(urls) > 1 {
			fmt.Printf("==> %s\n", r.url)
		}
		fmt.Println(r.output)
	}
	return nil
}

func renderOutput(s scraper.Scraper, body, pageURL string) (string, error) {
	switch flagOutput {
	case "html":
		return body, nil
	case "text":
		return s.ExtractText(body)
	case "links":
		links, err := s.ExtractLinks(body)
		if err != nil {
			return "", err
		}
		out := ""
		for _, link := range links {
			out += link + "\n"
		}
		return out, nil
	case "markdown":
		return extract.Markdown(body)
	case "article":
		art, err := extract.ReadableArticle(body, pageURL)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s\n\n%s", art.Title, art.Text), nil
	default:
		return "", fmt.Errorf("unknown output format %q (html, text, links, markdown, article)", flagOutput)
	}
}

func init() {
	fetchCmd.Flags().StringVar(&flagConfig, "config", "", "Path to YAML configuration file")
	fetchCmd.Flags().StringVar(&flagEngine, "engine", "http", "Retrieval engine (http, browser)")
	fetchCmd.Flags().StringVar(&flagBrowser, "browser", "chrome", "Browser for the browser engine (chrome, firefox)")
	fetchCmd.Flags().StringVar(&flagParser, "parser", "goquery", "HTML parser backend (goquery, nethtml, shioridom)")
	fetchCmd.Flags().StringVar(&flagProxy, "proxy", "", "Outbound proxy (host:port or URL)")
	fetchCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "Pin the user agent instead of drawing a random one")
	fetchCmd.Flags().DurationVar(&flagWait, "wait", time.Second, "Settle delay before reading the page")
	fetchCmd.Flags().DurationVar(&flagTimeout, "timeout", 30*time.Second, "Per-fetch timeout")
	fetchCmd.Flags().BoolVar(&flagDeleteCookies, "delete-cookies", false, "Clear cookies before each fetch")
	fetchCmd.Flags().BoolVar(&flagHeadful, "headful", false, "Run the browser with a visible window")
	fetchCmd.Flags().IntVar(&flagConcurrency, "concurrency", 4, "Concurrent fetches (one scraper per URL)")
	fetchCmd.Flags().StringVar(&flagOutput, "output", "text", "Output format (html, text, links, markdown, article)")

	rootCmd.AddCommand(fetchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
