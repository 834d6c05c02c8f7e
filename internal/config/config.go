// Package config loads the CLI configuration from an optional YAML
// file layered over defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/andrealenzi11/go-web-miner/pkg/htmlparse"
	"github.com/andrealenzi11/go-web-miner/pkg/scraper"
)

// Duration wraps time.Duration so YAML accepts "30s" style values.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the CLI-facing configuration.
type Config struct {
	Engine                 string   `yaml:"engine"`
	Browser                string   `yaml:"browser"`
	Parser                 string   `yaml:"parser"`
	Proxy                  string   `yaml:"proxy"`
	UserAgent              string   `yaml:"user_agent"`
	RandomUserAgent        bool     `yaml:"random_user_agent"`
	RandomScreenResolution bool     `yaml:"random_screen_resolution"`
	Headless               bool     `yaml:"headless"`
	Timeout                Duration `yaml:"timeout"`
	Wait                   Duration `yaml:"wait"`
	DeleteCookies          bool     `yaml:"delete_cookies"`
	Concurrency            int      `yaml:"concurrency"`
}

// Default returns the defaults used when no config file is given.
// WEBMINER_PROXY and WEBMINER_USER_AGENT override the corresponding
// defaults from the environment; setting a user agent disables the
// random draw.
func Default() Config {
	cfg := Config{
		Engine:                 string(scraper.EngineHTTP),
		Browser:                string(scraper.BrowserChrome),
		Parser:                 string(htmlparse.BackendGoquery),
		RandomUserAgent:        true,
		RandomScreenResolution: true,
		Headless:               true,
		Timeout:                Duration(30 * time.Second),
		Wait:                   Duration(time.Second),
		Concurrency:            4,
	}
	if proxy := os.Getenv("WEBMINER_PROXY"); proxy != "" {
		cfg.Proxy = proxy
	}
	if ua := os.Getenv("WEBMINER_USER_AGENT"); ua != "" {
		cfg.UserAgent = ua
		cfg.RandomUserAgent = false
	}
	return cfg
}

// Load reads a YAML config file over the defaults. Keys absent from the
// file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// ScraperConfig maps the CLI configuration onto the library's.
func (c Config) ScraperConfig() scraper.Config {
	return scraper.Config{
		UserAgent:              c.UserAgent,
		RandomUserAgent:        c.RandomUserAgent,
		RandomScreenResolution: c.RandomScreenResolution,
		Parser:                 htmlparse.Backend(c.Parser),
		Proxy:                  c.Proxy,
		Browser:                scraper.Browser(c.Browser),
		Headless:               c.Headless,
		Timeout:                c.Timeout.Std(),
	}
}
