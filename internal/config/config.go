package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the plugin configuration. A missing config file is fine: every
// field has a usable default and the plugin works without any credential.
type Config struct {
	// Trigger is the launcher prefix that routes a query to this plugin.
	Trigger string `yaml:"trigger"`

	// MaxResults caps the number of rows returned per query (1..25).
	MaxResults int `yaml:"max_results"`

	// TimeoutSeconds bounds every outbound HTTP request.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// APIKey switches search to the YouTube Data API when set.
	// The YOUTUBE_API_KEY environment variable takes precedence.
	APIKey string `yaml:"api_key"`

	// SearchURL is the Data API search endpoint. Overridable for tests.
	SearchURL string `yaml:"search_url"`

	// ResultsURL is the public results page used by the scrape client and
	// the "Show more in browser" row.
	ResultsURL string `yaml:"results_url"`

	UserAgent string `yaml:"user_agent"`

	// DownloadIcons enables per-query thumbnail downloads for row icons.
	DownloadIcons bool `yaml:"download_icons"`

	// Port is the listen port for serve mode. The PORT environment
	// variable takes precedence.
	Port string `yaml:"port"`

	// HostURL is the launcher host websocket URL for connect mode.
	HostURL string `yaml:"host_url"`
}

const desktopUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/108.0.0.0 Safari/537.36"

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Trigger:        "yt ",
		MaxResults:     15,
		TimeoutSeconds: 5,
		SearchURL:      "https://www.googleapis.com/youtube/v3/search",
		ResultsURL:     "https://www.youtube.com/results",
		UserAgent:      desktopUserAgent,
		DownloadIcons:  true,
		Port:           "3017",
	}
}

// DefaultPath returns ~/.config/youtube-plugin/config.yml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yml"
	}
	return filepath.Join(home, ".config", "youtube-plugin", "config.yml")
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// fall through to env overrides
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.clamp()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("YOUTUBE_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
}

func (c *Config) clamp() {
	if c.MaxResults <= 0 || c.MaxResults > 25 {
		c.MaxResults = Default().MaxResults
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = Default().TimeoutSeconds
	}
	if c.UserAgent == "" {
		c.UserAgent = desktopUserAgent
	}
	if c.SearchURL == "" {
		c.SearchURL = Default().SearchURL
	}
	if c.ResultsURL == "" {
		c.ResultsURL = Default().ResultsURL
	}
}
