package config

import (
	"fmt"
	"net/url"
	"time"

	"maeto-catalog/internal/catalog"
	"maeto-catalog/internal/components/telemetry"
	"maeto-catalog/lib/configutil"
	"maeto-catalog/lib/restyutil"
)

const (
	DefaultPath    = "maeto.json5"
	DefaultDB      = "produtos_maeto.db"
	DefaultBaseURL = "https://www.lojamaeto.com"
	searchPath     = "/search/"
)

type Config struct {
	DB                string           `json:"db"`
	BaseURL           string           `json:"base_url"`
	UserAgent         string           `json:"user_agent"`
	PageDelayMs       int              `json:"page_delay_ms"`
	DetailDelayMs     int              `json:"detail_delay_ms"`
	MaxPages          int              `json:"max_pages"`
	TimeoutMs         int              `json:"timeout_ms"`
	RequestsPerSecond float64          `json:"requests_per_second"`
	DumpHTTPDir       string           `json:"dump_http_dir"`
	Telemetry         telemetry.Config `json:"telemetry"`
}

func Defaults() Config {
	return Config{
		DB:                DefaultDB,
		BaseURL:           DefaultBaseURL,
		UserAgent:         catalog.DefaultUserAgent,
		PageDelayMs:       int(catalog.DefaultPageDelay / time.Millisecond),
		DetailDelayMs:     int(catalog.DefaultDetailDelay / time.Millisecond),
		MaxPages:          catalog.DefaultMaxPages,
		TimeoutMs:         int(catalog.DefaultTimeout / time.Millisecond),
		RequestsPerSecond: catalog.DefaultRequestsPerSecond,
	}
}

// Load reads the config at `path` (and its .local override), unset fields keep
// their defaults and a missing file is the same as an empty one.
func Load(path string) (Config, error) {
	cfg, err := configutil.ReadConfigWithDefaults(path, Defaults())
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	_, err = cfg.Base()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Base returns the parsed site origin.
func (c Config) Base() (*url.URL, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base_url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" || base.Host == "" {
		return nil, fmt.Errorf("base_url must be an absolute http(s) url, got '%s'", c.BaseURL)
	}
	return base, nil
}

// SearchPath returns the url search terms are added to.
func (c Config) SearchPath() (*url.URL, error) {
	base, err := c.Base()
	if err != nil {
		return nil, err
	}
	return base.JoinPath(searchPath), nil
}

func (c Config) FetcherOptions() (catalog.HTTPFetcherOptions, error) {
	opts := catalog.HTTPFetcherOptions{
		UserAgent:         c.UserAgent,
		Timeout:           time.Duration(c.TimeoutMs) * time.Millisecond,
		RequestsPerSecond: c.RequestsPerSecond,
	}
	if c.DumpHTTPDir != "" {
		output, err := restyutil.NewFilesystemOutput(c.DumpHTTPDir)
		if err != nil {
			return opts, err
		}
		opts.Dump = output
	}
	return opts, nil
}

func (c Config) PageDelay() time.Duration {
	return time.Duration(c.PageDelayMs) * time.Millisecond
}

func (c Config) DetailDelay() time.Duration {
	return time.Duration(c.DetailDelayMs) * time.Millisecond
}
