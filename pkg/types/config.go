// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests. Zameen
	// serves a challenge page to unknown agents, so the default mimics a
	// desktop browser.
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// Cookie is an optional Cookie header for portal sessions.
	Cookie string `json:"cookie,omitempty" yaml:"cookie,omitempty"`

	// ProxyURL routes requests through an HTTP proxy when set.
	ProxyURL string `json:"proxy_url,omitempty" yaml:"proxy_url,omitempty"`
}

// PacingConfig holds the inter-request pacing shared by crawl and fetch.
type PacingConfig struct {
	// Delay is the base pause between consecutive requests (default 1.5s).
	Delay time.Duration `json:"delay" yaml:"delay"`

	// Jitter is the uniform random spread applied to Delay (default 0.5s).
	Jitter time.Duration `json:"jitter" yaml:"jitter"`
}

// CrawlConfig holds settings for the search-result crawl stage.
type CrawlConfig struct {
	HTTPConfig   `yaml:",inline"`
	PacingConfig `yaml:",inline"`

	// MaxPages limits how many paginated search-result pages are fetched.
	MaxPages int `json:"max_pages" yaml:"max_pages"`
}

// DetailConfig holds settings for the detail-page fetch stage.
type DetailConfig struct {
	HTTPConfig   `yaml:",inline"`
	PacingConfig `yaml:",inline"`

	// MaxDetails limits how many listing detail pages are fetched.
	// Zero means no limit.
	MaxDetails int `json:"max_details" yaml:"max_details"`

	// DataDir is the base directory for scraped data (contains listings/, crawls/, index/).
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// StoreConfig holds settings for the listing index.
type StoreConfig struct {
	// DataDir is the base directory for scraped data (contains listings/, index/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ExportFormat selects the export output format.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
	ExportYAML ExportFormat = "yaml"
)

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Crawl  CrawlConfig  `json:"crawl" yaml:"crawl"`
	Detail DetailConfig `json:"detail" yaml:"detail"`
	Store  StoreConfig  `json:"store" yaml:"store"`
}
