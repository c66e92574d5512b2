// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/anayatu/zameen-scraper/pkg/types"
)

// CrawlFile is the on-disk representation of a crawl and its discovered URLs.
// A crawl can be saved to a file and fed to the fetch stage later without
// re-hitting the search pages.
type CrawlFile struct {
	SearchURL string       `yaml:"search_url"`
	Config    CrawlParams  `yaml:"config"`
	URLs      []string     `yaml:"urls"`
	Summary   CrawlSummary `yaml:"summary"`
}

// CrawlParams stores the crawl configuration that produced the URLs.
type CrawlParams struct {
	MaxPages int    `yaml:"max_pages"`
	City     string `yaml:"city,omitempty"`
}

// CrawlSummary stores result statistics and a timestamp.
type CrawlSummary struct {
	PagesFetched int       `yaml:"pages_fetched"`
	URLsFound    int       `yaml:"urls_found"`
	Timestamp    time.Time `yaml:"timestamp"`
}

// WriteCrawlFile saves a crawl's parameters and discovered URLs to a YAML file.
func WriteCrawlFile(path, searchURL string, cfg types.CrawlConfig, out Output) error {
	cf := CrawlFile{
		SearchURL: searchURL,
		Config: CrawlParams{
			MaxPages: cfg.MaxPages,
			City:     out.City,
		},
		URLs: out.URLs,
		Summary: CrawlSummary{
			PagesFetched: out.PagesFetched,
			URLsFound:    len(out.URLs),
			Timestamp:    time.Now(),
		},
	}

	data, err := yaml.Marshal(&cf)
	if err != nil {
		return fmt.Errorf("marshaling crawl file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadCrawlFile loads a previously saved crawl file from disk.
func ReadCrawlFile(path string) (*CrawlFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading crawl file: %w", err)
	}
	var cf CrawlFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing crawl file: %w", err)
	}
	return &cf, nil
}
