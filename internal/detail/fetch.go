// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package detail

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/anayatu/zameen-scraper/internal/httputil"
	"github.com/anayatu/zameen-scraper/pkg/types"
)

const listingsDir = "listings"

// BatchResult holds the outcome of a batch fetch run.
type BatchResult struct {
	Fetched  int
	Skipped  int
	Failed   int
	Listings []*types.Listing
}

// Total returns the total number of URLs processed.
func (r BatchResult) Total() int {
	return r.Fetched + r.Skipped + r.Failed
}

// HasFailures reports whether any detail pages failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// FetchListing downloads and parses a single detail page, then writes the
// listing metadata YAML. If the metadata file already exists on disk the
// fetch is skipped and the stored listing is returned instead. The skipped
// return value indicates whether the fetch was skipped.
func FetchListing(ctx context.Context, client *http.Client, url, city string, cfg types.DetailConfig, w io.Writer) (listing *types.Listing, skipped bool, err error) {
	slug := types.Slug(url)
	metaPath := filepath.Join(cfg.DataDir, listingsDir, slug+".yaml")

	if _, statErr := os.Stat(metaPath); statErr == nil {
		fmt.Fprintf(w, "skipped: %s (already fetched)\n", slug)
		l, readErr := readListing(metaPath)
		if readErr != nil {
			l = &types.Listing{URL: url, City: city}
		}
		return l, true, nil
	}

	doc, err := httputil.FetchDocument(ctx, client, url)
	if err != nil {
		return nil, false, fmt.Errorf("fetching %s: %w", slug, err)
	}

	l := Parse(doc, url)
	l.City = city
	l.ScrapedAt = time.Now().UTC()

	if err := writeListing(l, metaPath); err != nil {
		return nil, false, fmt.Errorf("writing metadata for %s: %w", slug, err)
	}

	return l, false, nil
}

// FetchBatch processes detail URLs up to cfg.MaxDetails (zero means all),
// printing per-item status and returning a summary. It continues after
// individual failures and paces consecutive fetches with a jittered delay.
func FetchBatch(ctx context.Context, client *http.Client, urls []string, city string, cfg types.DetailConfig, w io.Writer) BatchResult {
	pool := urls
	if cfg.MaxDetails > 0 && len(pool) > cfg.MaxDetails {
		pool = pool[:cfg.MaxDetails]
	}

	var result BatchResult
	for i, url := range pool {
		if i > 0 {
			if err := httputil.Sleep(ctx, cfg.Delay, cfg.Jitter); err != nil {
				fmt.Fprintf(w, "cancelled after %d of %d\n", i, len(pool))
				break
			}
		}

		fmt.Fprintf(w, "[detail %d/%d] %s\n", i+1, len(pool), url)

		l, wasSkipped, err := FetchListing(ctx, client, url, city, cfg, w)
		if err != nil {
			fmt.Fprintf(w, "  failed: %v\n", err)
			result.Failed++
			continue
		}
		if wasSkipped {
			result.Skipped++
		} else {
			result.Fetched++
		}
		result.Listings = append(result.Listings, l)
	}

	fmt.Fprintf(w, "\nBatch summary: %d fetched, %d skipped, %d failed (total: %d)\n",
		result.Fetched, result.Skipped, result.Failed, result.Total())
	return result
}

// writeListing writes a Listing to a YAML file via a temp file so a crash
// never leaves a truncated record behind.
func writeListing(l *types.Listing, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating listings directory: %w", err)
	}

	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshaling listing: %w", err)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".listing-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing listing: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// readListing reads a Listing from a YAML file.
func readListing(path string) (*types.Listing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var l types.Listing
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, err
	}
	return &l, nil
}
