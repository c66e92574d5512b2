// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crawl walks paginated Zameen search-result pages and discovers
// listing detail URLs.
package crawl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/anayatu/zameen-scraper/internal/httputil"
	"github.com/anayatu/zameen-scraper/pkg/types"
)

// Output holds the result of a crawl run.
type Output struct {
	// URLs are the discovered listing detail URLs in first-seen order.
	URLs []string

	// City is derived from the search URL (e.g. "islamabad").
	City string

	// PagesFetched counts the search-result pages actually fetched.
	PagesFetched int
}

// Run fetches up to cfg.MaxPages search-result pages starting at searchURL,
// collecting listing URLs from each and following pagination. It stops early
// when no next page can be resolved. Per-page status lines go to w.
func Run(ctx context.Context, client *http.Client, searchURL string, cfg types.CrawlConfig, w io.Writer) (Output, error) {
	out := Output{City: CityFromSearchURL(searchURL)}

	seen := make(map[string]bool)
	pageURL := searchURL

	for i := 0; i < cfg.MaxPages; i++ {
		fmt.Fprintf(w, "[page %d] GET %s\n", i+1, pageURL)

		doc, err := httputil.FetchDocument(ctx, client, pageURL)
		if err != nil {
			// A failure on the first page means nothing was crawled;
			// later pages keep what was found so far.
			if i == 0 {
				return out, fmt.Errorf("fetching %s: %w", pageURL, err)
			}
			fmt.Fprintf(w, "  warning: page fetch failed, stopping: %v\n", err)
			break
		}
		out.PagesFetched++

		urls := DiscoverListingURLs(doc)
		fmt.Fprintf(w, "  found %d candidate detail links\n", len(urls))
		for _, u := range urls {
			if !seen[u] {
				seen[u] = true
				out.URLs = append(out.URLs, u)
			}
		}

		next := NextPageURL(doc, pageURL)
		if next == "" || i == cfg.MaxPages-1 {
			break
		}
		if err := httputil.Sleep(ctx, cfg.Delay, cfg.Jitter); err != nil {
			return out, err
		}
		pageURL = next
	}

	return out, nil
}

// CityFromSearchURL derives the city from a Zameen search URL. The last path
// segment of e.g. https://www.zameen.com/Homes/Islamabad-3-1.html is
// "Islamabad-3-1.html"; the city is the text before the first dash,
// lowercased. Returns "" when no segment is usable.
func CityFromSearchURL(searchURL string) string {
	if searchURL == "" {
		return ""
	}
	path := searchURL
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimRight(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	path = htmlExtRe.ReplaceAllString(path, "")
	city, _, _ := strings.Cut(path, "-")
	return strings.ToLower(strings.TrimSpace(city))
}

var htmlExtRe = regexp.MustCompile(`(?i)\.html?$`)
