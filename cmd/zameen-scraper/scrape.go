// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anayatu/zameen-scraper/internal/crawl"
	"github.com/anayatu/zameen-scraper/internal/detail"
	"github.com/anayatu/zameen-scraper/internal/export"
	"github.com/anayatu/zameen-scraper/internal/httputil"
	"github.com/anayatu/zameen-scraper/internal/store"
	"github.com/anayatu/zameen-scraper/pkg/types"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run the full pipeline: crawl, fetch details, write CSV",
	Long: `Scrape crawls paginated search results starting from --search-url,
follows discovered listing links up to --max-details, and writes the parsed
listings to --out as CSV. Previously fetched listings under the data
directory are reused instead of re-downloaded.

Individual listing failures are reported and skipped; the run fails only
when no listings could be collected at all.`,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().String("search-url", "", "Zameen search-results URL to start from (required)")
	scrapeCmd.Flags().Int("max-pages", 1, "maximum search-result pages to crawl")
	scrapeCmd.Flags().Int("max-details", 10, "maximum listing detail pages to fetch (0 = no limit)")
	scrapeCmd.Flags().String("out", "zameen_listings.csv", "output CSV path")
	scrapeCmd.Flags().Bool("store", false, "also index the listings into the local store")
	addHTTPFlags(scrapeCmd)

	scrapeCmd.MarkFlagRequired("search-url")

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	searchURL, _ := cmd.Flags().GetString("search-url")
	maxPages, _ := cmd.Flags().GetInt("max-pages")
	maxDetails, _ := cmd.Flags().GetInt("max-details")
	outPath, _ := cmd.Flags().GetString("out")
	useStore, _ := cmd.Flags().GetBool("store")
	dir := dataDir(cmd)

	httpCfg := httpConfigFromFlags(cmd)
	pacing := pacingFromFlags(cmd)

	client, err := httputil.NewClient(httpCfg)
	if err != nil {
		return err
	}

	ctx := context.Background()

	crawlCfg := types.CrawlConfig{
		HTTPConfig:   httpCfg,
		PacingConfig: pacing,
		MaxPages:     maxPages,
	}
	crawled, err := crawl.Run(ctx, client, searchURL, crawlCfg, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d listing URLs across %d page(s)\n", len(crawled.URLs), crawled.PagesFetched)

	detailCfg := types.DetailConfig{
		HTTPConfig:   httpCfg,
		PacingConfig: pacing,
		MaxDetails:   maxDetails,
		DataDir:      dir,
	}
	result := detail.FetchBatch(ctx, client, crawled.URLs, crawled.City, detailCfg, os.Stdout)

	if len(result.Listings) == 0 {
		return fmt.Errorf("no listings collected from %s", searchURL)
	}

	listings := make([]types.Listing, 0, len(result.Listings))
	for _, l := range result.Listings {
		listings = append(listings, *l)
	}

	if err := export.WriteCSV(listings, outPath); err != nil {
		return err
	}
	fmt.Printf("Wrote %d listing(s) to %s\n", len(listings), outPath)

	if useStore {
		s, err := store.NewStore(types.StoreConfig{DataDir: dir})
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.PutListings(ctx, result.Listings); err != nil {
			return fmt.Errorf("indexing listings: %w", err)
		}
		fmt.Printf("Indexed %d listing(s)\n", len(result.Listings))
	}

	return nil
}
