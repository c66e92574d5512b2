// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/anayatu/zameen-scraper/internal/crawl"
	"github.com/anayatu/zameen-scraper/internal/httputil"
	"github.com/anayatu/zameen-scraper/pkg/types"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl search-result pages for listing URLs",
	Long: `Crawl fetches paginated search-result pages starting from --search-url
and collects the listing detail URLs they link to. With --save, the URLs
are written to a crawl file for later use with the fetch command.`,
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().String("search-url", "", "Zameen search-results URL to start from (required)")
	crawlCmd.Flags().Int("max-pages", 1, "maximum search-result pages to crawl")
	crawlCmd.Flags().String("save", "", "save discovered URLs to a crawl file at this path")
	addHTTPFlags(crawlCmd)

	crawlCmd.MarkFlagRequired("search-url")

	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	searchURL, _ := cmd.Flags().GetString("search-url")
	maxPages, _ := cmd.Flags().GetInt("max-pages")
	savePath, _ := cmd.Flags().GetString("save")

	httpCfg := httpConfigFromFlags(cmd)
	cfg := types.CrawlConfig{
		HTTPConfig:   httpCfg,
		PacingConfig: pacingFromFlags(cmd),
		MaxPages:     maxPages,
	}

	client, err := httputil.NewClient(httpCfg)
	if err != nil {
		return err
	}

	out, err := crawl.Run(context.Background(), client, searchURL, cfg, os.Stdout)
	if err != nil {
		return err
	}

	for _, u := range out.URLs {
		fmt.Println(u)
	}
	fmt.Fprintf(os.Stderr, "Found %d listing URLs across %d page(s)\n", len(out.URLs), out.PagesFetched)

	if savePath != "" {
		if dir := filepath.Dir(savePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating crawl directory: %w", err)
			}
		}
		if err := crawl.WriteCrawlFile(savePath, searchURL, cfg, out); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved crawl to %s\n", savePath)
	}

	return nil
}
