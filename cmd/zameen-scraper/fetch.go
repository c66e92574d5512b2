// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anayatu/zameen-scraper/internal/crawl"
	"github.com/anayatu/zameen-scraper/internal/detail"
	"github.com/anayatu/zameen-scraper/internal/httputil"
	"github.com/anayatu/zameen-scraper/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [listing URLs...]",
	Short: "Fetch and parse listing detail pages",
	Long: `Fetch downloads listing detail pages, parses them, and writes one YAML
file per listing under the data directory. Listings that already have a
YAML file are skipped.

URLs come from the command line or from a crawl file saved by
'crawl --save' via --from.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("from", "", "crawl file to read listing URLs from")
	fetchCmd.Flags().String("city", "", "city tag for the fetched listings")
	fetchCmd.Flags().Int("max-details", 0, "maximum listing detail pages to fetch (0 = no limit)")
	addHTTPFlags(fetchCmd)

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	fromFile, _ := cmd.Flags().GetString("from")
	city, _ := cmd.Flags().GetString("city")
	maxDetails, _ := cmd.Flags().GetInt("max-details")
	dir := dataDir(cmd)

	urls := args
	if fromFile != "" {
		cf, err := crawl.ReadCrawlFile(fromFile)
		if err != nil {
			return err
		}
		urls = append(urls, cf.URLs...)
		if city == "" {
			city = cf.Config.City
		}
	}
	if len(urls) == 0 {
		return fmt.Errorf("provide listing URLs as arguments or a crawl file via --from")
	}

	httpCfg := httpConfigFromFlags(cmd)
	cfg := types.DetailConfig{
		HTTPConfig:   httpCfg,
		PacingConfig: pacingFromFlags(cmd),
		MaxDetails:   maxDetails,
		DataDir:      dir,
	}

	client, err := httputil.NewClient(httpCfg)
	if err != nil {
		return err
	}

	result := detail.FetchBatch(context.Background(), client, urls, city, cfg, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d listing(s) failed", result.Failed)
	}
	return nil
}
