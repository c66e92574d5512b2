// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/anayatu/zameen-scraper/internal/export"
	"github.com/anayatu/zameen-scraper/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export indexed listings to CSV, JSON, or YAML",
	Long: `Export writes all listings from the local index to a file. Supports the
same filter flags as 'store query' for partial exports.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("format", "csv", "export format: csv, json, or yaml")
	exportCmd.Flags().String("out", "zameen_listings.csv", "output file path")
	exportCmd.Flags().String("query", "", "full-text search filter for partial export")
	exportCmd.Flags().String("city", "", "filter by city for partial export")
	exportCmd.Flags().String("type", "", "filter by property type for partial export")
	exportCmd.Flags().Int("min-beds", 0, "minimum number of bedrooms")
	exportCmd.Flags().Float64("max-price", 0, "maximum price in PKR")
	exportCmd.Flags().Int("limit", 0, "maximum listings to export (0 = all)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")

	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()

	opts := queryOptsFromFlags(cmd, args)
	var listings []types.Listing
	if opts.IsEmpty() && opts.MaxResults == 0 {
		listings, err = s.All(ctx)
	} else {
		if opts.MaxResults == 0 {
			opts.MaxResults = 100000
		}
		listings, err = s.Retrieve(ctx, opts)
	}
	if err != nil {
		return err
	}

	if err := export.Write(listings, outPath, types.ExportFormat(format)); err != nil {
		return err
	}
	fmt.Printf("Exported %d listing(s) to %s\n", len(listings), outPath)
	return nil
}
