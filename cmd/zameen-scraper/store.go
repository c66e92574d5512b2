// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anayatu/zameen-scraper/internal/store"
	"github.com/anayatu/zameen-scraper/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the local listing index (index, query)",
	Long: `Store manages a local SQLite index built from fetched listing files.
Use subcommands to ingest listings or query them with full-text search
and structured filters.`,
}

// --- index subcommand ---

var storeIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Ingest fetched listing files into the index",
	Long: `Index reads listing YAML files from the data directory and ingests them
into a SQLite database with FTS5 indexing. Unchanged files are skipped on
subsequent runs.`,
	RunE: runStoreIndex,
}

func runStoreIndex(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.Ingest(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d listing(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- query subcommand ---

var storeQueryCmd = &cobra.Command{
	Use:   "query [search terms]",
	Short: "Query the listing index with full-text search and filters",
	Long: `Query searches the listing index using FTS5 full-text search over
titles, locations, and descriptions, structured filters (city, type,
bedrooms, price), or a combination of both.`,
	RunE: runStoreQuery,
}

func runStoreQuery(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide search terms, --city, --type, --min-beds, or --max-price")
	}

	results, err := s.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(results, jsonOutput)
}

func formatQueryOutput(results []types.Listing, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-40s  %-14s  %-12s  %-5s  %s\n",
		"Rank", "Title", "Price", "City", "Beds", "Type")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	for i, l := range results {
		title := l.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		price := l.RawPrice
		if len(price) > 14 {
			price = price[:11] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-40s  %-14s  %-12s  %-5d  %s\n",
			i+1, title, price, l.City, l.Bedrooms, l.PropertyType)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- shared helpers ---

func openStore(cmd *cobra.Command) (*store.Store, error) {
	maxResults, _ := cmd.Flags().GetInt("max-results")
	return store.NewStore(types.StoreConfig{
		DataDir:    dataDir(cmd),
		MaxResults: maxResults,
	})
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) store.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	city, _ := cmd.Flags().GetString("city")
	propertyType, _ := cmd.Flags().GetString("type")
	minBeds, _ := cmd.Flags().GetInt("min-beds")
	maxPrice, _ := cmd.Flags().GetFloat64("max-price")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.QueryOptions{
		Query:        queryText,
		City:         city,
		PropertyType: propertyType,
		MinBedrooms:  minBeds,
		MaxPrice:     maxPrice,
		MaxResults:   limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	storeCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Query flags.
	storeQueryCmd.Flags().String("query", "", "full-text search query")
	storeQueryCmd.Flags().String("city", "", "filter by city")
	storeQueryCmd.Flags().String("type", "", "filter by property type (e.g. House, Flat)")
	storeQueryCmd.Flags().Int("min-beds", 0, "minimum number of bedrooms")
	storeQueryCmd.Flags().Float64("max-price", 0, "maximum price in PKR")
	storeQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	storeQueryCmd.Flags().Bool("json", false, "output results as JSON")

	// Wire subcommands.
	storeCmd.AddCommand(storeIndexCmd)
	storeCmd.AddCommand(storeQueryCmd)

	rootCmd.AddCommand(storeCmd)
}
