// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package detail

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/anayatu/zameen-scraper/pkg/types"
)

func testDetailConfig(dir string) types.DetailConfig {
	return types.DetailConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "zameen-scraper-test/0.1",
		},
		DataDir: dir,
	}
}

func newDetailServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/Property/") {
			fmt.Fprint(w, samplePage)
			return
		}
		http.NotFound(w, r)
	}))
}

func TestFetchListing(t *testing.T) {
	ts := newDetailServer(t)
	defer ts.Close()

	dir := t.TempDir()
	cfg := testDetailConfig(dir)
	var buf bytes.Buffer

	url := ts.URL + "/Property/dha_phase_2-123-4.html"
	l, skipped, err := FetchListing(context.Background(), ts.Client(), url, "islamabad", cfg, &buf)
	if err != nil {
		t.Fatalf("FetchListing: %v", err)
	}
	if skipped {
		t.Error("expected fetch, got skipped")
	}
	if l.Title != "10 Marla House For Sale In DHA Phase 2" {
		t.Errorf("Title = %q", l.Title)
	}
	if l.City != "islamabad" {
		t.Errorf("City = %q, want islamabad", l.City)
	}
	if l.ScrapedAt.IsZero() {
		t.Error("ScrapedAt should be set")
	}

	// Verify metadata YAML exists and round-trips.
	metaPath := filepath.Join(dir, "listings", "dha_phase_2-123-4.yaml")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		t.Fatalf("metadata file missing: %v", err)
	}
	var stored types.Listing
	if err := yaml.Unmarshal(data, &stored); err != nil {
		t.Fatalf("parsing stored listing: %v", err)
	}
	if stored.Title != l.Title {
		t.Errorf("stored Title = %q, want %q", stored.Title, l.Title)
	}
	if stored.PriceNumeric != 4.8e7 {
		t.Errorf("stored PriceNumeric = %v", stored.PriceNumeric)
	}
}

func TestFetchListingSkipExisting(t *testing.T) {
	ts := newDetailServer(t)
	defer ts.Close()

	dir := t.TempDir()
	cfg := testDetailConfig(dir)

	url := ts.URL + "/Property/dha_phase_2-123-4.html"

	// Pre-create the listing YAML.
	existing := &types.Listing{URL: url, Title: "Already Fetched", City: "islamabad"}
	if err := writeListing(existing, filepath.Join(dir, "listings", "dha_phase_2-123-4.yaml")); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	l, skipped, err := FetchListing(context.Background(), ts.Client(), url, "islamabad", cfg, &buf)
	if err != nil {
		t.Fatalf("FetchListing: %v", err)
	}
	if !skipped {
		t.Error("expected skipped, got fetch")
	}
	if l.Title != "Already Fetched" {
		t.Errorf("Title = %q, want stored listing back", l.Title)
	}
	if !strings.Contains(buf.String(), "skipped:") {
		t.Error("output should contain 'skipped:'")
	}
}

func TestFetchBatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Property/", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "broken") {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, samplePage)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	dir := t.TempDir()
	cfg := testDetailConfig(dir)
	var buf bytes.Buffer

	urls := []string{
		ts.URL + "/Property/a-1-1.html",
		ts.URL + "/Property/broken-2-1.html",
		ts.URL + "/Property/c-3-1.html",
	}

	result := FetchBatch(context.Background(), ts.Client(), urls, "islamabad", cfg, &buf)

	if result.Fetched != 2 {
		t.Errorf("Fetched = %d, want 2", result.Fetched)
	}
	if result.Failed != 1 {
		t.Errorf("Failed = %d, want 1", result.Failed)
	}
	if result.Total() != 3 {
		t.Errorf("Total = %d, want 3", result.Total())
	}
	if !result.HasFailures() {
		t.Error("HasFailures should be true")
	}
	if len(result.Listings) != 2 {
		t.Errorf("len(Listings) = %d, want 2", len(result.Listings))
	}
	if !strings.Contains(buf.String(), "Batch summary:") {
		t.Error("output should contain batch summary")
	}
}

func TestFetchBatchHonorsMaxDetails(t *testing.T) {
	var served int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		served++
		fmt.Fprint(w, samplePage)
	}))
	defer ts.Close()

	dir := t.TempDir()
	cfg := testDetailConfig(dir)
	cfg.MaxDetails = 2

	urls := []string{
		ts.URL + "/Property/a-1-1.html",
		ts.URL + "/Property/b-2-1.html",
		ts.URL + "/Property/c-3-1.html",
	}

	var buf bytes.Buffer
	result := FetchBatch(context.Background(), ts.Client(), urls, "lahore", cfg, &buf)

	if result.Fetched != 2 {
		t.Errorf("Fetched = %d, want 2", result.Fetched)
	}
	if served != 2 {
		t.Errorf("served = %d, want 2", served)
	}
}

func TestFetchBatchZeroMaxDetailsFetchesAll(t *testing.T) {
	ts := newDetailServer(t)
	defer ts.Close()

	dir := t.TempDir()
	cfg := testDetailConfig(dir)
	cfg.MaxDetails = 0

	urls := []string{
		ts.URL + "/Property/a-1-1.html",
		ts.URL + "/Property/b-2-1.html",
	}

	var buf bytes.Buffer
	result := FetchBatch(context.Background(), ts.Client(), urls, "karachi", cfg, &buf)

	if result.Fetched != 2 {
		t.Errorf("Fetched = %d, want 2", result.Fetched)
	}
}
