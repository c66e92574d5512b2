package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/anayatu/zameen-scraper/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()

	if err := os.MkdirAll(filepath.Join(tmpDir, listingsDir), 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := types.StoreConfig{
		DataDir:    tmpDir,
		MaxResults: 20,
	}
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	return store, tmpDir
}

func writeListingFile(t *testing.T, tmpDir string, l types.Listing) {
	t.Helper()
	data, err := yaml.Marshal(&l)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(tmpDir, listingsDir, types.Slug(l.URL)+".yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func sampleListing(slugPart, city string) types.Listing {
	return types.Listing{
		URL:          "https://www.zameen.com/Property/" + slugPart + ".html",
		Title:        "5 Bed House in " + city,
		RawPrice:     "PKR 4.8 Crore",
		PriceNumeric: 4.8e7,
		Currency:     "PKR",
		Location:     "DHA Defence, " + city,
		City:         city,
		Bedrooms:     5,
		Bathrooms:    6,
		Area:         "10 Marla",
		PropertyType: "House",
		Description:  "Spacious family house near the park",
		ScrapedAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func ingest(t *testing.T, s *Store) IngestSummary {
	t.Helper()
	var buf bytes.Buffer
	summary, err := s.Ingest(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	return summary
}

// --- tests ---

func TestIngestNewListings(t *testing.T) {
	s, dir := testSetup(t)

	writeListingFile(t, dir, sampleListing("islamabad_a-1-1", "islamabad"))
	writeListingFile(t, dir, sampleListing("lahore_b-2-1", "lahore"))

	summary := ingest(t, s)

	if summary.Indexed != 2 {
		t.Errorf("Indexed = %d, want 2", summary.Indexed)
	}
	if summary.Failed != 0 {
		t.Errorf("Failed = %d, want 0", summary.Failed)
	}

	all, err := s.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len(all) = %d, want 2", len(all))
	}
}

func TestIngestSkipsUnchanged(t *testing.T) {
	s, dir := testSetup(t)

	writeListingFile(t, dir, sampleListing("islamabad_a-1-1", "islamabad"))

	first := ingest(t, s)
	if first.Indexed != 1 {
		t.Fatalf("first Indexed = %d, want 1", first.Indexed)
	}

	second := ingest(t, s)
	if second.Skipped != 1 {
		t.Errorf("second Skipped = %d, want 1", second.Skipped)
	}
	if second.Indexed != 0 || second.Updated != 0 {
		t.Errorf("second run should not re-index: %+v", second)
	}
}

func TestIngestUpdatesChanged(t *testing.T) {
	s, dir := testSetup(t)

	l := sampleListing("islamabad_a-1-1", "islamabad")
	writeListingFile(t, dir, l)
	ingest(t, s)

	// Rewrite with a new title and a future mod time so the change is seen.
	l.Title = "Renovated 5 Bed House"
	writeListingFile(t, dir, l)
	path := filepath.Join(dir, listingsDir, types.Slug(l.URL)+".yaml")
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	summary := ingest(t, s)
	if summary.Updated != 1 {
		t.Errorf("Updated = %d, want 1: %+v", summary.Updated, summary)
	}

	all, err := s.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("len(all) = %d, want 1", len(all))
	}
	if all[0].Title != "Renovated 5 Bed House" {
		t.Errorf("Title = %q, want updated title", all[0].Title)
	}
}

func TestIngestBadYAML(t *testing.T) {
	s, dir := testSetup(t)

	path := filepath.Join(dir, listingsDir, "broken.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	summary, err := s.Ingest(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if summary.Failed != 1 {
		t.Errorf("Failed = %d, want 1", summary.Failed)
	}
	if !strings.Contains(buf.String(), "failed") {
		t.Error("output should mention the failure")
	}
}

func TestPutListings(t *testing.T) {
	s, _ := testSetup(t)

	l1 := sampleListing("islamabad_a-1-1", "islamabad")
	l2 := sampleListing("karachi_b-2-1", "karachi")

	err := s.PutListings(context.Background(), []*types.Listing{&l1, &l2})
	if err != nil {
		t.Fatalf("PutListings: %v", err)
	}

	all, err := s.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("len(all) = %d, want 2", len(all))
	}

	// Upserting the same listing again must not duplicate it.
	l1.Title = "Updated Title"
	if err := s.PutListings(context.Background(), []*types.Listing{&l1}); err != nil {
		t.Fatal(err)
	}
	all, err = s.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("after upsert len(all) = %d, want 2", len(all))
	}
}

func TestRetrieveFullText(t *testing.T) {
	s, _ := testSetup(t)

	l1 := sampleListing("islamabad_a-1-1", "islamabad")
	l1.Description = "Corner plot with a beautiful garden"
	l2 := sampleListing("islamabad_b-2-1", "islamabad")
	l2.Description = "Close to the motorway interchange"

	if err := s.PutListings(context.Background(), []*types.Listing{&l1, &l2}); err != nil {
		t.Fatal(err)
	}

	results, err := s.Retrieve(context.Background(), QueryOptions{Query: "garden"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].URL != l1.URL {
		t.Errorf("got %q, want the garden listing", results[0].URL)
	}
}

func TestRetrieveStructuredFilters(t *testing.T) {
	s, _ := testSetup(t)

	house := sampleListing("islamabad_a-1-1", "islamabad")
	flat := sampleListing("islamabad_b-2-1", "islamabad")
	flat.PropertyType = "Flat"
	flat.Bedrooms = 2
	flat.PriceNumeric = 9.5e6
	lahore := sampleListing("lahore_c-3-1", "lahore")

	if err := s.PutListings(context.Background(), []*types.Listing{&house, &flat, &lahore}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		opts QueryOptions
		want int
	}{
		{"by city", QueryOptions{City: "islamabad"}, 2},
		{"by type", QueryOptions{PropertyType: "Flat"}, 1},
		{"by min bedrooms", QueryOptions{MinBedrooms: 5}, 2},
		{"by max price", QueryOptions{MaxPrice: 1e7}, 1},
		{"city and type", QueryOptions{City: "islamabad", PropertyType: "House"}, 1},
		{"no matches", QueryOptions{City: "multan"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := s.Retrieve(context.Background(), tt.opts)
			if err != nil {
				t.Fatalf("Retrieve: %v", err)
			}
			if len(results) != tt.want {
				t.Errorf("len(results) = %d, want %d", len(results), tt.want)
			}
		})
	}
}

func TestRetrieveMaxResults(t *testing.T) {
	s, _ := testSetup(t)

	var listings []*types.Listing
	for _, slug := range []string{"a-1-1", "b-2-1", "c-3-1"} {
		l := sampleListing("islamabad_"+slug, "islamabad")
		listings = append(listings, &l)
	}
	if err := s.PutListings(context.Background(), listings); err != nil {
		t.Fatal(err)
	}

	results, err := s.Retrieve(context.Background(), QueryOptions{City: "islamabad", MaxResults: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("len(results) = %d, want 2", len(results))
	}
}

func TestRetrieveRoundTripsFields(t *testing.T) {
	s, _ := testSetup(t)

	l := sampleListing("islamabad_a-1-1", "islamabad")
	l.BuiltInYear = "2019"
	l.ParkingSpaces = "2"
	l.Kitchens = "2"
	l.DrawingRoom = "Yes"

	if err := s.PutListings(context.Background(), []*types.Listing{&l}); err != nil {
		t.Fatal(err)
	}

	all, err := s.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatal("expected one listing")
	}

	got := all[0]
	if got.Title != l.Title || got.RawPrice != l.RawPrice || got.PriceNumeric != l.PriceNumeric {
		t.Errorf("price fields did not round-trip: %+v", got)
	}
	if got.Bedrooms != 5 || got.Bathrooms != 6 {
		t.Errorf("room counts did not round-trip: %+v", got)
	}
	if got.BuiltInYear != "2019" || got.ParkingSpaces != "2" || got.Kitchens != "2" || got.DrawingRoom != "Yes" {
		t.Errorf("amenities did not round-trip: %+v", got)
	}
	if !got.ScrapedAt.Equal(l.ScrapedAt) {
		t.Errorf("ScrapedAt = %v, want %v", got.ScrapedAt, l.ScrapedAt)
	}
}
