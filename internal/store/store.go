// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists scraped listings in SQLite and builds a
// full-text retrieval index over them.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/anayatu/zameen-scraper/pkg/types"
)

const (
	listingsDir = "listings"
	indexDir    = "index"
	dbFile      = "listings.db"
)

// Store manages the listing SQLite database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int
}

// NewStore opens or creates the listing database at dataDir/index/listings.db.
// It creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		dataDir:    cfg.DataDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS listings (
			slug TEXT NOT NULL UNIQUE,
			url TEXT NOT NULL,
			title TEXT,
			raw_price TEXT,
			price_numeric REAL,
			currency TEXT,
			location TEXT,
			city TEXT,
			bedrooms INTEGER,
			bathrooms INTEGER,
			area TEXT,
			property_type TEXT,
			description TEXT,
			built_in_year TEXT,
			parking_spaces TEXT,
			servant_quarters TEXT,
			store_rooms TEXT,
			kitchens TEXT,
			drawing_room TEXT,
			floors TEXT,
			dining_room TEXT,
			study_room TEXT,
			laundry_room TEXT,
			lounge_or_sitting_room TEXT,
			powder_room TEXT,
			prayer_room TEXT,
			scraped_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_city ON listings(city)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_type ON listings(property_type)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			slug TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='listings_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE listings_fts USING fts5(title, location, description, content=listings, content_rowid=rowid)`,
			`CREATE TRIGGER listings_ai AFTER INSERT ON listings BEGIN
				INSERT INTO listings_fts(rowid, title, location, description)
				VALUES (new.rowid, new.title, new.location, new.description);
			END`,
			`CREATE TRIGGER listings_ad AFTER DELETE ON listings BEGIN
				INSERT INTO listings_fts(listings_fts, rowid, title, location, description)
				VALUES('delete', old.rowid, old.title, old.location, old.description);
			END`,
			`CREATE TRIGGER listings_au AFTER UPDATE ON listings BEGIN
				INSERT INTO listings_fts(listings_fts, rowid, title, location, description)
				VALUES('delete', old.rowid, old.title, old.location, old.description);
				INSERT INTO listings_fts(rowid, title, location, description)
				VALUES (new.rowid, new.title, new.location, new.description);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from an index run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of listing files processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads listing YAML files from dataDir/listings/ and populates the
// database. It detects new, changed, and unchanged files for incremental
// updates.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	dir := filepath.Join(s.dataDir, listingsDir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading listings directory %s: %w", dir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		slug := strings.TrimSuffix(entry.Name(), ".yaml")
		filePath := filepath.Join(dir, entry.Name())

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", slug, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

		// Check whether the file has changed since last indexing.
		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE slug = ?`, slug,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", slug)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		data, err := os.ReadFile(filePath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", slug, err)
			summary.Failed++
			continue
		}

		var l types.Listing
		if err := yaml.Unmarshal(data, &l); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", slug, err)
			summary.Failed++
			continue
		}

		if err := s.ingestListing(ctx, slug, &l, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", slug, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s\n", slug)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s\n", slug)
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	return summary, nil
}

func (s *Store) ingestListing(ctx context.Context, slug string, l *types.Listing, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertListing(ctx, tx, slug, l); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (slug, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(slug) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		slug, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}

// PutListings upserts freshly scraped listings directly, without a YAML
// round-trip. Used by the scrape pipeline's --store path.
func (s *Store) PutListings(ctx context.Context, listings []*types.Listing) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, l := range listings {
		if err := upsertListing(ctx, tx, types.Slug(l.URL), l); err != nil {
			return err
		}
	}

	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertListing(ctx context.Context, tx execer, slug string, l *types.Listing) error {
	scrapedAt := ""
	if !l.ScrapedAt.IsZero() {
		scrapedAt = l.ScrapedAt.UTC().Format(time.RFC3339)
	}

	// Delete-then-insert keeps the FTS triggers simple and makes re-index
	// idempotent.
	if _, err := tx.ExecContext(ctx, `DELETE FROM listings WHERE slug = ?`, slug); err != nil {
		return fmt.Errorf("deleting old listing %s: %w", slug, err)
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO listings (
			slug, url, title, raw_price, price_numeric, currency, location, city,
			bedrooms, bathrooms, area, property_type, description,
			built_in_year, parking_spaces, servant_quarters, store_rooms, kitchens,
			drawing_room, floors, dining_room, study_room, laundry_room,
			lounge_or_sitting_room, powder_room, prayer_room, scraped_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		slug, l.URL, l.Title, l.RawPrice, l.PriceNumeric, l.Currency, l.Location, l.City,
		l.Bedrooms, l.Bathrooms, l.Area, l.PropertyType, l.Description,
		l.BuiltInYear, l.ParkingSpaces, l.ServantQuarters, l.StoreRooms, l.Kitchens,
		l.DrawingRoom, l.Floors, l.DiningRoom, l.StudyRoom, l.LaundryRoom,
		l.LoungeOrSittingRoom, l.PowderRoom, l.PrayerRoom, scrapedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting listing %s: %w", slug, err)
	}
	return nil
}
