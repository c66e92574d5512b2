// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/anayatu/zameen-scraper/pkg/types"
)

// QueryOptions holds parameters for listing queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over title, location,
	// and description.
	Query string

	// City filters by the city derived from the search URL.
	City string

	// PropertyType filters by property type (e.g. "House", "Flat").
	PropertyType string

	// MinBedrooms filters out listings with fewer bedrooms.
	MinBedrooms int

	// MaxPrice filters out listings above this PKR amount. Listings
	// without a parsed price are excluded when set.
	MaxPrice float64

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.City == "" && q.PropertyType == "" &&
		q.MinBedrooms == 0 && q.MaxPrice == 0
}

// Retrieve queries the listing index with optional full-text search and
// structured filters. Full-text queries rank by FTS relevance;
// structured-only queries order by city, then price.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]types.Listing, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	const cols = `l.slug, l.url, l.title, l.raw_price, l.price_numeric, l.currency,
		l.location, l.city, l.bedrooms, l.bathrooms, l.area, l.property_type,
		l.description, l.built_in_year, l.parking_spaces, l.servant_quarters,
		l.store_rooms, l.kitchens, l.drawing_room, l.floors, l.dining_room,
		l.study_room, l.laundry_room, l.lounge_or_sitting_room, l.powder_room,
		l.prayer_room, l.scraped_at`

	if useFTS {
		qb.WriteString(`SELECT ` + cols + `
			FROM listings_fts
			JOIN listings l ON l.rowid = listings_fts.rowid
			WHERE listings_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(`SELECT ` + cols + `
			FROM listings l
			WHERE 1=1`)
	}

	if opts.City != "" {
		qb.WriteString(` AND l.city = ?`)
		args = append(args, opts.City)
	}
	if opts.PropertyType != "" {
		qb.WriteString(` AND l.property_type = ?`)
		args = append(args, opts.PropertyType)
	}
	if opts.MinBedrooms > 0 {
		qb.WriteString(` AND l.bedrooms >= ?`)
		args = append(args, opts.MinBedrooms)
	}
	if opts.MaxPrice > 0 {
		qb.WriteString(` AND l.price_numeric > 0 AND l.price_numeric <= ?`)
		args = append(args, opts.MaxPrice)
	}

	if useFTS {
		qb.WriteString(` ORDER BY listings_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY l.city, l.price_numeric`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying listings: %w", err)
	}
	defer rows.Close()

	var results []types.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, l)
	}

	return results, rows.Err()
}

// All returns every indexed listing, ordered by city then price. Used by
// the export stage.
func (s *Store) All(ctx context.Context) ([]types.Listing, error) {
	const exportLimit = 100000
	return s.Retrieve(ctx, QueryOptions{MaxResults: exportLimit, City: ""})
}

func scanListing(rows *sql.Rows) (types.Listing, error) {
	var (
		l         types.Listing
		slug      string
		scrapedAt sql.NullString
	)

	if err := rows.Scan(
		&slug, &l.URL, &l.Title, &l.RawPrice, &l.PriceNumeric, &l.Currency,
		&l.Location, &l.City, &l.Bedrooms, &l.Bathrooms, &l.Area, &l.PropertyType,
		&l.Description, &l.BuiltInYear, &l.ParkingSpaces, &l.ServantQuarters,
		&l.StoreRooms, &l.Kitchens, &l.DrawingRoom, &l.Floors, &l.DiningRoom,
		&l.StudyRoom, &l.LaundryRoom, &l.LoungeOrSittingRoom, &l.PowderRoom,
		&l.PrayerRoom, &scrapedAt,
	); err != nil {
		return l, fmt.Errorf("scanning row: %w", err)
	}

	if scrapedAt.Valid && scrapedAt.String != "" {
		if t, err := time.Parse(time.RFC3339, scrapedAt.String); err == nil {
			l.ScrapedAt = t
		}
	}

	return l, nil
}
