// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"time"
)

// Listing holds the fields extracted from a Zameen.com property detail page.
// Counted amenities (parking, servant quarters, store rooms, kitchens) hold
// the count as text, or "Yes" when the page mentions the amenity without a
// number. Presence-only amenities hold "Yes" or are empty.
type Listing struct {
	// URL is the canonical detail-page URL the listing was scraped from.
	URL string `json:"url" yaml:"url"`

	// Title is the listing headline.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// RawPrice is the price text as shown on the page (e.g. "PKR 4.8 Crore").
	RawPrice string `json:"raw_price,omitempty" yaml:"raw_price,omitempty"`

	// PriceNumeric is the price converted to a plain PKR amount, 0 when
	// the price text could not be parsed.
	PriceNumeric float64 `json:"price_numeric,omitempty" yaml:"price_numeric,omitempty"`

	// Currency is "PKR" when a currency marker was present in the price text.
	Currency string `json:"currency,omitempty" yaml:"currency,omitempty"`

	// Location is the neighbourhood/address line under the title.
	Location string `json:"location,omitempty" yaml:"location,omitempty"`

	// City is derived from the search URL, lowercased (e.g. "islamabad").
	City string `json:"city,omitempty" yaml:"city,omitempty"`

	Bedrooms     int    `json:"bedrooms,omitempty" yaml:"bedrooms,omitempty"`
	Bathrooms    int    `json:"bathrooms,omitempty" yaml:"bathrooms,omitempty"`
	Area         string `json:"area,omitempty" yaml:"area,omitempty"`
	PropertyType string `json:"property_type,omitempty" yaml:"property_type,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`

	BuiltInYear         string `json:"built_in_year,omitempty" yaml:"built_in_year,omitempty"`
	ParkingSpaces       string `json:"parking_spaces,omitempty" yaml:"parking_spaces,omitempty"`
	ServantQuarters     string `json:"servant_quarters,omitempty" yaml:"servant_quarters,omitempty"`
	StoreRooms          string `json:"store_rooms,omitempty" yaml:"store_rooms,omitempty"`
	Kitchens            string `json:"kitchens,omitempty" yaml:"kitchens,omitempty"`
	DrawingRoom         string `json:"drawing_room,omitempty" yaml:"drawing_room,omitempty"`
	Floors              string `json:"floors,omitempty" yaml:"floors,omitempty"`
	DiningRoom          string `json:"dining_room,omitempty" yaml:"dining_room,omitempty"`
	StudyRoom           string `json:"study_room,omitempty" yaml:"study_room,omitempty"`
	LaundryRoom         string `json:"laundry_room,omitempty" yaml:"laundry_room,omitempty"`
	LoungeOrSittingRoom string `json:"lounge_or_sitting_room,omitempty" yaml:"lounge_or_sitting_room,omitempty"`
	PowderRoom          string `json:"powder_room,omitempty" yaml:"powder_room,omitempty"`
	PrayerRoom          string `json:"prayer_room,omitempty" yaml:"prayer_room,omitempty"`

	// ScrapedAt is when the detail page was fetched.
	ScrapedAt time.Time `json:"scraped_at,omitempty" yaml:"scraped_at,omitempty"`
}

// Slug returns a filesystem- and database-safe key for a listing URL.
// Zameen detail URLs look like /Property/<area>_<slug>-<id>-<n>.html; the
// slug is the final path segment without the extension. URLs without a
// usable segment fall back to a hash of the full URL.
func Slug(listingURL string) string {
	u, err := url.Parse(listingURL)
	if err == nil {
		seg := strings.Trim(u.Path, "/")
		if i := strings.LastIndex(seg, "/"); i >= 0 {
			seg = seg[i+1:]
		}
		seg = strings.TrimSuffix(seg, ".html")
		seg = strings.TrimSuffix(seg, ".htm")
		if seg != "" {
			return sanitizeSlug(seg)
		}
	}
	sum := sha256.Sum256([]byte(listingURL))
	return "listing-" + hex.EncodeToString(sum[:6])
}

func sanitizeSlug(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
