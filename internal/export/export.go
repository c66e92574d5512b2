// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes scraped listings to CSV, JSON, or YAML files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.yaml.in/yaml/v3"

	"github.com/anayatu/zameen-scraper/pkg/types"
)

// csvHeader is the column order consumers of the CSV depend on. Do not
// reorder or respell columns ("City", "dinning room") without versioning
// the output.
var csvHeader = []string{
	"title",
	"price",
	"location",
	"City",
	"property type",
	"bedrooms",
	"bathrooms",
	"area",
	"built in year",
	"parking space",
	"servant quarters",
	"store rooms",
	"kitchens",
	"drawing room",
	"floors",
	"dinning room",
	"study room",
	"laundry room",
	"lounge or sitting room",
	"powder room",
	"prayer room",
}

// Write writes listings to path in the given format. It creates parent
// directories as needed.
func Write(listings []types.Listing, path string, format types.ExportFormat) error {
	switch format {
	case types.ExportCSV:
		return WriteCSV(listings, path)
	case types.ExportJSON:
		return WriteJSON(listings, path)
	case types.ExportYAML:
		return WriteYAML(listings, path)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// WriteCSV writes listings as CSV. The price column carries the parsed
// numeric PKR amount and is left empty when parsing failed.
func WriteCSV(listings []types.Listing, path string) error {
	f, err := createOutput(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for i := range listings {
		if err := w.Write(csvRow(&listings[i])); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}

func csvRow(l *types.Listing) []string {
	return []string{
		l.Title,
		formatPrice(l.PriceNumeric),
		l.Location,
		l.City,
		l.PropertyType,
		formatCount(l.Bedrooms),
		formatCount(l.Bathrooms),
		l.Area,
		l.BuiltInYear,
		l.ParkingSpaces,
		l.ServantQuarters,
		l.StoreRooms,
		l.Kitchens,
		l.DrawingRoom,
		l.Floors,
		l.DiningRoom,
		l.StudyRoom,
		l.LaundryRoom,
		l.LoungeOrSittingRoom,
		l.PowderRoom,
		l.PrayerRoom,
	}
}

func formatPrice(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatCount(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// WriteJSON writes listings as an indented JSON array.
func WriteJSON(listings []types.Listing, path string) error {
	f, err := createOutput(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(listings); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// WriteYAML writes listings as a YAML sequence.
func WriteYAML(listings []types.Listing, path string) error {
	f, err := createOutput(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()
	if err := enc.Encode(listings); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return nil
}

func createOutput(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, nil
}
