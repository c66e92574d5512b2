// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package detail fetches Zameen listing detail pages and extracts structured
// listing fields.
package detail

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anayatu/zameen-scraper/pkg/types"
)

// Zameen's detail pages use generated class names. These were stable at the
// time of writing; when the portal ships a new frontend build they need
// re-checking against a live page.
const (
	selTitle        = "div.c121f914 h1.aea614fd"
	selLocation     = "div.c121f914 div.cd230541"
	selDetailsBlock = "div._83bb17d1 ul._3dc8d08d"
	selDetailLabel  = "span.ed0db22a"
	selDetailValue  = "span._2fdf7fc5"
	selSection      = "div._83bb17d1"
	selPriceFall    = "span._105b8a67, span._2923a568, div._2923a568, span._2fdf7fc5[aria-label='Price']"
	selDescription  = "div._3e9c24cd, div._2a806e1f, section._3e9c24cd, div._2d2b3f3a"
)

var (
	intRe  = regexp.MustCompile(`\d+`)
	yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// cleanText collapses runs of whitespace to single spaces and trims.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// firstInt returns the first integer in s, or 0 and false when none.
func firstInt(s string) (int, bool) {
	m := intRe.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Parse extracts a Listing from a detail-page document. Missing fields stay
// zero-valued; Parse never fails on partial pages.
func Parse(doc *goquery.Document, url string) *types.Listing {
	l := &types.Listing{URL: url}

	if t := doc.Find(selTitle).First(); t.Length() > 0 {
		l.Title = cleanText(t.Text())
	}
	if loc := doc.Find(selLocation).First(); loc.Length() > 0 {
		l.Location = cleanText(loc.Text())
	}

	parseDetailsBlock(doc, l)

	// Price fallback when the details block had none.
	if l.RawPrice == "" {
		if p := doc.Find(selPriceFall).First(); p.Length() > 0 {
			setPrice(l, cleanText(p.Text()))
		}
	}

	parseAmenities(doc, l)

	if d := doc.Find(selDescription).First(); d.Length() > 0 {
		l.Description = cleanText(d.Text())
	}

	return l
}

// parseDetailsBlock walks the label/value list ("Price", "Area", "Type",
// "Bedroom(s)", "Bath(s)") and routes each pair onto the listing. Rows with
// an unrecognized label fall back to the value span's aria-label.
func parseDetailsBlock(doc *goquery.Document, l *types.Listing) {
	block := doc.Find(selDetailsBlock).First()
	if block.Length() == 0 {
		return
	}

	block.Find("li").Each(func(_ int, li *goquery.Selection) {
		labelEl := li.Find(selDetailLabel).First()
		valueEl := li.Find(selDetailValue).First()

		label := ""
		if labelEl.Length() > 0 {
			label = cleanText(labelEl.Text())
		}
		value := cleanText(li.Text())
		if valueEl.Length() > 0 {
			value = cleanText(valueEl.Text())
		}

		if routeDetail(l, strings.ToLower(label), value) {
			return
		}

		// aria-label fallback on the value span.
		if valueEl.Length() > 0 {
			if aria, ok := valueEl.Attr("aria-label"); ok {
				routeDetail(l, strings.ToLower(strings.TrimSpace(aria)), value)
			}
		}
	})
}

// routeDetail assigns value to the listing field named by key (a lowercased
// label or aria-label). It reports whether the key was recognized. Fields
// already set are left alone so the labelled row wins over aria fallbacks.
func routeDetail(l *types.Listing, key, value string) bool {
	switch {
	case strings.Contains(key, "price"):
		if l.RawPrice == "" {
			setPrice(l, value)
		}
	case strings.Contains(key, "area"):
		if l.Area == "" {
			l.Area = value
		}
	case strings.Contains(key, "type"):
		if l.PropertyType == "" {
			l.PropertyType = value
		}
	case strings.Contains(key, "bed"):
		if l.Bedrooms == 0 {
			if n, ok := firstInt(value); ok {
				l.Bedrooms = n
			}
		}
	case strings.Contains(key, "bath"):
		if l.Bathrooms == 0 {
			if n, ok := firstInt(value); ok {
				l.Bathrooms = n
			}
		}
	default:
		return false
	}
	return true
}

func setPrice(l *types.Listing, text string) {
	l.RawPrice = text
	if v, currency, ok := ParsePrice(text); ok {
		l.PriceNumeric = v
		l.Currency = currency
	} else {
		l.Currency = currency
	}
}

// parseAmenities locates the section whose heading mentions amenities and
// maps each bullet onto a listing field by keyword. Counted amenities keep
// the first number in the bullet, or "Yes" when none is given.
func parseAmenities(doc *goquery.Document, l *types.Listing) {
	var section *goquery.Selection
	doc.Find(selSection).EachWithBreak(func(_ int, sec *goquery.Selection) bool {
		h3 := sec.Find("h3").First()
		if h3.Length() > 0 && strings.Contains(strings.ToLower(h3.Text()), "amenit") {
			section = sec
			return false
		}
		return true
	})
	if section == nil {
		return
	}

	section.Find("li").Each(func(_ int, li *goquery.Selection) {
		txt := cleanText(li.Text())
		low := strings.ToLower(txt)

		if l.BuiltInYear == "" {
			if y := yearRe.FindString(txt); y != "" {
				l.BuiltInYear = y
			}
		}

		if strings.Contains(low, "park") {
			l.ParkingSpaces = countOrYes(txt)
		}
		if strings.Contains(low, "servant") {
			l.ServantQuarters = countOrYes(txt)
		}
		if strings.Contains(low, "store") {
			l.StoreRooms = countOrYes(txt)
		}
		if strings.Contains(low, "kitchen") {
			l.Kitchens = countOrYes(txt)
		}
		if strings.Contains(low, "floor") {
			l.Floors = countOrYes(txt)
		}
		if strings.Contains(low, "drawing") {
			l.DrawingRoom = "Yes"
		}
		if strings.Contains(low, "dining") {
			l.DiningRoom = "Yes"
		}
		if strings.Contains(low, "study") {
			l.StudyRoom = "Yes"
		}
		if strings.Contains(low, "laundry") {
			l.LaundryRoom = "Yes"
		}
		if strings.Contains(low, "prayer") || strings.Contains(low, "masjid") {
			l.PrayerRoom = "Yes"
		}
		if strings.Contains(low, "powder") {
			l.PowderRoom = "Yes"
		}
		if strings.Contains(low, "lounge") || strings.Contains(low, "sitting") || strings.Contains(low, "living") {
			l.LoungeOrSittingRoom = "Yes"
		}
	})
}

func countOrYes(txt string) string {
	if m := intRe.FindString(txt); m != "" {
		return m
	}
	return "Yes"
}
