// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const baseURL = "https://www.zameen.com"

// listingURLRe matches hrefs pointing at Zameen property detail pages,
// absolute or site-relative.
var listingURLRe = regexp.MustCompile(`^https?://(www\.)?zameen\.com/Property/|^/Property/`)

// pageNumberRe matches the trailing page number in paginated search URLs
// like .../Islamabad-3-1.html.
var pageNumberRe = regexp.MustCompile(`-(\d+)\.html$`)

// DiscoverListingURLs returns the detail-page URLs linked from a search-result
// page, normalized to absolute form and de-duplicated in first-seen order.
func DiscoverListingURLs(doc *goquery.Document) []string {
	var urls []string
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || !listingURLRe.MatchString(href) {
			return
		}
		abs := NormalizeURL(href, "")
		if !seen[abs] {
			seen[abs] = true
			urls = append(urls, abs)
		}
	})

	return urls
}

// NormalizeURL resolves href to an absolute URL. Site-relative paths resolve
// against the Zameen origin; other relative paths resolve against base when
// given.
func NormalizeURL(href, base string) string {
	switch {
	case strings.HasPrefix(href, "http"):
		return href
	case strings.HasPrefix(href, "/"):
		return baseURL + href
	case base != "":
		if i := strings.LastIndex(base, "/"); i >= 0 {
			return base[:i] + "/" + href
		}
		return base + "/" + href
	default:
		return baseURL + "/" + strings.TrimLeft(href, "/")
	}
}

// NextPageURL resolves the next search-result page, trying in order:
// a <link rel="next"> element, an anchor labelled "next", and finally the
// -N.html page-number convention in the current URL. Relative hrefs resolve
// against the current page URL so pagination stays on the same origin.
// Returns "" when no next page can be determined.
func NextPageURL(doc *goquery.Document, currentURL string) string {
	var next string

	doc.Find("link[rel]").EachWithBreak(func(_ int, l *goquery.Selection) bool {
		rel := strings.ToLower(l.AttrOr("rel", ""))
		href := l.AttrOr("href", "")
		if strings.Contains(rel, "next") && href != "" {
			next = resolveRef(currentURL, href)
			return false
		}
		return true
	})
	if next != "" {
		return next
	}

	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		label := a.AttrOr("aria-label", "")
		if label == "" {
			label = a.Text()
		}
		if strings.Contains(strings.ToLower(label), "next") {
			next = resolveRef(currentURL, a.AttrOr("href", ""))
			return false
		}
		return true
	})
	if next != "" {
		return next
	}

	if m := pageNumberRe.FindStringSubmatch(currentURL); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return pageNumberRe.ReplaceAllString(currentURL, fmt.Sprintf("-%d.html", n+1))
		}
	}

	return ""
}

// resolveRef resolves href against base, falling back to NormalizeURL when
// either URL does not parse.
func resolveRef(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return NormalizeURL(href, base)
	}
	h, err := url.Parse(href)
	if err != nil {
		return NormalizeURL(href, base)
	}
	return b.ResolveReference(h).String()
}
