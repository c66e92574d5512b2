// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrBlocked is returned when the portal serves a challenge page instead of
// content. The caller should slow down or supply a session cookie.
var ErrBlocked = errors.New("access blocked by portal: reduce pages or add delay")

// FetchDocument GETs url and parses the body as HTML. Retryable statuses go
// through DoWithRetry first. Non-2xx statuses are errors; HTTP 403 and
// Cloudflare captcha interstitials surface as ErrBlocked.
func FetchDocument(ctx context.Context, client *http.Client, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return nil, ErrBlocked
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	lower := strings.ToLower(string(body))
	if strings.Contains(lower, "captcha") && strings.Contains(lower, "cloudflare") {
		return nil, ErrBlocked
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}
