// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchDocument(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><h1 class="title">Hello</h1></body></html>`)
	}))
	defer ts.Close()

	doc, err := FetchDocument(context.Background(), ts.Client(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "Hello", doc.Find("h1.title").Text())
}

func TestFetchDocumentBlocked(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "403 forbidden",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
		},
		{
			name: "cloudflare captcha page",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `<html><body>Cloudflare needs you to solve this CAPTCHA</body></html>`)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			_, err := FetchDocument(context.Background(), ts.Client(), ts.URL)
			assert.ErrorIs(t, err, ErrBlocked)
		})
	}
}

func TestFetchDocumentNon200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	_, err := FetchDocument(context.Background(), ts.Client(), ts.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}
