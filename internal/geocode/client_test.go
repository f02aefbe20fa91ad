package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/config"
)

func testClient(baseURL string) *Client {
	return NewClient(config.GeocoderConfig{
		BaseURL:        baseURL,
		CountryCodes:   "ng",
		UserAgent:      "nipex-prequal-test/1.0",
		TimeoutSeconds: 2,
		MinIntervalMS:  1, // keep tests fast
	})
}

func TestLookupSuccess(t *testing.T) {
	var gotUA, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"display_name":"Trans Amadi, Port Harcourt, Rivers, Nigeria","address":{"city":"Port Harcourt","state":"Rivers"}}]`))
	}))
	defer srv.Close()

	places, err := testClient(srv.URL).Lookup(context.Background(), "Trans Amadi, Nigeria")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(places) != 1 {
		t.Fatalf("expected 1 place, got %d", len(places))
	}
	if places[0].Address.City != "Port Harcourt" {
		t.Errorf("expected city Port Harcourt, got %q", places[0].Address.City)
	}
	if gotUA != "nipex-prequal-test/1.0" {
		t.Errorf("expected client label in User-Agent, got %q", gotUA)
	}
	if gotQuery != "Trans Amadi, Nigeria" {
		t.Errorf("expected query forwarded verbatim, got %q", gotQuery)
	}
}

func TestLookupFailureModes(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
		},
		{
			name: "empty result array",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[]`))
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{not json`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := testClient(srv.URL).Lookup(context.Background(), "anything")
			if !errors.Is(err, ErrLookupFailed) {
				t.Fatalf("expected ErrLookupFailed, got %v", err)
			}
		})
	}
}

func TestLookupNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := testClient(srv.URL).Lookup(context.Background(), "anything")
	if !errors.Is(err, ErrLookupFailed) {
		t.Fatalf("expected ErrLookupFailed, got %v", err)
	}
}

func TestLookupSerializesCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"display_name":"x","address":{"city":"X"}}]`))
	}))
	defer srv.Close()

	c := NewClient(config.GeocoderConfig{
		BaseURL:        srv.URL,
		UserAgent:      "t",
		TimeoutSeconds: 2,
		MinIntervalMS:  40,
	})

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := c.Lookup(context.Background(), "q"); err != nil {
			t.Fatalf("lookup %d failed: %v", i, err)
		}
	}
	// Burst 1: the second and third calls each wait out the interval.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("expected rate limiting to spread 3 calls over >=80ms, took %v", elapsed)
	}
}
