package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/jylux/nipex-prequal-sup-creation-v7/internal/config"
)

// ErrLookupFailed marks every failure mode of the geocoding provider:
// network error, timeout, non-200 status or an empty result set. Callers
// recover from it locally; it never reaches the operator.
var ErrLookupFailed = errors.New("geocoder lookup failed")

// Place is one structured match returned by Nominatim.
type Place struct {
	DisplayName string       `json:"display_name"`
	Address     PlaceAddress `json:"address"`
}

// PlaceAddress holds the structured address components the resolver ranks.
type PlaceAddress struct {
	City          string `json:"city"`
	Town          string `json:"town"`
	Municipality  string `json:"municipality"`
	County        string `json:"county"`
	StateDistrict string `json:"state_district"`
	Suburb        string `json:"suburb"`
	Village       string `json:"village"`
	State         string `json:"state"`
}

// Client wraps the Nominatim search API. A rate limiter with burst 1
// serializes outbound calls and enforces the provider's minimum interval, so
// overlapping lookups are impossible by construction.
type Client struct {
	baseURL      string
	countryCodes string
	userAgent    string
	httpClient   *http.Client
	limiter      *rate.Limiter
}

func NewClient(cfg config.GeocoderConfig) *Client {
	interval := cfg.MinInterval()
	return &Client{
		baseURL:      cfg.BaseURL,
		countryCodes: cfg.CountryCodes,
		userAgent:    cfg.UserAgent,
		httpClient:   &http.Client{Timeout: cfg.Timeout()},
		limiter:      rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Lookup queries the provider for free-text query and returns its matches.
// It blocks until the rate limiter grants a slot.
func (c *Client) Lookup(ctx context.Context, query string) ([]Place, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", "3")
	params.Set("q", query)
	if c.countryCodes != "" {
		params.Set("countrycodes", c.countryCodes)
	}

	reqURL := c.baseURL + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrLookupFailed, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrLookupFailed, resp.StatusCode)
	}

	var places []Place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrLookupFailed, err)
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("%w: no results", ErrLookupFailed)
	}

	return places, nil
}

// Interval reports the effective delay enforced between lookups.
func (c *Client) Interval() time.Duration {
	return time.Duration(float64(time.Second) / float64(c.limiter.Limit()))
}
