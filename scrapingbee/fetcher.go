// Package scrapingbee provides a bookgap.Fetcher that renders JavaScript
// through the ScrapingBee proxy API. Source listing and detail pages build
// most of their markup client-side, so a plain HTTP fetch returns a shell.
package scrapingbee

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bookgap/bookgap"
)

// DefaultEndpoint is the ScrapingBee API endpoint.
const DefaultEndpoint = "https://app.scrapingbee.com/api/v1/"

// DefaultFetchTimeout is the default timeout for rendered fetches.
// Rendering takes far longer than a static fetch, so this is generous.
const DefaultFetchTimeout = 90 * time.Second

// DefaultCountryCode routes requests through UAE proxies so prices and
// availability match what local visitors see.
const DefaultCountryCode = "ae"

// Ensure Fetcher implements bookgap.Fetcher at compile time.
var _ bookgap.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML through the ScrapingBee API.
type Fetcher struct {
	client      *http.Client
	apiKey      string
	endpoint    string
	countryCode string
	renderJS    bool
	timeout     time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for rendered fetches.
// Defaults to DefaultFetchTimeout (90s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithEndpoint overrides the API endpoint. Useful for tests.
func WithEndpoint(endpoint string) Option {
	return func(f *Fetcher) {
		f.endpoint = endpoint
	}
}

// WithCountryCode sets the proxy country. Defaults to DefaultCountryCode.
func WithCountryCode(code string) Option {
	return func(f *Fetcher) {
		f.countryCode = code
	}
}

// WithoutRendering disables JavaScript rendering, dropping to a cheaper
// proxied static fetch.
func WithoutRendering() Option {
	return func(f *Fetcher) {
		f.renderJS = false
	}
}

// NewFetcher creates a ScrapingBee-backed Fetcher using the given API key.
func NewFetcher(apiKey string, opts ...Option) *Fetcher {
	f := &Fetcher{
		apiKey:      apiKey,
		endpoint:    DefaultEndpoint,
		countryCode: DefaultCountryCode,
		renderJS:    true,
		timeout:     DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the rendered HTML for the given URL.
func (f *Fetcher) Fetch(ctx context.Context, target string) (string, error) {
	if f.apiKey == "" {
		return "", bookgap.Errorf(bookgap.EUNAUTHORIZED, "scrapingbee api key required")
	}

	params := url.Values{}
	params.Set("api_key", f.apiKey)
	params.Set("url", target)
	params.Set("render_js", strconv.FormatBool(f.renderJS))
	params.Set("country_code", f.countryCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		// The API explains failures in the body; keep a prefix of it.
		detail := string(body)
		if len(detail) > 500 {
			detail = detail[:500]
		}
		return "", fmt.Errorf("scrapingbee returned HTTP %d for %s: %s", resp.StatusCode, target, detail)
	}

	return string(body), nil
}

// Close releases resources. The underlying http.Client needs no explicit
// cleanup.
func (f *Fetcher) Close() error {
	return nil
}
