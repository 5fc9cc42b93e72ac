package bookgap

import "context"

// Fetcher retrieves rendered HTML from URLs.
// Implementations may delegate JavaScript rendering to an external
// rendering API. Retries, backoff, and rate limits live behind this
// boundary, never inside the extraction engine.
type Fetcher interface {
	// Fetch retrieves the rendered HTML for the URL.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases client resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
