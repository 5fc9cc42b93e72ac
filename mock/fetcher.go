package mock

import (
	"context"

	"github.com/bookgap/bookgap"
)

var _ bookgap.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of bookgap.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn != nil {
		return f.CloseFn()
	}
	return nil
}

var _ bookgap.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of bookgap.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
