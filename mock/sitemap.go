package mock

import (
	"context"

	"github.com/bookgap/bookgap"
)

var _ bookgap.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of bookgap.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *bookgap.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *bookgap.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}
