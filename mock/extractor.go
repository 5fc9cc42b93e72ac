package mock

import "github.com/bookgap/bookgap"

var _ bookgap.ListingExtractor = (*ListingExtractor)(nil)

// ListingExtractor is a mock implementation of bookgap.ListingExtractor.
type ListingExtractor struct {
	ExtractProductsFn func(html string) ([]*bookgap.Product, error)
}

func (e *ListingExtractor) ExtractProducts(html string) ([]*bookgap.Product, error) {
	return e.ExtractProductsFn(html)
}

var _ bookgap.DetailExtractor = (*DetailExtractor)(nil)

// DetailExtractor is a mock implementation of bookgap.DetailExtractor.
type DetailExtractor struct {
	ExtractDetailFn func(html string) (*bookgap.CandidateRecord, error)
}

func (e *DetailExtractor) ExtractDetail(html string) (*bookgap.CandidateRecord, error) {
	return e.ExtractDetailFn(html)
}
