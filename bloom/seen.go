// Package bloom tracks already-fetched product URLs using a Bloom filter,
// so a detail page is fetched at most once per scan run. A false positive
// skips an enrichment fetch; a false negative cannot happen.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// SeenSet is a probabilistic set of product URLs.
type SeenSet struct {
	f *bloom.BloomFilter
}

// NewSeenSet creates a set sized for n expected URLs with the given false
// positive rate.
func NewSeenSet(n uint, fpRate float64) *SeenSet {
	return &SeenSet{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Seen reports whether the URL might already be in the set.
func (s *SeenSet) Seen(url string) bool {
	return s.f.TestString(url)
}

// MarkSeen adds a URL to the set and reports whether it was already
// present. Callers use the return to decide whether to fetch.
func (s *SeenSet) MarkSeen(url string) bool {
	return s.f.TestAndAddString(url)
}

// EstimatedCount returns the approximate number of URLs in the set.
func (s *SeenSet) EstimatedCount() uint {
	return uint(s.f.ApproximatedSize())
}
