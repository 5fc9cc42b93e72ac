package slog

import (
	"log/slog"
	"time"

	"github.com/bookgap/bookgap"
)

// Ensure LoggingListingExtractor implements bookgap.ListingExtractor.
var _ bookgap.ListingExtractor = (*LoggingListingExtractor)(nil)

// LoggingListingExtractor wraps a ListingExtractor with logging.
type LoggingListingExtractor struct {
	next   bookgap.ListingExtractor
	logger *slog.Logger
}

// NewLoggingListingExtractor creates a new LoggingListingExtractor.
func NewLoggingListingExtractor(next bookgap.ListingExtractor, logger *slog.Logger) *LoggingListingExtractor {
	return &LoggingListingExtractor{next: next, logger: logger}
}

// ExtractProducts delegates to the wrapped extractor and logs the operation.
func (e *LoggingListingExtractor) ExtractProducts(html string) (products []*bookgap.Product, err error) {
	defer func(begin time.Time) {
		e.logger.Info("listing extraction",
			"bytes", len(html),
			"products", len(products),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.ExtractProducts(html)
}

// Ensure LoggingDetailExtractor implements bookgap.DetailExtractor.
var _ bookgap.DetailExtractor = (*LoggingDetailExtractor)(nil)

// LoggingDetailExtractor wraps a DetailExtractor with logging.
type LoggingDetailExtractor struct {
	next   bookgap.DetailExtractor
	logger *slog.Logger
}

// NewLoggingDetailExtractor creates a new LoggingDetailExtractor.
func NewLoggingDetailExtractor(next bookgap.DetailExtractor, logger *slog.Logger) *LoggingDetailExtractor {
	return &LoggingDetailExtractor{next: next, logger: logger}
}

// ExtractDetail delegates to the wrapped extractor and logs the operation.
func (e *LoggingDetailExtractor) ExtractDetail(html string) (detail *bookgap.CandidateRecord, err error) {
	defer func(begin time.Time) {
		fields := 0
		if detail != nil {
			fields = detail.Len()
		}
		e.logger.Info("detail extraction",
			"bytes", len(html),
			"fields", fields,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.ExtractDetail(html)
}
