// Package bookgap provides market gap analysis for book listings on
// noon.com. It extracts structured product records from listing and detail
// pages, enriches them with detail-page data, and scores book categories
// for publishing opportunity.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, scrapingbee/).
package bookgap
