// Package goquery implements bookgap's listing and detail extractors on
// top of CSS selection. Each target field is resolved by an ordered chain
// of pure strategies evaluated in priority order with short-circuit on the
// first validated success; the chains and their selectors are static data,
// so source-site structural drift is patched in the tables without touching
// the extraction algorithms.
package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bookgap/bookgap"
)

// Strategy tries to extract one field's normalized value from a parsed
// document. It returns absent (ok == false) rather than an error: a field
// the page does not carry is a normal condition.
type Strategy func(doc *goquery.Document) (any, bool)

// FieldSpec binds a candidate field to its ordered strategy chain.
type FieldSpec struct {
	Field      string
	Strategies []Strategy
}

// runChain evaluates a strategy chain in order and returns the first
// validated result. Later strategies are never consulted once one succeeds.
func runChain(doc *goquery.Document, strategies []Strategy) (any, bool) {
	for _, s := range strategies {
		if v, ok := s(doc); ok {
			return v, true
		}
	}
	return nil, false
}

// selectorText returns the trimmed, space-separated text of the first
// element matching any of the selectors, tried in order.
func selectorText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if found := doc.Find(sel).First(); found.Length() > 0 {
			if text := collapseSpace(found.Text()); text != "" {
				return text
			}
		}
	}
	return ""
}

// metaContent returns the content attribute of the first matching meta tag.
func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			if content = strings.TrimSpace(content); content != "" {
				return content
			}
		}
	}
	return ""
}

var spaceRe = regexp.MustCompile(`\s+`)

// collapseSpace trims text and collapses internal whitespace runs to
// single spaces, matching how card markup interleaves text nodes.
func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// isDigits reports whether s is non-empty and consists only of digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// stripLabel removes a leading "Label:" prefix (case-insensitive).
func stripLabel(text, label string) string {
	re := regexp.MustCompile(`(?i)^` + label + `:?\s*`)
	return strings.TrimSpace(re.ReplaceAllString(text, ""))
}

// reviewCountFromText parses a review count only when the text actually
// mentions reviews; a bare digit run in surrounding markup is not one.
func reviewCountFromText(text string) (int, bool) {
	if !strings.Contains(strings.ToLower(text), "review") {
		return 0, false
	}
	return bookgap.ParseReviewCount(text)
}
