package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bookgap/bookgap"
)

// bsrPatterns capture a sales rank and its category from text like
// "#1,234 in Children's Books" or "Best Sellers Rank: 567 in Fiction".
// Ordered by specificity; the bare "N in Category" form is the
// lowest-priority fallback and leans on category validation to reject
// incidental matches.
var bsrPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)#([\d,]+)\s+in\s+(.+?)(?:\s*\(|$)`),
	regexp.MustCompile(`(?i)Best\s*Sellers?\s*Rank[:\s]*#?([\d,]+)\s+in\s+(.+?)(?:\s*\(|$)`),
	regexp.MustCompile(`(?i)Rank[:\s]*#?([\d,]+)\s+in\s+(.+?)(?:\s*\(|$)`),
	regexp.MustCompile(`(?i)\b([\d,]+)\s+in\s+(.+?)(?:\s*\(|$)`),
}

// bsrCategoryStopwords reject generic words captured by the greedy
// category group.
var bsrCategoryStopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "in": {}, "of": {}, "and": {},
}

var bsrElementSelectors = []string{
	`[class*="rank"]`,
	`[class*="Rank"]`,
	`[class*="bestseller"]`,
	`[class*="best-seller"]`,
	`[data-qa*="rank"]`,
}

// findBSR resolves the sales rank and its category together. Rank-labelled
// elements are tried first, then the full page text, then embedded script
// bodies.
func findBSR(doc *goquery.Document) (int, string, bool) {
	for _, selector := range bsrElementSelectors {
		var rank int
		var category string
		var found bool
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if r, c, ok := parseBSRText(sel.Text()); ok {
				rank, category, found = r, c, true
				return false
			}
			return true
		})
		if found {
			return rank, category, true
		}
	}

	if rank, category, ok := parseBSRText(doc.Text()); ok {
		return rank, category, true
	}

	var rank int
	var category string
	var found bool
	doc.Find("script").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if r, c, ok := parseBSRText(sel.Text()); ok {
			rank, category, found = r, c, true
			return false
		}
		return true
	})
	return rank, category, found
}

// parseBSRText tries each rank pattern against the text and validates
// both the rank bounds and the captured category.
func parseBSRText(text string) (int, string, bool) {
	for _, re := range bsrPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			rank, ok := bookgap.ParseBSR(strings.ReplaceAll(m[1], ",", ""))
			if !ok {
				continue
			}
			category := collapseSpace(m[2])
			if acceptableBSRCategory(category) {
				return rank, category, true
			}
		}
	}
	return 0, "", false
}

func acceptableBSRCategory(category string) bool {
	if len(category) <= 2 || isDigits(category) {
		return false
	}
	_, stop := bsrCategoryStopwords[strings.ToLower(category)]
	return !stop
}
