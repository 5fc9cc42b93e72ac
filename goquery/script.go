package goquery

import (
	"encoding/json"
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

// Script payload recovery. Source pages embed product data as JSON inside
// script tags; this is the thin boundary between markup and the JSON
// miner. Payloads that fail to decode are skipped silently and extraction
// proceeds from whichever sources remain usable.

var (
	listingScriptRe = regexp.MustCompile(`(?i)products|items|searchResults`)
	detailScriptRe  = regexp.MustCompile(`(?i)product|item|data`)
)

// scriptPayloads decodes embedded JSON values from the document's script
// tags. Tags typed application/json are always considered; other scripts
// only when their text matches hint, since decoding every inline script is
// wasted work.
func scriptPayloads(doc *goquery.Document, hint *regexp.Regexp) []any {
	var payloads []any

	decode := func(_ int, sel *goquery.Selection) {
		text := sel.Text()
		if text == "" {
			return
		}
		var v any
		if err := json.Unmarshal([]byte(text), &v); err != nil {
			return // malformed payload, not an error
		}
		payloads = append(payloads, v)
	}

	doc.Find(`script[type="application/json"]`).Each(decode)
	doc.Find(`script:not([type="application/json"])`).Each(func(i int, sel *goquery.Selection) {
		if hint != nil && !hint.MatchString(sel.Text()) {
			return
		}
		decode(i, sel)
	})

	return payloads
}
