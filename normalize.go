package bookgap

import (
	"regexp"
	"strconv"
	"strings"
)

// Field normalizers accept a raw value of unknown shape (string, number,
// boolean, or structured sub-object from decoded JSON) and return either a
// canonical typed value or absent (ok == false). They never return errors:
// an unparseable field is a normal condition, not an exceptional one.

var (
	decimalRe     = regexp.MustCompile(`\d+(?:\.\d+)?`)
	digitsRe      = regexp.MustCompile(`\d+`)
	reviewCountRe = regexp.MustCompile(`(?i)(\d+)\s*reviews?`)
	discountRe    = regexp.MustCompile(`(?i)(\d+)\s*%\s*(?:off|discount|sale)`)
)

// cashbackWindow is the number of characters after a discount match within
// which the word "cashback" disqualifies it. Cashback percentages are
// unrelated to price discounts; a preceding cashback offer (e.g.
// "5% cashback, 20% Off") must not disqualify the real discount, so the
// window only extends forward from the match.
const cashbackWindow = 20

// ParsePrice normalizes a raw price value. Strings are stripped of currency
// symbols and non-numeric characters; commas are treated as decimal
// separators. Price objects ({"value": 45.99} or {"amount": 45.99}) are
// unwrapped. Accepts only prices in (MinPrice, MaxPrice].
func ParsePrice(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return checkPrice(v)
	case int:
		return checkPrice(float64(v))
	case string:
		m := decimalRe.FindString(strings.ReplaceAll(v, ",", "."))
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0, false
		}
		return checkPrice(f)
	case map[string]any:
		if inner, ok := v["value"]; ok {
			return ParsePrice(inner)
		}
		if inner, ok := v["amount"]; ok {
			return ParsePrice(inner)
		}
	}
	return 0, false
}

func checkPrice(f float64) (float64, bool) {
	if f <= MinPrice || f > MaxPrice {
		return 0, false
	}
	return f, true
}

// ParseRating parses the first decimal number in the input and accepts it
// only if it lies in [0, 5].
func ParseRating(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return checkRating(v)
	case int:
		return checkRating(float64(v))
	case string:
		m := decimalRe.FindString(v)
		if m == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0, false
		}
		return checkRating(f)
	}
	return 0, false
}

func checkRating(f float64) (float64, bool) {
	if f < 0 || f > 5 {
		return 0, false
	}
	return f, true
}

// ParseReviewCount parses a non-negative review count. When the text
// mentions "review(s)" the digit run anchored to that word is used;
// otherwise the first digit run in the text. There is no upper bound.
func ParseReviewCount(raw any) (int, bool) {
	switch v := raw.(type) {
	case float64:
		if v < 0 {
			return 0, false
		}
		return int(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return v, true
	case string:
		if m := reviewCountRe.FindStringSubmatch(v); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil || n < 0 {
				return 0, false
			}
			return n, true
		}
		m := digitsRe.FindString(v)
		if m == "" {
			return 0, false
		}
		n, err := strconv.Atoi(m)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// ParseDiscount parses a discount percentage from text like "20% Off" or
// "15% discount". A match is rejected when "cashback" appears within the
// match or the cashbackWindow characters after it, since cashback
// percentages do not reflect price reductions. Accepts only values in
// [0, 100].
func ParseDiscount(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return checkDiscount(v)
	case int:
		return checkDiscount(float64(v))
	case string:
		lower := strings.ToLower(v)
		for _, loc := range discountRe.FindAllStringSubmatchIndex(v, -1) {
			end := loc[1] + cashbackWindow
			if end > len(lower) {
				end = len(lower)
			}
			if strings.Contains(lower[loc[0]:end], "cashback") {
				continue
			}
			f, err := strconv.ParseFloat(v[loc[2]:loc[3]], 64)
			if err != nil {
				continue
			}
			return checkDiscount(f)
		}
	}
	return 0, false
}

func checkDiscount(f float64) (float64, bool) {
	if f < 0 || f > 100 {
		return 0, false
	}
	return f, true
}

// ParseAvailability maps raw stock text (or a boolean stock flag) to an
// Availability value. "unavailable" is checked before "available" since the
// former contains the latter as a substring.
func ParseAvailability(raw any) (Availability, bool) {
	switch v := raw.(type) {
	case bool:
		if v {
			return AvailabilityInStock, true
		}
		return AvailabilityOutOfStock, true
	case string:
		text := strings.ToLower(v)
		switch {
		case strings.Contains(text, "out of stock"), strings.Contains(text, "unavailable"):
			return AvailabilityOutOfStock, true
		case strings.Contains(text, "low stock"):
			return AvailabilityLowStock, true
		case strings.Contains(text, "in stock"), strings.Contains(text, "available"):
			return AvailabilityInStock, true
		}
	case Availability:
		if v != AvailabilityUnknown {
			return v, true
		}
	}
	return AvailabilityUnknown, false
}

// Formats is the closed vocabulary of book formats, in match-priority
// order. ParseFormat returns the canonical label of the first term that
// matches.
var Formats = []string{
	"Hardcover",
	"Paperback",
	"eBook",
	"Audiobook",
	"Kindle",
	"PDF",
	"Mass Market Paperback",
}

// ParseFormat matches text against the closed format vocabulary as a
// case-insensitive substring and returns the canonical label.
func ParseFormat(raw any) (string, bool) {
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	lower := strings.ToLower(s)
	for _, f := range Formats {
		if strings.Contains(lower, strings.ToLower(f)) {
			return f, true
		}
	}
	return "", false
}

// MaxBSR is the largest plausible best seller rank.
const MaxBSR = 10_000_000

// ParseBSR parses a best seller rank, accepting only [1, MaxBSR].
func ParseBSR(raw any) (int, bool) {
	switch v := raw.(type) {
	case float64:
		return checkBSR(int(v))
	case int:
		return checkBSR(v)
	case string:
		m := digitsRe.FindString(v)
		if m == "" {
			return 0, false
		}
		n, err := strconv.Atoi(m)
		if err != nil {
			return 0, false
		}
		return checkBSR(n)
	}
	return 0, false
}

func checkBSR(n int) (int, bool) {
	if n < 1 || n > MaxBSR {
		return 0, false
	}
	return n, true
}
