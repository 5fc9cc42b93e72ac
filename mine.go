package bookgap

import "sort"

// The JSON miner searches a decoded JSON value tree (the `any` shape
// produced by encoding/json: nil, bool, float64, string, []any,
// map[string]any) for product-shaped objects. Source pages embed product
// data in script payloads under no stable schema, so each target field is
// resolved from an ordered list of accepted key aliases; the first alias
// present wins.

// maxMineDepth bounds recursion to guard against pathological nesting.
const maxMineDepth = 64

// fieldAlias binds a canonical field to its ordered JSON key aliases and
// the normalizer that validates raw values.
type fieldAlias struct {
	field     string
	aliases   []string
	normalize func(any) (any, bool)
}

func asString(raw any) (any, bool) {
	if s, ok := raw.(string); ok && s != "" {
		return s, true
	}
	return nil, false
}

func wrapFloat(f func(any) (float64, bool)) func(any) (any, bool) {
	return func(raw any) (any, bool) {
		v, ok := f(raw)
		if !ok {
			return nil, false
		}
		return v, true
	}
}

func wrapInt(f func(any) (int, bool)) func(any) (any, bool) {
	return func(raw any) (any, bool) {
		v, ok := f(raw)
		if !ok {
			return nil, false
		}
		return v, true
	}
}

func wrapString(f func(any) (string, bool)) func(any) (any, bool) {
	return func(raw any) (any, bool) {
		v, ok := f(raw)
		if !ok {
			return nil, false
		}
		return v, true
	}
}

func wrapAvailability(raw any) (any, bool) {
	v, ok := ParseAvailability(raw)
	if !ok {
		return nil, false
	}
	return v, true
}

// fieldAliases is the static alias table per field. Keeping it as data
// rather than traversal code means source-site schema drift is patched
// here, without touching the mining algorithm.
var fieldAliases = []fieldAlias{
	{FieldTitle, []string{"title", "name", "productName", "displayName"}, asString},
	{FieldPrice, []string{"price", "salePrice", "currentPrice", "amount"}, wrapFloat(ParsePrice)},
	{FieldProductURL, []string{"url", "link", "productUrl", "href", "slug"}, asString},
	{FieldCategory, []string{"category", "categoryPath"}, asString},
	{FieldImageURL, []string{"imageUrl", "image", "thumbnail"}, asString},
	{FieldSKU, []string{"sku", "productId", "id"}, asString},
	{FieldReviewCount, []string{"reviewCount", "reviews", "numReviews"}, wrapInt(ParseReviewCount)},
	{FieldAverageRating, []string{"rating", "averageRating", "starRating"}, wrapFloat(ParseRating)},
	{FieldBSR, []string{"bsr", "bestSellerRank", "rank", "salesRank"}, wrapInt(ParseBSR)},
	{FieldBSRCategory, []string{"bsrCategory", "category", "categoryPath"}, asString},
	{FieldAvailability, []string{"availability", "stockStatus", "inStock"}, wrapAvailability},
	{FieldDiscount, []string{"discount", "discountPercent", "salePercent"}, wrapFloat(ParseDiscount)},
	{FieldAuthor, []string{"author", "authorName"}, asString},
	{FieldFormat, []string{"format", "bookFormat", "edition"}, wrapString(ParseFormat)},
	{FieldPublicationDate, []string{"publicationDate", "publishDate", "releaseDate"}, asString},
	{FieldLanguage, []string{"language", "lang"}, asString},
}

// productShapeKeys marks an object as product-shaped when at least one of
// them is present (case-insensitive).
var productShapeKeys = map[string]struct{}{
	"title": {}, "name": {}, "productname": {}, "displayname": {},
	"price": {}, "saleprice": {}, "currentprice": {},
	"rating": {}, "averagerating": {}, "starrating": {},
	"reviewcount": {}, "reviews": {}, "numreviews": {},
	"author": {}, "authorname": {},
	"category": {}, "categorypath": {},
	"format": {}, "bookformat": {}, "edition": {},
	"publicationdate": {}, "publishdate": {}, "releasedate": {},
	"language": {}, "lang": {},
	"bsr": {}, "bestsellerrank": {}, "rank": {},
	"availability": {}, "stockstatus": {}, "instock": {},
	"url": {}, "link": {}, "sku": {}, "productid": {},
}

// MineProducts depth-first searches a JSON value tree for product-shaped
// objects and returns one JSON-provenance candidate per matching object.
// Nested objects and arrays are visited regardless of whether the parent
// matched, so a single document can yield multiple candidates. Object
// children are visited in sorted key order so the same document always
// yields the same candidates in the same order.
func MineProducts(v any) []*CandidateRecord {
	var out []*CandidateRecord
	mineProducts(v, 0, &out)
	return out
}

func mineProducts(v any, depth int, out *[]*CandidateRecord) {
	if depth > maxMineDepth {
		return
	}
	switch node := v.(type) {
	case map[string]any:
		if looksLikeProduct(node) {
			if c := candidateFromObject(node); c.Len() > 0 {
				*out = append(*out, c)
			}
		}
		for _, k := range sortedKeys(node) {
			mineProducts(node[k], depth+1, out)
		}
	case []any:
		for _, child := range node {
			mineProducts(child, depth+1, out)
		}
	}
}

// MineProductData depth-first searches a JSON value tree and folds every
// product-shaped fragment into a single JSON-provenance candidate.
//
// Merge contract: when multiple fragments set the same field, the last
// fragment visited in traversal order overwrites earlier ones. Traversal
// order is deterministic: array elements in order, object children in
// sorted key order. This
// last-write-wins behavior is deliberate and documented; it means an
// unrelated nested object can clobber an earlier correct value with no
// conflict signal. Preserved as-is for observable compatibility.
func MineProductData(v any) *CandidateRecord {
	c := NewCandidate(ProvenanceJSON)
	mineProductData(v, 0, c)
	return c
}

func mineProductData(v any, depth int, c *CandidateRecord) {
	if depth > maxMineDepth {
		return
	}
	switch node := v.(type) {
	case map[string]any:
		if looksLikeProduct(node) {
			fillFromObject(node, c)
		}
		for _, k := range sortedKeys(node) {
			mineProductData(node[k], depth+1, c)
		}
	case []any:
		for _, child := range node {
			mineProductData(child, depth+1, c)
		}
	}
}

// sortedKeys fixes the visit order of object children. Go map iteration
// is randomized, which would make the last-write-wins fold and the
// first-seen ordering of mined candidates vary between runs of the same
// document.
func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// looksLikeProduct reports whether an object carries at least one key from
// the product-shape alias set.
func looksLikeProduct(obj map[string]any) bool {
	for k := range obj {
		if _, ok := productShapeKeys[lowerASCII(k)]; ok {
			return true
		}
	}
	return false
}

// candidateFromObject resolves each target field from its alias list.
func candidateFromObject(obj map[string]any) *CandidateRecord {
	c := NewCandidate(ProvenanceJSON)
	fillFromObject(obj, c)
	return c
}

func fillFromObject(obj map[string]any, c *CandidateRecord) {
	for _, fa := range fieldAliases {
		for _, alias := range fa.aliases {
			raw, ok := obj[alias]
			if !ok || raw == nil {
				continue
			}
			if v, ok := fa.normalize(raw); ok {
				c.Set(fa.field, v)
			}
			break // first present alias wins, parseable or not
		}
	}
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, ch := range b {
		if ch >= 'A' && ch <= 'Z' {
			b[i] = ch + ('a' - 'A')
		}
	}
	return string(b)
}
