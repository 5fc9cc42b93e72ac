package goquery

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/bookgap/bookgap"
	"golang.org/x/net/html"
)

// Ensure DetailExtractor implements bookgap.DetailExtractor at compile time.
var _ bookgap.DetailExtractor = (*DetailExtractor)(nil)

// Detail-page titles must be at least this long; shorter matches are
// almost always labels or seller names.
const minDetailTitleLen = 10

// DetailExtractor extracts a single candidate record from a product detail
// page. Embedded JSON values take priority over markup-derived ones.
type DetailExtractor struct{}

// NewDetailExtractor creates a new DetailExtractor.
func NewDetailExtractor() *DetailExtractor {
	return &DetailExtractor{}
}

// ExtractDetail parses a detail page and returns one merged candidate.
// The markup side is driven by detailFieldSpecs; the JSON side folds every
// product-shaped script fragment into a single candidate (last-write-wins
// in traversal order). JSON wins per field on merge.
func (e *DetailExtractor) ExtractDetail(rawHTML string) (*bookgap.CandidateRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, bookgap.Errorf(bookgap.EINVALID, "failed to parse HTML: %v", err)
	}

	htmlCand := bookgap.NewCandidate(bookgap.ProvenanceHTML)
	for _, spec := range detailFieldSpecs {
		if v, ok := runChain(doc, spec.Strategies); ok {
			htmlCand.Set(spec.Field, v)
		}
	}
	// BSR and its category resolve together.
	if rank, category, ok := findBSR(doc); ok {
		htmlCand.Set(bookgap.FieldBSR, rank)
		htmlCand.Set(bookgap.FieldBSRCategory, category)
	}

	jsonCand := bookgap.NewCandidate(bookgap.ProvenanceJSON)
	for _, payload := range scriptPayloads(doc, detailScriptRe) {
		fragment := bookgap.MineProductData(payload)
		for _, field := range bookgap.CandidateFields() {
			if v, ok := fragment.Get(field); ok {
				jsonCand.Set(field, v)
			}
		}
	}

	return bookgap.MergeCandidates(jsonCand, htmlCand), nil
}

// detailFieldSpecs drives markup extraction: one ordered strategy chain
// per field, short-circuit on first validated success.
var detailFieldSpecs = []FieldSpec{
	{bookgap.FieldTitle, []Strategy{titleFromProductRegion, titleFromHeadings, titleFromMeta}},
	{bookgap.FieldPrice, []Strategy{priceFromSaleElements, priceFromGenericElements, priceFromMeta}},
	{bookgap.FieldCategory, []Strategy{categoryFromLabels, categoryFromBreadcrumbs}},
	{bookgap.FieldAuthor, []Strategy{authorFromMeta, authorFromElements, authorFromText}},
	{bookgap.FieldFormat, []Strategy{formatFromElements, formatFromText}},
	{bookgap.FieldPublicationDate, []Strategy{publicationDateFromElements}},
	{bookgap.FieldLanguage, []Strategy{languageFromElements}},
	{bookgap.FieldReviewCount, []Strategy{reviewCountFromElements}},
	{bookgap.FieldAverageRating, []Strategy{ratingFromElements}},
	{bookgap.FieldAvailability, []Strategy{availabilityFromElements}},
}

// --- title ---

var detailTitleSelectors = []string{
	`h1[class*="product"]`,
	`h1[class*="Product"]`,
	`[class*="ProductTitle"]`,
	`[class*="product-title"]`,
	`[class*="productName"]`,
	`[data-qa*="product-title"]`,
	`[data-qa*="product-name"]`,
}

var metaTitleSuffixRe = regexp.MustCompile(`(?i)\s*\|\s*Noon.*$`)

// acceptableDetailTitle rejects seller names and other non-title text.
func acceptableDetailTitle(text string) bool {
	if n := utf8.RuneCountInString(text); n < minDetailTitleLen || n > bookgap.MaxTitleLen {
		return false
	}
	lower := strings.ToLower(text)
	if strings.Contains(lower, "seller") || strings.Contains(lower, "sold by") {
		return false
	}
	if strings.HasPrefix(lower, "buy") {
		return false
	}
	return !isDigits(text)
}

// titleFromProductRegion prefers elements explicitly marked as the product
// title region.
func titleFromProductRegion(doc *goquery.Document) (any, bool) {
	for _, selector := range detailTitleSelectors {
		found := doc.Find(selector).First()
		if found.Length() == 0 {
			continue
		}
		if text := collapseSpace(found.Text()); acceptableDetailTitle(text) {
			return text, true
		}
	}
	return nil, false
}

// titleFromHeadings scans h1 elements, excluding any whose ancestor
// subtree is marked as a seller/merchant section.
func titleFromHeadings(doc *goquery.Document) (any, bool) {
	var title string
	doc.Find("h1").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if inSellerSection(sel) {
			return true
		}
		if text := collapseSpace(sel.Text()); acceptableDetailTitle(text) {
			title = text
			return false
		}
		return true
	})
	return title, title != ""
}

// inSellerSection walks the element's ancestors looking for a div/section/
// article whose class marks a seller or merchant region.
func inSellerSection(sel *goquery.Selection) bool {
	node := sel.Get(0)
	if node == nil {
		return false
	}
	for parent := node.Parent; parent != nil; parent = parent.Parent {
		if parent.Type != html.ElementNode {
			continue
		}
		switch parent.Data {
		case "div", "section", "article":
			class := strings.ToLower(nodeAttr(parent, "class"))
			if strings.Contains(class, "seller") || strings.Contains(class, "merchant") {
				return true
			}
		}
	}
	return false
}

func nodeAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

// titleFromMeta falls back to page metadata, stripping the trailing
// site-name suffix.
func titleFromMeta(doc *goquery.Document) (any, bool) {
	text := metaContent(doc, `meta[property="og:title"]`, `meta[name="title"]`)
	if text == "" {
		text = collapseSpace(doc.Find("title").First().Text())
	}
	text = strings.TrimSpace(metaTitleSuffixRe.ReplaceAllString(text, ""))
	if acceptableDetailTitle(text) {
		return text, true
	}
	return nil, false
}

// --- price ---

var salePriceSelectors = []string{
	`[class*="sale-price"]`,
	`[class*="SalePrice"]`,
	`[class*="current-price"]`,
	`[class*="CurrentPrice"]`,
	`[class*="price"][class*="sale"]`,
	`[data-qa*="sale-price"]`,
	`[data-qa*="current-price"]`,
}

var genericPriceSelectors = []string{
	`[class*="price"]:not([class*="original"]):not([class*="was"]):not([class*="strike"])`,
	`[class*="Price"]:not([class*="original"]):not([class*="was"]):not([class*="strike"])`,
	`[data-qa*="price"]`,
	`[data-price]`,
}

// priceFromSaleElements prefers elements explicitly marked as the sale or
// current price.
func priceFromSaleElements(doc *goquery.Document) (any, bool) {
	for _, selector := range salePriceSelectors {
		found := doc.Find(selector).First()
		if found.Length() == 0 {
			continue
		}
		if price, ok := bookgap.ParsePrice(found.Text()); ok {
			return price, true
		}
	}
	return nil, false
}

// priceFromGenericElements scans price-labelled elements not marked as
// original/was/strike. Among equally-valid candidates the first one in
// document order wins; selection is strategy-priority-based, not
// minimum-value-based.
func priceFromGenericElements(doc *goquery.Document) (any, bool) {
	var price float64
	var ok bool
	for _, selector := range genericPriceSelectors {
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := collapseSpace(sel.Text())
			lower := strings.ToLower(text)
			if strings.Contains(lower, "was") || strings.Contains(lower, "original") || strings.Contains(lower, "before") {
				return true
			}
			if p, valid := bookgap.ParsePrice(text); valid {
				price, ok = p, true
				return false
			}
			return true
		})
		if ok {
			return price, true
		}
	}
	return nil, false
}

func priceFromMeta(doc *goquery.Document) (any, bool) {
	content := metaContent(doc, `meta[property="product:price:amount"]`)
	if content == "" {
		return nil, false
	}
	if price, ok := bookgap.ParsePrice(content); ok {
		return price, true
	}
	return nil, false
}

// --- category ---

// categoryStopwords are navigation and country terms that appear in
// breadcrumbs but are not categories.
var categoryStopwords = map[string]struct{}{
	"home": {}, "books": {}, "noon": {}, "uae": {}, "oman": {},
	"qatar": {}, "saudi": {}, "egypt": {}, "kuwait": {},
}

// bookCategoryKeywords mark breadcrumb segments that carry book-domain
// signal and should be preferred.
var bookCategoryKeywords = []string{"book", "fiction", "non-fiction", "literature", "education", "children"}

var categoryLabelSelectors = []string{
	`[class*="category"]:not([class*="breadcrumb"])`,
	`[data-qa*="category"]`,
	`[itemprop="category"]`,
	`[class*="Category"]:not([class*="breadcrumb"])`,
}

var breadcrumbSelectors = []string{
	`nav[class*="breadcrumb"] a`,
	`ol[class*="breadcrumb"] a`,
	`[class*="breadcrumb"] a`,
}

func acceptableCategorySegment(text string) bool {
	if len(text) <= 2 || isDigits(text) {
		return false
	}
	lower := strings.ToLower(text)
	if _, stop := categoryStopwords[lower]; stop {
		return false
	}
	return !strings.HasPrefix(lower, "noon")
}

// categoryFromLabels prefers non-breadcrumb category-labelled elements.
func categoryFromLabels(doc *goquery.Document) (any, bool) {
	for _, selector := range categoryLabelSelectors {
		found := doc.Find(selector)
		if found.Length() == 0 {
			continue
		}
		var segments []string
		found.Each(func(_ int, sel *goquery.Selection) {
			if text := collapseSpace(sel.Text()); acceptableCategorySegment(text) {
				segments = append(segments, text)
			}
		})
		if len(segments) > 0 {
			return joinLastSegments(segments), true
		}
	}
	return nil, false
}

// categoryFromBreadcrumbs falls back to breadcrumb links, filtering
// navigation/country stopwords and preferring book-domain segments.
func categoryFromBreadcrumbs(doc *goquery.Document) (any, bool) {
	for _, selector := range breadcrumbSelectors {
		found := doc.Find(selector)
		if found.Length() == 0 {
			continue
		}
		var segments []string
		found.Each(func(_ int, sel *goquery.Selection) {
			if text := collapseSpace(sel.Text()); acceptableCategorySegment(text) {
				segments = append(segments, text)
			}
		})
		if len(segments) == 0 {
			continue
		}

		var bookSegments []string
		for _, s := range segments {
			lower := strings.ToLower(s)
			for _, kw := range bookCategoryKeywords {
				if strings.Contains(lower, kw) {
					bookSegments = append(bookSegments, s)
					break
				}
			}
		}
		if len(bookSegments) > 0 {
			return joinLastSegments(bookSegments), true
		}
		return joinLastSegments(segments), true
	}
	return nil, false
}

// joinLastSegments returns the most specific one or two segments joined
// by " > ".
func joinLastSegments(segments []string) string {
	if len(segments) == 1 {
		return segments[0]
	}
	return strings.Join(segments[len(segments)-2:], " > ")
}

// --- author ---

var authorElementSelectors = []string{
	`[class*="author"]:not([class*="noon"]):not([class*="seller"])`,
	`[class*="Author"]:not([class*="noon"]):not([class*="seller"])`,
	`[data-qa*="author"]`,
	`[itemprop="author"]`,
}

var authorTextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`By\s+([A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z.]+)*)`),
	regexp.MustCompile(`Author:\s*([A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z.]+)*)`),
}

func acceptableAuthor(text string) bool {
	if len(text) <= 2 || len(text) >= 100 {
		return false
	}
	lower := strings.ToLower(text)
	if strings.Contains(lower, "noon") || strings.Contains(lower, "seller") {
		return false
	}
	return !strings.HasPrefix(text, "http")
}

func authorFromMeta(doc *goquery.Document) (any, bool) {
	author := metaContent(doc,
		`meta[property="book:author"]`,
		`meta[name="author"]`,
		`meta[property="og:book:author"]`,
	)
	if acceptableAuthor(author) {
		return author, true
	}
	return nil, false
}

func authorFromElements(doc *goquery.Document) (any, bool) {
	var author string
	for _, selector := range authorElementSelectors {
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := collapseSpace(sel.Text())
			text = stripLabel(text, "Author")
			text = stripLabel(text, "By")
			if acceptableAuthor(text) {
				author = text
				return false
			}
			return true
		})
		if author != "" {
			return author, true
		}
	}
	return nil, false
}

func authorFromText(doc *goquery.Document) (any, bool) {
	pageText := doc.Text()
	for _, re := range authorTextPatterns {
		if m := re.FindStringSubmatch(pageText); m != nil {
			if author := strings.TrimSpace(m[1]); acceptableAuthor(author) {
				return author, true
			}
		}
	}
	return nil, false
}

// --- format ---

var formatElementSelectors = []string{
	`[class*="format"]:not([class*="price"]):not([class*="discount"])`,
	`[class*="Format"]:not([class*="price"]):not([class*="discount"])`,
	`[data-qa*="format"]`,
	`[itemprop="bookFormat"]`,
}

func formatFromElements(doc *goquery.Document) (any, bool) {
	for _, selector := range formatElementSelectors {
		found := doc.Find(selector).First()
		if found.Length() == 0 {
			continue
		}
		text := stripLabel(collapseSpace(found.Text()), "Format")
		if format, ok := bookgap.ParseFormat(text); ok {
			return format, true
		}
	}
	return nil, false
}

// formatFromText scans the whole page for a vocabulary term near the
// keywords Format/Edition/Type.
func formatFromText(doc *goquery.Document) (any, bool) {
	pageText := doc.Text()
	for _, format := range bookgap.Formats {
		quoted := regexp.QuoteMeta(format)
		re := regexp.MustCompile(`(?i)(?:Format|Edition|Type)[:\s]*` + quoted + `|` + quoted + `(?:\s+Edition|\s+Format)`)
		if re.MatchString(pageText) {
			return format, true
		}
	}
	return nil, false
}

// --- publication date / language ---

var publicationDateSelectors = []string{
	`[class*="publication"]`,
	`[class*="publish"]`,
	`[class*="date"]`,
	`[data-qa*="date"]`,
}

var dateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}|\d{2}/\d{2}/\d{4}|\d{4}`)

func publicationDateFromElements(doc *goquery.Document) (any, bool) {
	for _, selector := range publicationDateSelectors {
		found := doc.Find(selector).First()
		if found.Length() == 0 {
			continue
		}
		if date := dateRe.FindString(found.Text()); date != "" {
			return date, true
		}
	}
	return nil, false
}

var languageSelectors = []string{
	`[class*="language"]`,
	`[class*="Language"]`,
	`[data-qa*="language"]`,
}

func languageFromElements(doc *goquery.Document) (any, bool) {
	for _, selector := range languageSelectors {
		found := doc.Find(selector).First()
		if found.Length() == 0 {
			continue
		}
		text := stripLabel(collapseSpace(found.Text()), "Language")
		if len(text) > 2 {
			return text, true
		}
	}
	return nil, false
}

// --- review count / rating / availability ---

var reviewElementSelectors = []string{
	`[class*="review"]`,
	`[class*="Review"]`,
	`[data-qa*="review"]`,
}

func reviewCountFromElements(doc *goquery.Document) (any, bool) {
	for _, selector := range reviewElementSelectors {
		found := doc.Find(selector).First()
		if found.Length() == 0 {
			continue
		}
		if n, ok := reviewCountFromText(found.Text()); ok {
			return n, true
		}
	}
	return nil, false
}

var ratingElementSelectors = []string{
	`[class*="rating"]`,
	`[class*="Rating"]`,
	`[class*="star"]`,
	`[data-qa*="rating"]`,
	`[itemprop="ratingValue"]`,
}

func ratingFromElements(doc *goquery.Document) (any, bool) {
	for _, selector := range ratingElementSelectors {
		found := doc.Find(selector).First()
		if found.Length() == 0 {
			continue
		}
		if rating, ok := bookgap.ParseRating(found.Text()); ok {
			return rating, true
		}
	}
	return nil, false
}

var availabilityElementSelectors = []string{
	`[class*="stock"]`,
	`[class*="Stock"]`,
	`[class*="availability"]`,
	`[data-qa*="stock"]`,
}

func availabilityFromElements(doc *goquery.Document) (any, bool) {
	for _, selector := range availabilityElementSelectors {
		found := doc.Find(selector).First()
		if found.Length() == 0 {
			continue
		}
		if availability, ok := bookgap.ParseAvailability(found.Text()); ok {
			return availability, true
		}
	}
	return nil, false
}
