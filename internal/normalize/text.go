package normalize

import (
	"net/url"
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// CleanText collapses runs of whitespace (including newlines from
// pretty-printed HTML) into single spaces and trims the result.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// AbsoluteURL resolves href against base, same semantics as the
// extraction package's absolutize but exported for use by other layers
// (bulk seeding, link discovery).
func AbsoluteURL(href, base string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}

var outOfStockTerms = []string{
	"out of stock", "sold out", "unavailable", "currently unavailable",
}

var inStockTerms = []string{
	"in stock", "available", "add to cart", "add to bag", "buy now",
}

// InferAvailability guesses in-stock status from free-text availability
// copy. It returns nil when the text is ambiguous or empty rather than
// guessing, since callers treat nil as "unknown" and leave the DB column
// null.
func InferAvailability(text string) *bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return nil
	}
	for _, term := range outOfStockTerms {
		if strings.Contains(lower, term) {
			v := false
			return &v
		}
	}
	for _, term := range inStockTerms {
		if strings.Contains(lower, term) {
			v := true
			return &v
		}
	}
	return nil
}
