package extraction

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/ternarybob/scoutpool/internal/models"
)

// cardSelectors are tried in order; the first selector yielding at least
// two matching nodes (a "grid", not a single incidental element) wins the
// scoped DOM strategy.
var cardSelectors = []string{
	"[class*='product-card']", "[class*='product-item']", "[class*='product-tile']",
	"[class*='productcard']", "[class*='product-grid'] > *", "[class*='search-result']",
	"li[class*='product']", "div[class*='product']",
	"[data-testid*='product']", "[itemtype*='schema.org/Product']",
}

// ScopedDOM is the first strategy in the cascade: look for a repeated
// container class/pattern that is plausibly a product grid, then extract
// structured fields per card.
func ScopedDOM(doc *goquery.Document, pageURL string) ([]models.ExtractedCandidate, error) {
	for _, sel := range cardSelectors {
		matcher, err := cascadia.Compile(sel)
		if err != nil {
			continue
		}
		nodes := doc.FindMatcher(matcher)
		if nodes.Length() < 2 {
			continue
		}
		candidates := extractCardsFrom(nodes, pageURL)
		if len(candidates) > 0 {
			return candidates, nil
		}
	}
	return nil, Skip
}

func extractCardsFrom(nodes *goquery.Selection, pageURL string) []models.ExtractedCandidate {
	var out []models.ExtractedCandidate
	nodes.Each(func(_ int, card *goquery.Selection) {
		if withinChromeAncestor(card) {
			return
		}
		title := extractTitle(card)
		productURL := extractProductURL(card, pageURL)
		if title == "" || productURL == "" {
			return
		}
		c := models.ExtractedCandidate{
			ProductName:     title,
			ProductURL:      productURL,
			ProductImageURL: extractImageURL(card, pageURL),
			RawPrice:        extractRawPrice(card),
			Description:     truncate(extractDescription(card), models.MaxDescriptionLen),
			Rating:          extractRating(card),
			Reviews:         extractReviews(card),
			InStock:         extractInStock(card),
			Brand:           extractBrand(card),
			SourceStrategy:  "scoped_dom",
		}
		c.OriginalPrice = extractOriginalPrice(card)
		out = append(out, c)
	})
	return out
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max]
}
