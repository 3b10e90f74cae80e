package extraction

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
	"github.com/ternarybob/scoutpool/internal/models"
)

// maxInlineJSONWalkDepth and maxShallowSiblingDepth bound how far
// InlineJSON descends into a blob before giving up — deeply nested state
// dumps (Redux/Next.js hydration payloads) can otherwise make this
// strategy pathologically slow on pages with no product data at all.
const (
	maxInlineJSONWalkDepth  = 6
	maxShallowSiblingDepth  = 1
	maxInlineJSONBlobLength = 500_000
)

// priorityKeyPattern marks object keys worth recursing into at full depth;
// every other key only gets maxShallowSiblingDepth additional hops before
// that branch is abandoned.
var priorityKeyPattern = regexp.MustCompile(`(?i)product|item|sku|listing|result|entries|records`)

var nameKeys = []string{"name", "title", "productName", "product_name"}
var priceKeys = []string{"price", "currentPrice", "current_price", "salePrice", "finalPrice"}
var urlKeys = []string{"url", "productUrl", "product_url", "link", "href"}
var imageKeys = []string{"image", "imageUrl", "image_url", "thumbnail", "thumbnailUrl"}

// InlineJSON walks non-ld+json <script> blocks looking for embedded state
// (Next.js __NEXT_DATA__, Nuxt __NUXT__, ad-hoc "var products = [...]")
// that carries product-shaped objects: any object with a name/title field
// alongside a price field, found within maxInlineJSONWalkDepth levels, or
// as a sibling of a matched array within maxShallowSiblingDepth.
func InlineJSON(doc *goquery.Document, pageURL string) ([]models.ExtractedCandidate, error) {
	var candidates []models.ExtractedCandidate

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		scriptType, _ := s.Attr("type")
		if scriptType == "application/ld+json" {
			return
		}
		raw := strings.TrimSpace(s.Text())
		if raw == "" || len(raw) > maxInlineJSONBlobLength {
			return
		}

		jsonText := extractJSONSubstring(raw)
		if jsonText == "" || !gjson.Valid(jsonText) {
			return
		}

		found := map[string]bool{}
		walk(gjson.Parse(jsonText), 0, maxShallowSiblingDepth, pageURL, &candidates, found)
	})

	if len(candidates) == 0 {
		return nil, Skip
	}
	return candidates, nil
}

// extractJSONSubstring handles the common "var x = {...};" / "window.__X__ =
// [...]" assignment wrapper by trimming everything before the first { or [
// and one trailing semicolon. Any other text after the closing bracket is
// kept, so such a blob fails the gjson.Valid check in InlineJSON.
func extractJSONSubstring(raw string) string {
	start := strings.IndexAny(raw, "{[")
	if start < 0 {
		return ""
	}
	candidate := strings.TrimSpace(raw[start:])
	candidate = strings.TrimSuffix(candidate, ";")
	return candidate
}

// walk descends node looking for product-shaped objects. shallowRemaining
// counts down only along branches reached through a non-priority key;
// reaching a key matching priorityKeyPattern resets it back to
// maxShallowSiblingDepth, so a chain of product/item/sku-named wrappers
// can still be followed all the way to maxInlineJSONWalkDepth.
func walk(node gjson.Result, depth, shallowRemaining int, pageURL string, out *[]models.ExtractedCandidate, found map[string]bool) {
	if depth > maxInlineJSONWalkDepth {
		return
	}

	if node.IsArray() {
		node.ForEach(func(_, item gjson.Result) bool {
			if item.IsObject() {
				if c, ok := candidateFromObject(item, pageURL); ok {
					key := c.ProductURL + "|" + c.ProductName
					if !found[key] {
						found[key] = true
						*out = append(*out, c)
					}
					return true // matched objects in this array don't need deeper descent
				}
			}
			walk(item, depth+1, shallowRemaining, pageURL, out, found)
			return true
		})
		return
	}

	if node.IsObject() {
		node.ForEach(func(key, value gjson.Result) bool {
			if priorityKeyPattern.MatchString(key.String()) {
				walk(value, depth+1, maxShallowSiblingDepth, pageURL, out, found)
				return true
			}
			if shallowRemaining <= 0 {
				return true
			}
			walk(value, depth+1, shallowRemaining-1, pageURL, out, found)
			return true
		})
	}
}

func candidateFromObject(obj gjson.Result, pageURL string) (models.ExtractedCandidate, bool) {
	name := firstMatch(obj, nameKeys)
	if name == "" {
		return models.ExtractedCandidate{}, false
	}
	price := firstMatch(obj, priceKeys)
	if price == "" {
		return models.ExtractedCandidate{}, false
	}

	c := models.ExtractedCandidate{
		ProductName:    name,
		RawPrice:       price,
		SourceStrategy: "inline_json",
	}
	if url := firstMatch(obj, urlKeys); url != "" {
		c.ProductURL = absolutize(url, pageURL)
	}
	if img := firstMatch(obj, imageKeys); img != "" {
		c.ProductImageURL = absolutize(img, pageURL)
	}
	if c.ProductURL == "" {
		return models.ExtractedCandidate{}, false
	}
	return c, true
}

func firstMatch(obj gjson.Result, keys []string) string {
	for _, k := range keys {
		v := obj.Get(k)
		if v.Exists() {
			return strings.TrimSpace(v.String())
		}
	}
	return ""
}
