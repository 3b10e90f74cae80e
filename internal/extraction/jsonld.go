package extraction

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/scoutpool/internal/models"
)

// jsonLDProduct mirrors the subset of schema.org/Product we care about.
// Offers may be a single object or an array (one per variant/seller).
type jsonLDProduct struct {
	Type        string          `json:"@type"`
	Name        string          `json:"name"`
	Image       json.RawMessage `json:"image"`
	Description string          `json:"description"`
	Brand       json.RawMessage `json:"brand"`
	SKU         string          `json:"sku"`
	URL         string          `json:"url"`
	Offers      json.RawMessage `json:"offers"`
	Rating      *jsonLDRating   `json:"aggregateRating"`
}

type jsonLDRating struct {
	RatingValue json.Number `json:"ratingValue"`
	ReviewCount json.Number `json:"reviewCount"`
}

type jsonLDOffer struct {
	Price         json.Number `json:"price"`
	PriceCurrency string      `json:"priceCurrency"`
	Availability  string      `json:"availability"`
}

// maxJSONLDWalkDepth bounds how far collectJSONLDProducts descends through
// nested ItemList/ListItem/mainEntity/@graph wrappers.
const maxJSONLDWalkDepth = 6

// jsonLDNode is the subset of fields needed to recognize and recurse
// through the wrapper shapes schema.org allows around a Product: a plain
// array, an ItemList's itemListElement, a ListItem's item, a
// CollectionPage/WebPage's mainEntity, or an @graph wrapper.
type jsonLDNode struct {
	Type            string          `json:"@type"`
	ItemListElement json.RawMessage `json:"itemListElement"`
	MainEntity      json.RawMessage `json:"mainEntity"`
	Item            json.RawMessage `json:"item"`
	Graph           json.RawMessage `json:"@graph"`
}

// JSONLD scans <script type="application/ld+json"> blocks for Product
// entries, recursing through ItemList, ListItem, itemListElement, and
// mainEntity wrappers to find them.
func JSONLD(doc *goquery.Document, pageURL string) ([]models.ExtractedCandidate, error) {
	var candidates []models.ExtractedCandidate

	doc.Find("script[type='application/ld+json']").Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		collectJSONLDProducts(json.RawMessage(raw), pageURL, &candidates, 0)
	})

	if len(candidates) == 0 {
		return nil, Skip
	}
	return candidates, nil
}

// collectJSONLDProducts recurses through Product, ListItem,
// itemListElement, mainEntity, and @graph wrappers, the shapes a listing
// page's structured data commonly nests a product under.
func collectJSONLDProducts(raw json.RawMessage, pageURL string, out *[]models.ExtractedCandidate, depth int) {
	if depth > maxJSONLDWalkDepth || len(raw) == 0 {
		return
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		for _, item := range arr {
			collectJSONLDProducts(item, pageURL, out, depth+1)
		}
		return
	}

	var node jsonLDNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return
	}

	if node.Type == "Product" {
		var p jsonLDProduct
		if err := json.Unmarshal(raw, &p); err == nil {
			if c, ok := toCandidate(p, pageURL); ok {
				*out = append(*out, c)
			}
		}
		return
	}

	if len(node.ItemListElement) > 0 {
		collectJSONLDProducts(node.ItemListElement, pageURL, out, depth+1)
	}
	if len(node.MainEntity) > 0 {
		collectJSONLDProducts(node.MainEntity, pageURL, out, depth+1)
	}
	if len(node.Item) > 0 {
		collectJSONLDProducts(node.Item, pageURL, out, depth+1)
	}
	if len(node.Graph) > 0 {
		collectJSONLDProducts(node.Graph, pageURL, out, depth+1)
	}
}

func toCandidate(p jsonLDProduct, pageURL string) (models.ExtractedCandidate, bool) {
	if p.Name == "" {
		return models.ExtractedCandidate{}, false
	}

	c := models.ExtractedCandidate{
		ProductName:    p.Name,
		ProductURL:     absolutize(orDefault(p.URL, pageURL), pageURL),
		Description:    truncate(p.Description, models.MaxDescriptionLen),
		SKU:            p.SKU,
		SourceStrategy: "json_ld",
	}

	if img := firstString(p.Image); img != "" {
		c.ProductImageURL = absolutize(img, pageURL)
	}
	if brand := firstString(p.Brand); brand != "" {
		c.Brand = brand
	}

	if offer, ok := firstOffer(p.Offers); ok {
		c.RawPrice = offer.Price.String()
		c.Currency = offer.PriceCurrency
		if f, err := strconv.ParseFloat(offer.Price.String(), 64); err == nil {
			c.CurrentPrice = &f
		}
		inStock := offer.Availability == "" || strings.Contains(strings.ToLower(offer.Availability), "instock")
		c.InStock = &inStock
	}

	if p.Rating != nil {
		if f, err := strconv.ParseFloat(p.Rating.RatingValue.String(), 64); err == nil {
			c.Rating = &f
		}
		if n, err := strconv.Atoi(p.Rating.ReviewCount.String()); err == nil {
			c.Reviews = &n
		}
	}

	return c, true
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// firstString unwraps image/brand fields that schema.org allows to be a
// bare string, an object ({"@type":"Brand","name":"..."}), or an array of
// either.
func firstString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && (obj.Name != "" || obj.URL != "") {
		if obj.Name != "" {
			return obj.Name
		}
		return obj.URL
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) > 0 {
		return firstString(arr[0])
	}
	return ""
}

func firstOffer(raw json.RawMessage) (jsonLDOffer, bool) {
	if len(raw) == 0 {
		return jsonLDOffer{}, false
	}
	var single jsonLDOffer
	if err := json.Unmarshal(raw, &single); err == nil && single.Price.String() != "" {
		return single, true
	}
	var arr []jsonLDOffer
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) > 0 {
		return arr[0], true
	}
	return jsonLDOffer{}, false
}
