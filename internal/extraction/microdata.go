package extraction

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/scoutpool/internal/models"
)

// Microdata scans [itemscope][itemtype*="Product"] nodes and reads their
// itemprop children, the HTML microdata equivalent of the JSON-LD
// strategy.
func Microdata(doc *goquery.Document, pageURL string) ([]models.ExtractedCandidate, error) {
	scopes := doc.Find("[itemscope][itemtype*='Product']")
	if scopes.Length() == 0 {
		return nil, Skip
	}

	var candidates []models.ExtractedCandidate
	scopes.Each(func(_ int, scope *goquery.Selection) {
		name := itemprop(scope, "name")
		if name == "" {
			return
		}
		c := models.ExtractedCandidate{
			ProductName:    name,
			ProductURL:     productURLFromScope(scope, pageURL),
			Description:    truncate(itemprop(scope, "description"), models.MaxDescriptionLen),
			Brand:          itemprop(scope, "brand"),
			SKU:            itemprop(scope, "sku"),
			SourceStrategy: "microdata",
		}
		if img := itempropAttr(scope, "image", "src"); img != "" {
			c.ProductImageURL = absolutize(img, pageURL)
		} else if img := itemprop(scope, "image"); img != "" {
			c.ProductImageURL = absolutize(img, pageURL)
		}

		priceScope := scope.Find("[itemprop='offers']").First()
		if priceScope.Length() == 0 {
			priceScope = scope
		}
		rawPrice := itempropAttr(priceScope, "price", "content")
		if rawPrice == "" {
			rawPrice = itemprop(priceScope, "price")
		}
		c.RawPrice = rawPrice
		c.Currency = itempropAttr(priceScope, "priceCurrency", "content")
		if f, err := strconv.ParseFloat(strings.TrimSpace(rawPrice), 64); err == nil {
			c.CurrentPrice = &f
		}
		if avail := itempropAttr(priceScope, "availability", "href"); avail != "" {
			inStock := containsFold(avail, "InStock")
			c.InStock = &inStock
		}

		if ratingRaw := itempropAttr(scope, "ratingValue", "content"); ratingRaw != "" {
			if f, err := strconv.ParseFloat(ratingRaw, 64); err == nil {
				c.Rating = &f
			}
		}
		if reviewRaw := itempropAttr(scope, "reviewCount", "content"); reviewRaw != "" {
			if n, err := strconv.Atoi(reviewRaw); err == nil {
				c.Reviews = &n
			}
		}

		if c.ProductURL != "" {
			candidates = append(candidates, c)
		}
	})

	if len(candidates) == 0 {
		return nil, Skip
	}
	return candidates, nil
}

func itemprop(scope *goquery.Selection, name string) string {
	sel := scope.Find("[itemprop='" + name + "']").First()
	if sel.Length() == 0 {
		return ""
	}
	if v, ok := sel.Attr("content"); ok && v != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(sel.Text())
}

func itempropAttr(scope *goquery.Selection, name, attr string) string {
	sel := scope.Find("[itemprop='" + name + "']").First()
	if sel.Length() == 0 {
		return ""
	}
	v, _ := sel.Attr(attr)
	return strings.TrimSpace(v)
}

func productURLFromScope(scope *goquery.Selection, pageURL string) string {
	if url := itempropAttr(scope, "url", "href"); url != "" {
		return absolutize(url, pageURL)
	}
	link := scope.Find("a[href]").First()
	if link.Length() > 0 {
		href, _ := link.Attr("href")
		return absolutize(href, pageURL)
	}
	if goquery.NodeName(scope) == "a" {
		if href, ok := scope.Attr("href"); ok {
			return absolutize(href, pageURL)
		}
	}
	return ""
}
