package extraction

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/scoutpool/internal/models"
)

// LinksWithImages is the last strategy in the cascade: every anchor
// wrapping an image, with no grouping or repetition requirement at all.
// It exists for pages whose product links genuinely don't repeat a
// shared container shape (a single-row "related items" strip, say), and
// it is deliberately the least precise strategy — everything upstream of
// it in the cascade is tried first.
func LinksWithImages(doc *goquery.Document, pageURL string) ([]models.ExtractedCandidate, error) {
	anchors := doc.Find("a:has(img)")
	if anchors.Length() == 0 {
		return nil, Skip
	}

	var candidates []models.ExtractedCandidate
	anchors.Each(func(_ int, a *goquery.Selection) {
		if withinChromeAncestor(a) {
			return
		}
		href, ok := a.Attr("href")
		if !ok || href == "" {
			return
		}
		title := extractTitle(a)
		if title == "" {
			return
		}
		candidates = append(candidates, models.ExtractedCandidate{
			ProductName:     title,
			ProductURL:      absolutize(href, pageURL),
			ProductImageURL: extractImageURL(a, pageURL),
			RawPrice:        extractRawPrice(a),
			SourceStrategy:  "links_with_images",
		})
	})

	if len(candidates) == 0 {
		return nil, Skip
	}
	return candidates, nil
}
