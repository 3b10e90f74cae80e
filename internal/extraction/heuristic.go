package extraction

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/scoutpool/internal/models"
)

// Heuristic is the fallback strategy for pages with no scoped DOM class,
// no JSON-LD, no microdata, and no inline JSON blob: group every anchor
// that wraps an image by its parent shape, and treat each shape repeated
// at least twice as a product card. Price text is read when present but
// is not required. It runs after the more precise strategies and before
// LinksWithImages, the last tier of the cascade.
func Heuristic(doc *goquery.Document, pageURL string) ([]models.ExtractedCandidate, error) {
	anchors := doc.Find("a:has(img)")
	if anchors.Length() < 2 {
		return nil, Skip
	}

	// Group anchors by the tag names of their grandparent and parent
	// (groupKey) so repeated card shapes are treated together, same as the
	// scoped DOM strategy but without relying on a class name.
	groups := map[string][]*goquery.Selection{}
	anchors.Each(func(_ int, a *goquery.Selection) {
		if withinChromeAncestor(a) {
			return
		}
		key := groupKey(a)
		sel := a
		groups[key] = append(groups[key], sel)
	})

	var candidates []models.ExtractedCandidate
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		for _, a := range group {
			title := extractTitle(a)
			href, _ := a.Attr("href")
			if title == "" || href == "" {
				continue
			}
			c := models.ExtractedCandidate{
				ProductName:     title,
				ProductURL:      absolutize(href, pageURL),
				ProductImageURL: extractImageURL(a, pageURL),
				RawPrice:        extractRawPrice(a),
				SourceStrategy:  "heuristic",
			}
			candidates = append(candidates, c)
		}
	}

	if len(candidates) == 0 {
		return nil, Skip
	}
	return candidates, nil
}

func groupKey(sel *goquery.Selection) string {
	parent := sel.Parent()
	if parent.Length() == 0 {
		return "root"
	}
	grandparent := parent.Parent()
	if grandparent.Length() == 0 {
		return goquery.NodeName(parent)
	}
	return goquery.NodeName(grandparent) + ">" + goquery.NodeName(parent)
}

func attrOrEmpty(sel *goquery.Selection, attr string) string {
	v, _ := sel.Attr(attr)
	return v
}
