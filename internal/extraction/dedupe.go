package extraction

import "github.com/ternarybob/scoutpool/internal/models"

// Dedupe merges candidates sharing a product URL using first-non-null
// field fill (models.ExtractedCandidate.Merge), preserving the order of
// first appearance. Candidates never merge across different product
// URLs even when every other field matches. Any candidate whose
// ProductURL fails ValidateCandidate (blocked scheme, nav/social/legal
// keyword, or not product-like) is dropped before merging.
func Dedupe(candidates []models.ExtractedCandidate) []models.ExtractedCandidate {
	order := make([]string, 0, len(candidates))
	byURL := make(map[string]*models.ExtractedCandidate, len(candidates))

	for i := range candidates {
		c := candidates[i]
		if c.ProductURL == "" || !ValidateCandidate(c.ProductURL) {
			continue
		}
		existing, ok := byURL[c.ProductURL]
		if !ok {
			cp := c
			byURL[c.ProductURL] = &cp
			order = append(order, c.ProductURL)
			continue
		}
		existing.Merge(&c)
	}

	out := make([]models.ExtractedCandidate, 0, len(order))
	for _, url := range order {
		out = append(out, *byURL[url])
	}
	return out
}
