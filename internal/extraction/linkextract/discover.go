// Package linkextract implements the supplemented link-discovery pass:
// given a category or search page, follow it once and collect outbound
// links that look like further product or category pages, so a single
// seed URL can expand into the dozens of listing pages behind its
// pagination. This is additive to the core claim/render/extract loop —
// discovered links are enqueued as ordinary pending rows, not processed
// specially.
package linkextract

import (
	"net/url"
	"strings"

	"github.com/gocolly/colly/v2"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scoutpool/internal/extraction"
)

// Discover fetches pageURL and returns same-host links whose path hints
// at a product or category page.
func Discover(pageURL string, userAgent string, logger arbor.ILogger) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
	)

	seen := map[string]bool{}
	var links []string

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		href := e.Attr("href")
		if href == "" {
			return
		}
		absolute := stripFragment(e.Request.AbsoluteURL(href))
		if absolute == "" {
			return
		}
		parsed, err := url.Parse(absolute)
		if err != nil || parsed.Host != base.Host {
			return
		}
		if !extraction.LooksLikeProductPath(absolute) {
			return
		}
		if seen[absolute] {
			return
		}
		seen[absolute] = true
		links = append(links, absolute)
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.Warn().Err(err).Str("url", pageURL).Msg("link discovery request failed")
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, err
	}
	c.Wait()

	return links, nil
}

// stripFragment removes a trailing #fragment, used to avoid enqueuing the
// same page twice under two anchor targets.
func stripFragment(raw string) string {
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		return raw[:i]
	}
	return raw
}
