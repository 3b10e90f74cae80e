package extraction

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blacklistedPaths are URL path segments that never host a product
// listing grid: auth, cart, and account flows.
var blacklistedPaths = []string{
	"/login", "/signin", "/sign-in", "/register", "/signup",
	"/cart", "/checkout", "/account", "/my-account",
	"/help", "/support", "/contact", "/about", "/privacy", "/terms",
}

// productPathHints are path segments that raise confidence a URL is a
// listing or category page worth extracting from.
var productPathHints = []string{
	"/product", "/products", "/p/", "/item", "/items",
	"/category", "/categories", "/c/", "/shop", "/collection", "/collections",
	"/search", "/s/", "/browse", "/catalog",
}

// blockedSchemes are never a real product link, just in-page affordances
// that happen to sit inside a card/anchor.
var blockedSchemes = []string{"javascript:", "mailto:", "tel:"}

// candidateBlacklistKeywords mark a candidate URL as nav/social/legal
// chrome rather than a product link.
var candidateBlacklistKeywords = []string{
	"/login", "/signin", "/sign-in", "/register", "/signup",
	"/cart", "/checkout", "/account", "/my-account", "/wishlist",
	"/help", "/support", "/contact", "/about", "/privacy", "/terms",
	"facebook.com", "twitter.com", "instagram.com", "pinterest.com",
	"youtube.com", "linkedin.com", "tiktok.com",
}

// excludedAncestorTags mark containers whose descendants are chrome, not
// product content, within the ancestor-hop limit below.
var excludedAncestorTags = map[string]bool{
	"header": true, "nav": true, "footer": true, "aside": true, "form": true,
}

const maxAncestorHops = 6

// ValidatePage reports whether rawURL is eligible for product extraction
// at all. It never inspects content beyond the URL itself; content-level
// rejection ("no results" pages) is handled by the pipeline after a
// strategy runs dry.
func ValidatePage(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}

	path := strings.ToLower(parsed.Path)
	for _, bad := range blacklistedPaths {
		if strings.Contains(path, bad) {
			return false
		}
	}
	return true
}

// LooksLikeProductPath returns true when the URL path hints this page is
// a product/listing/category/search page. ValidateCandidate and the
// link-discovery pass use it.
func LooksLikeProductPath(rawURL string) bool {
	path := strings.ToLower(rawURL)
	if parsed, err := url.Parse(rawURL); err == nil {
		path = strings.ToLower(parsed.Path)
	}
	for _, hint := range productPathHints {
		if strings.Contains(path, hint) {
			return true
		}
	}
	return false
}

// ValidateCandidate reports whether rawURL is a plausible product link: no
// javascript:/mailto:/tel: scheme, no nav/social/legal keyword, and
// product-like (a product-path hint, a .html/.htm suffix, at least two
// path segments over length 3, or a hyphenated path segment over length 6).
func ValidateCandidate(rawURL string) bool {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, scheme := range blockedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return false
		}
	}
	for _, kw := range candidateBlacklistKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return false
	}

	path := strings.ToLower(parsed.Path)
	if LooksLikeProductPath(path) {
		return true
	}
	if strings.HasSuffix(path, ".html") || strings.HasSuffix(path, ".htm") {
		return true
	}

	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(segments) >= 2 && len(path) > 3 {
		return true
	}
	for _, seg := range segments {
		if strings.Contains(seg, "-") && len(seg) > 6 {
			return true
		}
	}
	return false
}

// withinChromeAncestor walks up to maxAncestorHops parents from sel and
// reports whether any of them is header/nav/footer/aside/form, meaning sel
// is navigation chrome rather than product content.
func withinChromeAncestor(sel *goquery.Selection) bool {
	node := sel
	for hop := 0; hop < maxAncestorHops; hop++ {
		parent := node.Parent()
		if parent.Length() == 0 {
			return false
		}
		tag := goquery.NodeName(parent)
		if excludedAncestorTags[tag] {
			return true
		}
		node = parent
	}
	return false
}
