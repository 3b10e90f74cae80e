package extraction

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

// titleSelectors are the last resort in extractTitle's precedence, tried
// in order with the first non-empty text winning.
var titleSelectors = []string{
	"h1", "h2", "h3",
	"[class*='title']", "[class*='name']",
}

// priceSelectors are tried in order before falling back to a regex scan
// of the card's full text.
var priceSelectors = []string{
	"[class*='price']:not([class*='old']):not([class*='was']):not([class*='strike'])",
	"[class*='price']",
	"[itemprop='price']",
}

var originalPriceSelectors = []string{
	"[class*='old-price']", "[class*='was-price']", "[class*='strike']",
	"del", "s",
}

var priceRegex = regexp.MustCompile(`[£$€₹]\s?[\d,]+(?:\.\d{1,2})?|\b\d{1,3}(?:[,.]\d{3})*(?:\.\d{1,2})?\s?(?:USD|EUR|GBP|INR|CAD|AUD)\b`)

var outOfStockPhrases = []string{
	"out of stock", "sold out", "unavailable", "currently unavailable", "notify me",
}

var inStockPhrases = []string{
	"in stock", "add to cart", "add to bag", "buy now",
}

// extractTitle follows the title precedence: an anchor's title attribute,
// then its text, then an image's alt text, then the generic title
// selector list.
func extractTitle(card *goquery.Selection) string {
	anchor := card.Find("a[href]").First()
	if anchor.Length() == 0 && goquery.NodeName(card) == "a" {
		anchor = card
	}
	if anchor.Length() > 0 {
		if title, ok := anchor.Attr("title"); ok {
			if t := strings.TrimSpace(title); t != "" {
				return t
			}
		}
		if t := strings.TrimSpace(anchor.Text()); t != "" {
			return t
		}
	}
	if alt := strings.TrimSpace(attrOrEmpty(card.Find("img").First(), "alt")); alt != "" {
		return alt
	}
	for _, sel := range titleSelectors {
		text := strings.TrimSpace(card.Find(sel).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

// extractRawPrice returns the first matching price element's text, or a
// regex match over the card's whole text as a last resort.
func extractRawPrice(card *goquery.Selection) string {
	for _, sel := range priceSelectors {
		text := strings.TrimSpace(card.Find(sel).First().Text())
		if text != "" {
			return text
		}
	}
	if m := priceRegex.FindString(card.Text()); m != "" {
		return m
	}
	return ""
}

func extractOriginalPrice(card *goquery.Selection) string {
	for _, sel := range originalPriceSelectors {
		text := strings.TrimSpace(card.Find(sel).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

func extractImageURL(card *goquery.Selection, baseURL string) string {
	img := card.Find("img").First()
	if img.Length() == 0 {
		return ""
	}
	for _, attr := range []string{"data-src", "data-lazy-src", "src", "srcset"} {
		if v, ok := img.Attr(attr); ok && v != "" {
			if attr == "srcset" {
				v = strings.TrimSpace(strings.Split(v, ",")[0])
				v = strings.Split(v, " ")[0]
			}
			return absolutize(v, baseURL)
		}
	}
	return ""
}

func extractProductURL(card *goquery.Selection, baseURL string) string {
	link := card.Find("a[href]").First()
	if link.Length() == 0 {
		if goquery.NodeName(card) == "a" {
			if href, ok := card.Attr("href"); ok {
				return absolutize(href, baseURL)
			}
		}
		return ""
	}
	href, _ := link.Attr("href")
	return absolutize(href, baseURL)
}

func extractDescription(card *goquery.Selection) string {
	desc := card.Find("[class*='desc']").First()
	if desc.Length() == 0 {
		desc = card.Find("p").First()
	}
	if desc.Length() == 0 {
		return ""
	}

	// Descriptions sometimes carry real markup (bullet lists of
	// features, bold specs); render that through to markdown instead of
	// collapsing it to bare text. Plain descriptions pass through
	// unchanged since there is nothing for the converter to do.
	if rawHTML, err := desc.Html(); err == nil {
		if markdown, err := htmltomarkdown.ConvertString(rawHTML); err == nil {
			if cleaned := strings.TrimSpace(markdown); cleaned != "" {
				return cleaned
			}
		}
	}
	return strings.TrimSpace(desc.Text())
}

func extractRating(card *goquery.Selection) *float64 {
	text := card.Find("[class*='rating']").First()
	if v, ok := text.Attr("data-rating"); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return &f
		}
	}
	raw := strings.TrimSpace(text.Text())
	if raw == "" {
		return nil
	}
	m := regexp.MustCompile(`\d+(\.\d+)?`).FindString(raw)
	if m == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(m, 64); err == nil {
		return &f
	}
	return nil
}

func extractReviews(card *goquery.Selection) *int {
	raw := strings.TrimSpace(card.Find("[class*='review']").First().Text())
	if raw == "" {
		return nil
	}
	digits := regexp.MustCompile(`[\d,]+`).FindString(raw)
	digits = strings.ReplaceAll(digits, ",", "")
	if digits == "" {
		return nil
	}
	if n, err := strconv.Atoi(digits); err == nil {
		return &n
	}
	return nil
}

func extractInStock(card *goquery.Selection) *bool {
	text := strings.ToLower(card.Text())
	for _, phrase := range outOfStockPhrases {
		if strings.Contains(text, phrase) {
			v := false
			return &v
		}
	}
	for _, phrase := range inStockPhrases {
		if strings.Contains(text, phrase) {
			v := true
			return &v
		}
	}
	return nil
}

func extractBrand(card *goquery.Selection) string {
	return strings.TrimSpace(card.Find("[class*='brand']").First().Text())
}

func absolutize(href, baseURL string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
