// Package extraction implements the layered strategy cascade: scoped
// DOM, JSON-LD, microdata, inline JSON, global heuristic, and
// links-with-images, tried in that order with the first non-empty
// result winning. Strategies are never merged across tiers, only within
// a single strategy's own candidate list (Dedupe).
package extraction

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scoutpool/internal/models"
)

// strategyFunc is the common shape of every cascade tier.
type strategyFunc func(doc *goquery.Document, pageURL string) ([]models.ExtractedCandidate, error)

type namedStrategy struct {
	name string
	fn   strategyFunc
}

var cascade = []namedStrategy{
	{"scoped_dom", ScopedDOM},
	{"json_ld", JSONLD},
	{"microdata", Microdata},
	{"inline_json", InlineJSON},
	{"heuristic", Heuristic},
	{"links_with_images", LinksWithImages},
}

// noResultsPhrases mark a page as a legitimate empty listing (zero
// matches for a search/filter), distinct from a page the cascade simply
// failed to parse.
var noResultsPhrases = []string{
	"no results found", "no products found", "0 results",
	"no matches found", "we couldn't find any",
}

// Result is the outcome of running the cascade against one page.
type Result struct {
	Candidates []models.ExtractedCandidate
	Strategy   string
	NoResults  bool
}

// Pipeline runs the cascade for a single rendered page.
type Pipeline struct {
	logger arbor.ILogger
}

// NewPipeline constructs a Pipeline.
func NewPipeline(logger arbor.ILogger) *Pipeline {
	return &Pipeline{logger: logger}
}

// Run validates pageURL, parses html, and runs the cascade, returning the
// first strategy's (deduplicated) candidates. If every strategy is Skip
// and the page text matches a known "no results" phrase, NoResults is
// true instead of treating the page as an extraction failure.
func (p *Pipeline) Run(rawHTML, pageURL string) (Result, error) {
	if !ValidatePage(pageURL) {
		return Result{}, Stop
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return Result{}, err
	}

	for _, strat := range cascade {
		candidates, err := strat.fn(doc, pageURL)
		if err == Skip {
			continue
		}
		if err != nil {
			return Result{}, err
		}
		deduped := Dedupe(candidates)
		if len(deduped) == 0 {
			continue
		}
		p.logger.Debug().Str("strategy", strat.name).Int("count", len(deduped)).Str("url", pageURL).Msg("extraction strategy matched")
		return Result{Candidates: deduped, Strategy: strat.name}, nil
	}

	if looksLikeNoResults(doc) {
		return Result{NoResults: true}, nil
	}

	p.logger.Debug().Str("url", pageURL).Msg("no extraction strategy matched")
	return Result{}, nil
}

func looksLikeNoResults(doc *goquery.Document) bool {
	text := strings.ToLower(doc.Text())
	for _, phrase := range noResultsPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
