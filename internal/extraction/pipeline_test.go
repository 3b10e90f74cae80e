package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/scoutpool/internal/common"
)

const scopedDOMFixture = `
<html><body>
<div class="product-grid">
	<div class="product-card">
		<h2 class="title">Widget One</h2>
		<a href="/p/widget-one">view</a>
		<img src="/img/widget-one.jpg">
		<span class="price">$19.99</span>
		<span class="old-price">$24.99</span>
		<p class="desc">A fine widget.</p>
	</div>
	<div class="product-card">
		<h2 class="title">Widget Two</h2>
		<a href="/p/widget-two">view</a>
		<img src="/img/widget-two.jpg">
		<span class="price">$29.99</span>
		<p class="desc">Another widget.</p>
	</div>
</div>
</body></html>
`

const jsonLDFixture = `
<html><head>
<script type="application/ld+json">
{"@type":"Product","name":"Gadget","url":"/p/gadget","offers":{"price":"9.99","priceCurrency":"USD","availability":"https://schema.org/InStock"}}
</script>
</head><body><p>no matching cards here</p></body></html>
`

const jsonLDItemListFixture = `
<html><head>
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"ItemList","itemListElement":[
  {"@type":"ListItem","position":1,"item":{"@type":"Product","name":"Gizmo","url":"/p/gizmo","offers":{"price":"14.99","priceCurrency":"USD","availability":"https://schema.org/InStock"}}},
  {"@type":"ListItem","position":2,"item":{"@type":"Product","name":"Doohickey","url":"/p/doohickey","offers":{"price":"24.99","priceCurrency":"USD","availability":"https://schema.org/InStock"}}}
]}
</script>
</head><body><p>no matching cards here</p></body></html>
`

const noResultsFixture = `
<html><body><div class="search-results"><p>No products found for your search.</p></div></body></html>
`

func newTestPipeline() *Pipeline {
	return NewPipeline(common.GetLogger())
}

func TestPipeline_ScopedDOMWins(t *testing.T) {
	p := newTestPipeline()
	result, err := p.Run(scopedDOMFixture, "https://shop.example.com/category/widgets")
	require.NoError(t, err)
	assert.Equal(t, "scoped_dom", result.Strategy)
	assert.Len(t, result.Candidates, 2)
	// The card's anchor text outranks its h2 title in extractTitle's precedence.
	assert.Equal(t, "view", result.Candidates[0].ProductName)
	assert.Equal(t, "https://shop.example.com/p/widget-one", result.Candidates[0].ProductURL)
}

func TestPipeline_FallsBackToJSONLD(t *testing.T) {
	p := newTestPipeline()
	result, err := p.Run(jsonLDFixture, "https://shop.example.com/p/gadget")
	require.NoError(t, err)
	assert.Equal(t, "json_ld", result.Strategy)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "Gadget", result.Candidates[0].ProductName)
}

func TestPipeline_JSONLDWalksItemList(t *testing.T) {
	p := newTestPipeline()
	result, err := p.Run(jsonLDItemListFixture, "https://shop.example.com/category/widgets")
	require.NoError(t, err)
	assert.Equal(t, "json_ld", result.Strategy)
	require.Len(t, result.Candidates, 2)
	assert.Equal(t, "Gizmo", result.Candidates[0].ProductName)
	assert.Equal(t, "Doohickey", result.Candidates[1].ProductName)
}

func TestPipeline_NoResults(t *testing.T) {
	p := newTestPipeline()
	result, err := p.Run(noResultsFixture, "https://shop.example.com/search?q=nonexistent")
	require.NoError(t, err)
	assert.True(t, result.NoResults)
	assert.Empty(t, result.Candidates)
}

func TestPipeline_RejectsBlacklistedURL(t *testing.T) {
	p := newTestPipeline()
	_, err := p.Run(scopedDOMFixture, "https://shop.example.com/login")
	assert.ErrorIs(t, err, Stop)
}
