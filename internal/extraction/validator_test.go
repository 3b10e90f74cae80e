package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePage_RejectsBlacklistedPaths(t *testing.T) {
	assert.False(t, ValidatePage("https://shop.example.com/login"))
	assert.False(t, ValidatePage("https://shop.example.com/cart"))
	assert.False(t, ValidatePage("https://shop.example.com/account/orders"))
}

func TestValidatePage_RejectsBadScheme(t *testing.T) {
	assert.False(t, ValidatePage("ftp://shop.example.com/category/widgets"))
	assert.False(t, ValidatePage("not-a-url"))
}

func TestValidatePage_AcceptsProductListing(t *testing.T) {
	assert.True(t, ValidatePage("https://shop.example.com/category/widgets"))
	assert.True(t, ValidatePage("http://shop.example.com/search?q=widgets"))
}

func TestLooksLikeProductPath(t *testing.T) {
	assert.True(t, LooksLikeProductPath("https://shop.example.com/category/widgets"))
	assert.True(t, LooksLikeProductPath("https://shop.example.com/p/123"))
	assert.False(t, LooksLikeProductPath("https://shop.example.com/blog/how-to"))
}

func TestValidateCandidate_RejectsBlockedSchemes(t *testing.T) {
	assert.False(t, ValidateCandidate("javascript:void(0)"))
	assert.False(t, ValidateCandidate("mailto:sales@example.com"))
	assert.False(t, ValidateCandidate("tel:+15551234567"))
}

func TestValidateCandidate_RejectsNavSocialLegalKeywords(t *testing.T) {
	assert.False(t, ValidateCandidate("https://shop.example.com/account/orders"))
	assert.False(t, ValidateCandidate("https://www.facebook.com/shopexample"))
	assert.False(t, ValidateCandidate("https://shop.example.com/terms"))
}

func TestValidateCandidate_AcceptsProductLikePaths(t *testing.T) {
	assert.True(t, ValidateCandidate("https://shop.example.com/p/123"))
	assert.True(t, ValidateCandidate("https://shop.example.com/items/blue-widget.html"))
	assert.True(t, ValidateCandidate("https://shop.example.com/catalog/deluxe-widget-set"))
}

func TestValidateCandidate_RejectsNonProductLikePaths(t *testing.T) {
	assert.False(t, ValidateCandidate("https://shop.example.com/"))
	assert.False(t, ValidateCandidate("https://shop.example.com/x"))
	assert.False(t, ValidateCandidate(""))
}
