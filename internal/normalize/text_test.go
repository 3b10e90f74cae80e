package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "hello world", CleanText("  hello \n\t  world  "))
	assert.Equal(t, "", CleanText("   "))
}

func TestAbsoluteURL(t *testing.T) {
	assert.Equal(t, "https://shop.example.com/p/123", AbsoluteURL("/p/123", "https://shop.example.com/category/widgets"))
	assert.Equal(t, "https://shop.example.com/p/123", AbsoluteURL("https://shop.example.com/p/123", "https://shop.example.com/category/widgets"))
	assert.Equal(t, "", AbsoluteURL("", "https://shop.example.com"))
}

func TestInferAvailability(t *testing.T) {
	in := InferAvailability("In Stock - ships today")
	assert.NotNil(t, in)
	assert.True(t, *in)

	out := InferAvailability("Currently Unavailable")
	assert.NotNil(t, out)
	assert.False(t, *out)

	assert.Nil(t, InferAvailability(""))
	assert.Nil(t, InferAvailability("Ships within 2-3 business days"))
}
