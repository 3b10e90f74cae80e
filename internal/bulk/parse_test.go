package bulk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseString_JSONArray(t *testing.T) {
	entries, err := ParseString(`["https://a.example.com/p/1", "https://a.example.com/p/2"]`)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "https://a.example.com/p/1", entries[0].URL)
}

func TestParseString_JSONArrayOfObjects(t *testing.T) {
	entries, err := ParseString(`[{"url":"https://a.example.com/p/1","product_type_id":"electronics"}]`)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "electronics", entries[0].ProductTypeID)
}

func TestParseString_URLsKeyObject(t *testing.T) {
	entries, err := ParseString(`{"urls":["https://a.example.com/p/1","https://a.example.com/p/2"]}`)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "https://a.example.com/p/1", entries[0].URL)
	assert.Equal(t, "https://a.example.com/p/2", entries[1].URL)
}

func TestParseString_JSONObject(t *testing.T) {
	entries, err := ParseString(`{"first":"https://a.example.com/p/1","second":{"url":"https://a.example.com/p/2"}}`)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestParseString_BareJSONString(t *testing.T) {
	entries, err := ParseString(`"https://a.example.com/p/1"`)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "https://a.example.com/p/1", entries[0].URL)
}

func TestParseString_PlainList(t *testing.T) {
	entries, err := ParseString("https://a.example.com/p/1\nhttps://a.example.com/p/2,https://a.example.com/p/3")
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestParseString_Empty(t *testing.T) {
	entries, err := ParseString("   ")
	require.NoError(t, err)
	assert.Nil(t, entries)
}
