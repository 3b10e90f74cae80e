package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/scoutpool/internal/models"
)

func TestDedupe_MergesByURL(t *testing.T) {
	candidates := []models.ExtractedCandidate{
		{ProductURL: "https://a.example.com/p/1", ProductName: "Widget", Brand: ""},
		{ProductURL: "https://a.example.com/p/1", ProductName: "", Brand: "Acme"},
		{ProductURL: "https://a.example.com/p/2", ProductName: "Gadget"},
	}
	out := Dedupe(candidates)
	assert.Len(t, out, 2)
	assert.Equal(t, "Widget", out[0].ProductName)
	assert.Equal(t, "Acme", out[0].Brand)
	assert.Equal(t, "Gadget", out[1].ProductName)
}

func TestDedupe_DropsEmptyURL(t *testing.T) {
	candidates := []models.ExtractedCandidate{
		{ProductURL: "", ProductName: "No URL"},
		{ProductURL: "https://a.example.com/p/1", ProductName: "Widget"},
	}
	out := Dedupe(candidates)
	assert.Len(t, out, 1)
}

func TestDedupe_PreservesFirstAppearanceOrder(t *testing.T) {
	candidates := []models.ExtractedCandidate{
		{ProductURL: "https://a.example.com/p/2", ProductName: "Second"},
		{ProductURL: "https://a.example.com/p/1", ProductName: "First"},
	}
	out := Dedupe(candidates)
	require := assert.New(t)
	require.Len(out, 2)
	require.Equal("https://a.example.com/p/2", out[0].ProductURL)
	require.Equal("https://a.example.com/p/1", out[1].ProductURL)
}
