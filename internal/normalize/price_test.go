package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePrice_SymbolPrefixed(t *testing.T) {
	tests := []struct {
		raw      string
		wantAmt  float64
		wantCode string
	}{
		{"$19.99", 19.99, "USD"},
		{"£45.00", 45.00, "GBP"},
		{"€12.50", 12.50, "EUR"},
		{"₹1,299.00", 1299.00, "INR"},
		{"C$19.99", 19.99, "CAD"},
		{"A$24.95", 24.95, "AUD"},
	}
	for _, tt := range tests {
		p := ParsePrice(tt.raw)
		assert.True(t, p.OK, "raw=%s", tt.raw)
		assert.InDelta(t, tt.wantAmt, p.Amount, 0.001, "raw=%s", tt.raw)
		assert.Equal(t, tt.wantCode, p.Currency, "raw=%s", tt.raw)
	}
}

func TestParsePrice_EuropeanDecimalComma(t *testing.T) {
	p := ParsePrice("€1.299,50")
	assert.True(t, p.OK)
	assert.InDelta(t, 1299.50, p.Amount, 0.001)
}

func TestParsePrice_CodeSuffixed(t *testing.T) {
	p := ParsePrice("19.99 USD")
	assert.True(t, p.OK)
	assert.Equal(t, "USD", p.Currency)
}

func TestParsePrice_Empty(t *testing.T) {
	p := ParsePrice("")
	assert.False(t, p.OK)
}

func TestParsePrice_NoNumber(t *testing.T) {
	p := ParsePrice("Free shipping")
	assert.False(t, p.OK)
}

func TestParsePrice_RoundTrip(t *testing.T) {
	for _, code := range []string{"USD", "GBP", "EUR", "INR", "CAD", "AUD"} {
		original := Price{Amount: 42.50, Currency: code, OK: true}
		rendered := FormatPrice(original)
		parsed := ParsePrice(rendered)
		assert.True(t, parsed.OK, "code=%s", code)
		assert.InDelta(t, original.Amount, parsed.Amount, 0.001, "code=%s", code)
		assert.Equal(t, original.Currency, parsed.Currency, "code=%s", code)
	}
}
