// Package normalize turns the raw strings an extraction strategy pulls
// off the page (price text, availability text, relative URLs) into the
// typed fields ProductRecord persists.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// currencySymbols maps a leading/trailing symbol to its ISO 4217 code.
// Order matters: longer symbols before shorter ones that could prefix-match.
var currencySymbols = []struct {
	symbol string
	code   string
}{
	{"₹", "INR"},
	{"£", "GBP"},
	{"€", "EUR"},
	{"C$", "CAD"},
	{"A$", "AUD"},
	{"$", "USD"},
}

var currencyCodes = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "INR": true, "CAD": true, "AUD": true,
}

var numberRegex = regexp.MustCompile(`[\d][\d,.\s]*\d|\d`)

// Price is the normalized result of parsing a raw price string.
type Price struct {
	Amount   float64
	Currency string
	OK       bool
}

// ParsePrice extracts an amount and ISO currency code from raw, handling
// symbol-prefixed ("$19.99"), code-suffixed ("19.99 USD"), and
// thousands-separated ("1,299.00") forms. Round-trips for every currency
// scoutpool recognizes: ParsePrice(FormatPrice(p)) == p within float
// precision.
func ParsePrice(raw string) Price {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Price{}
	}

	currency := detectCurrency(raw)

	numText := numberRegex.FindString(raw)
	if numText == "" {
		return Price{}
	}
	numText = normalizeDecimalSeparators(numText)

	amount, err := strconv.ParseFloat(numText, 64)
	if err != nil {
		return Price{}
	}

	return Price{Amount: amount, Currency: currency, OK: true}
}

func detectCurrency(raw string) string {
	for _, cs := range currencySymbols {
		if strings.Contains(raw, cs.symbol) {
			return cs.code
		}
	}
	upper := strings.ToUpper(raw)
	for code := range currencyCodes {
		if strings.Contains(upper, code) {
			return code
		}
	}
	return ""
}

// normalizeDecimalSeparators strips thousands separators (commas in
// "1,299.00", spaces in "1 299,00") and converts a trailing comma decimal
// (European "19,99") to a dot.
func normalizeDecimalSeparators(s string) string {
	s = strings.ReplaceAll(s, " ", "")

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		// Whichever separator appears last is the decimal point.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s[:lastComma], ".", "") + "." + s[lastComma+1:]
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		// Only commas: a trailing 2-digit group is a decimal separator,
		// anything else is a thousands separator.
		if len(s)-lastComma-1 == 2 {
			s = strings.ReplaceAll(s[:lastComma], ",", "") + "." + s[lastComma+1:]
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	return s
}

// FormatPrice renders amount back into the currency's conventional
// symbol-prefixed form, the inverse of ParsePrice for the currencies
// scoutpool recognizes.
func FormatPrice(p Price) string {
	symbol := "$"
	for _, cs := range currencySymbols {
		if cs.code == p.Currency {
			symbol = cs.symbol
			break
		}
	}
	return symbol + strconv.FormatFloat(p.Amount, 'f', 2, 64)
}
