// Package bulk parses the BULK_URLS / BULK_URLS_FILE seed inputs: a JSON
// array, a JSON object keyed by arbitrary labels, a single bare string,
// or a newline/comma separated list. Entries may be plain strings or
// {"url": "...", "product_type_id": "..."} objects.
package bulk

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Entry is one seed URL plus its optional product type hint.
type Entry struct {
	URL           string
	ProductTypeID string
}

// ParseString interprets raw in precedence order: try JSON first (array,
// object, or quoted string), then fall back to a newline/comma
// separated plain list.
func ParseString(raw string) ([]Entry, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	if entries, ok := tryParseJSON(trimmed); ok {
		return entries, nil
	}

	return parsePlainList(trimmed), nil
}

// ParseFile reads path and parses its contents the same way as
// ParseString (BULK_URLS_FILE).
func ParseFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bulk urls file %s: %w", path, err)
	}
	return ParseString(string(data))
}

func tryParseJSON(trimmed string) ([]Entry, bool) {
	switch trimmed[0] {
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
			return nil, false
		}
		entries := make([]Entry, 0, len(raw))
		for _, item := range raw {
			e, ok := parseJSONEntry(item)
			if ok {
				entries = append(entries, e)
			}
		}
		return entries, true

	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
			return nil, false
		}

		if urlsRaw, ok := obj["urls"]; ok {
			var urls []json.RawMessage
			if err := json.Unmarshal(urlsRaw, &urls); err == nil {
				entries := make([]Entry, 0, len(urls))
				for _, item := range urls {
					if e, ok := parseJSONEntry(item); ok {
						entries = append(entries, e)
					}
				}
				return entries, true
			}
		}

		entries := make([]Entry, 0, len(obj))
		for _, item := range obj {
			e, ok := parseJSONEntry(item)
			if ok {
				entries = append(entries, e)
			}
		}
		return entries, true

	case '"':
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
			return nil, false
		}
		if s == "" {
			return nil, true
		}
		return []Entry{{URL: s}}, true
	}

	return nil, false
}

func parseJSONEntry(raw json.RawMessage) (Entry, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return Entry{}, false
		}
		return Entry{URL: s}, true
	}

	var obj struct {
		URL           string `json:"url"`
		ProductTypeID string `json:"product_type_id"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Entry{}, false
	}
	obj.URL = strings.TrimSpace(obj.URL)
	if obj.URL == "" {
		return Entry{}, false
	}
	return Entry{URL: obj.URL, ProductTypeID: obj.ProductTypeID}, true
}

func parsePlainList(raw string) []Entry {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})
	entries := make([]Entry, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		entries = append(entries, Entry{URL: f})
	}
	return entries
}
