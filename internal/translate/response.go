package translate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var jsonBlockRegex = regexp.MustCompile("```(?:json)?\\s*")

// removes markdown formatting from the response
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// fixes invalid JSON escape sequences like \N by escaping the backslash,
// so the literal text survives parsing
func fixInvalidEscapes(s string) string {
	var result strings.Builder
	result.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			result.WriteByte(s[i])
			continue
		}
		switch next := s[i+1]; next {
		case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
			result.WriteByte('\\')
			result.WriteByte(next)
		default:
			result.WriteString(`\\`)
			result.WriteByte(next)
		}
		i++
	}

	return result.String()
}

// parses model output into translated items
func parseResponse(provider, text string) ([]Item, error) {
	if text == "" {
		return nil, fmt.Errorf("no text in %s response", provider)
	}
	text = cleanJSONResponse(text)

	items, err := extractItems(text)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			truncateString(text, 200),
		)
	}
	return items, nil
}

// extractItems finds the first JSON array of index/text objects in text,
// skipping prose around it and unwrapping objects like {"results": [...]}.
func extractItems(text string) ([]Item, error) {
	text = fixInvalidEscapes(text)

	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		value, ok := leadingJSON(text[i:])
		if !ok {
			continue
		}
		if items, ok := findItems(value); ok {
			return items, nil
		}
	}
	return nil, fmt.Errorf("no valid translation JSON found in response")
}

func findItems(value gjson.Result) ([]Item, bool) {
	switch {
	case value.IsArray():
		var items []Item
		for _, v := range value.Array() {
			if !v.IsObject() {
				return nil, false
			}
			items = append(items, Item{
				Index: int(v.Get("index").Int()),
				Text:  v.Get("text").String(),
			})
		}
		return items, validateItems(items)
	case value.IsObject():
		var found []Item
		ok := false
		value.ForEach(func(_, child gjson.Result) bool {
			found, ok = findItems(child)
			return !ok
		})
		return found, ok
	}
	return nil, false
}

// at least one item carries text
func validateItems(items []Item) bool {
	for _, item := range items {
		if item.Text != "" {
			return true
		}
	}
	return false
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// leadingJSON parses the JSON value at the start of s, ignoring whatever
// follows it
func leadingJSON(s string) (gjson.Result, bool) {
	var raw json.RawMessage
	if err := json.NewDecoder(strings.NewReader(s)).Decode(&raw); err != nil {
		return gjson.Result{}, false
	}
	return gjson.ParseBytes(raw), true
}
