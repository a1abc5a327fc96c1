package recipe

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/goccy/go-json"
)

const (
	fence       = "```"
	languageTag = "json"

	unparsableMessage = "could not parse the model response as JSON"
)

// StripFences removes the markdown wrapping models commonly put around JSON:
// surrounding backticks when the text opens with a fence, then a leading
// "json" language tag (any case) and the whitespace after it. Anything else
// is left for the parser to accept or reject.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, fence) {
		s = strings.Trim(s, "`")
	}
	if len(s) >= len(languageTag) && strings.EqualFold(s[:len(languageTag)], languageTag) {
		s = strings.TrimLeftFunc(s[len(languageTag):], unicode.IsSpace)
	}
	return s
}

// Normalize strips fences from raw model output and parses the remainder as
// JSON. Numbers are kept as json.Number so integers survive re-encoding.
func Normalize(raw string) (any, error) {
	s := StripFences(raw)
	data := []byte(s)
	if !json.Valid(data) {
		return nil, &NormalizationError{Message: unparsableMessage, Raw: s}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &NormalizationError{Message: unparsableMessage, Raw: s, Err: err}
	}
	return v, nil
}

// NormalizeList is Normalize for outputs that must be a JSON array. Arrays
// longer than limit are truncated.
func NormalizeList(raw string, limit int) ([]any, error) {
	v, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		return nil, &NormalizationError{
			Message: "the model response is not a JSON array",
			Raw:     StripFences(raw),
			Err:     fmt.Errorf("got %T", v),
		}
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
