package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// wrapperKeys are the object field names, in priority order, under which
// backends are known to nest the record collection.
var wrapperKeys = []string{"persons", "people", "data"}

// markdownFenceRegex captures the content of the first fenced code block,
// with or without a language tag.
var markdownFenceRegex = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

// UnparsableResponseError means every extraction strategy failed.
// RawResponse keeps the original text - callers need it for diagnostics.
type UnparsableResponseError struct {
	RawResponse string
}

func (e *UnparsableResponseError) Error() string {
	return "response contains no parsable JSON"
}

// parseStrategy attempts to pull a JSON value out of raw backend output.
// Strategies are pure and independently testable; Normalize composes them
// as "try next on failure".
type parseStrategy func(s string) (any, bool)

var parseStrategies = []parseStrategy{
	parseDirect,
	parseFenced,
	parseDelimited,
}

// Normalize coerces raw backend output - plain JSON, JSON inside prose or
// markdown fences, a bare record object, or a wrapped collection - into a
// uniform sequence of records.
func Normalize(raw string) ([]any, error) {
	for _, strategy := range parseStrategies {
		if v, ok := strategy(raw); ok {
			return NormalizeShape(v), nil
		}
	}
	return nil, &UnparsableResponseError{RawResponse: raw}
}

// NormalizeShape maps a parsed JSON value onto the uniform
// sequence-of-records shape:
//   - a sequence is used as-is,
//   - an object wrapping a sequence under persons/people/data unwraps to it,
//   - any other object is promoted to a one-element sequence.
func NormalizeShape(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		for _, key := range wrapperKeys {
			if seq, ok := t[key].([]any); ok {
				return seq
			}
		}
		return []any{t}
	default:
		return []any{t}
	}
}

// parseDirect parses the entire string as JSON. Scalars don't count - a
// backend that answered with a bare string has not produced records.
func parseDirect(s string) (any, bool) {
	return decodeStructured(strings.TrimSpace(s))
}

// parseFenced extracts the first fenced code block and parses its content;
// when no complete block matches it strips stray fence markers and retries.
func parseFenced(s string) (any, bool) {
	if !strings.Contains(s, "```") {
		return nil, false
	}
	if matches := markdownFenceRegex.FindStringSubmatch(s); len(matches) > 1 {
		if v, ok := decodeStructured(strings.TrimSpace(matches[1])); ok {
			return v, true
		}
	}
	stripped := strings.ReplaceAll(s, "```json", "")
	stripped = strings.ReplaceAll(stripped, "```", "")
	return decodeStructured(strings.TrimSpace(stripped))
}

// parseDelimited takes the substring from the first object-open to the
// last object-close and parses it; failing that, the same for a collection.
func parseDelimited(s string) (any, bool) {
	trimmed := strings.TrimSpace(s)
	if v, ok := decodeBetween(trimmed, '{', '}'); ok {
		return v, true
	}
	return decodeBetween(trimmed, '[', ']')
}

func decodeBetween(s string, open, closing byte) (any, bool) {
	first := strings.IndexByte(s, open)
	last := strings.LastIndexByte(s, closing)
	if first == -1 || last <= first {
		return nil, false
	}
	return decodeStructured(s[first : last+1])
}

// decodeStructured parses s as JSON, accepting only objects and sequences.
func decodeStructured(s string) (any, bool) {
	if s == "" {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	switch v.(type) {
	case map[string]any, []any:
		return v, true
	default:
		return nil, false
	}
}
