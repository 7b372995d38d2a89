package reasoning

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoObject is returned by DecodeObject when the response contains no
// parseable top-level JSON object. Callers treat it as "no structured
// result" and substitute their fixed fallback payload.
var ErrNoObject = errors.New("reasoning: no JSON object in response")

var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// DecodeObject locates the first top-level {...} block in a free-text model
// response and unmarshals it into v. It tolerates leading/trailing prose and
// markdown code fences. Any failure, including malformed JSON inside the
// block, is ErrNoObject.
func DecodeObject(raw string, v any) error {
	if block, ok := firstObject(raw); ok {
		if json.Unmarshal([]byte(block), v) == nil {
			return nil
		}
	}
	return ErrNoObject
}

// firstObject returns the first balanced top-level JSON object in text,
// preferring the contents of a fenced code block when one is present.
func firstObject(text string) (string, bool) {
	if m := fencePattern.FindStringSubmatch(text); len(m) > 1 {
		if block, ok := scanObject(m[1]); ok {
			return block, true
		}
	}
	return scanObject(text)
}

// scanObject walks text counting braces outside of string literals and
// returns the span from the first '{' to its matching '}'.
func scanObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
