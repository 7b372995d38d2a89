package ingest

import "strings"

// Sanitize prepares raw page text for indexing and for safe embedding in
// generated JSON prompts: newlines become spaces, control characters are
// stripped and backslashes are doubled.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteByte(' ')
		case r < 0x20 || (r >= 0x7f && r <= 0x9f):
			// drop control characters
		case r == '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
