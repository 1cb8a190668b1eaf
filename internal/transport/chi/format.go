package chi

import (
	"strings"
	"unicode/utf8"
)

// preview cuts s to n runes, marking the cut with an ellipsis.
func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:n]), " ") + "..."
}

// humanize turns an attribute key like "dominant_color" into "Color".
func humanize(key string) string {
	if i := strings.LastIndexByte(key, '_'); i >= 0 {
		key = key[i+1:]
	}
	if key == "" {
		return "Attribute"
	}
	return strings.ToUpper(key[:1]) + key[1:]
}
