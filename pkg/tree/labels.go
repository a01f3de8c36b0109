package tree

import (
	"strings"
	"unicode"
)

// Labeler derives a caption from a schema key when the node declares none.
type Labeler func(key string) string

// DefaultLabeler turns keys such as "modelNumber", "upnp_string_limit", or
// "HTTPPort" into "Model Number", "Upnp String Limit", and "HTTP Port".
// All-caps runs are kept as acronyms.
func DefaultLabeler(key string) string {
	words := splitKey(key)
	for i, word := range words {
		words[i] = capitalize(word)
	}
	return strings.Join(words, " ")
}

func splitKey(key string) []string {
	var (
		words   []string
		current []rune
	)
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}
	runes := []rune(strings.TrimSpace(key))
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.' || unicode.IsSpace(r):
			flush()
			continue
		case i > 0 && unicode.IsUpper(r):
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return words
}

func capitalize(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return ""
	}
	allUpper := true
	for _, r := range runes {
		if unicode.IsLower(r) {
			allUpper = false
			break
		}
	}
	if allUpper && len(runes) > 1 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
