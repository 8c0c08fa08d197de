package field

import (
	"strings"
	"unicode"
)

// KeyFromTitle derives the legacy title-based key: lowercase with whitespace
// runs replaced by underscores.
func KeyFromTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), "_")
}

// DefaultLabeler turns a field key into a label: "dateOfBirth" becomes
// "Date Of Birth" and "insurance_id2" becomes "Insurance Id 2". Words split on
// underscores, dashes, spaces, case changes and letter/digit changes.
// All-caps words such as SSN are kept as written.
func DefaultLabeler(key string) string {
	runes := []rune(key)
	var words []string
	start := -1
	for i, r := range runes {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			if start >= 0 {
				words = append(words, string(runes[start:i]))
				start = -1
			}
			continue
		}
		if start >= 0 && wordBreak(runes, i) {
			words = append(words, string(runes[start:i]))
			start = i
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, string(runes[start:]))
	}

	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// wordBreak reports whether a new word starts at runes[i].
func wordBreak(runes []rune, i int) bool {
	prev, cur := runes[i-1], runes[i]
	switch {
	case unicode.IsLower(prev) && unicode.IsUpper(cur):
		return true
	case unicode.IsDigit(prev) != unicode.IsDigit(cur):
		return true
	case unicode.IsUpper(prev) && unicode.IsUpper(cur):
		// end of an acronym: "HTTPServer" breaks before "Server"
		return i+1 < len(runes) && unicode.IsLower(runes[i+1])
	}
	return false
}

func capitalize(word string) string {
	if len([]rune(word)) > 1 && strings.ToUpper(word) == word {
		return word
	}
	runes := []rune(strings.ToLower(word))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
