package normalize

import "strings"

// Email returns a normalized form of an email address suitable for
// storage and comparisons. Normalization currently trims surrounding
// whitespace and lower-cases the address.
func Email(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// Lang reduces a language tag to the base ISO 639-1 code sent to the
// translation service: lower-cased, region/script subtags stripped
// ("fr-CA" -> "fr", "en_US" -> "en"). Empty input falls back to "en".
func Lang(tag string) string {
	lang := strings.ToLower(strings.TrimSpace(tag))
	if idx := strings.IndexAny(lang, "-_"); idx >= 0 {
		lang = lang[:idx]
	}
	if lang == "" {
		return "en"
	}
	return lang
}
