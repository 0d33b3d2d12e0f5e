// Package langtag handles the small subset of BCP 47 the core needs.
package langtag

import "strings"

const DefaultPrimary = "en"

// Primary returns the lower cased primary subtag of tag, "en" when tag is
// empty ("es-ES" -> "es").
func Primary(tag string) string {
	primary, _, _ := strings.Cut(strings.TrimSpace(tag), "-")
	primary, _, _ = strings.Cut(primary, "_")
	if primary == "" {
		return DefaultPrimary
	}
	return strings.ToLower(primary)
}

// Equal compares two tags case-insensitively, treating "_" as "-".
func Equal(a, b string) bool {
	return strings.EqualFold(normalize(a), normalize(b))
}

func normalize(tag string) string {
	return strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
}
