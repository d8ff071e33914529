package meta

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DeriveDisplayName builds a human-readable name from a key's subkey when the
// caller did not provide one: "version_name" becomes "Version Name" and
// camel-cased subkeys are split on their humps.
func DeriveDisplayName(subkey string) string {
	if subkey == "" {
		return ""
	}
	var words strings.Builder
	prev := rune(0)
	for _, r := range subkey {
		switch {
		case r == '_' || r == '-' || r == '.':
			if prev != ' ' {
				words.WriteRune(' ')
				prev = ' '
			}
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			words.WriteRune(' ')
			words.WriteRune(r)
			prev = r
		default:
			words.WriteRune(r)
			prev = r
		}
	}
	name := strings.TrimSpace(words.String())
	if name == "" {
		return subkey
	}
	return cases.Title(language.Und).String(name)
}
