package publisher

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const fallbackNoteName = "capture"

// SanitizeTitle converts a note title into a file name stem. Accents are
// folded to their base letters, ASCII letters, digits, '-', '_' and '.' are
// kept, spaces become '-', and anything else becomes '_'.
func SanitizeTitle(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}
	var b strings.Builder
	for _, r := range strings.TrimSpace(folded) {
		switch {
		case r < 0x80 && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		default:
			b.WriteRune('_')
		}
	}
	name := b.String()
	if strings.Trim(name, ".") == "" {
		return fallbackNoteName
	}
	return name
}
