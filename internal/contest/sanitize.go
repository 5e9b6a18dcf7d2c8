package contest

import (
	"strings"
	"unicode"
)

// cleanText normalizes free text taken from an upstream payload. Control
// and invisible format characters are dropped, every run of whitespace
// becomes one space, and the result is trimmed.
func cleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			if !space {
				b.WriteRune(' ')
				space = true
			}
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r), r == unicode.ReplacementChar:
			// dropped
		default:
			b.WriteRune(r)
			space = false
		}
	}

	return strings.TrimSpace(b.String())
}
