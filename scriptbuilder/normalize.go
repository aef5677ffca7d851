package scriptbuilder

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText performs Unicode NFKC normalization, strips control
// characters and collapses runs of whitespace to single spaces.
func NormalizeText(text string) string {
	normed := norm.NFKC.String(text)
	normed = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, normed)
	fields := strings.Fields(normed)
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, " ")
}
