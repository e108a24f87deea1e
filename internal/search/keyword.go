package search

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeKeyword trims surrounding whitespace and brings the keyword to NFC,
// so decomposed Hangul typed on some systems hits the same query as composed input.
func NormalizeKeyword(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
