// Package route maps keywords to the two routed URL shapes and back:
// "/" for no keyword and "/search/<keyword>".
package route

import (
	"net/url"
	"strings"

	"blogsearch/internal/search"
)

const (
	Root         = "/"
	SearchPrefix = "/search/"
)

// PathFor returns the path a submission of text navigates to.
func PathFor(text string) string {
	k := search.NormalizeKeyword(text)
	switch k {
	case "":
		return Root
	case ".", "..":
		// a bare dot segment would be removed by path cleaning on either side
		return SearchPrefix + strings.Repeat("%2E", len(k))
	}
	return SearchPrefix + url.PathEscape(k)
}

// KeywordFromPath extracts the keyword from an escaped request path
// (url.URL.EscapedPath), so an encoded "/" inside the keyword survives.
// ok is false when the path is not one of the two routes or is badly escaped.
func KeywordFromPath(escaped string) (keyword string, ok bool) {
	if escaped == Root || escaped == "" {
		return "", true
	}
	rest, found := strings.CutPrefix(escaped, SearchPrefix)
	if !found || strings.Contains(rest, "/") {
		return "", false
	}
	k, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	return search.NormalizeKeyword(k), true
}
