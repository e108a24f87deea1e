package render

import (
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// InlineElements are the only tags kept from provider HTML. The provider marks
// matched terms with <b>; nothing else is needed to render a snippet.
var InlineElements = []string{"b", "strong", "em", "i", "u", "mark", "br", "span"}

// Sanitizer is the trust boundary for HTML that comes from the search provider.
type Sanitizer struct {
	markup *bluemonday.Policy
	strict *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements(InlineElements...)
	return &Sanitizer{markup: p, strict: bluemonday.StrictPolicy()}
}

// HTML keeps allow-listed inline tags without attributes and escapes the rest.
func (s *Sanitizer) HTML(raw string) template.HTML {
	return template.HTML(s.markup.Sanitize(raw))
}

// Text drops all markup and entities, for plain-text surfaces.
func (s *Sanitizer) Text(raw string) string {
	return strings.TrimSpace(html.UnescapeString(s.strict.Sanitize(raw)))
}
