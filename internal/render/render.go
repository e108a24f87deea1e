package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"blogsearch/internal/search"
	"blogsearch/internal/view"
)

//go:embed templates/*.html
var templatesFS embed.FS

// ItemView is a result after sanitization, ready for a template or JSON.
type ItemView struct {
	Thumbnail string        `json:"thumbnail"`
	Title     template.HTML `json:"title"`
	BlogName  string        `json:"blogname"`
	Contents  template.HTML `json:"contents"`
	URL       string        `json:"url"`
	Datetime  string        `json:"datetime,omitempty"`
}

type pageData struct {
	Text    string
	Keyword string
	Status  string
	Empty   bool
	Meta    search.Meta
	Items   []template.HTML
}

type Renderer struct {
	sanitizer *Sanitizer
	tmpl      *template.Template
}

func New() (*Renderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{sanitizer: NewSanitizer(), tmpl: tmpl}, nil
}

// View sanitizes one result. URLs are left to html/template's attribute escaping.
func (r *Renderer) View(item search.Item) ItemView {
	return ItemView{
		Thumbnail: item.Thumbnail,
		Title:     r.sanitizer.HTML(item.Title),
		BlogName:  item.BlogName,
		Contents:  r.sanitizer.HTML(item.Contents),
		URL:       item.URL,
		Datetime:  item.Datetime,
	}
}

func (r *Renderer) Views(items []search.Item) []ItemView {
	out := make([]ItemView, 0, len(items))
	for _, it := range items {
		out = append(out, r.View(it))
	}
	return out
}

// Item renders the markup of one result.
func (r *Renderer) Item(item search.Item) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "item", r.View(item)); err != nil {
		return "", fmt.Errorf("render item: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// Page renders the whole search screen for a view state.
func (r *Renderer) Page(w io.Writer, st view.State) error {
	data := pageData{
		Text:    st.Text,
		Keyword: st.Keyword,
		Status:  st.Status.String(),
		Empty:   st.Empty(),
		Meta:    st.Meta,
	}
	if st.Status == view.StatusLoaded {
		data.Items = make([]template.HTML, 0, len(st.Results))
		for _, it := range st.Results {
			h, err := r.Item(it)
			if err != nil {
				return err
			}
			data.Items = append(data.Items, h)
		}
	}
	return r.tmpl.ExecuteTemplate(w, "page", data)
}

// PlainText renders one result for a terminal.
func (r *Renderer) PlainText(n int, item search.Item) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%2d. %s\n", n, r.sanitizer.Text(item.Title))
	if item.BlogName != "" {
		fmt.Fprintf(&buf, "    [%s]\n", item.BlogName)
	}
	if c := r.sanitizer.Text(item.Contents); c != "" {
		fmt.Fprintf(&buf, "    %s\n", c)
	}
	fmt.Fprintf(&buf, "    %s\n", item.URL)
	return buf.String()
}
