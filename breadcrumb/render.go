package breadcrumb

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Render returns a component that writes the trail as an ordered list.
// An empty trail renders nothing.
func Render(items []Item, opts Options) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(items) == 0 {
			return nil
		}
		_, err := io.WriteString(w, Markup(items, opts.Separator))
		return err
	})
}

// Markup renders the trail HTML. The separator is emitted between items,
// never after the last one.
func Markup(items []Item, separator string) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<nav class="breadcrumbs" aria-label="Breadcrumb navigation"><ol class="breadcrumbs__list">`)
	for i, it := range items {
		b.WriteString(`<li class="breadcrumbs__item">`)
		if it.HasLink() {
			b.WriteString(`<a href="`)
			b.WriteString(templ.EscapeString(string(templ.URL(it.Link))))
			b.WriteString(`" class="breadcrumbs__link">`)
			b.WriteString(templ.EscapeString(it.Label))
			b.WriteString(`</a>`)
		} else {
			b.WriteString(`<span class="breadcrumbs__current" aria-current="page">`)
			b.WriteString(templ.EscapeString(it.Label))
			b.WriteString(`</span>`)
		}
		if i < len(items)-1 {
			b.WriteString(`<span class="breadcrumbs__separator" aria-hidden="true">`)
			b.WriteString(templ.EscapeString(separator))
			b.WriteString(`</span>`)
		}
		b.WriteString(`</li>`)
	}
	b.WriteString(`</ol></nav>`)
	return b.String()
}

// JSONLD returns a Schema.org BreadcrumbList for the trail. Relative links
// are resolved against baseURL. Returns "" for an empty trail.
func JSONLD(items []Item, baseURL string) string {
	if len(items) == 0 {
		return ""
	}
	base := strings.TrimRight(baseURL, "/")
	elements := make([]map[string]interface{}, 0, len(items))
	for i, it := range items {
		el := map[string]interface{}{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Label,
		}
		if it.HasLink() {
			link := it.Link
			if strings.HasPrefix(link, "/") {
				link = base + link
			}
			el["item"] = link
		}
		elements = append(elements, el)
	}
	b, err := json.Marshal(map[string]interface{}{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": elements,
	})
	if err != nil {
		return ""
	}
	return string(b)
}
