// Package content renders stored page and post bodies. Bodies are
// Markdown with two kinds of embedded markers: shortcodes such as
// [contact_form] and block comments such as <!-- block:statistics -->.
// Both are visible to the asset selector through HasShortcode and HasBlock.
package content

import (
	"fmt"
	stdhtml "html"
	"html/template"
	"regexp"
	"strings"

	md "github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

var (
	shortcodePattern = regexp.MustCompile(`\[([a-z][a-z0-9_-]*)((?:\s+[a-z_]+="[^"]*")*)\s*\]`)
	attrPattern      = regexp.MustCompile(`([a-z_]+)="([^"]*)"`)
	blockPattern     = regexp.MustCompile(`<!--\s*block:([a-z][a-z0-9_/-]*)\s*-->`)
	tagPattern       = regexp.MustCompile(`<[^>]*>`)
	spacePattern     = regexp.MustCompile(`\s+`)
)

// Shortcode renders one shortcode occurrence into trusted HTML.
type Shortcode func(attrs map[string]string) template.HTML

// Options configures Render.
type Options struct {
	Shortcodes map[string]Shortcode
}

// HasShortcode reports whether body contains the named shortcode.
func HasShortcode(body, name string) bool {
	for _, m := range shortcodePattern.FindAllStringSubmatch(body, -1) {
		if m[1] == name {
			return true
		}
	}
	return false
}

// HasBlock reports whether body contains the named block marker.
func HasBlock(body, name string) bool {
	for _, m := range blockPattern.FindAllStringSubmatch(body, -1) {
		if m[1] == name {
			return true
		}
	}
	return false
}

// Render converts body to HTML. Raw HTML in the body is dropped; known
// shortcodes are replaced by their renderer's output and unknown ones are
// left as text.
func Render(body string, opts Options) template.HTML {
	if strings.TrimSpace(body) == "" {
		return ""
	}

	var expanded []template.HTML
	body = shortcodePattern.ReplaceAllStringFunc(body, func(m string) string {
		sub := shortcodePattern.FindStringSubmatch(m)
		fn, ok := opts.Shortcodes[sub[1]]
		if !ok {
			return m
		}
		expanded = append(expanded, fn(parseAttrs(sub[2])))
		return "\n\n" + placeholder(len(expanded)-1) + "\n\n"
	})
	body = blockPattern.ReplaceAllString(body, "")

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.SkipHTML,
	})
	out := string(md.Render(p.Parse([]byte(body)), renderer))

	for i, h := range expanded {
		ph := placeholder(i)
		out = strings.Replace(out, "<p>"+ph+"</p>", string(h), 1)
		out = strings.Replace(out, ph, string(h), 1)
	}
	return template.HTML(out)
}

// Excerpt returns the first words of body as plain text, with an ellipsis
// when truncated.
func Excerpt(body string, words int) string {
	if words < 1 {
		return ""
	}
	body = shortcodePattern.ReplaceAllString(body, " ")
	body = blockPattern.ReplaceAllString(body, " ")
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.SkipHTML})
	text := string(md.Render(p.Parse([]byte(body)), renderer))
	text = stdhtml.UnescapeString(tagPattern.ReplaceAllString(text, " "))
	fields := strings.Fields(spacePattern.ReplaceAllString(text, " "))
	if len(fields) <= words {
		return strings.Join(fields, " ")
	}
	return strings.Join(fields[:words], " ") + "…"
}

func placeholder(i int) string {
	return fmt.Sprintf("DRAKKARSHORTCODE%dX", i)
}

func parseAttrs(s string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrPattern.FindAllStringSubmatch(s, -1) {
		attrs[m[1]] = m[2]
	}
	return attrs
}
