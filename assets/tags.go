package assets

import (
	"context"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/a-h/templ"
)

// HeadTags renders resource hints, then every active stylesheet and any
// head scripts, in catalog order.
func HeadTags(active []Descriptor, hints []Hint) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		for _, h := range hints {
			writeHint(&b, h)
		}
		for _, d := range active {
			switch {
			case d.Kind == Style:
				writeStyle(&b, d)
			case d.Position == Head:
				writeScript(&b, d)
			}
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// FooterTags renders the active footer scripts in catalog order.
func FooterTags(active []Descriptor) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		for _, d := range active {
			if d.Kind == Script && d.Position == Footer {
				writeScript(&b, d)
			}
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// InlineStyle renders css inside a style element, optionally collapsing
// whitespace. Empty css renders nothing.
func InlineStyle(id, css string, minify bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if minify {
			css = MinifyCSS(css)
		}
		if strings.TrimSpace(css) == "" {
			return nil
		}
		// Closing tags inside the payload would end the element early.
		css = strings.ReplaceAll(css, "</", `<\/`)
		_, err := io.WriteString(w, `<style id="`+templ.EscapeString(id)+`">`+css+"</style>\n")
		return err
	})
}

var cssSpace = regexp.MustCompile(`\s+`)

// MinifyCSS collapses runs of whitespace.
func MinifyCSS(css string) string {
	return strings.TrimSpace(cssSpace.ReplaceAllString(css, " "))
}

// SrcWithVersion appends the ver query parameter when version is set.
func SrcWithVersion(src, version string) string {
	if version == "" {
		return src
	}
	u, err := url.Parse(src)
	if err != nil {
		return src
	}
	q := u.Query()
	q.Set("ver", version)
	u.RawQuery = q.Encode()
	return u.String()
}

func writeHint(b *strings.Builder, h Hint) {
	b.WriteString(`<link rel="`)
	b.WriteString(templ.EscapeString(h.Rel))
	b.WriteString(`" href="`)
	b.WriteString(templ.EscapeString(h.Href))
	b.WriteString(`"`)
	if h.CrossOrigin {
		b.WriteString(" crossorigin")
	}
	b.WriteString(">\n")
}

func writeStyle(b *strings.Builder, d Descriptor) {
	href := templ.EscapeString(SrcWithVersion(d.URL, d.Version))
	id := templ.EscapeString(d.Handle + "-css")
	media := d.Media
	if media == "" {
		media = "all"
	}
	media = templ.EscapeString(media)
	if d.Delivery == Normal {
		b.WriteString(`<link rel="stylesheet" id="` + id + `" href="` + href + `" media="` + media + "\">\n")
		return
	}
	b.WriteString(`<link rel="preload" as="style" id="` + id + `" href="` + href + `" media="` + media +
		`" onload="this.onload=null;this.rel='stylesheet'">` + "\n")
	b.WriteString(`<noscript><link rel="stylesheet" href="` + href + `" media="` + media + "\"></noscript>\n")
}

func writeScript(b *strings.Builder, d Descriptor) {
	b.WriteString(`<script`)
	if d.Delivery == Deferred {
		b.WriteString(" defer")
	}
	b.WriteString(` id="` + templ.EscapeString(d.Handle) + `" src="` +
		templ.EscapeString(SrcWithVersion(d.URL, d.Version)) + "\"></script>\n")
}
