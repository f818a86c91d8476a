package menu

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/drakkar-agro/drakkar/options"
)

var networkDomains = []struct {
	domain  string
	network string
}{
	{"facebook.com", "facebook"},
	{"twitter.com", "twitter"},
	{"x.com", "twitter"},
	{"instagram.com", "instagram"},
	{"linkedin.com", "linkedin"},
	{"youtube.com", "youtube"},
	{"wa.me", "whatsapp"},
	{"whatsapp.com", "whatsapp"},
}

// DetectNetwork guesses the social network of a profile URL.
func DetectNetwork(u string) string {
	u = strings.ToLower(u)
	if i := strings.Index(u, "://"); i >= 0 {
		u = u[i+3:]
	}
	host := u
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	host = strings.TrimPrefix(host, "www.")
	for _, d := range networkDomains {
		if host == d.domain || strings.HasSuffix(host, "."+d.domain) {
			return d.network
		}
	}
	return ""
}

// Icon returns the sprite reference for network, or "" when unknown.
func Icon(network string) string {
	if network == "" {
		return ""
	}
	n := templ.EscapeString(network)
	return `<svg class="icon icon--` + n + `" width="20" height="20" aria-hidden="true"><use href="/assets/images/social.svg#` + n + `"></use></svg>`
}

// SocialLinks renders the configured social profiles when no social menu
// is stored. target is "_blank" or "_self".
func SocialLinks(links []options.SocialLink, target string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(links) == 0 {
			return nil
		}
		if target != "_self" {
			target = "_blank"
		}
		var b strings.Builder
		b.WriteString(`<nav class="social-navigation"><ul class="social-nav__menu">`)
		for _, l := range links {
			label := strings.ToUpper(l.Network[:1]) + l.Network[1:]
			b.WriteString(`<li class="menu-item social-item social-item--` + templ.EscapeString(l.Network) + `">`)
			b.WriteString(`<a href="` + href(l.URL) + `" target="` + target + `" rel="noopener noreferrer" aria-label="Follow us on ` + templ.EscapeString(label) + `">`)
			b.WriteString(Icon(l.Network))
			b.WriteString(`<span class="screen-reader-text">` + templ.EscapeString(label) + `</span></a></li>`)
		}
		b.WriteString(`</ul></nav>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
