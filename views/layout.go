package views

import (
	"strings"

	"github.com/a-h/templ"

	"github.com/drakkar-agro/drakkar"
	"github.com/drakkar-agro/drakkar/assets"
	"github.com/drakkar-agro/drakkar/menu"
)

// layout wraps main in the public page shell: head metadata, header with
// navigation, breadcrumbs, footer and the asset tags chosen for the page.
func layout(d drakkar.PageData, bodyClass string, main func(h *html)) templ.Component {
	return component(func(h *html) {
		h.raw("<!DOCTYPE html>\n<html")
		h.attr("lang", d.Site.Language)
		h.raw(` class="no-js"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		head(h, d)
		h.raw("</head><body")
		h.attr("class", bodyClasses(d, bodyClass))
		h.raw(`><a class="skip-link screen-reader-text" href="#content">Skip to content</a>`)

		header(h, d)

		h.raw(`<main id="content" class="site-main"><div class="container">`)
		h.component(d.Breadcrumbs)
		h.raw(`</div>`)
		main(h)
		h.raw(`</main>`)

		footer(h, d)
		whatsAppWidget(h, d)
		h.component(d.FooterTags)
		h.raw("</body></html>")
	})
}

func head(h *html, d drakkar.PageData) {
	h.raw("<title>")
	h.text(d.Meta.Title)
	h.raw("</title>")
	if d.Meta.Description != "" {
		h.raw(`<meta name="description"`)
		h.attr("content", d.Meta.Description)
		h.raw(">")
	}
	h.raw(`<link rel="canonical"`)
	h.attr("href", d.Meta.URL)
	h.raw(">")

	meta := func(prop, content string) {
		if content == "" {
			return
		}
		h.raw(`<meta property="`, prop, `"`)
		h.attr("content", content)
		h.raw(">")
	}
	meta("og:type", d.Meta.OGType)
	meta("og:title", d.Meta.Title)
	meta("og:description", d.Meta.Description)
	meta("og:url", d.Meta.URL)
	meta("og:site_name", d.Site.Name)
	image := d.Meta.Image
	if image == "" {
		image = d.Flags.String("default_featured_image", "")
	}
	meta("og:image", image)
	h.raw(`<meta name="twitter:card" content="summary_large_image">`)

	h.raw(`<link rel="icon" type="image/svg+xml" href="/favicon.svg">`)
	h.raw(`<link rel="alternate" type="application/rss+xml"`)
	h.attr("title", d.Site.Name)
	h.raw(` href="/feed.xml">`)
	h.component(d.HeadTags)
	if bg := d.Flags.String("hero_background_image", ""); bg != "" {
		css := ".hero {\n  background-image: url(\"" + strings.ReplaceAll(bg, `"`, `%22`) + "\");\n}\n"
		h.component(assets.InlineStyle("drakkar-hero-inline", css, d.Flags.Bool("minify_css", false)))
	}
	for _, ld := range d.JSONLD {
		h.raw(`<script type="application/ld+json">`, ld, `</script>`)
	}
}

func bodyClasses(d drakkar.PageData, extra string) string {
	classes := []string{
		"layout-" + d.Flags.String("site_layout", "full-width"),
		"header-" + d.Flags.String("header_style", "default"),
		"footer-" + d.Flags.String("footer_style", "default"),
	}
	if extra != "" {
		classes = append(classes, extra)
	}
	return strings.Join(classes, " ")
}

func header(h *html, d drakkar.PageData) {
	h.raw(`<header class="site-header"><div class="container site-header__inner"><div class="site-branding"><a href="/" rel="home">`)
	if d.Site.Logo != "" {
		h.raw("<img")
		h.attr("src", d.Site.Logo)
		h.attr("alt", d.Site.Name)
		h.raw(">")
	} else {
		h.text(d.Site.Name)
	}
	h.raw(`</a></div>`)
	h.component(d.PrimaryMenu)
	h.raw(`<button class="menu-toggle" type="button" aria-controls="mobile-navigation" aria-expanded="false"><span class="screen-reader-text">Menu</span>&#9776;</button>`)
	h.raw(`</div><div id="mobile-navigation">`)
	h.component(d.MobileMenu)
	h.raw(`</div></header>`)
}

func footer(h *html, d drakkar.PageData) {
	h.raw(`<footer class="site-footer"><div class="container">`)
	if d.Flags.String("footer_style", "default") != "minimal" {
		h.raw(`<div class="footer-top"><div class="footer-brand"><p class="brand-description">`)
		h.text(d.Site.Description)
		h.raw(`</p></div>`)
		contactDetails(h, d)
		h.raw(`</div>`)
	}
	h.component(d.FooterMenu)
	h.component(d.SocialMenu)
	h.raw(`<div class="footer-bottom"><p>&copy; `)
	h.text(d.Site.Author)
	h.raw(`</p></div></div></footer>`)
}

func contactDetails(h *html, d drakkar.PageData) {
	email := d.Flags.String("contact_email", "")
	phone := d.Flags.String("phone_number", "")
	addr := d.Flags.String("company_address", "")
	if email == "" && phone == "" && addr == "" {
		return
	}
	h.raw(`<div class="footer-contact"><ul class="contact-details">`)
	if phone != "" {
		h.raw(`<li class="phone"><a`)
		h.attr("href", "tel:"+strings.ReplaceAll(phone, " ", ""))
		h.raw(">")
		h.text(phone)
		h.raw("</a></li>")
	}
	if email != "" {
		h.raw(`<li class="email"><a`)
		h.attr("href", "mailto:"+email)
		h.raw(">")
		h.text(email)
		h.raw("</a></li>")
	}
	if addr != "" {
		h.raw(`<li class="address">`)
		h.text(addr)
		h.raw("</li>")
	}
	h.raw(`</ul></div>`)
}

// whatsAppWidget renders the floating chat button when the widget is on
// and a number is configured.
func whatsAppWidget(h *html, d drakkar.PageData) {
	if !d.Flags.Bool("whatsapp_widget_enable", false) {
		return
	}
	link := whatsAppLink(d.Flags.String("whatsapp_number", ""))
	if link == "" {
		return
	}
	h.raw(`<div class="whatsapp-widget" data-hint-delay="4000"><a class="whatsapp-widget__button" target="_blank" rel="noopener"`)
	h.attr("href", link)
	h.raw(` aria-label="WhatsApp">`, menu.Icon("whatsapp"), `</a><span class="whatsapp-widget__tooltip">Fale conosco</span></div>`)
}
