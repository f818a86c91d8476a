package views

import (
	"sort"

	"github.com/a-h/templ"

	"github.com/drakkar-agro/drakkar"
)

// Statistic is one counter in the front page statistics band.
type Statistic struct {
	Number string
	Label  string
}

// FrontStatistics are shown below the hero.
var FrontStatistics = []Statistic{
	{"+1M", "Amostras coletadas"},
	{"+1.200", "Clientes ativos"},
	{"+5M", "Hectares influenciados"},
	{"+3.700", "Fazendas atendidas"},
	{"+1,5M", "Mapas gerados/ano"},
}

// Front renders the home page: hero, statistics and the latest posts.
func Front(d drakkar.PageData, posts []drakkar.Post) templ.Component {
	return layout(d, "home", func(h *html) {
		h.raw(`<section class="hero"><div class="hero__overlay"></div><div class="container"><div class="hero__content">`)
		h.raw(`<span class="hero__badge">Agricultura de Precisão</span><h1 class="hero__title">`)
		h.text(d.Site.Name)
		h.raw(`</h1><p class="hero__description">`)
		h.text(d.Site.Description)
		h.raw(`</p><div class="hero__cta"><a class="button button--primary" href="#contact">Fale conosco</a>`)
		h.raw(`<a class="button button--outline" href="/blog/">Blog</a></div></div></div></section>`)

		h.raw(`<section class="front-section"><div class="container"><div class="statistics" data-statistics>`)
		for _, s := range FrontStatistics {
			h.raw(`<div class="statistics__item"><span class="statistics__number"`)
			h.attr("data-count", s.Number)
			h.raw(">")
			h.text(s.Number)
			h.raw(`</span><span class="statistics__label">`)
			h.text(s.Label)
			h.raw(`</span></div>`)
		}
		h.raw(`</div></div></section>`)

		if len(posts) > 0 {
			h.raw(`<section class="front-section front-section--alt"><div class="container"><h2 class="front-section__title">Últimas notícias</h2>`)
			postList(h, posts)
			h.raw(`<p><a class="button button--outline" href="/blog/">Ver todas</a></p></div></section>`)
		}
	})
}

// Archive renders a list of posts: blog index, taxonomy, post type or
// search results.
func Archive(d drakkar.PageData, a drakkar.Archive) templ.Component {
	return layout(d, "archive", func(h *html) {
		h.raw(`<div class="container"><header class="entry-header"><h1 class="entry-title">`)
		h.text(a.Title)
		h.raw(`</h1>`)
		if a.Description != "" {
			h.raw(`<p class="archive-description">`)
			h.text(a.Description)
			h.raw(`</p>`)
		}
		h.raw(`</header>`)

		if a.Query != "" || a.Title == "Search results" {
			searchForm(h, a.Query)
		}
		if len(a.Tags) > 0 {
			h.raw(`<ul class="tag-list">`)
			for _, t := range a.Tags {
				h.raw("<li")
				h.attr("class", TagClass(t == a.ActiveTag))
				h.raw("><a")
				h.attr("href", "/tag/"+drakkar.PathEscape(t)+"/")
				h.raw(">")
				h.text(t)
				h.raw("</a></li>")
			}
			h.raw(`</ul>`)
		}

		if len(a.Posts) == 0 {
			h.raw(`<p class="no-results">Nothing found.</p>`)
		} else {
			postList(h, a.Posts)
		}
		h.raw(`</div>`)
	})
}

func postList(h *html, posts []drakkar.Post) {
	h.raw(`<ul class="post-list">`)
	for _, p := range posts {
		h.raw(`<li><article class="post-card"><h3 class="post-card__title"><a`)
		h.attr("href", p.Link)
		h.raw(">")
		h.text(p.Title)
		h.raw(`</a></h3><p class="entry-meta"><time`)
		h.attr("datetime", p.Date)
		h.raw(">")
		h.text(FormatDate(p.Date))
		h.raw(`</time></p>`)
		if p.Summary != "" {
			h.raw(`<p class="post-card__summary">`)
			h.text(p.Summary)
			h.raw(`</p>`)
		}
		h.raw(`</article></li>`)
	}
	h.raw(`</ul>`)
}

func searchForm(h *html, q string) {
	h.raw(`<form class="search-form" role="search" method="get" action="/search/"><label class="screen-reader-text" for="search-q">Search</label><input id="search-q" type="search" name="q"`)
	h.attr("value", q)
	h.raw(`><button class="button button--primary" type="submit">Search</button></form>`)
}

// Post renders a single post with its categories, tags and related posts.
func Post(d drakkar.PageData, p drakkar.SinglePost) templ.Component {
	return layout(d, "single", func(h *html) {
		h.raw(`<article class="container post"><header class="entry-header"><h1 class="entry-title">`)
		h.text(p.Post.Title)
		h.raw(`</h1><p class="entry-meta"><time`)
		h.attr("datetime", p.Post.Date)
		h.raw(">")
		h.text(FormatDate(p.Post.Date))
		h.raw(`</time>`)
		for i, c := range p.Categories {
			if i == 0 {
				h.raw(` &middot; `)
			} else {
				h.raw(`, `)
			}
			h.raw(`<a rel="category"`)
			h.attr("href", c.Link())
			h.raw(">")
			h.text(c.Name)
			h.raw(`</a>`)
		}
		h.raw(`</p></header><div class="entry-content">`)
		h.raw(string(p.Body))
		h.raw(`</div>`)

		if len(p.Post.Tags) > 0 {
			h.raw(`<footer class="entry-footer"><ul class="tag-list">`)
			for _, t := range p.Post.Tags {
				h.raw(`<li class="tag-list__item"><a rel="tag"`)
				h.attr("href", "/tag/"+drakkar.PathEscape(t)+"/")
				h.raw(">")
				h.text(t)
				h.raw(`</a></li>`)
			}
			h.raw(`</ul></footer>`)
		}
		h.raw(`</article>`)

		if len(p.Related) > 0 {
			h.raw(`<section class="container related-posts"><h2>Related posts</h2>`)
			postList(h, p.Related)
			h.raw(`</section>`)
		}
	})
}

// Page renders a hierarchical page and links to its children.
func Page(d drakkar.PageData, p drakkar.SinglePage) templ.Component {
	class := "page"
	if p.Page.Template != "" {
		class += " page-template-" + p.Page.Template
	}
	return layout(d, class, func(h *html) {
		h.raw(`<article class="container"><header class="entry-header"><h1 class="entry-title">`)
		h.text(p.Page.Title)
		h.raw(`</h1></header><div class="entry-content">`)
		h.raw(string(p.Body))
		h.raw(`</div>`)
		if len(p.Children) > 0 {
			h.raw(`<nav class="child-pages"><ul>`)
			for _, c := range p.Children {
				h.raw("<li><a")
				h.attr("href", c.Path)
				h.raw(">")
				h.text(c.Title)
				h.raw("</a></li>")
			}
			h.raw(`</ul></nav>`)
		}
		h.raw(`</article>`)
	})
}

// contactFieldLabels names the validated fields for visitors.
var contactFieldLabels = map[string]string{
	"Name":    "Name",
	"Email":   "Email",
	"Phone":   "Phone",
	"Company": "Company",
	"Message": "Message",
	"form":    "Form",
}

// ContactReply is the fragment swapped into the contact form after a
// submission.
func ContactReply(r drakkar.ContactResult) templ.Component {
	return component(func(h *html) {
		if r.Sent {
			h.raw(`<p class="contact-form__success" role="status">Thank you! Your message has been sent.</p>`)
			return
		}
		fields := make([]string, 0, len(r.Errors))
		for f := range r.Errors {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		h.raw(`<ul class="contact-form__errors" role="alert">`)
		for _, f := range fields {
			label := contactFieldLabels[f]
			if label == "" {
				label = f
			}
			h.raw(`<li class="contact-form__error"><strong>`)
			h.text(label)
			h.raw(`</strong>: `)
			h.text(r.Errors[f])
			h.raw(`</li>`)
		}
		h.raw(`</ul>`)
	})
}

// NotFound renders the 404 page.
func NotFound(d drakkar.PageData) templ.Component {
	return layout(d, "error404", func(h *html) {
		h.raw(`<section class="container error-page"><p class="error-page__code">404</p><h1>Page not found</h1><p>The page you are looking for does not exist or was moved.</p>`)
		searchForm(h, "")
		h.raw(`<p><a class="button button--primary" href="/">Back to home</a></p></section>`)
	})
}

// ServerError renders the 500 page.
func ServerError(d drakkar.PageData) templ.Component {
	return layout(d, "error500", func(h *html) {
		h.raw(`<section class="container error-page"><p class="error-page__code">500</p><h1>Something went wrong</h1><p>Please try again in a moment.</p>`)
		h.raw(`<p><a class="button button--primary" href="/">Back to home</a></p></section>`)
	})
}
