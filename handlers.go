package drakkar

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/drakkar-agro/drakkar/breadcrumb"
	"github.com/drakkar-agro/drakkar/content"
)

func (a *App) handleFront(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	if len(posts) > 3 {
		posts = posts[:3]
	}
	d := a.pageData(c, view{
		ctx:      breadcrumb.FrontPage{},
		template: templateFront,
		meta:     PageMeta{Title: a.Config.Name, URL: BuildURL(a.Config.URL)},
	})
	return Render(c, a.Views.Front(d, posts))
}

func (a *App) handleBlog(c echo.Context) error {
	tag := c.QueryParam("tag")
	if tag != "" {
		return c.Redirect(http.StatusMovedPermanently, "/tag/"+PathEscape(normalizeTag(tag))+"/")
	}
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	d := a.pageData(c, view{
		ctx:  breadcrumb.GenericArchive{Title: "Blog"},
		meta: PageMeta{Title: "Blog | " + a.Config.Name, URL: BuildURL(a.Config.URL, "blog")},
	})
	return Render(c, a.Views.Archive(d, Archive{Title: "Blog", Posts: posts, Tags: tags}))
}

func (a *App) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	post, err := a.Cache.GetPost(slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return a.renderNotFound(c)
		}
		return err
	}
	cats, err := a.Cache.PostCategories(post)
	if err != nil {
		return err
	}
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	d := a.pageData(c, view{
		ctx:  postContext(post, cats, a.Config.PostTypes),
		body: post.Content,
		meta: PageMeta{
			Title:       post.Title + " | " + a.Config.Name,
			Description: post.Summary,
			URL:         BuildURL(a.Config.URL, "blog", post.Slug),
			OGType:      "article",
		},
		jsonLD: []string{BlogPostingJsonLD(post, a.Config)},
	})
	return Render(c, a.Views.Post(d, SinglePost{
		Post:       post,
		Body:       a.renderBody(c, post.Content),
		Categories: cats,
		Related:    FilterRelatedPosts(post, posts),
	}))
}

func (a *App) handleCategory(c echo.Context) error {
	cat, err := a.Cache.Category(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return a.renderNotFound(c)
		}
		return err
	}
	posts, err := a.Cache.ListCategoryPosts(cat.Slug)
	if err != nil {
		return err
	}
	d := a.pageData(c, view{
		ctx:  breadcrumb.TaxonomyTerm{Name: cat.Name, Link: cat.Link()},
		meta: PageMeta{Title: cat.Name + " | " + a.Config.Name, Description: cat.Description, URL: BuildURL(a.Config.URL, "category", cat.Slug)},
	})
	return Render(c, a.Views.Archive(d, Archive{Title: cat.Name, Description: cat.Description, Posts: posts}))
}

func (a *App) handleTag(c echo.Context) error {
	tag := normalizeTag(c.Param("slug"))
	posts, err := a.Cache.ListPosts(tag)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		return a.renderNotFound(c)
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	d := a.pageData(c, view{
		ctx:  breadcrumb.TaxonomyTerm{Name: tag, Link: "/tag/" + PathEscape(tag) + "/"},
		meta: PageMeta{Title: tag + " | " + a.Config.Name, URL: BuildURL(a.Config.URL, "tag", tag)},
	})
	return Render(c, a.Views.Archive(d, Archive{Title: tag, Posts: posts, Tags: tags, ActiveTag: tag}))
}

func (a *App) handleSearch(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	posts, err := a.Cache.Search(q)
	if err != nil {
		return err
	}
	d := a.pageData(c, view{
		ctx:  breadcrumb.SearchResults{Query: q},
		meta: PageMeta{Title: "Search | " + a.Config.Name},
	})
	return Render(c, a.Views.Archive(d, Archive{Title: "Search results", Posts: posts, Query: q}))
}

func (a *App) handlePostTypeArchive(name string, pt PostTypeConfig) echo.HandlerFunc {
	return func(c echo.Context) error {
		all, err := a.Cache.ListPosts("")
		if err != nil {
			return err
		}
		var posts []Post
		for _, p := range all {
			if p.Type == name {
				posts = append(posts, p)
			}
		}
		d := a.pageData(c, view{
			ctx:  breadcrumb.GenericArchive{Title: pt.Label},
			meta: PageMeta{Title: pt.Label + " | " + a.Config.Name},
		})
		return Render(c, a.Views.Archive(d, Archive{Title: pt.Label, Posts: posts}))
	}
}

// handlePage serves hierarchical pages by their full path.
func (a *App) handlePage(c echo.Context) error {
	path := c.Request().URL.Path
	page, err := a.Cache.PageByPath(path)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return a.renderNotFound(c)
		}
		return err
	}
	ancestors, err := a.Cache.Ancestors(page)
	if err != nil {
		return err
	}
	children, err := a.Cache.Children(page.ID)
	if err != nil {
		return err
	}
	d := a.pageData(c, view{
		ctx:      pageContext(page, ancestors),
		template: page.Template,
		body:     page.Content,
		meta: PageMeta{
			Title:       page.Title + " | " + a.Config.Name,
			Description: content.Excerpt(page.Content, a.Flags().Int("excerpt_length", 20)),
			URL:         a.Config.URL + page.Path,
		},
	})
	body := a.renderBody(c, page.Content)
	if page.Template == templateContact && !content.HasShortcode(page.Content, "contact_form") {
		body += contactFormShortcode(CsrfToken(c), page.Path)(nil)
	}
	return Render(c, a.Views.Page(d, SinglePage{
		Page:      page,
		Body:      body,
		Ancestors: ancestors,
		Children:  children,
	}))
}

func (a *App) renderNotFound(c echo.Context) error {
	d := a.pageData(c, view{
		ctx:  breadcrumb.NotFound{},
		meta: PageMeta{Title: "Page not found | " + a.Config.Name},
	})
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(d))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	pages, err := a.Cache.ListPages()
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts, pages)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleFavicon(c echo.Context) error {
	return echo.StaticFileHandler("images/favicon.svg", a.themeFS())(c)
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nDisallow: /admin/\nAllow: /\n\nSitemap: " + a.Config.URL + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = a.renderNotFound(c)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		d := a.pageData(c, view{meta: PageMeta{Title: "Server error | " + a.Config.Name}})
		_ = RenderStatus(c, code, a.Views.ServerError(d))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
