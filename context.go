package drakkar

import (
	"html/template"
	"sort"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/drakkar-agro/drakkar/assets"
	"github.com/drakkar-agro/drakkar/breadcrumb"
	"github.com/drakkar-agro/drakkar/content"
	"github.com/drakkar-agro/drakkar/menu"
	"github.com/drakkar-agro/drakkar/options"
)

// Templates that change which assets a page gets.
const (
	templateFront   = "front-page"
	templateContact = assets.ContactTemplate
)

// view describes one public page before decoration.
type view struct {
	ctx      breadcrumb.Context
	template string
	body     string
	meta     PageMeta
	jsonLD   []string
}

// Flags returns a fresh snapshot of the theme options: defaults, then the
// configured overrides, then values saved from the admin. A storage error
// is logged and the configured values are used.
func (a *App) Flags() options.Flags {
	stored := make(map[string]string, len(a.Config.Options))
	for k, v := range a.Config.Options {
		stored[k] = v
	}
	if a.Store != nil {
		saved, err := a.Store.Options()
		if err != nil {
			a.Echo.Logger.Warnf("load options: %v", err)
		}
		for k, v := range saved {
			stored[k] = v
		}
	}
	return options.Snapshot(stored)
}

// pageData decorates v with its trail, asset tags, menus and structured
// data. None of these can fail the page: each degrades to empty output.
func (a *App) pageData(c echo.Context, v view) PageData {
	flags := a.Flags()
	crumbOpts := a.Config.BreadcrumbOptions()
	trail := breadcrumb.Build(v.ctx, crumbOpts)

	req := assets.Request{Context: v.ctx, Template: v.template, Content: v.body}
	catalog := a.catalog.Load()
	active := assets.Resolve(assets.Select(req, flags, catalog), catalog)
	if flags.Bool("defer_js", false) {
		active = assets.DeferScripts(active)
	}
	hints := assets.Hints(req, flags, a.Config.URL)

	meta := v.meta
	if meta.Title == "" {
		meta.Title = a.Config.Name
	}
	if meta.Description == "" {
		meta.Description = a.Config.Description
	}
	if meta.URL == "" {
		meta.URL = a.Config.URL + c.Request().URL.Path
	}
	if meta.OGType == "" {
		meta.OGType = "website"
	}

	jsonLD := []string{OrganizationJsonLD(a.Config, flags), WebsiteJsonLD(a.Config)}
	if ld := breadcrumb.JSONLD(trail, a.Config.URL); ld != "" {
		jsonLD = append(jsonLD, ld)
	}
	jsonLD = append(jsonLD, v.jsonLD...)

	return PageData{
		Site:        a.Config,
		Meta:        meta,
		Flags:       flags,
		Trail:       trail,
		Breadcrumbs: breadcrumb.Render(trail, crumbOpts),
		HeadTags:    assets.HeadTags(active, hints),
		FooterTags:  assets.FooterTags(active),
		PrimaryMenu: a.menu(menu.Primary),
		MobileMenu:  a.menu(menu.Mobile),
		FooterMenu:  a.menu(menu.Footer),
		SocialMenu:  a.socialMenu(flags),
		JSONLD:      jsonLD,
		CsrfToken:   CsrfToken(c),
	}
}

func (a *App) menuItems(loc menu.Location) []menu.Item {
	if a.Store == nil {
		return nil
	}
	items, err := a.Store.MenuItems(loc)
	if err != nil {
		a.Echo.Logger.Warnf("load menu %s: %v", loc, err)
		return nil
	}
	return items
}

func (a *App) menu(loc menu.Location) templ.Component {
	return menu.Render(loc, a.menuItems(loc))
}

// socialMenu falls back to the profiles set in the theme options when no
// social menu is stored.
func (a *App) socialMenu(flags options.Flags) templ.Component {
	if items := a.menuItems(menu.Social); len(items) > 0 {
		return menu.Render(menu.Social, items)
	}
	return menu.SocialLinks(flags.SocialLinks(), flags.String("social_target", "_blank"))
}

// renderBody renders stored Markdown with the site's shortcodes bound to
// the current request.
func (a *App) renderBody(c echo.Context, body string) template.HTML {
	scs := map[string]content.Shortcode{
		"contact_form": contactFormShortcode(CsrfToken(c), c.Request().URL.Path),
		"statistics":   statisticsShortcode,
	}
	for name, sc := range a.shortcodes {
		scs[name] = sc
	}
	return content.Render(body, content.Options{Shortcodes: scs})
}

func postTypeContext(types map[string]PostTypeConfig, name string) breadcrumb.PostType {
	if name == "" || name == "post" {
		return breadcrumb.PostType{}
	}
	pt, ok := types[name]
	if !ok {
		return breadcrumb.PostType{}
	}
	return breadcrumb.PostType{Label: pt.Label, ArchiveLink: postTypeArchive(name, pt)}
}

func postTypeArchive(name string, pt PostTypeConfig) string {
	if pt.Archive != "" {
		return "/" + strings.Trim(pt.Archive, "/") + "/"
	}
	return "/" + name + "/"
}

func postContext(p Post, cats []Category, types map[string]PostTypeConfig) breadcrumb.SinglePost {
	ctx := breadcrumb.SinglePost{Title: p.Title, Type: postTypeContext(types, p.Type)}
	for _, c := range cats {
		ctx.Categories = append(ctx.Categories, breadcrumb.Category{Name: c.Name, Link: c.Link()})
	}
	return ctx
}

// pageContext expects ancestors ordered from the immediate parent upward.
func pageContext(p Page, ancestors []Page) breadcrumb.Page {
	ctx := breadcrumb.Page{ID: p.ID, Title: p.Title}
	for _, anc := range ancestors {
		ctx.Ancestors = append(ctx.Ancestors, breadcrumb.Ancestor{Title: anc.Title, Link: anc.Path})
	}
	return ctx
}

func sortPages(pages []Page) {
	sort.SliceStable(pages, func(i, j int) bool {
		if pages[i].MenuOrder != pages[j].MenuOrder {
			return pages[i].MenuOrder < pages[j].MenuOrder
		}
		return pages[i].Title < pages[j].Title
	})
}
