package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/drakkar-agro/drakkar"
	"github.com/drakkar-agro/drakkar/assets"
	"github.com/drakkar-agro/drakkar/media"
	"github.com/drakkar-agro/drakkar/menu"
	"github.com/drakkar-agro/drakkar/options"
)

func adminLayout(title, csrfToken string, loggedIn bool, main func(h *html)) templ.Component {
	return component(func(h *html) {
		h.raw(`<!DOCTYPE html>`, "\n", `<html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><meta name="robots" content="noindex">`)
		h.raw(`<meta name="csrf-token"`)
		h.attr("content", csrfToken)
		h.raw(`><title>`)
		h.text(title)
		h.raw(` | Admin</title><link rel="stylesheet"`)
		h.attr("href", assets.SrcWithVersion("/assets/css/admin.css", drakkar.Version))
		h.raw(`><script defer`)
		h.attr("src", assets.SrcWithVersion("/assets/js/admin.js", drakkar.Version))
		h.raw(`></script></head><body>`)
		if loggedIn {
			h.raw(`<nav class="admin-bar"><a href="/admin/">Dashboard</a><a href="/admin/post/new/">New post</a><a href="/admin/page/new/">New page</a>`)
			h.raw(`<a href="/admin/categories/">Categories</a><a href="/admin/menus/primary/">Menus</a><a href="/admin/images/">Images</a><a href="/admin/options/">Options</a><a href="/" target="_blank">View site</a>`)
			h.raw(`<form method="post" action="/admin/logout/">`)
			csrfField(h, csrfToken)
			h.raw(`<button class="button button--small" type="submit">Log out</button></form></nav>`)
		}
		h.raw(`<main class="admin-main">`)
		main(h)
		h.raw(`</main></body></html>`)
	})
}

func csrfField(h *html, token string) {
	h.raw(`<input type="hidden" name="_csrf"`)
	h.attr("value", token)
	h.raw(">")
}

func notice(h *html, msg string) {
	if msg == "" {
		return
	}
	h.raw(`<p class="admin-notice">`)
	h.text(msg)
	h.raw(`</p>`)
}

func deleteButton(h *html, url, confirm string) {
	h.raw(`<button type="button" class="button button--danger button--small"`)
	h.attr("data-delete", url)
	h.attr("data-confirm", confirm)
	h.raw(`>Delete</button>`)
}

func textInput(h *html, typ, name, label, value string) {
	h.raw(`<label`)
	h.attr("for", "f-"+name)
	h.raw(">")
	h.text(label)
	h.raw(`</label><input`)
	h.attr("type", typ)
	h.attr("id", "f-"+name)
	h.attr("name", name)
	h.attr("value", value)
	h.raw(">")
}

func textarea(h *html, name, label, value string) {
	h.raw(`<label`)
	h.attr("for", "f-"+name)
	h.raw(">")
	h.text(label)
	h.raw(`</label><textarea`)
	h.attr("id", "f-"+name)
	h.attr("name", name)
	h.raw(">")
	h.text(value)
	h.raw(`</textarea>`)
}

func checkbox(h *html, name, label string, on bool) {
	h.raw(`<label class="checkbox-label"><input type="checkbox" value="1"`)
	h.attr("name", name)
	h.raw(checked(on), ">")
	h.text(label)
	h.raw(`</label>`)
}

// AdminLogin renders the password form.
func AdminLogin(showError bool, csrfToken string) templ.Component {
	return adminLayout("Log in", csrfToken, false, func(h *html) {
		h.raw(`<section class="admin-card"><h1>Log in</h1>`)
		if showError {
			h.raw(`<p class="admin-notice admin-notice--error">Invalid password.</p>`)
		}
		h.raw(`<form method="post" action="/admin/login/">`)
		csrfField(h, csrfToken)
		textInput(h, "password", "password", "Password", "")
		h.raw(`<p><button class="button" type="submit">Log in</button></p></form></section>`)
	})
}

// AdminDashboard lists posts, pages, categories and contact messages.
func AdminDashboard(d drakkar.AdminDashboardData) templ.Component {
	return adminLayout("Dashboard", d.CsrfToken, true, func(h *html) {
		notice(h, d.Message)

		h.raw(`<section class="admin-card"><h2>Posts</h2><table><thead><tr><th>Title</th><th>Date</th><th>Type</th><th>Status</th><th></th></tr></thead><tbody>`)
		for _, p := range d.Posts {
			h.raw("<tr><td><a")
			h.attr("href", "/admin/post/"+drakkar.PathEscape(p.Slug)+"/")
			h.raw(">")
			h.text(p.Title)
			h.raw("</a></td><td>")
			h.text(p.Date)
			h.raw("</td><td>")
			h.text(p.Type)
			h.raw("</td><td>")
			h.text(status(p.Published))
			h.raw("</td><td>")
			deleteButton(h, "/admin/post/"+drakkar.PathEscape(p.Slug)+"/", "Delete this post?")
			h.raw("</td></tr>")
		}
		h.raw(`</tbody></table></section>`)

		h.raw(`<section class="admin-card"><h2>Pages</h2><table><thead><tr><th>Title</th><th>Slug</th><th>Order</th><th>Status</th><th></th></tr></thead><tbody>`)
		for _, p := range d.Pages {
			h.raw("<tr><td><a")
			h.attr("href", "/admin/page/"+itoa(p.ID)+"/")
			h.raw(">")
			h.text(p.Title)
			h.raw("</a></td><td>")
			h.text(p.Slug)
			h.raw("</td><td>")
			h.text(strconv.Itoa(p.MenuOrder))
			h.raw("</td><td>")
			h.text(status(p.Published))
			h.raw("</td><td>")
			deleteButton(h, "/admin/page/"+itoa(p.ID)+"/", "Delete this page? Its children move up one level.")
			h.raw("</td></tr>")
		}
		h.raw(`</tbody></table></section>`)

		h.raw(`<section class="admin-card"><h2>Categories</h2><p>`)
		for i, c := range d.Categories {
			if i > 0 {
				h.raw(", ")
			}
			h.text(c.Name)
		}
		h.raw(` <a href="/admin/categories/">Manage</a></p></section>`)

		h.raw(`<section class="admin-card"><h2>Contact messages</h2>`)
		if len(d.Messages) == 0 {
			h.raw(`<p>No messages yet.</p>`)
		} else {
			h.raw(`<table><thead><tr><th>Received</th><th>From</th><th>Company</th><th>Message</th><th>Page</th></tr></thead><tbody>`)
			for _, m := range d.Messages {
				h.raw("<tr><td>")
				h.text(m.CreatedAt)
				h.raw("</td><td>")
				h.text(m.Name)
				h.raw("<br><a")
				h.attr("href", "mailto:"+m.Email)
				h.raw(">")
				h.text(m.Email)
				h.raw("</a>")
				if m.Phone != "" {
					h.raw("<br>")
					h.text(m.Phone)
				}
				h.raw("</td><td>")
				h.text(m.Company)
				h.raw("</td><td>")
				h.text(m.Message)
				h.raw("</td><td>")
				h.text(m.Page)
				h.raw("</td></tr>")
			}
			h.raw(`</tbody></table>`)
		}
		h.raw(`</section>`)
	})
}

func status(published bool) string {
	if published {
		return "Published"
	}
	return "Draft"
}

// orderedCategories puts the post's categories first, in the post's order,
// followed by the remaining categories.
func orderedCategories(post drakkar.Post, cats []drakkar.Category) ([]drakkar.Category, map[string]bool) {
	bySlug := make(map[string]drakkar.Category, len(cats))
	for _, c := range cats {
		bySlug[c.Slug] = c
	}
	picked := map[string]bool{}
	var out []drakkar.Category
	for _, slug := range post.Categories {
		if c, ok := bySlug[slug]; ok && !picked[slug] {
			picked[slug] = true
			out = append(out, c)
		}
	}
	for _, c := range cats {
		if !picked[c.Slug] {
			out = append(out, c)
		}
	}
	return out, picked
}

// AdminPostForm edits a post. Checked categories are submitted in list
// order; the first one is the primary category.
func AdminPostForm(post drakkar.Post, categories []drakkar.Category, csrfToken string) templ.Component {
	title := "Edit post"
	if post.Slug == "" {
		title = "New post"
	}
	return adminLayout(title, csrfToken, true, func(h *html) {
		h.raw(`<section class="admin-card"><h1>`)
		h.text(title)
		h.raw(`</h1><form method="post" action="/admin/save/">`)
		csrfField(h, csrfToken)
		textInput(h, "text", "title", "Title", post.Title)
		textInput(h, "text", "slug", "Slug", post.Slug)
		textInput(h, "date", "date", "Date", post.Date)
		textInput(h, "text", "type", "Post type (empty for a regular post)", postTypeValue(post.Type))
		textInput(h, "text", "tags", "Tags (comma separated)", drakkar.JoinTags(post.Tags))

		ordered, picked := orderedCategories(post, categories)
		h.raw(`<label>Categories (first checked is primary)</label><ul class="category-order">`)
		for _, c := range ordered {
			h.raw(`<li><input type="checkbox" name="categories"`)
			h.attr("value", c.Slug)
			h.attr("id", "cat-"+c.Slug)
			h.raw(checked(picked[c.Slug]), "><label class=\"checkbox-label\"")
			h.attr("for", "cat-"+c.Slug)
			h.raw(">")
			h.text(c.Name)
			h.raw(`</label><button type="button" class="button button--small" data-move="up">&uarr;</button><button type="button" class="button button--small" data-move="down">&darr;</button></li>`)
		}
		h.raw(`</ul>`)

		textInput(h, "text", "summary", "Summary", post.Summary)
		textarea(h, "content", "Content (Markdown)", post.Content)
		checkbox(h, "published", "Published", post.Published)
		h.raw(`<p><button class="button" type="submit">Save</button></p></form></section>`)
	})
}

func postTypeValue(t string) string {
	if t == "post" {
		return ""
	}
	return t
}

// pageTemplates are the templates a page can pick.
var pageTemplates = []struct{ Value, Label string }{
	{"", "Default"},
	{assets.ContactTemplate, "Contact"},
	{"full-width", "Full width"},
}

// AdminPageForm edits a hierarchical page.
func AdminPageForm(page drakkar.Page, pages []drakkar.Page, csrfToken string) templ.Component {
	title := "Edit page"
	if page.ID == 0 {
		title = "New page"
	}
	return adminLayout(title, csrfToken, true, func(h *html) {
		h.raw(`<section class="admin-card"><h1>`)
		h.text(title)
		h.raw(`</h1><form method="post" action="/admin/page/save/">`)
		csrfField(h, csrfToken)
		h.raw(`<input type="hidden" name="id"`)
		h.attr("value", itoa(page.ID))
		h.raw(">")
		textInput(h, "text", "title", "Title", page.Title)
		textInput(h, "text", "slug", "Slug", page.Slug)

		h.raw(`<label for="f-parent_id">Parent</label><select id="f-parent_id" name="parent_id"><option value="0">(none)</option>`)
		for _, p := range pages {
			if p.ID == page.ID {
				continue
			}
			h.raw("<option")
			h.attr("value", itoa(p.ID))
			h.raw(selected(p.ID == page.ParentID), ">")
			h.text(p.Title)
			h.raw("</option>")
		}
		h.raw(`</select>`)

		h.raw(`<label for="f-template">Template</label><select id="f-template" name="template">`)
		for _, t := range pageTemplates {
			h.raw("<option")
			h.attr("value", t.Value)
			h.raw(selected(t.Value == page.Template), ">")
			h.text(t.Label)
			h.raw("</option>")
		}
		h.raw(`</select>`)

		textInput(h, "number", "menu_order", "Order", strconv.Itoa(page.MenuOrder))
		textarea(h, "content", "Content (Markdown, supports [contact_form] and [statistics])", page.Content)
		checkbox(h, "published", "Published", page.Published)
		h.raw(`<p><button class="button" type="submit">Save</button></p></form></section>`)
	})
}

// AdminCategories lists categories with a form to add or rename one.
func AdminCategories(categories []drakkar.Category, csrfToken string) templ.Component {
	return adminLayout("Categories", csrfToken, true, func(h *html) {
		h.raw(`<section class="admin-card"><h1>Categories</h1><table><thead><tr><th>Name</th><th>Slug</th><th>Description</th><th></th></tr></thead><tbody>`)
		for _, c := range categories {
			h.raw("<tr><td>")
			h.text(c.Name)
			h.raw("</td><td>")
			h.text(c.Slug)
			h.raw("</td><td>")
			h.text(c.Description)
			h.raw("</td><td>")
			deleteButton(h, "/admin/categories/"+drakkar.PathEscape(c.Slug)+"/", "Delete this category?")
			h.raw("</td></tr>")
		}
		h.raw(`</tbody></table></section><section class="admin-card"><h2>Add or update</h2><form method="post" action="/admin/categories/">`)
		csrfField(h, csrfToken)
		textInput(h, "text", "name", "Name", "")
		textInput(h, "text", "slug", "Slug (existing slug updates that category)", "")
		textInput(h, "text", "description", "Description", "")
		h.raw(`<p><button class="button" type="submit">Save</button></p></form></section>`)
	})
}

// AdminOptions renders every theme option grouped by section.
func AdminOptions(values options.Flags, message string, csrfToken string) templ.Component {
	return adminLayout("Theme options", csrfToken, true, func(h *html) {
		notice(h, message)
		h.raw(`<section class="admin-card"><h1>Theme options</h1><form method="post" action="/admin/options/">`)
		csrfField(h, csrfToken)
		section := ""
		for _, d := range options.Definitions {
			if d.Section != section {
				if section != "" {
					h.raw(`</fieldset>`)
				}
				section = d.Section
				h.raw(`<fieldset><legend>`)
				h.text(section)
				h.raw(`</legend>`)
			}
			optionField(h, d, values)
		}
		if section != "" {
			h.raw(`</fieldset>`)
		}
		h.raw(`<p><button class="button" type="submit">Save options</button></p></form></section>`)
	})
}

func optionField(h *html, d options.Definition, values options.Flags) {
	switch d.Kind {
	case options.Bool:
		def, _ := d.Default.(bool)
		checkbox(h, d.Name, d.Label, values.Bool(d.Name, def))
	case options.Range:
		def, _ := d.Default.(int)
		h.raw(`<label`)
		h.attr("for", "f-"+d.Name)
		h.raw(">")
		h.text(d.Label)
		h.raw(`</label><input type="number"`)
		h.attr("id", "f-"+d.Name)
		h.attr("name", d.Name)
		h.attr("min", strconv.Itoa(d.Min))
		h.attr("max", strconv.Itoa(d.Max))
		h.attr("value", strconv.Itoa(values.Int(d.Name, def)))
		h.raw(">")
	case options.Select:
		def, _ := d.Default.(string)
		current := values.String(d.Name, def)
		h.raw(`<label`)
		h.attr("for", "f-"+d.Name)
		h.raw(">")
		h.text(d.Label)
		h.raw(`</label><select`)
		h.attr("id", "f-"+d.Name)
		h.attr("name", d.Name)
		h.raw(">")
		for _, c := range d.Choices {
			h.raw("<option")
			h.attr("value", c)
			h.raw(selected(c == current), ">")
			h.text(c)
			h.raw("</option>")
		}
		h.raw(`</select>`)
	case options.URL:
		textInput(h, "url", d.Name, d.Label, values.String(d.Name, ""))
	default:
		textInput(h, "text", d.Name, d.Label, values.String(d.Name, ""))
	}
}

// AdminMenus edits the items of one menu location.
func AdminMenus(location menu.Location, items []menu.Item, csrfToken string) templ.Component {
	return adminLayout("Menus", csrfToken, true, func(h *html) {
		h.raw(`<nav class="tabs">`)
		for _, l := range menu.Locations {
			h.raw("<a")
			h.attr("href", "/admin/menus/"+string(l.Location)+"/")
			if l.Location == location {
				h.raw(` class="is-active"`)
			}
			h.raw(">")
			h.text(l.Label)
			h.raw("</a>")
		}
		h.raw(`</nav>`)

		titles := make(map[int64]string, len(items))
		for _, it := range items {
			titles[it.ID] = it.Title
		}
		base := "/admin/menus/" + string(location) + "/"
		h.raw(`<section class="admin-card"><table><thead><tr><th>Title</th><th>URL</th><th>Parent</th><th>Position</th><th>Classes</th><th></th></tr></thead><tbody>`)
		for _, it := range items {
			h.raw("<tr><td>")
			h.text(it.Title)
			h.raw("</td><td>")
			h.text(it.URL)
			h.raw("</td><td>")
			h.text(titles[it.ParentID])
			h.raw("</td><td>")
			h.text(strconv.Itoa(it.Position))
			h.raw("</td><td>")
			for i, c := range it.Classes {
				if i > 0 {
					h.raw(" ")
				}
				h.text(c)
			}
			h.raw("</td><td>")
			deleteButton(h, base+itoa(it.ID)+"/", "Delete this item and its children?")
			h.raw("</td></tr>")
		}
		h.raw(`</tbody></table></section>`)

		h.raw(`<section class="admin-card"><h2>Add item</h2><form method="post"`)
		h.attr("action", base)
		h.raw(">")
		csrfField(h, csrfToken)
		textInput(h, "text", "title", "Title", "")
		textInput(h, "text", "url", "URL", "")
		h.raw(`<label for="f-parent_id">Parent</label><select id="f-parent_id" name="parent_id"><option value="0">(top level)</option>`)
		for _, it := range items {
			h.raw("<option")
			h.attr("value", itoa(it.ID))
			h.raw(">")
			h.text(it.Title)
			h.raw("</option>")
		}
		h.raw(`</select>`)
		textInput(h, "number", "position", "Position", strconv.Itoa(len(items)+1))
		textInput(h, "text", "classes", "CSS classes", "")
		textInput(h, "text", "icon_class", "Icon class", "")
		h.raw(`<label for="f-button_style">Button style</label><select id="f-button_style" name="button_style">`)
		for _, s := range []string{"", "primary", "secondary", "outline"} {
			label := s
			if label == "" {
				label = "(none)"
			}
			h.raw("<option")
			h.attr("value", s)
			h.raw(">")
			h.text(label)
			h.raw("</option>")
		}
		h.raw(`</select>`)
		textInput(h, "text", "description", "Description", "")
		h.raw(`<p><button class="button" type="submit">Add</button></p></form></section>`)
	})
}

// AdminImages shows the upload form and every stored image with its
// renditions.
func AdminImages(images []drakkar.Image, csrfToken string) templ.Component {
	return adminLayout("Images", csrfToken, true, func(h *html) {
		h.raw(`<section class="admin-card"><h1>Images</h1><form method="post" action="/admin/images/upload/" enctype="multipart/form-data">`)
		csrfField(h, csrfToken)
		h.raw(`<input type="file" name="image" accept="image/jpeg,image/png,image/gif,image/webp" required> <button class="button" type="submit">Upload</button></form></section>`)

		h.raw(`<section class="image-grid">`)
		for _, img := range images {
			attrs := media.ImgAttrs(drakkar.UploadsURL, img.Renditions, img.OriginalName, true)
			if attrs["src"] == "" {
				attrs["src"] = drakkar.UploadsURL + "/" + img.Filename
			}
			attrs["sizes"] = "180px"
			h.raw("<figure><picture>")
			if webp := media.WebPSrcset(drakkar.UploadsURL, img.Renditions); webp != "" {
				h.raw(`<source type="image/webp"`)
				h.attr("srcset", webp)
				h.attr("sizes", attrs["sizes"])
				h.raw(">")
			}
			h.raw("<img")
			for _, name := range []string{"src", "srcset", "sizes", "width", "height", "alt", "loading", "decoding"} {
				if v, ok := attrs[name]; ok {
					h.attr(name, v)
				}
			}
			h.raw("></picture><figcaption><code>")
			h.text(drakkar.UploadsURL + "/" + img.Filename)
			h.raw("</code><br>")
			h.text(strconv.Itoa(img.Width) + "×" + strconv.Itoa(img.Height) + ", " + strconv.Itoa(len(img.Renditions)) + " sizes ")
			deleteButton(h, "/admin/images/"+drakkar.PathEscape(img.Filename)+"/", "Delete this image and all its sizes?")
			h.raw("</figcaption></figure>")
		}
		h.raw(`</section>`)
	})
}
