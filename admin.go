package drakkar

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/drakkar-agro/drakkar/menu"
	"github.com/drakkar-agro/drakkar/options"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminPost(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	cats, err := a.Store.ListCategories()
	if err != nil {
		return err
	}
	slug := c.Param("slug")
	if slug == "new" {
		return Render(c, a.Views.AdminPostForm(Post{Published: true}, cats, CsrfToken(c)))
	}
	post, err := a.Store.GetPostAny(slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return Render(c, a.Views.AdminPostForm(post, cats, CsrfToken(c)))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	c.Logger().Warnf("failed admin login from %s", ip)
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}
	title := strings.TrimSpace(c.FormValue("title"))
	slug := strings.TrimSpace(c.FormValue("slug"))
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return c.Redirect(http.StatusSeeOther, "/admin/?msg=Slug+is+required.+Add+a+title+or+slug.")
	}
	date := strings.TrimSpace(c.FormValue("date"))
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.Redirect(http.StatusSeeOther, "/admin/?msg=Invalid+date+format.+Use+YYYY-MM-DD.")
	}
	tags := FilterEmpty(strings.Split(c.FormValue("tags"), ","))
	// Category order is meaningful: the first one is primary.
	categories := FilterEmpty(c.Request().Form["categories"])
	postType := strings.TrimSpace(c.FormValue("type"))
	if postType != "" && postType != "post" {
		if _, ok := a.Config.PostTypes[postType]; !ok {
			return c.Redirect(http.StatusSeeOther, "/admin/?msg=Unknown+post+type.")
		}
	}
	if err := a.Store.SavePost(Post{
		Slug:       slug,
		Title:      title,
		Date:       date,
		Tags:       tags,
		Categories: categories,
		Type:       postType,
		Summary:    c.FormValue("summary"),
		Content:    c.FormValue("content"),
		Published:  c.FormValue("published") != "",
	}); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "saved")
}

func (a *App) handleAdminDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Store.DeletePost(c.Param("slug")); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "deleted")
}

func (a *App) handleAdminPage(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	pages, err := a.Store.ListPages(true)
	if err != nil {
		return err
	}
	if c.Param("id") == "new" {
		return Render(c, a.Views.AdminPageForm(Page{Published: true}, pages, CsrfToken(c)))
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.NoContent(http.StatusNotFound)
	}
	page, err := a.Store.GetPage(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return Render(c, a.Views.AdminPageForm(page, pages, CsrfToken(c)))
}

func (a *App) handleAdminPageSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	id, _ := strconv.ParseInt(c.FormValue("id"), 10, 64)
	parentID, _ := strconv.ParseInt(c.FormValue("parent_id"), 10, 64)
	order, _ := strconv.Atoi(c.FormValue("menu_order"))
	title := strings.TrimSpace(c.FormValue("title"))
	slug := Slugify(c.FormValue("slug"))
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return c.Redirect(http.StatusSeeOther, "/admin/?msg=Slug+is+required.+Add+a+title+or+slug.")
	}
	if id != 0 && a.createsCycle(id, parentID) {
		return c.Redirect(http.StatusSeeOther, "/admin/?msg=A+page+cannot+be+its+own+ancestor.")
	}
	if _, err := a.Store.SavePage(Page{
		ID:        id,
		ParentID:  parentID,
		Slug:      slug,
		Title:     title,
		Content:   c.FormValue("content"),
		Template:  strings.TrimSpace(c.FormValue("template")),
		MenuOrder: order,
		Published: c.FormValue("published") != "",
	}); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "saved")
}

// createsCycle reports whether making parentID the parent of id would put
// id among its own ancestors.
func (a *App) createsCycle(id, parentID int64) bool {
	pages, err := a.Store.ListPages(true)
	if err != nil {
		return false
	}
	parents := make(map[int64]int64, len(pages))
	for _, p := range pages {
		parents[p.ID] = p.ParentID
	}
	for cur, steps := parentID, 0; cur != 0 && steps <= len(pages); steps++ {
		if cur == id {
			return true
		}
		cur = parents[cur]
	}
	return false
}

func (a *App) handleAdminPageDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.NoContent(http.StatusNotFound)
	}
	if err := a.Store.DeletePage(id); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminDashboard(c, "deleted")
}

func (a *App) handleAdminCategories(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return a.renderAdminCategories(c)
}

func (a *App) handleAdminCategorySave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	name := strings.TrimSpace(c.FormValue("name"))
	slug := Slugify(c.FormValue("slug"))
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" || name == "" {
		return c.String(http.StatusBadRequest, "Name is required")
	}
	if err := a.Store.SaveCategory(Category{Slug: slug, Name: name, Description: strings.TrimSpace(c.FormValue("description"))}); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminCategories(c)
}

func (a *App) handleAdminCategoryDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Store.DeleteCategory(c.Param("slug")); err != nil {
		return err
	}
	a.Cache.Invalidate()
	return a.renderAdminCategories(c)
}

func (a *App) renderAdminCategories(c echo.Context) error {
	cats, err := a.Store.ListCategories()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminCategories(cats, CsrfToken(c)))
}

func (a *App) handleAdminOptions(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return Render(c, a.Views.AdminOptions(a.Flags(), c.QueryParam("msg"), CsrfToken(c)))
}

// handleAdminOptionsSave sanitizes every known option from the form.
// Unchecked checkboxes are absent from the form and saved as false.
func (a *App) handleAdminOptionsSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}
	values := make(map[string]string, len(options.Definitions))
	for _, d := range options.Definitions {
		raw := c.Request().PostForm.Get(d.Name)
		v, err := options.Sanitize(d.Name, raw)
		if err != nil {
			return err
		}
		values[d.Name] = options.Encode(v)
	}
	if err := a.Store.SetOptions(values); err != nil {
		return err
	}
	return Render(c, a.Views.AdminOptions(a.Flags(), "saved", CsrfToken(c)))
}

func adminMenuLocation(c echo.Context) (menu.Location, bool) {
	loc := menu.Location(c.Param("location"))
	return loc, menu.ValidLocation(loc)
}

func (a *App) handleAdminMenus(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	loc, ok := adminMenuLocation(c)
	if !ok {
		return c.NoContent(http.StatusNotFound)
	}
	return a.renderAdminMenus(c, loc)
}

func (a *App) handleAdminMenuSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	loc, ok := adminMenuLocation(c)
	if !ok {
		return c.NoContent(http.StatusNotFound)
	}
	id, _ := strconv.ParseInt(c.FormValue("id"), 10, 64)
	parentID, _ := strconv.ParseInt(c.FormValue("parent_id"), 10, 64)
	pos, _ := strconv.Atoi(c.FormValue("position"))
	item := menu.Item{
		ID:          id,
		ParentID:    parentID,
		Position:    pos,
		Title:       strings.TrimSpace(c.FormValue("title")),
		URL:         strings.TrimSpace(c.FormValue("url")),
		Classes:     strings.Fields(c.FormValue("classes")),
		IconClass:   strings.TrimSpace(c.FormValue("icon_class")),
		ButtonStyle: strings.TrimSpace(c.FormValue("button_style")),
		Description: strings.TrimSpace(c.FormValue("description")),
	}
	if item.Title == "" || item.URL == "" {
		return c.String(http.StatusBadRequest, "Title and URL are required")
	}
	if _, err := a.Store.SaveMenuItem(loc, item); err != nil {
		return err
	}
	return a.renderAdminMenus(c, loc)
}

func (a *App) handleAdminMenuDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	loc, ok := adminMenuLocation(c)
	if !ok {
		return c.NoContent(http.StatusNotFound)
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.NoContent(http.StatusNotFound)
	}
	if err := a.Store.DeleteMenuItem(id); err != nil {
		return err
	}
	return a.renderAdminMenus(c, loc)
}

func (a *App) renderAdminMenus(c echo.Context, loc menu.Location) error {
	items, err := a.Store.MenuItems(loc)
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminMenus(loc, items, CsrfToken(c)))
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	posts, err := a.Store.ListAllPosts()
	if err != nil {
		return err
	}
	pages, err := a.Store.ListPages(true)
	if err != nil {
		return err
	}
	cats, err := a.Store.ListCategories()
	if err != nil {
		return err
	}
	msgs, err := a.Store.ListContactMessages()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(AdminDashboardData{
		Posts:      posts,
		Pages:      pages,
		Categories: cats,
		Messages:   msgs,
		Message:    msg,
		CsrfToken:  CsrfToken(c),
	}))
}
