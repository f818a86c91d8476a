// Package drakkar is the site engine behind the Drakkar marketing site,
// built with Go, Echo, and templ. It serves the front page, blog, taxonomy
// archives, search and hierarchical pages, and gives every page its
// breadcrumb trail and the exact set of stylesheets and scripts it needs.
//
// Templates are provided through the ViewFuncs struct; drakkar handles all
// the handler logic, middleware, asset selection and database operations.
package drakkar

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/drakkar-agro/drakkar/assets"
	"github.com/drakkar-agro/drakkar/breadcrumb"
	"github.com/drakkar-agro/drakkar/content"
	"github.com/drakkar-agro/drakkar/menu"
	"github.com/drakkar-agro/drakkar/options"
)

// Version is the engine version. It also versions theme assets that are
// missing from the manifest.
var Version = "1.0.0"

const manifestFile = "manifest.json"

// PageData is what every public template receives besides its own content.
type PageData struct {
	Site        SiteConfig
	Meta        PageMeta
	Flags       options.Flags
	Trail       []breadcrumb.Item
	Breadcrumbs templ.Component
	HeadTags    templ.Component
	FooterTags  templ.Component
	PrimaryMenu templ.Component
	MobileMenu  templ.Component
	FooterMenu  templ.Component
	SocialMenu  templ.Component
	JSONLD      []string
	CsrfToken   string
}

// Archive is a list of posts under a heading: the blog index, a category,
// a tag, a post type archive or search results.
type Archive struct {
	Title       string
	Description string
	Posts       []Post
	Tags        []string
	ActiveTag   string
	Query       string
}

// SinglePost is a post with its rendered body.
type SinglePost struct {
	Post       Post
	Body       template.HTML
	Categories []Category
	Related    []Post
}

// SinglePage is a page with its rendered body and children.
type SinglePage struct {
	Page      Page
	Body      template.HTML
	Ancestors []Page
	Children  []Page
}

// ContactResult reports a contact form submission back to the visitor.
type ContactResult struct {
	Sent   bool
	Errors map[string]string
	Values ContactMessage
}

// AdminDashboardData feeds the admin overview.
type AdminDashboardData struct {
	Posts      []Post
	Pages      []Page
	Categories []Category
	Messages   []ContactMessage
	Message    string
	CsrfToken  string
}

// ViewFuncs holds the templ components that the engine calls when
// rendering pages. Sites own and customize all templates through it.
type ViewFuncs struct {
	Front        func(d PageData, posts []Post) templ.Component
	Archive      func(d PageData, a Archive) templ.Component
	Post         func(d PageData, p SinglePost) templ.Component
	Page         func(d PageData, p SinglePage) templ.Component
	ContactReply func(r ContactResult) templ.Component
	NotFound     func(d PageData) templ.Component
	ServerError  func(d PageData) templ.Component

	AdminLogin      func(showError bool, csrfToken string) templ.Component
	AdminDashboard  func(d AdminDashboardData) templ.Component
	AdminPostForm   func(post Post, categories []Category, csrfToken string) templ.Component
	AdminPageForm   func(page Page, pages []Page, csrfToken string) templ.Component
	AdminCategories func(categories []Category, csrfToken string) templ.Component
	AdminOptions    func(values options.Flags, message string, csrfToken string) templ.Component
	AdminMenus      func(location menu.Location, items []menu.Item, csrfToken string) templ.Component
	AdminImages     func(images []Image, csrfToken string) templ.Component
}

// App is the central drakkar application. It wires together the store,
// cache, asset catalog, handlers, middleware, and templates.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    *Store
	Cache    *ContentCache
	Views    ViewFuncs
	Manifest *assets.Manifest

	catalog        atomic.Pointer[assets.Catalog]
	loginLimiter   *RateLimiter
	contactLimiter *RateLimiter
	customRoutes   []func(*App)
	shortcodes     map[string]content.Shortcode
	ready          bool
}

// New creates a new drakkar App with the given configuration and views.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:     cfg,
		Echo:       echo.New(),
		Views:      views,
		shortcodes: map[string]content.Shortcode{},
	}
	a.Echo.HideBanner = true
	a.Echo.Logger.SetLevel(cfg.logLevel())

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup opens the database and builds the cache, asset catalog, middleware
// and routes. Start calls it; tests call it directly to serve requests
// through a.Echo without listening.
func (a *App) Setup() error {
	if a.ready {
		return nil
	}
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("drakkar: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("drakkar: SessionSecret is required")
	}
	if err := a.Config.validatePostTypes(); err != nil {
		return fmt.Errorf("drakkar: %w", err)
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("drakkar: init store: %w", err)
	}
	a.Store = store

	a.Cache = NewContentCache(a.Store, a.Config.ContentCacheTTL)

	a.loginLimiter = NewRateLimiter(5, time.Minute)
	a.contactLimiter = NewRateLimiter(3, 10*time.Minute)

	a.Manifest = assets.NewManifest(a.themeFS(), a.Config.ThemeVersion)
	if err := a.reloadAssets(); err != nil {
		return fmt.Errorf("drakkar: load asset manifest: %w", err)
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start sets the app up and serves until ctx is cancelled or the server
// fails. When AssetsDir is set, the asset manifest is watched alongside.
func (a *App) Start(ctx context.Context) error {
	if err := a.Setup(); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if a.Config.AssetsDir != "" {
		g.Go(func() error {
			return a.watchAssets(ctx)
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.Echo.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Catalog returns the asset catalog currently in use.
func (a *App) Catalog() *assets.Catalog {
	return a.catalog.Load()
}

// themeFS is where theme assets and the manifest are read from.
func (a *App) themeFS() fs.FS {
	if a.Config.AssetsDir != "" {
		return os.DirFS(a.Config.AssetsDir)
	}
	sub, err := fs.Sub(EmbeddedAssets, "embedded")
	if err != nil {
		return EmbeddedAssets
	}
	return sub
}

// reloadAssets re-reads the manifest and swaps in a catalog carrying the
// new versions. Requests in flight keep the catalog they started with.
func (a *App) reloadAssets() error {
	if err := a.Manifest.LoadFile(manifestFile); err != nil {
		return err
	}
	a.catalog.Store(assets.DefaultCatalog("/assets", a.Manifest))
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/assets/*", echo.WrapHandler(http.StripPrefix("/assets/", http.FileServer(http.FS(a.themeFS())))))
	e.Static("/public", a.Config.UploadsDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	// Public routes
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleFront)
	e.GET("/blog/", a.handleBlog)
	e.GET("/blog/:slug/", a.handlePost)
	e.GET("/category/:slug/", a.handleCategory)
	e.GET("/tag/:slug/", a.handleTag)
	e.GET("/search/", a.handleSearch)
	e.POST("/contact/", a.handleContact)
	for name, pt := range a.Config.PostTypes {
		e.GET(postTypeArchive(name, pt), a.handlePostTypeArchive(name, pt))
	}

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.GET("/admin/post/:slug/", a.handleAdminPost)
	e.POST("/admin/save/", a.handleAdminSave)
	e.DELETE("/admin/post/:slug/", a.handleAdminDelete)
	e.GET("/admin/page/:id/", a.handleAdminPage)
	e.POST("/admin/page/save/", a.handleAdminPageSave)
	e.DELETE("/admin/page/:id/", a.handleAdminPageDelete)
	e.GET("/admin/categories/", a.handleAdminCategories)
	e.POST("/admin/categories/", a.handleAdminCategorySave)
	e.DELETE("/admin/categories/:slug/", a.handleAdminCategoryDelete)
	e.GET("/admin/options/", a.handleAdminOptions)
	e.POST("/admin/options/", a.handleAdminOptionsSave)
	e.GET("/admin/menus/:location/", a.handleAdminMenus)
	e.POST("/admin/menus/:location/", a.handleAdminMenuSave)
	e.DELETE("/admin/menus/:location/:id/", a.handleAdminMenuDelete)
	e.GET("/admin/images/", a.handleImageList)
	e.POST("/admin/images/upload/", a.handleImageUpload)
	e.DELETE("/admin/images/:filename/", a.handleImageDelete)

	// Hierarchical pages take whatever is left.
	e.GET("/*", a.handlePage)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	for _, l := range []*RateLimiter{a.loginLimiter, a.contactLimiter} {
		if l != nil {
			l.Close()
		}
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
