package drakkar

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const sessionName = "admin_session"

// contentSecurityPolicy allows the theme's own scripts plus Google Fonts,
// and the map and video embeds pages may carry.
const contentSecurityPolicy = "default-src 'self'; " +
	"script-src 'self' 'unsafe-inline'; " +
	"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com; " +
	"img-src 'self' https: data:; " +
	"font-src 'self' https://fonts.gstatic.com; " +
	"connect-src 'self'; " +
	"frame-src https://www.google.com https://www.youtube.com"

// Cache-Control values.
const (
	cacheImmutable = "public, max-age=31536000, immutable"
	cacheHour      = "public, max-age=3600"
	cacheDay       = "public, max-age=86400"
	cacheNone      = "no-store"
)

// rootFiles are served at fixed paths without a trailing slash.
var rootFiles = map[string]bool{
	"/sitemap.xml": true,
	"/feed.xml":    true,
	"/robots.txt":  true,
	"/favicon.svg": true,
}

func (a *App) setupMiddleware() {
	e := a.Echo

	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)
	e.HTTPErrorHandler = a.httpErrorHandler
	e.Pre(middleware.NonWWWRedirect())

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:   5,
		Skipper: func(c echo.Context) bool { return precompressed(c.Request().URL.Path) },
	}))
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: contentSecurityPolicy,
		HSTSMaxAge:            31536000,
	}))
	e.Use(session.Middleware(a.newSessionStore()))
	e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		ContextKey:     middleware.DefaultCSRFConfig.ContextKey,
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieSameSite: http.SameSiteLaxMode,
		CookieSecure:   a.Config.CookieSecure,
		ErrorHandler: func(err error, c echo.Context) error {
			return c.String(http.StatusForbidden, "Forbidden")
		},
	}))
	e.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper:      func(c echo.Context) bool { return isFilePath(c.Request().URL.Path) },
	}))
	e.Use(cacheControlMiddleware)
	e.Use(a.webpUploads)
}

// precompressed reports whether the response body is already compressed.
func precompressed(path string) bool {
	if strings.HasPrefix(path, "/public/") {
		return true
	}
	switch filepath.Ext(path) {
	case ".jpg", ".webp", ".woff2":
		return true
	}
	return false
}

// isFilePath reports whether path names a file rather than a page.
func isFilePath(path string) bool {
	return strings.HasPrefix(path, "/public") || strings.HasPrefix(path, "/assets") || rootFiles[path]
}

// cachePolicy returns the Cache-Control value for a request. Theme assets
// are immutable only when the URL carries their version.
func cachePolicy(path string, versioned bool) string {
	switch {
	case strings.HasPrefix(path, "/public/"):
		return cacheImmutable
	case strings.HasPrefix(path, "/assets/"):
		if versioned {
			return cacheImmutable
		}
		return cacheHour
	case rootFiles[path] && path != "/favicon.svg":
		return cacheDay
	case strings.HasPrefix(path, "/admin"), path == "/contact/", path == "/search/":
		return cacheNone
	}
	return cacheHour
}

func cacheControlMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		policy := cachePolicy(c.Request().URL.Path, c.QueryParam("ver") != "")
		c.Response().Header().Set("Cache-Control", policy)
		return next(c)
	}
}

// webpUploads answers requests for an uploaded JPEG with its WebP sibling
// when the browser accepts WebP and the sibling exists.
func (a *App) webpUploads(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p := c.Request().URL.Path
		if !strings.HasPrefix(p, UploadsURL+"/") || filepath.Ext(p) != ".jpg" {
			return next(c)
		}
		c.Response().Header().Add("Vary", "Accept")
		if !strings.Contains(c.Request().Header.Get("Accept"), "image/webp") {
			return next(c)
		}
		sibling := filepath.Join(a.uploadsDir(), strings.TrimSuffix(filepath.Base(p), ".jpg")+".webp")
		if _, err := os.Stat(sibling); err != nil {
			return next(c)
		}
		return c.File(sibling)
	}
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60 * 12,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.Config.CookieSecure,
	}
	return store
}

// IsAdmin reports whether the request carries an authenticated admin
// session.
func IsAdmin(c echo.Context) bool {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return false
	}
	auth, ok := sess.Values["authenticated"].(bool)
	return ok && auth
}

func setAdminSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values["authenticated"] = true
	return sess.Save(c.Request(), c.Response())
}

func clearAdminSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// CsrfToken returns the token the CSRF middleware issued for this request.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
