package drakkar_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drakkar-agro/drakkar"
	"github.com/drakkar-agro/drakkar/assets"
	"github.com/drakkar-agro/drakkar/menu"
	"github.com/drakkar-agro/drakkar/options"
	"github.com/drakkar-agro/drakkar/views"
)

func newTestApp(t *testing.T) *drakkar.App {
	t.Helper()
	dir := t.TempDir()
	app := drakkar.New(drakkar.SiteConfig{
		Name:          "Drakkar",
		URL:           "https://drakkar.example",
		Description:   "Agricultura de precisão",
		DatabasePath:  filepath.Join(dir, "drakkar.db"),
		UploadsDir:    filepath.Join(dir, "public"),
		AdminPassword: "hunter2",
		SessionSecret: "0123456789abcdef0123456789abcdef",
		LogLevel:      "error",
		PostTypes: map[string]drakkar.PostTypeConfig{
			"case": {Label: "Cases", Archive: "cases"},
		},
	}, views.Default())
	require.NoError(t, app.Setup())
	t.Cleanup(func() { app.Close() })
	seedContent(t, app)
	return app
}

func seedContent(t *testing.T, app *drakkar.App) {
	t.Helper()
	s := app.Store
	require.NoError(t, s.SaveCategory(drakkar.Category{Slug: "solo", Name: "Solo"}))
	require.NoError(t, s.SaveCategory(drakkar.Category{Slug: "tecnologia", Name: "Tecnologia"}))
	require.NoError(t, s.SavePost(drakkar.Post{
		Slug: "mapas-de-fertilidade", Title: "Mapas de fertilidade", Date: "2025-03-01",
		Tags: []string{"mapas"}, Categories: []string{"solo", "tecnologia"},
		Content: "Texto sobre mapas.", Published: true,
	}))
	require.NoError(t, s.SavePost(drakkar.Post{
		Slug: "fazenda-boa-vista", Title: "Fazenda Boa Vista", Date: "2025-02-01",
		Type: "case", Content: "Um caso de sucesso.", Published: true,
	}))

	solucoes, err := s.SavePage(drakkar.Page{Slug: "solucoes", Title: "Soluções", Content: "Nossas soluções.", Published: true})
	require.NoError(t, err)
	_, err = s.SavePage(drakkar.Page{ParentID: solucoes, Slug: "drones", Title: "Drones", Content: "Voos.", Published: true})
	require.NoError(t, err)
	_, err = s.SavePage(drakkar.Page{Slug: "contato", Title: "Contato", Template: "contact", Content: "[contact_form]", Published: true})
	require.NoError(t, err)
	_, err = s.SavePage(drakkar.Page{Slug: "fale", Title: "Fale conosco", Template: "contact", Content: "Escreva para nós.", Published: true})
	require.NoError(t, err)

	_, err = s.SaveMenuItem(menu.Primary, menu.Item{Position: 1, Title: "Blog", URL: "/blog/"})
	require.NoError(t, err)
	app.Cache.Invalidate()
}

func serve(app *drakkar.App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, app *drakkar.App, target string) *httptest.ResponseRecorder {
	t.Helper()
	return serve(app, httptest.NewRequest(http.MethodGet, target, nil))
}

func TestFrontPage(t *testing.T) {
	app := newTestApp(t)
	rec := get(t, app, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.NotContains(t, body, `class="breadcrumbs"`)
	assert.Contains(t, body, `id="`+assets.HandleMainStyle+`-css"`)
	assert.Contains(t, body, `id="`+assets.HandleFrontPageStyle+`-css"`)
	assert.Contains(t, body, `id="`+assets.HandleHeroScript+`"`)
	assert.Contains(t, body, `id="`+assets.HandleStatsScript+`"`)
	assert.NotContains(t, body, assets.HandleContactScript)
	assert.NotContains(t, body, assets.HandleWhatsAppStyle)
	assert.Contains(t, body, `<link rel="preconnect" href="https://drakkar.example">`)
	assert.Contains(t, body, "Mapas de fertilidade")
	assert.Contains(t, body, `href="/blog/"`)
}

func TestPostTrailUsesPrimaryCategory(t *testing.T) {
	app := newTestApp(t)
	rec := get(t, app, "/blog/mapas-de-fertilidade/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `<a href="/" class="breadcrumbs__link">Home</a>`)
	assert.Contains(t, body, `<a href="/category/solo/" class="breadcrumbs__link">Solo</a>`)
	assert.NotContains(t, body, `class="breadcrumbs__link">Tecnologia</a>`)
	assert.Contains(t, body, `<span class="breadcrumbs__current" aria-current="page">Mapas de fertilidade</span>`)
	assert.Contains(t, body, `"@type":"BreadcrumbList"`)
	assert.NotContains(t, body, assets.HandleFrontPageStyle)
	assert.NotContains(t, body, assets.HandleHeroScript)
}

func TestCustomPostTypeTrailAndArchive(t *testing.T) {
	app := newTestApp(t)
	body := get(t, app, "/blog/fazenda-boa-vista/").Body.String()
	assert.Contains(t, body, `<a href="/cases/" class="breadcrumbs__link">Cases</a>`)

	rec := get(t, app, "/cases/")
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Contains(t, body, "Fazenda Boa Vista")
	assert.NotContains(t, body, "Mapas de fertilidade")
	assert.Contains(t, body, `<span class="breadcrumbs__current" aria-current="page">Cases</span>`)
}

func TestNestedPageTrail(t *testing.T) {
	app := newTestApp(t)
	rec := get(t, app, "/solucoes/drones/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	home := strings.Index(body, `class="breadcrumbs__link">Home</a>`)
	parent := strings.Index(body, `<a href="/solucoes/" class="breadcrumbs__link">Soluções</a>`)
	current := strings.Index(body, `aria-current="page">Drones</span>`)
	require.True(t, home >= 0 && parent >= 0 && current >= 0, body)
	assert.True(t, home < parent && parent < current)

	parentBody := get(t, app, "/solucoes/").Body.String()
	assert.Contains(t, parentBody, `<a href="/solucoes/drones/">Drones</a>`)
}

func TestContactPageLoadsFormAssets(t *testing.T) {
	app := newTestApp(t)
	rec := get(t, app, "/contato/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `<script defer id="`+assets.HandleContactScript+`"`)
	assert.Contains(t, body, assets.HandleContactStyle+"-css")
	assert.Contains(t, body, `action="/contact/"`)
	assert.Contains(t, body, `name="page" value="/contato/"`)
	assert.Contains(t, body, "page-template-contact")
}

func TestContactTemplateRendersFormWithoutShortcode(t *testing.T) {
	app := newTestApp(t)
	rec := get(t, app, "/fale/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `<script defer id="`+assets.HandleContactScript+`"`)
	assert.Contains(t, body, "Escreva para nós.")
	assert.Equal(t, 1, strings.Count(body, `action="/contact/"`))
	assert.Contains(t, body, `name="page" value="/fale/"`)
	assert.Less(t, strings.Index(body, "Escreva para nós."), strings.Index(body, `action="/contact/"`))

	// A shortcode already in the body is not doubled.
	assert.Equal(t, 1, strings.Count(get(t, app, "/contato/").Body.String(), `action="/contact/"`))
}

func TestFavicon(t *testing.T) {
	app := newTestApp(t)
	rec := get(t, app, "/favicon.svg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "image/svg+xml")
	assert.Contains(t, rec.Body.String(), "<svg")
}

func TestSetupRejectsArchiveOnBuiltInRoute(t *testing.T) {
	dir := t.TempDir()
	app := drakkar.New(drakkar.SiteConfig{
		DatabasePath:  filepath.Join(dir, "drakkar.db"),
		AdminPassword: "hunter2",
		SessionSecret: "0123456789abcdef0123456789abcdef",
		PostTypes: map[string]drakkar.PostTypeConfig{
			"case": {Label: "Cases", Archive: "blog"},
		},
	}, views.Default())
	err := app.Setup()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "built-in route")
}

func TestNotFound(t *testing.T) {
	app := newTestApp(t)
	rec := get(t, app, "/nao-existe/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `aria-current="page">Page not found</span>`)
	assert.Contains(t, body, `class="search-form"`)

	assert.Equal(t, http.StatusNotFound, get(t, app, "/blog/nao-existe/").Code)
	assert.Equal(t, http.StatusNotFound, get(t, app, "/category/nao-existe/").Code)
}

func TestSearch(t *testing.T) {
	app := newTestApp(t)
	rec := get(t, app, "/search/?q=fertilidade")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `aria-current="page">Search results for: fertilidade</span>`)
	assert.Contains(t, body, "Mapas de fertilidade")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestTrailingSlashRedirect(t *testing.T) {
	app := newTestApp(t)
	rec := get(t, app, "/blog")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/blog/", rec.Header().Get("Location"))
}

func csrfCookie(t *testing.T, app *drakkar.App) *http.Cookie {
	t.Helper()
	rec := get(t, app, "/contato/")
	for _, c := range rec.Result().Cookies() {
		if c.Name == "_csrf" {
			return c
		}
	}
	t.Fatal("no _csrf cookie")
	return nil
}

func postContact(app *drakkar.App, cookie *http.Cookie, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/contact/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	return serve(app, req)
}

func TestContactSubmission(t *testing.T) {
	app := newTestApp(t)
	cookie := csrfCookie(t, app)

	form := url.Values{
		"_csrf":   {cookie.Value},
		"name":    {"Ana Souza"},
		"email":   {"ana@fazenda.example"},
		"message": {"Gostaria de um orçamento para 300 hectares."},
		"page":    {"/contato/"},
	}
	rec := postContact(app, cookie, form)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "contact-form__success")

	msgs, err := app.Store.ListContactMessages()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "ana@fazenda.example", msgs[0].Email)
	assert.Equal(t, "/contato/", msgs[0].Page)
}

func TestContactSubmissionInvalid(t *testing.T) {
	app := newTestApp(t)
	cookie := csrfCookie(t, app)

	rec := postContact(app, cookie, url.Values{
		"_csrf":   {cookie.Value},
		"name":    {"A"},
		"email":   {"not-an-email"},
		"message": {"curta"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "contact-form__errors")

	msgs, err := app.Store.ListContactMessages()
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestContactRequiresCSRF(t *testing.T) {
	app := newTestApp(t)
	rec := postContact(app, nil, url.Values{"name": {"Ana"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWhatsAppOptionAddsWidget(t *testing.T) {
	app := newTestApp(t)
	assert.NotContains(t, get(t, app, "/blog/").Body.String(), "whatsapp-widget")

	require.NoError(t, app.Store.SetOptions(map[string]string{
		"whatsapp_widget_enable": options.Encode(true),
		"whatsapp_number":        "+55 51 99999-0000",
	}))
	body := get(t, app, "/blog/").Body.String()
	assert.Contains(t, body, assets.HandleWhatsAppStyle+"-css")
	assert.Contains(t, body, `id="`+assets.HandleWhatsAppScript+`"`)
	assert.Contains(t, body, `href="https://wa.me/5551999990000"`)
}

func TestThemeAssetsCaching(t *testing.T) {
	app := newTestApp(t)
	rec := get(t, app, "/assets/css/main.css?ver=1.0.0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=31536000, immutable", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), ".breadcrumbs")

	rec = get(t, app, "/assets/js/main.js")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
}

func TestSitemapAndFeed(t *testing.T) {
	app := newTestApp(t)
	sitemap := get(t, app, "/sitemap.xml").Body.String()
	assert.Contains(t, sitemap, "<loc>https://drakkar.example/blog/mapas-de-fertilidade/</loc>")
	assert.Contains(t, sitemap, "<loc>https://drakkar.example/solucoes/drones/</loc>")

	feed := get(t, app, "/feed.xml")
	require.Equal(t, http.StatusOK, feed.Code)
	assert.Contains(t, feed.Body.String(), "Mapas de fertilidade")
}

func TestAdminShowsLoginWhenSignedOut(t *testing.T) {
	app := newTestApp(t)
	rec := get(t, app, "/admin/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="password"`)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	req := httptest.NewRequest(http.MethodGet, "/admin/options/", nil)
	rec = serve(app, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

// signIn logs in as admin and returns the cookies to send with later
// requests, including the CSRF cookie.
func signIn(t *testing.T, app *drakkar.App) []*http.Cookie {
	t.Helper()
	csrf := csrfCookie(t, app)
	form := url.Values{"_csrf": {csrf.Value}, "password": {"hunter2"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(csrf)
	rec := serve(app, req)
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	cookies := []*http.Cookie{csrf}
	for _, c := range rec.Result().Cookies() {
		if c.Name != "_csrf" {
			cookies = append(cookies, c)
		}
	}
	return cookies
}

func uploadImage(t *testing.T, app *drakkar.App, cookies []*http.Cookie, name string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/images/upload/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
		if c.Name == "_csrf" {
			req.Header.Set("X-CSRF-Token", c.Value)
		}
	}
	return serve(app, req)
}

func TestAdminSVGUploadFollowsOption(t *testing.T) {
	app := newTestApp(t)
	cookies := signIn(t, app)
	logo := []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="120" height="40"><rect width="120" height="40"/></svg>`)

	rec := uploadImage(t, app, cookies, "Logo Drakkar.svg", logo)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "SVG uploads are disabled")

	require.NoError(t, app.Store.SetOptions(map[string]string{"enable_svg_uploads": options.Encode(true)}))
	rec = uploadImage(t, app, cookies, "Logo Drakkar.svg", logo)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), drakkar.UploadsURL+"/logo-drakkar.svg")

	stored, err := os.ReadFile(filepath.Join(app.Config.UploadsDir, "uploads", "logo-drakkar.svg"))
	require.NoError(t, err)
	assert.Equal(t, logo, stored)

	img, err := app.Store.GetImage("logo-drakkar.svg")
	require.NoError(t, err)
	assert.Equal(t, 120, img.Width)
}

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: 120, B: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadServesWebPToAcceptingBrowsers(t *testing.T) {
	app := newTestApp(t)
	cookies := signIn(t, app)

	rec := uploadImage(t, app, cookies, "Campo.png", pngImage(t, 320, 240))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `<source type="image/webp"`)
	_, err := os.Stat(filepath.Join(app.Config.UploadsDir, "uploads", "campo.webp"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, drakkar.UploadsURL+"/campo.jpg", nil)
	req.Header.Set("Accept", "image/avif,image/webp,*/*")
	rec = serve(app, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/webp", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Values("Vary"), "Accept")

	rec = get(t, app, drakkar.UploadsURL+"/campo.jpg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
}

func TestUploadSkipsWebPWhenDisabled(t *testing.T) {
	app := newTestApp(t)
	cookies := signIn(t, app)
	require.NoError(t, app.Store.SetOptions(map[string]string{"enable_webp": options.Encode(false)}))

	rec := uploadImage(t, app, cookies, "Campo.png", pngImage(t, 320, 240))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), `<source type="image/webp"`)
	_, err := os.Stat(filepath.Join(app.Config.UploadsDir, "uploads", "campo.webp"))
	assert.True(t, os.IsNotExist(err))
}
