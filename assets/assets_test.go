package assets

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drakkar-agro/drakkar/breadcrumb"
	"github.com/drakkar-agro/drakkar/options"
)

type fixedVersion string

func (v fixedVersion) Version(string) string { return string(v) }

func testCatalog() *Catalog {
	return DefaultCatalog("/assets", fixedVersion("1.0.0"))
}

func TestSelectFrontPageWithWhatsApp(t *testing.T) {
	flags := options.Snapshot(map[string]string{"whatsapp_widget_enable": "1"})
	set := Select(Request{Context: breadcrumb.FrontPage{}}, flags, testCatalog())

	for _, h := range []string{
		HandleMainStyle, HandleMainScript,
		HandleFrontPageStyle,
		HandleStatsScript,
		HandleWhatsAppScript, HandleWhatsAppStyle,
	} {
		assert.True(t, set.Has(h), h)
	}
	c := testCatalog()
	assert.Equal(t, Deferred, c.DeliveryFor(HandleStatsScript))
	assert.Equal(t, Deferred, c.DeliveryFor(HandleWhatsAppScript))
	assert.False(t, set.Has(HandleContactScript))
}

func TestSelectWhatsAppDisabledForEveryContext(t *testing.T) {
	flags := options.Snapshot(map[string]string{"whatsapp_widget_enable": "0"})
	contexts := []breadcrumb.Context{
		breadcrumb.FrontPage{},
		breadcrumb.TaxonomyTerm{Name: "x", Link: "/x/"},
		breadcrumb.GenericArchive{Title: "Blog"},
		breadcrumb.SearchResults{Query: "q"},
		breadcrumb.NotFound{},
		breadcrumb.SinglePost{Title: "p"},
		breadcrumb.Page{Title: "p"},
		nil,
	}
	for _, ctx := range contexts {
		set := Select(Request{Context: ctx}, flags, testCatalog())
		assert.False(t, set.Has(HandleWhatsAppScript), "%T", ctx)
		assert.False(t, set.Has(HandleWhatsAppStyle), "%T", ctx)
	}
}

func TestSelectIsIdempotent(t *testing.T) {
	req := Request{Context: breadcrumb.Page{Title: "Contato"}, Template: ContactTemplate}
	flags := options.Defaults()
	c := testCatalog()
	assert.Equal(t, Select(req, flags, c), Select(req, flags, c))
}

func TestSelectContactForm(t *testing.T) {
	c := testCatalog()
	byTemplate := Select(Request{Context: breadcrumb.Page{Title: "Contato"}, Template: ContactTemplate}, options.Defaults(), c)
	assert.True(t, byTemplate.Has(HandleContactScript))
	assert.True(t, byTemplate.Has(HandleContactStyle))

	byShortcode := Select(Request{Context: breadcrumb.SinglePost{Title: "x"}, Content: "Fale conosco\n[contact_form]"}, options.Defaults(), c)
	assert.True(t, byShortcode.Has(HandleContactScript))

	none := Select(Request{Context: breadcrumb.Page{Title: "Sobre"}}, options.Defaults(), c)
	assert.False(t, none.Has(HandleContactScript))
	assert.Equal(t, Deferred, c.DeliveryFor(HandleContactScript))
}

func TestSelectStatisticsBlock(t *testing.T) {
	set := Select(Request{Context: breadcrumb.Page{Title: "Resultados"}, Content: "<!-- block:statistics -->"}, options.Defaults(), testCatalog())
	assert.True(t, set.Has(HandleStatsScript))
	assert.False(t, set.Has(HandleFrontPageStyle))
}

func TestSelectFonts(t *testing.T) {
	c := testCatalog()
	on := Select(Request{Context: breadcrumb.NotFound{}}, options.Defaults(), c)
	assert.True(t, on.Has(HandleFontsStyle))
	assert.Equal(t, PreloadSwap, c.DeliveryFor(HandleFontsStyle))

	off := Select(Request{Context: breadcrumb.NotFound{}}, options.Snapshot(map[string]string{"preload_fonts": "0"}), c)
	assert.False(t, off.Has(HandleFontsStyle))

	// A flag snapshot without the key keeps fonts on.
	assert.True(t, Select(Request{Context: breadcrumb.NotFound{}}, options.Flags{}, c).Has(HandleFontsStyle))
}

func TestSelectPrintAlwaysNonBlocking(t *testing.T) {
	c := testCatalog()
	set := Select(Request{Context: breadcrumb.GenericArchive{Title: "Blog"}}, options.Defaults(), c)
	require.True(t, set.Has(HandlePrintStyle))
	d, _ := c.Get(HandlePrintStyle)
	assert.Equal(t, "print", d.Media)
	assert.Equal(t, PreloadSwap, d.Delivery)
}

func TestSelectUnknownContextIsBaseOnly(t *testing.T) {
	flags := options.Snapshot(map[string]string{"whatsapp_widget_enable": "1"})
	set := Select(Request{Context: nil, Template: ContactTemplate}, flags, testCatalog())
	assert.ElementsMatch(t, []string{HandleMainStyle, HandleMainScript, HandleNavigationScript}, set.Handles())
}

func TestNewCatalogRejectsBadInput(t *testing.T) {
	_, err := NewCatalog(Descriptor{Handle: "a"}, Descriptor{Handle: "a"})
	assert.ErrorContains(t, err, "duplicate")

	_, err = NewCatalog(Descriptor{Handle: "a", Deps: []string{"missing"}})
	assert.ErrorContains(t, err, "unknown handle")

	_, err = NewCatalog(
		Descriptor{Handle: "a", Deps: []string{"b"}},
		Descriptor{Handle: "b", Deps: []string{"a"}},
	)
	assert.ErrorContains(t, err, "cycle")
}

func TestResolveKeepsCatalogOrder(t *testing.T) {
	c := testCatalog()
	set := Select(Request{Context: breadcrumb.FrontPage{}}, options.Defaults(), c)
	active := Resolve(set, c)
	require.NotEmpty(t, active)
	assert.Equal(t, HandleMainStyle, active[0].Handle)
	for i := 1; i < len(active); i++ {
		assert.Less(t, indexOf(c.Handles(), active[i-1].Handle), indexOf(c.Handles(), active[i].Handle))
	}
}

func indexOf(xs []string, x string) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return -1
}

func TestTags(t *testing.T) {
	c := testCatalog()
	flags := options.Snapshot(map[string]string{"whatsapp_widget_enable": "1"})
	req := Request{Context: breadcrumb.FrontPage{}}
	active := Resolve(Select(req, flags, c), c)

	var head, foot bytes.Buffer
	require.NoError(t, HeadTags(active, Hints(req, flags, "https://cdn.drakkar.example")).Render(context.Background(), &head))
	require.NoError(t, FooterTags(active).Render(context.Background(), &foot))

	assert.Contains(t, head.String(), `<link rel="stylesheet" id="drakkar-main-css" href="/assets/css/main.css?ver=1.0.0" media="all">`)
	assert.Contains(t, head.String(), `rel="preload" as="style" id="drakkar-print-css"`)
	assert.Contains(t, head.String(), `<link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>`)
	assert.Contains(t, head.String(), `<link rel="preconnect" href="https://cdn.drakkar.example">`)
	assert.NotContains(t, head.String(), "<script")

	assert.Contains(t, foot.String(), `<script defer id="drakkar-statistics-js"`)
	assert.Contains(t, foot.String(), `<script id="drakkar-main-js" src="/assets/js/main.js?ver=1.0.0"></script>`)

	deferred := DeferScripts(active)
	foot.Reset()
	require.NoError(t, FooterTags(deferred).Render(context.Background(), &foot))
	assert.Equal(t, strings.Count(foot.String(), "<script"), strings.Count(foot.String(), "<script defer"))
}

func TestInlineStyle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, InlineStyle("critical", "body {\n  margin: 0;\n}\n</style>", true).Render(context.Background(), &buf))
	assert.Equal(t, "<style id=\"critical\">body { margin: 0; } <\\/style></style>\n", buf.String())

	buf.Reset()
	require.NoError(t, InlineStyle("critical", "  ", false).Render(context.Background(), &buf))
	assert.Zero(t, buf.Len())
}

func TestManifestVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"manifest.json": {Data: []byte(`{"css/main.css":"abc123"}`)},
		"js/main.js":    {Data: []byte("//"), ModTime: time.Unix(1700000000, 0)},
	}
	m := NewManifest(fsys, "3.0.0")
	require.NoError(t, m.LoadFile("manifest.json"))
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, "abc123", m.Version("css/main.css"))
	assert.Equal(t, "1700000000", m.Version("js/main.js"))
	assert.Equal(t, "3.0.0", m.Version("css/missing.css"))

	require.NoError(t, NewManifest(fsys, "3.0.0").LoadFile("nope.json"))
	assert.Error(t, m.Load([]byte("{")))
}
