package menu

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drakkar-agro/drakkar/options"
)

func render(t *testing.T, loc Location, items []Item) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(loc, items).Render(context.Background(), &buf))
	return buf.String()
}

func TestTreeOrdersByPosition(t *testing.T) {
	roots := Tree([]Item{
		{ID: 1, Position: 2, Title: "B"},
		{ID: 2, Position: 1, Title: "A"},
		{ID: 3, ParentID: 1, Position: 2, Title: "B2"},
		{ID: 4, ParentID: 1, Position: 1, Title: "B1"},
		{ID: 5, ParentID: 99, Position: 3, Title: "Orphan"},
	})
	require.Len(t, roots, 3)
	assert.Equal(t, "A", roots[0].Title)
	assert.Equal(t, "B", roots[1].Title)
	assert.Equal(t, "Orphan", roots[2].Title)
	require.Len(t, roots[1].Children, 2)
	assert.Equal(t, "B1", roots[1].Children[0].Title)
}

func TestPrimaryWalker(t *testing.T) {
	html := render(t, Primary, []Item{
		{ID: 1, Position: 1, Title: "Soluções", URL: "/solucoes/", Description: "O que fazemos"},
		{ID: 2, ParentID: 1, Position: 1, Title: "Drones", URL: "/solucoes/drones/"},
		{ID: 3, Position: 2, Title: "Contato", URL: "/contato/", ButtonStyle: "primary", IconClass: "fas fa-phone"},
	})
	assert.Contains(t, html, `id="primary-navigation"`)
	assert.Contains(t, html, `class="menu-item menu-item-has-children"`)
	assert.Contains(t, html, `data-description="O que fazemos"`)
	assert.Contains(t, html, `<ul class="sub-menu"><li class="menu-item"><a href="/solucoes/drones/">Drones</a></li>`)
	assert.Contains(t, html, `menu-item-button menu-item-button--primary menu-item-with-icon`)
	assert.Contains(t, html, `data-icon="fas fa-phone"`)
}

func TestFooterWalkerIsFlat(t *testing.T) {
	html := render(t, Footer, []Item{
		{ID: 1, Title: "Sobre", URL: "/sobre/"},
		{ID: 2, ParentID: 1, Title: "Equipe", URL: "/sobre/equipe/"},
	})
	assert.NotContains(t, html, "sub-menu")
	assert.NotContains(t, html, "Equipe")
	assert.Equal(t, 1, strings.Count(html, "<li"))
}

func TestPrimaryFallback(t *testing.T) {
	html := render(t, Primary, nil)
	assert.Contains(t, html, `href="#lavoura-online"`)
	assert.Empty(t, render(t, Footer, nil))
	assert.Empty(t, render(t, Location("sidebar"), []Item{{ID: 1, Title: "x"}}))
}

func TestSocialWalker(t *testing.T) {
	html := render(t, Social, []Item{
		{ID: 1, Title: "Instagram", URL: "https://www.instagram.com/drakkar"},
		{ID: 2, Title: "Blog", URL: "https://blog.example.com"},
	})
	assert.Contains(t, html, "social-item social-item--instagram")
	assert.Contains(t, html, `target="_blank" rel="noopener noreferrer"`)
	assert.Contains(t, html, "#instagram")
}

func TestDetectNetwork(t *testing.T) {
	tests := map[string]string{
		"https://wa.me/5511999999999":         "whatsapp",
		"https://br.linkedin.com/company/drk": "linkedin",
		"https://youtube.com/@drakkar":        "youtube",
		"https://notfacebook.com.evil.io/":    "",
		"":                                    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, DetectNetwork(in), in)
	}
}

func TestSocialLinksFromOptions(t *testing.T) {
	flags := options.Snapshot(map[string]string{"social_facebook": "https://facebook.com/drakkar"})
	var buf bytes.Buffer
	require.NoError(t, SocialLinks(flags.SocialLinks(), "_self").Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), `target="_self"`)
	assert.Contains(t, buf.String(), `aria-label="Follow us on Facebook"`)

	buf.Reset()
	require.NoError(t, SocialLinks(nil, "_blank").Render(context.Background(), &buf))
	assert.Zero(t, buf.Len())
}
