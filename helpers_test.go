package drakkar

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/drakkar-agro/drakkar/options"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Soluções para o Campo":  "solucoes-para-o-campo",
		"  Hello, World!  ":      "hello-world",
		"Agricultura 4.0":        "agricultura-4-0",
		"---":                    "",
		"Análise de Solo (2025)": "analise-de-solo-2025",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildURL(t *testing.T) {
	cases := []struct {
		base string
		segs []string
		want string
	}{
		{"https://drakkar.example", nil, "https://drakkar.example/"},
		{"https://drakkar.example", []string{"blog", "mapas"}, "https://drakkar.example/blog/mapas/"},
		{"https://drakkar.example/site", []string{"blog"}, "https://drakkar.example/site/blog/"},
	}
	for _, tc := range cases {
		if got := BuildURL(tc.base, tc.segs...); got != tc.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tc.base, tc.segs, got, tc.want)
		}
	}
}

func TestFilterRelatedPosts(t *testing.T) {
	current := Post{Slug: "a", Tags: []string{"Solo"}, Categories: []string{"tecnologia"}}
	posts := []Post{
		current,
		{Slug: "b", Tags: []string{"solo"}},
		{Slug: "c", Categories: []string{"tecnologia"}},
		{Slug: "d", Tags: []string{"drones"}},
	}
	related := FilterRelatedPosts(current, posts)
	if len(related) != 2 || related[0].Slug != "b" || related[1].Slug != "c" {
		t.Fatalf("unexpected related posts: %+v", related)
	}
}

func TestOrganizationJsonLD(t *testing.T) {
	flags := options.Defaults()
	flags["social_linkedin"] = "https://linkedin.com/company/drakkar"
	flags["phone_number"] = "+55 51 3333-0000"

	var data map[string]any
	raw := OrganizationJsonLD(SiteConfig{Author: "Drakkar", URL: "https://drakkar.example"}, flags)
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		t.Fatalf("invalid JSON-LD: %v", err)
	}
	if data["url"] != "https://drakkar.example/" {
		t.Errorf("url = %v", data["url"])
	}
	sameAs, _ := data["sameAs"].([]any)
	if len(sameAs) != 1 {
		t.Errorf("sameAs = %v", data["sameAs"])
	}
	contact, _ := data["contactPoint"].(map[string]any)
	if contact["telephone"] != "+55 51 3333-0000" {
		t.Errorf("contactPoint = %v", data["contactPoint"])
	}
}

func TestBlogPostingJsonLDEscapesScriptClose(t *testing.T) {
	raw := BlogPostingJsonLD(Post{Slug: "x", Title: "</script><b>"}, SiteConfig{URL: "https://drakkar.example"})
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		t.Fatalf("invalid JSON-LD: %v", err)
	}
	if data["headline"] != "</script><b>" {
		t.Errorf("headline = %v", data["headline"])
	}
	if strings.Contains(raw, "<") {
		t.Fatalf("unescaped '<' in %s", raw)
	}
}
