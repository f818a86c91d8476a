package drakkar

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/drakkar-agro/drakkar/options"
)

// Slugify converts a title to a URL-safe slug. Accented letters are folded
// to their base letter first, so "Soluções" becomes "solucoes".
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FilterRelatedPosts finds posts that share a tag or a category with current.
func FilterRelatedPosts(current Post, posts []Post) []Post {
	keys := make(map[string]struct{})
	for _, t := range current.Tags {
		if tag := normalizeTag(t); tag != "" {
			keys["t:"+tag] = struct{}{}
		}
	}
	for _, c := range current.Categories {
		keys["c:"+c] = struct{}{}
	}
	var related []Post
	for _, p := range posts {
		if p.Slug == current.Slug {
			continue
		}
		if sharesKey(keys, p) {
			related = append(related, p)
		}
	}
	return related
}

func sharesKey(keys map[string]struct{}, p Post) bool {
	for _, t := range p.Tags {
		if _, ok := keys["t:"+normalizeTag(t)]; ok {
			return true
		}
	}
	for _, c := range p.Categories {
		if _, ok := keys["c:"+c]; ok {
			return true
		}
	}
	return false
}

// JoinTags joins tags with ", ".
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// PathEscape escapes a string for use in a URL path.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

func marshalLD(data map[string]any) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema with a
// search action pointing at the site search.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      BuildURL(cfg.URL),
		"potentialAction": map[string]string{
			"@type":       "SearchAction",
			"target":      BuildURL(cfg.URL, "search") + "?q={search_term_string}",
			"query-input": "required name=search_term_string",
		},
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	return marshalLD(data)
}

// OrganizationJsonLD returns a JSON-LD string for the company behind the
// site, with its social profiles and contact details from the theme options.
func OrganizationJsonLD(cfg SiteConfig, flags options.Flags) string {
	data := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     cfg.Author,
		"url":      BuildURL(cfg.URL),
	}
	if cfg.Logo != "" {
		data["logo"] = cfg.Logo
	}
	var sameAs []string
	for _, l := range flags.SocialLinks() {
		sameAs = append(sameAs, l.URL)
	}
	if len(sameAs) > 0 {
		data["sameAs"] = sameAs
	}
	contact := map[string]string{}
	if phone := flags.String("phone_number", ""); phone != "" {
		contact["telephone"] = phone
	}
	if email := flags.String("contact_email", ""); email != "" {
		contact["email"] = email
	}
	if len(contact) > 0 {
		contact["@type"] = "ContactPoint"
		contact["contactType"] = "customer service"
		data["contactPoint"] = contact
	}
	if addr := flags.String("company_address", ""); addr != "" {
		data["address"] = addr
	}
	return marshalLD(data)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(post Post, cfg SiteConfig) string {
	postURL := BuildURL(cfg.URL, "blog", post.Slug)
	data := map[string]any{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title,
		"description":   post.Summary,
		"datePublished": post.Date,
		"url":           postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Author,
		},
	}
	if len(post.Tags) > 0 {
		data["keywords"] = strings.Join(post.Tags, ", ")
	}
	return marshalLD(data)
}
