// Package options defines the theme options an administrator can change
// (media, layout, performance, contact and social settings), how raw form
// values are sanitized, and the read-only Flags snapshot handed to
// rendering code on each request.
package options

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrUnknownOption is returned for names that are not defined.
var ErrUnknownOption = errors.New("options: unknown option")

// Kind is the value type of an option.
type Kind int

const (
	Text Kind = iota
	Bool
	Range
	Select
	URL
)

// Sections group options in the admin form.
const (
	SectionMedia       = "media"
	SectionLayout      = "layout"
	SectionPerformance = "performance"
	SectionContact     = "contact"
	SectionSocial      = "social"
)

// Definition describes one option.
type Definition struct {
	Name     string
	Section  string
	Label    string
	Kind     Kind
	Default  any
	Choices  []string // Select
	Min, Max int      // Range
}

// Social networks in display order.
var Networks = []string{"facebook", "twitter", "instagram", "linkedin", "youtube", "whatsapp"}

// Definitions lists every option in admin display order.
var Definitions = buildDefinitions()

func buildDefinitions() []Definition {
	defs := []Definition{
		{Name: "default_featured_image", Section: SectionMedia, Label: "Default featured image", Kind: Text, Default: ""},
		{Name: "hero_background_image", Section: SectionMedia, Label: "Hero background image", Kind: Text, Default: ""},
		{Name: "image_quality", Section: SectionMedia, Label: "Image quality", Kind: Range, Default: 85, Min: 1, Max: 100},
		{Name: "enable_webp", Section: SectionMedia, Label: "Generate WebP copies", Kind: Bool, Default: true},
		{Name: "lazy_loading", Section: SectionMedia, Label: "Lazy load images", Kind: Bool, Default: true},
		{Name: "enable_svg_uploads", Section: SectionMedia, Label: "Allow SVG uploads", Kind: Bool, Default: false},

		{Name: "site_layout", Section: SectionLayout, Label: "Site layout", Kind: Select, Default: "full-width", Choices: []string{"full-width", "boxed"}},
		{Name: "header_style", Section: SectionLayout, Label: "Header style", Kind: Select, Default: "default", Choices: []string{"default", "transparent", "sticky"}},
		{Name: "footer_style", Section: SectionLayout, Label: "Footer style", Kind: Select, Default: "default", Choices: []string{"default", "minimal"}},
		{Name: "excerpt_length", Section: SectionLayout, Label: "Excerpt length (words)", Kind: Range, Default: 20, Min: 10, Max: 100},

		{Name: "enable_emojis", Section: SectionPerformance, Label: "Enable emoji script", Kind: Bool, Default: false},
		{Name: "preload_fonts", Section: SectionPerformance, Label: "Preload web fonts", Kind: Bool, Default: true},
		{Name: "minify_css", Section: SectionPerformance, Label: "Minify inline CSS", Kind: Bool, Default: false},
		{Name: "defer_js", Section: SectionPerformance, Label: "Defer all scripts", Kind: Bool, Default: false},

		{Name: "whatsapp_number", Section: SectionContact, Label: "WhatsApp number", Kind: Text, Default: ""},
		{Name: "whatsapp_widget_enable", Section: SectionContact, Label: "Show WhatsApp widget", Kind: Bool, Default: false},
		{Name: "contact_email", Section: SectionContact, Label: "Contact email", Kind: Text, Default: ""},
		{Name: "company_address", Section: SectionContact, Label: "Company address", Kind: Text, Default: ""},
		{Name: "phone_number", Section: SectionContact, Label: "Phone number", Kind: Text, Default: ""},
	}
	for _, n := range Networks {
		defs = append(defs, Definition{
			Name:    "social_" + n,
			Section: SectionSocial,
			Label:   strings.ToUpper(n[:1]) + n[1:] + " URL",
			Kind:    URL,
			Default: "",
		})
	}
	defs = append(defs, Definition{
		Name: "social_target", Section: SectionSocial, Label: "Social links open in",
		Kind: Select, Default: "_blank", Choices: []string{"_blank", "_self"},
	})
	return defs
}

var byName = func() map[string]Definition {
	m := make(map[string]Definition, len(Definitions))
	for _, d := range Definitions {
		m[d.Name] = d
	}
	return m
}()

// Lookup returns the definition for name.
func Lookup(name string) (Definition, bool) {
	d, ok := byName[name]
	return d, ok
}

// Sanitize converts a raw form or storage value into the option's typed
// value. Invalid selects fall back to the default; ranges are clamped.
func Sanitize(name, raw string) (any, error) {
	d, ok := byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOption, name)
	}
	raw = strings.TrimSpace(raw)
	switch d.Kind {
	case Bool:
		return parseBool(raw), nil
	case Range:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return d.Default, nil
		}
		return min(max(n, d.Min), d.Max), nil
	case Select:
		for _, c := range d.Choices {
			if raw == c {
				return raw, nil
			}
		}
		return d.Default, nil
	case URL:
		if raw == "" {
			return "", nil
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return "", nil
		}
		return u.String(), nil
	default:
		return raw, nil
	}
}

// Encode turns a typed value back into its storage form.
func Encode(v any) string {
	switch x := v.(type) {
	case bool:
		if x {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
