package assets

import (
	"sort"

	"github.com/drakkar-agro/drakkar/breadcrumb"
	"github.com/drakkar-agro/drakkar/content"
	"github.com/drakkar-agro/drakkar/options"
)

// ContactTemplate is the page template that always carries the contact form.
const ContactTemplate = "contact"

// Request holds the page facts that drive asset selection.
type Request struct {
	Context  breadcrumb.Context
	Template string
	Content  string
}

// Set is the collection of active handles.
type Set map[string]struct{}

// Has reports whether handle is active.
func (s Set) Has(handle string) bool {
	_, ok := s[handle]
	return ok
}

// Handles returns the active handles sorted.
func (s Set) Handles() []string {
	out := make([]string, 0, len(s))
	for h := range s {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// Select returns the handles of catalog that the page described by req
// needs. It is a pure function of its arguments. An unrecognised page
// context yields only the base bundle.
func Select(req Request, flags options.Flags, catalog *Catalog) Set {
	set := make(Set)
	if catalog == nil {
		return set
	}
	active := activeClasses(req, flags)
	for _, h := range catalog.order {
		if active[catalog.byHandle[h].Class] {
			set[h] = struct{}{}
		}
	}
	return set
}

func activeClasses(req Request, flags options.Flags) map[Class]bool {
	if !knownContext(req.Context) {
		return map[Class]bool{ClassBase: true}
	}
	front := isFrontPage(req.Context)
	return map[Class]bool{
		ClassBase:        true,
		ClassPrint:       true,
		ClassFrontPage:   front,
		ClassContactForm: req.Template == ContactTemplate || content.HasShortcode(req.Content, "contact_form"),
		ClassStatistics:  front || content.HasBlock(req.Content, "statistics") || content.HasShortcode(req.Content, "statistics"),
		ClassWhatsApp:    flags.Bool("whatsapp_widget_enable", false),
		ClassFonts:       flags.Bool("preload_fonts", true),
		ClassHero:        front || content.HasBlock(req.Content, "hero"),
		ClassLazyLoading: flags.Bool("lazy_loading", true),
	}
}

func isFrontPage(ctx breadcrumb.Context) bool {
	switch ctx.(type) {
	case breadcrumb.FrontPage, *breadcrumb.FrontPage:
		return true
	}
	return false
}

func knownContext(ctx breadcrumb.Context) bool {
	switch ctx.(type) {
	case breadcrumb.FrontPage, *breadcrumb.FrontPage,
		breadcrumb.TaxonomyTerm, breadcrumb.GenericArchive,
		breadcrumb.SearchResults, breadcrumb.NotFound,
		breadcrumb.SinglePost, breadcrumb.Page:
		return true
	}
	return false
}

// Resolve returns the active descriptors in catalog order.
func Resolve(set Set, catalog *Catalog) []Descriptor {
	if catalog == nil {
		return nil
	}
	var out []Descriptor
	for _, h := range catalog.order {
		if set.Has(h) {
			out = append(out, catalog.byHandle[h])
		}
	}
	return out
}

// Hint is a resource hint link such as preconnect or dns-prefetch.
type Hint struct {
	Rel         string
	Href        string
	CrossOrigin bool
}

// Hints returns the resource hints for a page: font origins when web fonts
// load, and the theme origin on the front page.
func Hints(req Request, flags options.Flags, themeOrigin string) []Hint {
	var hints []Hint
	if knownContext(req.Context) && flags.Bool("preload_fonts", true) {
		hints = append(hints,
			Hint{Rel: "preconnect", Href: "https://fonts.googleapis.com"},
			Hint{Rel: "preconnect", Href: "https://fonts.gstatic.com", CrossOrigin: true},
			Hint{Rel: "dns-prefetch", Href: "//fonts.googleapis.com"},
			Hint{Rel: "dns-prefetch", Href: "//fonts.gstatic.com"},
		)
	}
	if isFrontPage(req.Context) && themeOrigin != "" {
		hints = append(hints, Hint{Rel: "preconnect", Href: themeOrigin})
	}
	return hints
}

// DeferScripts returns a copy of active with every script deferred, for
// sites that opt into deferring all JavaScript.
func DeferScripts(active []Descriptor) []Descriptor {
	out := make([]Descriptor, len(active))
	copy(out, active)
	for i := range out {
		if out[i].Kind == Script {
			out[i].Delivery = Deferred
		}
	}
	return out
}
