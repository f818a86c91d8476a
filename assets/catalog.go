// Package assets decides which theme stylesheets and scripts a page needs
// and how each one is delivered. Selection is pure: it reads the page
// context, a snapshot of theme flags and the static catalog, and returns
// data. Emitting tags and computing versions are done by the caller.
package assets

import (
	"fmt"
	"strings"
)

// Kind tells stylesheets and scripts apart.
type Kind int

const (
	Style Kind = iota
	Script
)

// Position is where a resource is emitted in the document.
type Position int

const (
	Head Position = iota
	Footer
)

// Delivery is how a resource is delivered to the browser.
type Delivery int

const (
	Normal Delivery = iota
	// Deferred scripts get the defer attribute; deferred styles are
	// preloaded and swapped in on load.
	Deferred
	// PreloadSwap styles are fetched with rel=preload and become
	// stylesheets once loaded, so they never block rendering.
	PreloadSwap
)

func (d Delivery) String() string {
	switch d {
	case Deferred:
		return "deferred"
	case PreloadSwap:
		return "preload-swap"
	default:
		return "normal"
	}
}

// Class groups handles that share an activation rule.
type Class string

const (
	ClassBase        Class = "base"
	ClassFrontPage   Class = "front-page"
	ClassPrint       Class = "print"
	ClassContactForm Class = "contact-form"
	ClassStatistics  Class = "statistics"
	ClassWhatsApp    Class = "whatsapp"
	ClassFonts       Class = "fonts"
	ClassHero        Class = "hero"
	ClassLazyLoading Class = "lazy-loading"
)

var classDelivery = map[Class]Delivery{
	ClassBase:        Normal,
	ClassFrontPage:   Normal,
	ClassPrint:       PreloadSwap,
	ClassContactForm: Deferred,
	ClassStatistics:  Deferred,
	ClassWhatsApp:    Deferred,
	ClassFonts:       PreloadSwap,
	ClassHero:        Normal,
	ClassLazyLoading: Normal,
}

// DeliveryForClass returns the delivery policy of a handle class.
func DeliveryForClass(c Class) Delivery {
	return classDelivery[c]
}

// Descriptor declares one loadable resource.
type Descriptor struct {
	Handle   string
	Class    Class
	Kind     Kind
	URL      string
	Version  string
	Deps     []string
	Position Position
	Media    string
	Delivery Delivery
}

// Catalog is the ordered set of resources a site can load. Handles are
// unique and dependencies acyclic.
type Catalog struct {
	order    []string
	byHandle map[string]Descriptor
}

// NewCatalog validates ds and returns a catalog preserving their order.
// Each descriptor's Delivery is taken from its class policy.
func NewCatalog(ds ...Descriptor) (*Catalog, error) {
	c := &Catalog{byHandle: make(map[string]Descriptor, len(ds))}
	for _, d := range ds {
		if d.Handle == "" {
			return nil, fmt.Errorf("assets: descriptor with empty handle")
		}
		if _, dup := c.byHandle[d.Handle]; dup {
			return nil, fmt.Errorf("assets: duplicate handle %q", d.Handle)
		}
		d.Delivery = DeliveryForClass(d.Class)
		if d.Class == ClassPrint && d.Media == "" {
			d.Media = "print"
		}
		c.byHandle[d.Handle] = d
		c.order = append(c.order, d.Handle)
	}
	for _, h := range c.order {
		for _, dep := range c.byHandle[h].Deps {
			if _, ok := c.byHandle[dep]; !ok {
				return nil, fmt.Errorf("assets: %q depends on unknown handle %q", h, dep)
			}
		}
	}
	if cycle := c.findCycle(); cycle != nil {
		return nil, fmt.Errorf("assets: dependency cycle %s", strings.Join(cycle, " -> "))
	}
	return c, nil
}

func (c *Catalog) findCycle() []string {
	const (
		unseen = iota
		active
		done
	)
	state := make(map[string]int, len(c.order))
	var path []string
	var visit func(h string) []string
	visit = func(h string) []string {
		switch state[h] {
		case active:
			return append(append([]string(nil), path...), h)
		case done:
			return nil
		}
		state[h] = active
		path = append(path, h)
		for _, dep := range c.byHandle[h].Deps {
			if cyc := visit(dep); cyc != nil {
				return cyc
			}
		}
		path = path[:len(path)-1]
		state[h] = done
		return nil
	}
	for _, h := range c.order {
		if cyc := visit(h); cyc != nil {
			return cyc
		}
	}
	return nil
}

// Get returns the descriptor registered under handle.
func (c *Catalog) Get(handle string) (Descriptor, bool) {
	d, ok := c.byHandle[handle]
	return d, ok
}

// Handles returns every handle in declaration order.
func (c *Catalog) Handles() []string {
	return append([]string(nil), c.order...)
}

// DeliveryFor returns the delivery policy for handle. Unknown handles are
// delivered normally.
func (c *Catalog) DeliveryFor(handle string) Delivery {
	d, ok := c.byHandle[handle]
	if !ok {
		return Normal
	}
	return DeliveryForClass(d.Class)
}

// Versioner resolves a cache-busting version for a theme-relative path.
type Versioner interface {
	Version(path string) string
}

// Handles of the default theme catalog.
const (
	HandleMainStyle        = "drakkar-main"
	HandleFrontPageStyle   = "drakkar-front-page"
	HandlePrintStyle       = "drakkar-print"
	HandleFontsStyle       = "drakkar-google-fonts"
	HandleContactStyle     = "drakkar-contact-form"
	HandleWhatsAppStyle    = "drakkar-whatsapp"
	HandleMainScript       = "drakkar-main-js"
	HandleNavigationScript = "drakkar-navigation-js"
	HandleHeroScript       = "drakkar-hero-js"
	HandleLazyScript       = "drakkar-lazy-loading-js"
	HandleContactScript    = "drakkar-contact-form-js"
	HandleStatsScript      = "drakkar-statistics-js"
	HandleWhatsAppScript   = "drakkar-whatsapp-js"
)

// Fonts lists the web font families requested from Google Fonts.
var Fonts = []string{
	"Inter:wght@300;400;500;600;700",
	"Poppins:wght@400;500;600;700",
}

// FontsURL builds the stylesheet URL for families with display=swap.
func FontsURL(families []string) string {
	if len(families) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("https://fonts.googleapis.com/css2?")
	for _, f := range families {
		b.WriteString("family=")
		b.WriteString(strings.ReplaceAll(f, " ", "+"))
		b.WriteString("&")
	}
	b.WriteString("display=swap")
	return b.String()
}

// DefaultCatalog declares the theme's resources under baseURL (for example
// "/assets"). Versions come from v.
func DefaultCatalog(baseURL string, v Versioner) *Catalog {
	base := strings.TrimRight(baseURL, "/")
	file := func(handle string, class Class, kind Kind, path string, pos Position, deps ...string) Descriptor {
		return Descriptor{
			Handle:   handle,
			Class:    class,
			Kind:     kind,
			URL:      base + "/" + path,
			Version:  v.Version(path),
			Deps:     deps,
			Position: pos,
		}
	}
	c, err := NewCatalog(
		file(HandleMainStyle, ClassBase, Style, "css/main.css", Head),
		file(HandleFrontPageStyle, ClassFrontPage, Style, "css/front-page.css", Head, HandleMainStyle),
		file(HandlePrintStyle, ClassPrint, Style, "css/print.css", Head, HandleMainStyle),
		Descriptor{Handle: HandleFontsStyle, Class: ClassFonts, Kind: Style, URL: FontsURL(Fonts), Position: Head},
		file(HandleContactStyle, ClassContactForm, Style, "css/components/contact-form.css", Head, HandleMainStyle),
		file(HandleWhatsAppStyle, ClassWhatsApp, Style, "css/components/whatsapp-widget.css", Head, HandleMainStyle),
		file(HandleMainScript, ClassBase, Script, "js/main.js", Footer),
		file(HandleNavigationScript, ClassBase, Script, "js/components/navigation.js", Footer, HandleMainScript),
		file(HandleHeroScript, ClassHero, Script, "js/components/hero.js", Footer, HandleMainScript),
		file(HandleLazyScript, ClassLazyLoading, Script, "js/components/lazy-loading.js", Footer, HandleMainScript),
		file(HandleContactScript, ClassContactForm, Script, "js/components/contact-form.js", Footer, HandleMainScript),
		file(HandleStatsScript, ClassStatistics, Script, "js/components/statistics.js", Footer, HandleMainScript),
		file(HandleWhatsAppScript, ClassWhatsApp, Script, "js/components/whatsapp-widget.js", Footer, HandleMainScript),
	)
	if err != nil {
		// The declarations above are static.
		panic(err)
	}
	return c
}
