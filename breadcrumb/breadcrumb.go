// Package breadcrumb builds the navigation trail from the site root to the
// resource being rendered. Build is a pure function of the page context and
// options; Render turns the resulting sequence into markup.
package breadcrumb

// Context classifies what is being rendered for the current request.
// Exactly one of the concrete types below is passed per render.
type Context interface {
	isContext()
}

// FrontPage is the site home page. Breadcrumbs are suppressed there.
type FrontPage struct{}

// TaxonomyTerm is a category, tag or custom taxonomy archive.
type TaxonomyTerm struct {
	Name string
	Link string
}

// GenericArchive is any archive without a canonical term link
// (date archives, the blog index).
type GenericArchive struct {
	Title string
}

// SearchResults is the search results listing.
type SearchResults struct {
	Query string
}

// NotFound is the error page.
type NotFound struct{}

// Category is a post category as ordered by the content store.
type Category struct {
	Name string
	Link string
}

// PostType describes a non-default content type. The zero value means a
// regular post.
type PostType struct {
	Label       string
	ArchiveLink string
}

// SinglePost is a single post view.
type SinglePost struct {
	Title      string
	Categories []Category
	Type       PostType
}

// Ancestor is one parent of a hierarchical page.
type Ancestor struct {
	Title string
	Link  string
}

// Page is a hierarchical page. Ancestors are ordered leaf-to-root, i.e.
// Ancestors[0] is the immediate parent.
type Page struct {
	ID        int64
	Title     string
	Ancestors []Ancestor
}

func (FrontPage) isContext()      {}
func (TaxonomyTerm) isContext()   {}
func (GenericArchive) isContext() {}
func (SearchResults) isContext()  {}
func (NotFound) isContext()       {}
func (SinglePost) isContext()     {}
func (Page) isContext()           {}

// Item is one waypoint of the trail. An empty Link marks the current,
// non-clickable item.
type Item struct {
	Label string
	Link  string
}

// HasLink reports whether the item is clickable.
func (i Item) HasLink() bool {
	return i.Link != ""
}

// Options controls trail construction and rendering.
type Options struct {
	HomeLabel   string
	HomeURL     string
	Separator   string
	ShowHome    bool
	ShowCurrent bool
}

// DefaultOptions returns the options used when a caller has no preference.
func DefaultOptions() Options {
	return Options{
		HomeLabel:   "Home",
		HomeURL:     "/",
		Separator:   "/",
		ShowHome:    true,
		ShowCurrent: true,
	}
}

const (
	searchPrefix  = "Search results for: "
	notFoundLabel = "Page not found"
)

// Build returns the trail for ctx, ordered root to leaf. It never fails:
// the front page and unrecognised contexts yield an empty trail.
func Build(ctx Context, opts Options) []Item {
	switch ctx.(type) {
	case nil, FrontPage, *FrontPage:
		return nil
	}

	var items []Item
	if opts.ShowHome {
		home := opts.HomeURL
		if home == "" {
			home = "/"
		}
		items = append(items, Item{Label: opts.HomeLabel, Link: home})
	}

	switch c := ctx.(type) {
	case TaxonomyTerm:
		items = append(items, Item{Label: c.Name, Link: c.Link})
	case GenericArchive:
		items = append(items, Item{Label: c.Title})
	case SearchResults:
		items = append(items, Item{Label: searchPrefix + c.Query})
	case NotFound:
		items = append(items, Item{Label: notFoundLabel})
	case SinglePost:
		items = appendSingle(items, c, opts)
	case Page:
		items = appendPage(items, c, opts)
	default:
		return nil
	}
	return items
}

func appendSingle(items []Item, p SinglePost, opts Options) []Item {
	switch {
	case p.Type.Label != "":
		items = append(items, Item{Label: p.Type.Label, Link: p.Type.ArchiveLink})
	case len(p.Categories) > 0:
		// First category wins; the store's ordering is taken as-is.
		primary := p.Categories[0]
		items = append(items, Item{Label: primary.Name, Link: primary.Link})
	}
	if opts.ShowCurrent {
		items = append(items, Item{Label: p.Title})
	}
	return items
}

func appendPage(items []Item, p Page, opts Options) []Item {
	for i := len(p.Ancestors) - 1; i >= 0; i-- {
		a := p.Ancestors[i]
		items = append(items, Item{Label: a.Title, Link: a.Link})
	}
	if opts.ShowCurrent {
		items = append(items, Item{Label: p.Title})
	}
	return items
}
