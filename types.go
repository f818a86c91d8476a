package drakkar

import "github.com/drakkar-agro/drakkar/media"

// Post is a dated article. Categories keep the author's order; the first
// one is the post's primary category.
type Post struct {
	Title      string
	Date       string
	Tags       []string
	Categories []string // category slugs
	Type       string   // "" or "post" for regular posts
	Summary    string
	Link       string
	Slug       string
	Content    string
	Published  bool
}

// Category is a post taxonomy term.
type Category struct {
	Slug        string
	Name        string
	Description string
}

// Link returns the archive URL of the category.
func (c Category) Link() string {
	return "/category/" + c.Slug + "/"
}

// Page is a hierarchical page. ParentID is zero for top-level pages.
type Page struct {
	ID        int64
	ParentID  int64
	Slug      string
	Title     string
	Content   string
	Template  string
	MenuOrder int
	Published bool
	Path      string // full URL path, filled by the cache
}

// Image is an uploaded image with its renditions.
type Image struct {
	Filename     string
	OriginalName string
	Width        int
	Height       int
	Size         int
	UploadedAt   string
	Renditions   []media.Rendition // Data is not loaded from storage
}

// ContactMessage is a contact form submission.
type ContactMessage struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Company   string
	Message   string
	Page      string
	CreatedAt string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}
