package drakkar

import (
	"database/sql"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when a requested post or page does not exist.
var ErrNotFound = sql.ErrNoRows

// ContentCache is an in-memory cache of published posts, tags, categories
// and pages with TTL. Pages are indexed by their full path.
type ContentCache struct {
	mu      sync.RWMutex
	snap    *snapshot
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

type snapshot struct {
	posts      []Post
	tags       []string
	categories map[string]Category
	pages      map[int64]Page
	byPath     map[string]int64
	children   map[int64][]int64
}

// NewContentCache creates a ContentCache backed by the given Store.
func NewContentCache(s *Store, ttl time.Duration) *ContentCache {
	return &ContentCache{store: s, ttl: ttl}
}

func (c *ContentCache) valid() bool {
	return c.snap != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *ContentCache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.mu.Unlock()
}

func (c *ContentCache) load() error {
	if c.valid() {
		return nil
	}
	posts, err := c.store.ListPosts("")
	if err != nil {
		return err
	}
	tags, err := c.store.ListTags()
	if err != nil {
		return err
	}
	cats, err := c.store.ListCategories()
	if err != nil {
		return err
	}
	pages, err := c.store.ListPages(false)
	if err != nil {
		return err
	}
	snap := &snapshot{
		posts:      posts,
		tags:       tags,
		categories: make(map[string]Category, len(cats)),
	}
	for _, cat := range cats {
		snap.categories[cat.Slug] = cat
	}
	snap.indexPages(pages)
	c.snap = snap
	c.fetched = time.Now()
	return nil
}

// indexPages computes each page's path from its ancestry. Pages whose
// parent is missing or unpublished are unreachable and left out.
func (s *snapshot) indexPages(pages []Page) {
	s.pages = make(map[int64]Page, len(pages))
	s.byPath = make(map[string]int64, len(pages))
	s.children = make(map[int64][]int64)
	for _, p := range pages {
		s.pages[p.ID] = p
	}
	var resolve func(id int64, depth int) (string, bool)
	resolve = func(id int64, depth int) (string, bool) {
		p, ok := s.pages[id]
		if !ok || depth > len(s.pages) {
			return "", false
		}
		if p.ParentID == 0 {
			return "/" + p.Slug + "/", true
		}
		parent, ok := resolve(p.ParentID, depth+1)
		if !ok {
			return "", false
		}
		return parent + p.Slug + "/", true
	}
	for id, p := range s.pages {
		path, ok := resolve(id, 0)
		if !ok {
			delete(s.pages, id)
			continue
		}
		p.Path = path
		s.pages[id] = p
	}
	for id, p := range s.pages {
		s.byPath[p.Path] = id
		s.children[p.ParentID] = append(s.children[p.ParentID], id)
	}
}

// ensureLoaded returns the cached snapshot after ensuring it is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *ContentCache) ensureLoaded() (*snapshot, error) {
	c.mu.RLock()
	if c.valid() {
		snap := c.snap
		c.mu.RUnlock()
		return snap, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, err
	}
	return c.snap, nil
}

// ListPosts returns published posts, optionally filtered by tag.
func (c *ContentCache) ListPosts(tag string) ([]Post, error) {
	snap, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return snap.posts, nil
	}
	normalized := normalizeTag(tag)
	var filtered []Post
	for _, p := range snap.posts {
		for _, t := range p.Tags {
			if normalizeTag(t) == normalized {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered, nil
}

// ListCategoryPosts returns published posts filed under the category slug.
func (c *ContentCache) ListCategoryPosts(slug string) ([]Post, error) {
	snap, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	var filtered []Post
	for _, p := range snap.posts {
		for _, cs := range p.Categories {
			if cs == slug {
				filtered = append(filtered, p)
				break
			}
		}
	}
	return filtered, nil
}

// Search returns published posts whose title, summary or body contains q,
// case-insensitively.
func (c *ContentCache) Search(q string) ([]Post, error) {
	snap, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil, nil
	}
	var found []Post
	for _, p := range snap.posts {
		if strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Summary), q) ||
			strings.Contains(strings.ToLower(p.Content), q) {
			found = append(found, p)
		}
	}
	return found, nil
}

// ListTags returns all unique tags from published posts.
func (c *ContentCache) ListTags() ([]string, error) {
	snap, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	return snap.tags, nil
}

// GetPost returns a single published post by slug from the cache.
func (c *ContentCache) GetPost(slug string) (Post, error) {
	snap, err := c.ensureLoaded()
	if err != nil {
		return Post{}, err
	}
	for _, p := range snap.posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}

// Category returns the category for slug.
func (c *ContentCache) Category(slug string) (Category, error) {
	snap, err := c.ensureLoaded()
	if err != nil {
		return Category{}, err
	}
	if cat, ok := snap.categories[slug]; ok {
		return cat, nil
	}
	return Category{}, ErrNotFound
}

// PostCategories resolves the post's category slugs in order, skipping
// unknown ones.
func (c *ContentCache) PostCategories(p Post) ([]Category, error) {
	snap, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	var cats []Category
	for _, slug := range p.Categories {
		if cat, ok := snap.categories[slug]; ok {
			cats = append(cats, cat)
		}
	}
	return cats, nil
}

// PageByPath returns the published page served at path (e.g. "/a/b/").
func (c *ContentCache) PageByPath(path string) (Page, error) {
	snap, err := c.ensureLoaded()
	if err != nil {
		return Page{}, err
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	id, ok := snap.byPath[path]
	if !ok {
		return Page{}, ErrNotFound
	}
	return snap.pages[id], nil
}

// Ancestors returns the page's parents ordered from the immediate parent
// up to the root.
func (c *ContentCache) Ancestors(p Page) ([]Page, error) {
	snap, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	var out []Page
	seen := map[int64]bool{p.ID: true}
	for id := p.ParentID; id != 0 && !seen[id]; {
		parent, ok := snap.pages[id]
		if !ok {
			break
		}
		seen[id] = true
		out = append(out, parent)
		id = parent.ParentID
	}
	return out, nil
}

// ListPages returns every reachable published page.
func (c *ContentCache) ListPages() ([]Page, error) {
	snap, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	out := make([]Page, 0, len(snap.pages))
	for _, p := range snap.pages {
		out = append(out, p)
	}
	sortPages(out)
	return out, nil
}

// Children returns the published child pages of id ordered by menu order.
func (c *ContentCache) Children(id int64) ([]Page, error) {
	snap, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	var out []Page
	for _, cid := range snap.children[id] {
		out = append(out, snap.pages[cid])
	}
	sortPages(out)
	return out, nil
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
