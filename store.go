package drakkar

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/drakkar-agro/drakkar/media"
	"github.com/drakkar-agro/drakkar/menu"
)

// Store wraps a SQLite database and provides CRUD operations for site
// content, theme options, menus, images and contact messages.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed while the admin writes; busy_timeout makes
	// writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA foreign_keys=ON;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    date TEXT NOT NULL,
    tags TEXT NOT NULL,
    categories TEXT NOT NULL DEFAULT ',,',
    type TEXT NOT NULL DEFAULT 'post',
    summary TEXT NOT NULL,
    content TEXT NOT NULL,
    published INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS categories (
    slug TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS pages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    parent_id INTEGER NOT NULL DEFAULT 0,
    slug TEXT NOT NULL,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    template TEXT NOT NULL DEFAULT '',
    menu_order INTEGER NOT NULL DEFAULT 0,
    published INTEGER NOT NULL DEFAULT 1,
    UNIQUE (parent_id, slug)
);
CREATE TABLE IF NOT EXISTS options (
    name TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS menu_items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    location TEXT NOT NULL,
    parent_id INTEGER NOT NULL DEFAULT 0,
    position INTEGER NOT NULL DEFAULT 0,
    title TEXT NOT NULL,
    url TEXT NOT NULL,
    classes TEXT NOT NULL DEFAULT '',
    icon_class TEXT NOT NULL DEFAULT '',
    button_style TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS images (
    filename TEXT PRIMARY KEY,
    original_name TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    size INTEGER NOT NULL,
    uploaded_at TEXT NOT NULL,
    renditions TEXT NOT NULL DEFAULT '[]'
);
CREATE TABLE IF NOT EXISTS contact_messages (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    company TEXT NOT NULL DEFAULT '',
    message TEXT NOT NULL,
    page TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);
`)
	return err
}

const postColumns = `slug, title, date, tags, categories, type, summary, content, published`

func scanPost(sc interface{ Scan(...any) error }) (Post, error) {
	var slug, title, date, tags, cats, typ, summary, content string
	var published int
	if err := sc.Scan(&slug, &title, &date, &tags, &cats, &typ, &summary, &content, &published); err != nil {
		return Post{}, err
	}
	return Post{
		Slug:       slug,
		Title:      title,
		Date:       date,
		Tags:       ParseTags(tags),
		Categories: ParseTags(cats),
		Type:       typ,
		Summary:    summary,
		Content:    content,
		Link:       "/blog/" + slug + "/",
		Published:  published == 1,
	}, nil
}

func (s *Store) queryPosts(query string, args ...any) ([]Post, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListPosts returns all published posts ordered by date descending.
// If tag is non-empty, results are filtered to posts containing that tag.
func (s *Store) ListPosts(tag string) ([]Post, error) {
	if tag == "" {
		return s.queryPosts(`SELECT ` + postColumns + ` FROM posts WHERE published = 1 ORDER BY date DESC`)
	}
	return s.queryPosts(`SELECT `+postColumns+` FROM posts WHERE published = 1 AND instr(lower(tags), ',' || ? || ',') > 0 ORDER BY date DESC`, normalizeTag(tag))
}

// ListPostsInCategory returns published posts filed under category.
func (s *Store) ListPostsInCategory(category string) ([]Post, error) {
	return s.queryPosts(`SELECT `+postColumns+` FROM posts WHERE published = 1 AND instr(categories, ',' || ? || ',') > 0 ORDER BY date DESC`, category)
}

// ListTags returns a sorted, deduplicated slice of all tags from published posts.
func (s *Store) ListTags() ([]string, error) {
	rows, err := s.db.Query(`SELECT tags FROM posts WHERE published = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range ParseTags(tags) {
			set[strings.ToLower(t)] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var result []string
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result, nil
}

// GetPost returns a single published post by slug.
func (s *Store) GetPost(slug string) (Post, error) {
	return scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ? AND published = 1`, slug))
}

// GetPostAny returns a post by slug regardless of published status (for admin).
func (s *Store) GetPostAny(slug string) (Post, error) {
	return scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug))
}

// ListAllPosts returns every post (published and drafts) ordered by date descending.
func (s *Store) ListAllPosts() ([]Post, error) {
	return s.queryPosts(`SELECT ` + postColumns + ` FROM posts ORDER BY date DESC`)
}

// SavePost upserts a post. Tags are normalized to lowercase; category
// order is kept.
func (s *Store) SavePost(p Post) error {
	normalizedTags := make([]string, len(p.Tags))
	for i, t := range p.Tags {
		normalizedTags[i] = normalizeTag(t)
	}
	typ := p.Type
	if typ == "" {
		typ = "post"
	}
	published := 0
	if p.Published {
		published = 1
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Slug, p.Title, p.Date, joinList(normalizedTags), joinList(p.Categories), typ, p.Summary, p.Content, published)
	return err
}

// DeletePost removes a post by slug.
func (s *Store) DeletePost(slug string) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE slug = ?`, slug)
	return err
}

// ListCategories returns every category ordered by name.
func (s *Store) ListCategories() ([]Category, error) {
	rows, err := s.db.Query(`SELECT slug, name, description FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Slug, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// SaveCategory upserts a category.
func (s *Store) SaveCategory(c Category) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO categories (slug, name, description) VALUES (?, ?, ?)`, c.Slug, c.Name, c.Description)
	return err
}

// DeleteCategory removes a category. Posts keep the slug until re-saved.
func (s *Store) DeleteCategory(slug string) error {
	_, err := s.db.Exec(`DELETE FROM categories WHERE slug = ?`, slug)
	return err
}

const pageColumns = `id, parent_id, slug, title, content, template, menu_order, published`

func scanPage(sc interface{ Scan(...any) error }) (Page, error) {
	var p Page
	var published int
	if err := sc.Scan(&p.ID, &p.ParentID, &p.Slug, &p.Title, &p.Content, &p.Template, &p.MenuOrder, &published); err != nil {
		return Page{}, err
	}
	p.Published = published == 1
	return p, nil
}

// ListPages returns pages ordered by menu order then title. Drafts are
// included only when all is true.
func (s *Store) ListPages(all bool) ([]Page, error) {
	q := `SELECT ` + pageColumns + ` FROM pages`
	if !all {
		q += ` WHERE published = 1`
	}
	q += ` ORDER BY menu_order, title`
	rows, err := s.db.Query(q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var pages []Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// GetPage returns a page by id regardless of published status.
func (s *Store) GetPage(id int64) (Page, error) {
	return scanPage(s.db.QueryRow(`SELECT `+pageColumns+` FROM pages WHERE id = ?`, id))
}

// SavePage inserts a page when ID is zero, otherwise updates it. It
// returns the page id.
func (s *Store) SavePage(p Page) (int64, error) {
	published := 0
	if p.Published {
		published = 1
	}
	if p.ID == 0 {
		res, err := s.db.Exec(`INSERT INTO pages (parent_id, slug, title, content, template, menu_order, published) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ParentID, p.Slug, p.Title, p.Content, p.Template, p.MenuOrder, published)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}
	_, err := s.db.Exec(`UPDATE pages SET parent_id = ?, slug = ?, title = ?, content = ?, template = ?, menu_order = ?, published = ? WHERE id = ?`,
		p.ParentID, p.Slug, p.Title, p.Content, p.Template, p.MenuOrder, published, p.ID)
	return p.ID, err
}

// DeletePage removes a page and re-parents its children to its parent.
func (s *Store) DeletePage(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	var parent int64
	if err := tx.QueryRow(`SELECT parent_id FROM pages WHERE id = ?`, id).Scan(&parent); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE pages SET parent_id = ? WHERE parent_id = ?`, parent, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM pages WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// Options returns every stored theme option as raw strings.
func (s *Store) Options() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT name, value FROM options`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		out[name] = value
	}
	return out, rows.Err()
}

// SetOptions upserts the given raw option values in one transaction.
func (s *Store) SetOptions(values map[string]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for name, value := range values {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO options (name, value) VALUES (?, ?)`, name, value); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// MenuItems returns the items stored for location ordered by position.
func (s *Store) MenuItems(location menu.Location) ([]menu.Item, error) {
	rows, err := s.db.Query(`SELECT id, parent_id, position, title, url, classes, icon_class, button_style, description FROM menu_items WHERE location = ? ORDER BY position, id`, string(location))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []menu.Item
	for rows.Next() {
		var it menu.Item
		var classes string
		if err := rows.Scan(&it.ID, &it.ParentID, &it.Position, &it.Title, &it.URL, &classes, &it.IconClass, &it.ButtonStyle, &it.Description); err != nil {
			return nil, err
		}
		it.Classes = strings.Fields(classes)
		items = append(items, it)
	}
	return items, rows.Err()
}

// SaveMenuItem inserts or updates a menu item and returns its id.
func (s *Store) SaveMenuItem(location menu.Location, it menu.Item) (int64, error) {
	classes := strings.Join(it.Classes, " ")
	if it.ID == 0 {
		res, err := s.db.Exec(`INSERT INTO menu_items (location, parent_id, position, title, url, classes, icon_class, button_style, description) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(location), it.ParentID, it.Position, it.Title, it.URL, classes, it.IconClass, it.ButtonStyle, it.Description)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}
	_, err := s.db.Exec(`UPDATE menu_items SET location = ?, parent_id = ?, position = ?, title = ?, url = ?, classes = ?, icon_class = ?, button_style = ?, description = ? WHERE id = ?`,
		string(location), it.ParentID, it.Position, it.Title, it.URL, classes, it.IconClass, it.ButtonStyle, it.Description, it.ID)
	return it.ID, err
}

// DeleteMenuItem removes a menu item and its direct children.
func (s *Store) DeleteMenuItem(id int64) error {
	_, err := s.db.Exec(`DELETE FROM menu_items WHERE id = ? OR parent_id = ?`, id, id)
	return err
}

// SaveImage records image metadata. Rendition bytes are not stored.
func (s *Store) SaveImage(img Image) error {
	meta := make([]media.Rendition, len(img.Renditions))
	for i, r := range img.Renditions {
		r.Data, r.WebPData = nil, nil
		meta[i] = r
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO images (filename, original_name, width, height, size, uploaded_at, renditions) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		img.Filename, img.OriginalName, img.Width, img.Height, img.Size, img.UploadedAt, string(b))
	return err
}

// ListImages returns every image, newest first.
func (s *Store) ListImages() ([]Image, error) {
	rows, err := s.db.Query(`SELECT filename, original_name, width, height, size, uploaded_at, renditions FROM images ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var images []Image
	for rows.Next() {
		var img Image
		var renditions string
		if err := rows.Scan(&img.Filename, &img.OriginalName, &img.Width, &img.Height, &img.Size, &img.UploadedAt, &renditions); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(renditions), &img.Renditions); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// GetImage returns one image by filename.
func (s *Store) GetImage(filename string) (Image, error) {
	var img Image
	var renditions string
	err := s.db.QueryRow(`SELECT filename, original_name, width, height, size, uploaded_at, renditions FROM images WHERE filename = ?`, filename).
		Scan(&img.Filename, &img.OriginalName, &img.Width, &img.Height, &img.Size, &img.UploadedAt, &renditions)
	if err != nil {
		return Image{}, err
	}
	if err := json.Unmarshal([]byte(renditions), &img.Renditions); err != nil {
		return Image{}, err
	}
	return img, nil
}

// ImageExists reports whether filename is recorded.
func (s *Store) ImageExists(filename string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM images WHERE filename = ?`, filename).Scan(&n)
	return n > 0, err
}

// DeleteImage removes image metadata.
func (s *Store) DeleteImage(filename string) error {
	_, err := s.db.Exec(`DELETE FROM images WHERE filename = ?`, filename)
	return err
}

// SaveContactMessage stores a contact form submission.
func (s *Store) SaveContactMessage(m ContactMessage) error {
	_, err := s.db.Exec(`INSERT INTO contact_messages (id, name, email, phone, company, message, page, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, m.Email, m.Phone, m.Company, m.Message, m.Page, m.CreatedAt)
	return err
}

// ListContactMessages returns submissions, newest first.
func (s *Store) ListContactMessages() ([]ContactMessage, error) {
	rows, err := s.db.Query(`SELECT id, name, email, phone, company, message, page, created_at FROM contact_messages ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var msgs []ContactMessage
	for rows.Next() {
		var m ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Company, &m.Message, &m.Page, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// ParseTags splits a comma-delimited list (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func joinList(items []string) string {
	return "," + strings.Join(items, ",") + ","
}
