package drakkar

import (
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/drakkar-agro/drakkar/menu"
	"github.com/drakkar-agro/drakkar/options"
)

// Seed is initial site content read from YAML. Applying it twice updates
// the same rows instead of duplicating them.
type Seed struct {
	Categories []Category                   `yaml:"categories"`
	Posts      []SeedPost                   `yaml:"posts"`
	Pages      []SeedPage                   `yaml:"pages"`
	Menus      map[menu.Location][]SeedMenu `yaml:"menus"`
	Options    map[string]string            `yaml:"options"`
}

// SeedPost is a post entry. Posts are published unless Draft is set.
type SeedPost struct {
	Slug       string   `yaml:"slug"`
	Title      string   `yaml:"title"`
	Date       string   `yaml:"date"`
	Tags       []string `yaml:"tags"`
	Categories []string `yaml:"categories"`
	Type       string   `yaml:"type"`
	Summary    string   `yaml:"summary"`
	Content    string   `yaml:"content"`
	Draft      bool     `yaml:"draft"`
}

// SeedPage is a page entry. Parent is the path of an earlier page, such as
// "solucoes" or "solucoes/drones".
type SeedPage struct {
	Slug      string `yaml:"slug"`
	Title     string `yaml:"title"`
	Parent    string `yaml:"parent"`
	Template  string `yaml:"template"`
	MenuOrder int    `yaml:"menu_order"`
	Content   string `yaml:"content"`
	Draft     bool   `yaml:"draft"`
}

// SeedMenu is a menu entry with nested children.
type SeedMenu struct {
	Title       string     `yaml:"title"`
	URL         string     `yaml:"url"`
	Classes     []string   `yaml:"classes"`
	IconClass   string     `yaml:"icon_class"`
	ButtonStyle string     `yaml:"button_style"`
	Description string     `yaml:"description"`
	Children    []SeedMenu `yaml:"children"`
}

// SeedStats counts what Apply wrote.
type SeedStats struct {
	Categories, Posts, Pages, MenuItems, Options int
}

func (s SeedStats) String() string {
	return fmt.Sprintf("%d categories, %d posts, %d pages, %d menu items, %d options",
		s.Categories, s.Posts, s.Pages, s.MenuItems, s.Options)
}

// LoadSeed parses a seed file.
func LoadSeed(filename string) (*Seed, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("drakkar: read seed %s: %w", filename, err)
	}
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("drakkar: parse seed %s: %w", filename, err)
	}
	return &s, nil
}

// Validate checks the seed before anything is written.
func (s *Seed) Validate() error {
	for i, c := range s.Categories {
		if err := validation.ValidateStruct(&c,
			validation.Field(&c.Name, validation.Required),
		); err != nil {
			return fmt.Errorf("categories[%d]: %w", i, err)
		}
	}
	for i, p := range s.Posts {
		if err := validation.ValidateStruct(&p,
			validation.Field(&p.Title, validation.Required),
			validation.Field(&p.Date, validation.Required, validation.Date("2006-01-02")),
		); err != nil {
			return fmt.Errorf("posts[%d]: %w", i, err)
		}
	}
	for i, p := range s.Pages {
		if err := validation.ValidateStruct(&p,
			validation.Field(&p.Title, validation.Required),
		); err != nil {
			return fmt.Errorf("pages[%d]: %w", i, err)
		}
	}
	for loc := range s.Menus {
		if !menu.ValidLocation(loc) {
			return fmt.Errorf("menus: unknown location %q", loc)
		}
	}
	for name := range s.Options {
		if _, ok := options.Lookup(name); !ok {
			return fmt.Errorf("options: %w: %s", options.ErrUnknownOption, name)
		}
	}
	return nil
}

// Apply validates the seed and writes it to store. Menus listed in the
// seed replace the stored items of their location.
func (s *Seed) Apply(store *Store) (SeedStats, error) {
	var stats SeedStats
	if err := s.Validate(); err != nil {
		return stats, err
	}

	for _, c := range s.Categories {
		if c.Slug == "" {
			c.Slug = Slugify(c.Name)
		}
		if err := store.SaveCategory(c); err != nil {
			return stats, err
		}
		stats.Categories++
	}

	for _, p := range s.Posts {
		slug := p.Slug
		if slug == "" {
			slug = Slugify(p.Title)
		}
		if err := store.SavePost(Post{
			Slug:       slug,
			Title:      p.Title,
			Date:       p.Date,
			Tags:       FilterEmpty(p.Tags),
			Categories: FilterEmpty(p.Categories),
			Type:       p.Type,
			Summary:    p.Summary,
			Content:    p.Content,
			Published:  !p.Draft,
		}); err != nil {
			return stats, err
		}
		stats.Posts++
	}

	if err := s.applyPages(store, &stats); err != nil {
		return stats, err
	}

	for loc, entries := range s.Menus {
		if err := replaceMenu(store, loc, entries, &stats); err != nil {
			return stats, err
		}
	}

	if len(s.Options) > 0 {
		values := make(map[string]string, len(s.Options))
		for name, raw := range s.Options {
			v, err := options.Sanitize(name, raw)
			if err != nil {
				return stats, err
			}
			values[name] = options.Encode(v)
		}
		if err := store.SetOptions(values); err != nil {
			return stats, err
		}
		stats.Options = len(values)
	}
	return stats, nil
}

func (s *Seed) applyPages(store *Store, stats *SeedStats) error {
	existing, err := store.ListPages(true)
	if err != nil {
		return err
	}
	type key struct {
		parent int64
		slug   string
	}
	ids := make(map[key]int64, len(existing))
	for _, p := range existing {
		ids[key{p.ParentID, p.Slug}] = p.ID
	}
	byPath := map[string]int64{}

	for _, sp := range s.Pages {
		slug := Slugify(sp.Slug)
		if slug == "" {
			slug = Slugify(sp.Title)
		}
		parentPath := strings.Trim(sp.Parent, "/")
		var parentID int64
		if parentPath != "" {
			id, ok := byPath[parentPath]
			if !ok {
				return fmt.Errorf("pages: %q: parent %q must be listed before it", slug, parentPath)
			}
			parentID = id
		}
		id, err := store.SavePage(Page{
			ID:        ids[key{parentID, slug}],
			ParentID:  parentID,
			Slug:      slug,
			Title:     sp.Title,
			Content:   sp.Content,
			Template:  sp.Template,
			MenuOrder: sp.MenuOrder,
			Published: !sp.Draft,
		})
		if err != nil {
			return err
		}
		path := slug
		if parentPath != "" {
			path = parentPath + "/" + slug
		}
		byPath[path] = id
		stats.Pages++
	}
	return nil
}

func replaceMenu(store *Store, loc menu.Location, entries []SeedMenu, stats *SeedStats) error {
	current, err := store.MenuItems(loc)
	if err != nil {
		return err
	}
	for _, it := range current {
		if err := store.DeleteMenuItem(it.ID); err != nil {
			return err
		}
	}
	var add func(parent int64, entries []SeedMenu) error
	add = func(parent int64, entries []SeedMenu) error {
		for i, e := range entries {
			id, err := store.SaveMenuItem(loc, menu.Item{
				ParentID:    parent,
				Position:    i + 1,
				Title:       e.Title,
				URL:         e.URL,
				Classes:     e.Classes,
				IconClass:   e.IconClass,
				ButtonStyle: e.ButtonStyle,
				Description: e.Description,
			})
			if err != nil {
				return err
			}
			stats.MenuItems++
			if err := add(id, e.Children); err != nil {
				return err
			}
		}
		return nil
	}
	return add(0, entries)
}
