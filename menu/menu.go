// Package menu renders the site's navigation menus. Each menu location
// has a walker: a function from an item and its depth to the markup
// around it. Walkers are plain values, so adding a location means adding
// a function rather than a type hierarchy.
package menu

import (
	"context"
	"io"
	"sort"
	"strings"

	"github.com/a-h/templ"
)

// Location identifies where a menu is displayed.
type Location string

const (
	Primary Location = "primary"
	Footer  Location = "footer"
	Mobile  Location = "mobile"
	Social  Location = "social"
)

// Locations lists every registered location with its admin label.
var Locations = []struct {
	Location Location
	Label    string
}{
	{Primary, "Primary Menu"},
	{Footer, "Footer Menu"},
	{Mobile, "Mobile Menu"},
	{Social, "Social Links"},
}

// ValidLocation reports whether l is registered.
func ValidLocation(l Location) bool {
	for _, x := range Locations {
		if x.Location == l {
			return true
		}
	}
	return false
}

// Item is one stored menu entry. ParentID is zero for top-level items.
type Item struct {
	ID          int64
	ParentID    int64
	Position    int
	Title       string
	URL         string
	Classes     []string
	IconClass   string
	ButtonStyle string // "", "primary", "secondary" or "outline"
	Description string
}

// Node is an item with its children, ready to walk.
type Node struct {
	Item
	Children []*Node
}

// Tree arranges items into a forest ordered by Position. Items whose
// parent is missing become top-level.
func Tree(items []Item) []*Node {
	nodes := make(map[int64]*Node, len(items))
	for _, it := range items {
		nodes[it.ID] = &Node{Item: it}
	}
	var roots []*Node
	for _, it := range items {
		n := nodes[it.ID]
		if parent, ok := nodes[it.ParentID]; ok && it.ParentID != 0 && it.ParentID != it.ID {
			parent.Children = append(parent.Children, n)
		} else {
			roots = append(roots, n)
		}
	}
	sortNodes(roots)
	return roots
}

func sortNodes(ns []*Node) {
	sort.SliceStable(ns, func(i, j int) bool { return ns[i].Position < ns[j].Position })
	for _, n := range ns {
		sortNodes(n.Children)
	}
}

// ElementFunc returns the opening markup for n at depth; the walker closes
// the element with </li> after any children.
type ElementFunc func(n *Node, depth int) string

// Walker describes how one location is rendered.
type Walker struct {
	Element        ElementFunc
	MaxDepth       int
	MenuClass      string
	ContainerClass string
	ContainerID    string
}

// Walkers maps each location to its walker.
var Walkers = map[Location]Walker{
	Primary: {Element: primaryElement, MaxDepth: 3, MenuClass: "primary-nav__menu", ContainerClass: "primary-navigation", ContainerID: "primary-navigation"},
	Mobile:  {Element: primaryElement, MaxDepth: 3, MenuClass: "mobile-nav__menu", ContainerClass: "mobile-navigation"},
	Footer:  {Element: simpleElement, MaxDepth: 1, MenuClass: "footer-nav__menu", ContainerClass: "footer-navigation"},
	Social:  {Element: socialElement, MaxDepth: 1, MenuClass: "social-nav__menu", ContainerClass: "social-navigation"},
}

// Walk renders the forest with w and returns the HTML.
func Walk(w Walker, roots []*Node) string {
	var b strings.Builder
	b.WriteString(`<nav class="` + templ.EscapeString(w.ContainerClass) + `"`)
	if w.ContainerID != "" {
		b.WriteString(` id="` + templ.EscapeString(w.ContainerID) + `"`)
	}
	b.WriteString(`><ul class="` + templ.EscapeString(w.MenuClass) + `">`)
	walkLevel(&b, w, roots, 0)
	b.WriteString(`</ul></nav>`)
	return b.String()
}

func walkLevel(b *strings.Builder, w Walker, nodes []*Node, depth int) {
	for _, n := range nodes {
		b.WriteString(w.Element(n, depth))
		if len(n.Children) > 0 && (w.MaxDepth <= 0 || depth+1 < w.MaxDepth) {
			b.WriteString(`<ul class="sub-menu">`)
			walkLevel(b, w, n.Children, depth+1)
			b.WriteString(`</ul>`)
		}
		b.WriteString("</li>\n")
	}
}

// Render returns the component for location. An empty primary menu falls
// back to the section anchors of the front page.
func Render(location Location, items []Item) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		walker, ok := Walkers[location]
		if !ok {
			return nil
		}
		if len(items) == 0 {
			if location != Primary {
				return nil
			}
			items = Fallback
		}
		_, err := io.WriteString(w, Walk(walker, Tree(items)))
		return err
	})
}

// Fallback is shown when no primary menu items are stored.
var Fallback = []Item{
	{ID: 1, Position: 1, Title: "Online Farming", URL: "#lavoura-online"},
	{ID: 2, Position: 2, Title: "Precision Agriculture", URL: "#agricultura-precisao"},
	{ID: 3, Position: 3, Title: "Success Stories", URL: "#historias-sucesso"},
	{ID: 4, Position: 4, Title: "About Drakkar", URL: "#a-drakkar"},
	{ID: 5, Position: 5, Title: "Newsletter", URL: "#newsletter"},
}

func classAttr(classes []string) string {
	var kept []string
	for _, c := range classes {
		if c = strings.TrimSpace(c); c != "" {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return ` class="` + templ.EscapeString(strings.Join(kept, " ")) + `"`
}

func href(u string) string {
	return templ.EscapeString(string(templ.URL(u)))
}

func primaryElement(n *Node, depth int) string {
	classes := append([]string{"menu-item"}, n.Classes...)
	if len(n.Children) > 0 {
		classes = append(classes, "menu-item-has-children")
	}
	if n.ButtonStyle != "" {
		classes = append(classes, "menu-item-button", "menu-item-button--"+n.ButtonStyle)
	}
	if n.IconClass != "" {
		classes = append(classes, "menu-item-with-icon")
	}
	var b strings.Builder
	b.WriteString("<li" + classAttr(classes) + `><a href="` + href(n.URL) + `"`)
	if n.IconClass != "" {
		b.WriteString(` data-icon="` + templ.EscapeString(n.IconClass) + `"`)
	}
	if n.Description != "" {
		b.WriteString(` data-description="` + templ.EscapeString(n.Description) + `"`)
	}
	b.WriteString(">" + templ.EscapeString(n.Title) + "</a>")
	return b.String()
}

func simpleElement(n *Node, depth int) string {
	return "<li" + classAttr(n.Classes) + `><a href="` + href(n.URL) + `">` + templ.EscapeString(n.Title) + "</a>"
}

func socialElement(n *Node, depth int) string {
	classes := append(append([]string{}, n.Classes...), "social-item")
	network := DetectNetwork(n.URL)
	if network != "" {
		classes = append(classes, "social-item--"+network)
	}
	return "<li" + classAttr(classes) + `><a href="` + href(n.URL) + `" target="_blank" rel="noopener noreferrer">` +
		Icon(network) + templ.EscapeString(n.Title) + "</a>"
}
