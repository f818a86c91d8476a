package drakkar

import (
	"fmt"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/labstack/gommon/log"
	"gopkg.in/yaml.v3"

	"github.com/drakkar-agro/drakkar/breadcrumb"
	"github.com/drakkar-agro/drakkar/content"
)

// SiteConfig holds all configuration for a drakkar site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Drakkar")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags
	Author      string `yaml:"author"`      // Organization name for JSON-LD (default Name)
	Logo        string `yaml:"logo"`        // Logo URL for JSON-LD
	Language    string `yaml:"language"`    // html lang attribute (default "pt-BR")

	Addr         string `yaml:"addr"`          // Listen address (default ":3000")
	DatabasePath string `yaml:"database_path"` // SQLite path (default "data/drakkar.db")
	UploadsDir   string `yaml:"uploads_dir"`   // Served under /public (default "public")

	AdminPassword string `yaml:"admin_password"` // Required: admin login password
	SessionSecret string `yaml:"session_secret"` // Required: session encryption secret
	CookieSecure  bool   `yaml:"cookie_secure"`  // Set true for HTTPS

	ContentCacheTTL time.Duration `yaml:"content_cache_ttl"` // default 5min
	LogLevel        string        `yaml:"log_level"`         // debug|info|warn|error (default info)

	// ThemeVersion versions assets missing from the manifest.
	ThemeVersion string `yaml:"theme_version"`
	// AssetsDir, when set, serves theme assets from disk instead of the
	// embedded copy. Its manifest.json is watched and reloaded on change.
	AssetsDir string `yaml:"assets_dir"`

	Breadcrumbs BreadcrumbConfig          `yaml:"breadcrumbs"`
	PostTypes   map[string]PostTypeConfig `yaml:"post_types"`
	// Options are theme option defaults applied beneath stored values.
	Options map[string]string `yaml:"options"`
}

// BreadcrumbConfig overrides the trail defaults.
type BreadcrumbConfig struct {
	HomeLabel   string `yaml:"home_label"`
	Separator   string `yaml:"separator"`
	HideHome    bool   `yaml:"hide_home"`
	HideCurrent bool   `yaml:"hide_current"`
}

// PostTypeConfig registers a non-default post type and its archive.
type PostTypeConfig struct {
	Label   string `yaml:"label"`
	Archive string `yaml:"archive"`
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Drakkar"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Author == "" {
		c.Author = c.Name
	}
	if c.Language == "" {
		c.Language = "pt-BR"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/drakkar.db"
	}
	if c.UploadsDir == "" {
		c.UploadsDir = "public"
	}
	if c.ContentCacheTTL == 0 {
		c.ContentCacheTTL = 5 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ThemeVersion == "" {
		c.ThemeVersion = Version
	}
}

// Validate checks the configuration after defaults are applied.
func (c *SiteConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required, is.URL),
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.DatabasePath, validation.Required),
		validation.Field(&c.AdminPassword, validation.Required),
		validation.Field(&c.SessionSecret, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	); err != nil {
		return err
	}
	return c.validatePostTypes()
}

// validatePostTypes checks post type names and that every archive path is
// free.
func (c *SiteConfig) validatePostTypes() error {
	archives := make(map[string]string, len(c.PostTypes))
	for name, pt := range c.PostTypes {
		if name == "" || name == "post" || name == "page" {
			return fmt.Errorf("post_types: %q is reserved", name)
		}
		if err := validation.ValidateStruct(&pt,
			validation.Field(&pt.Label, validation.Required),
		); err != nil {
			return fmt.Errorf("post_types.%s: %w", name, err)
		}
		archive := postTypeArchive(name, pt)
		if first := strings.SplitN(strings.Trim(archive, "/"), "/", 2)[0]; reservedPaths[first] {
			return fmt.Errorf("post_types.%s: archive %s collides with a built-in route", name, archive)
		}
		if other, ok := archives[archive]; ok {
			return fmt.Errorf("post_types.%s: archive %s is already used by %s", name, archive, other)
		}
		archives[archive] = name
	}
	return nil
}

// reservedPaths are first path segments owned by built-in routes.
var reservedPaths = map[string]bool{
	"":            true,
	"blog":        true,
	"category":    true,
	"tag":         true,
	"search":      true,
	"contact":     true,
	"admin":       true,
	"assets":      true,
	"public":      true,
	"sitemap.xml": true,
	"feed.xml":    true,
	"robots.txt":  true,
	"favicon.svg": true,
}

// BreadcrumbOptions converts the trail configuration.
func (c *SiteConfig) BreadcrumbOptions() breadcrumb.Options {
	opts := breadcrumb.DefaultOptions()
	if c.Breadcrumbs.HomeLabel != "" {
		opts.HomeLabel = c.Breadcrumbs.HomeLabel
	}
	if c.Breadcrumbs.Separator != "" {
		opts.Separator = c.Breadcrumbs.Separator
	}
	opts.ShowHome = !c.Breadcrumbs.HideHome
	opts.ShowCurrent = !c.Breadcrumbs.HideCurrent
	return opts
}

func (c *SiteConfig) logLevel() log.Lvl {
	switch c.LogLevel {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	}
	return log.INFO
}

// LoadConfig reads a YAML configuration file into cfg, expanding ${VAR}
// references from the environment. Defaults are applied before validation.
func LoadConfig(filename string, cfg *SiteConfig) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("drakkar: read config %s: %w", filename, err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return fmt.Errorf("drakkar: parse config %s: %w", filename, err)
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("drakkar: config validation failed: %w", err)
	}
	return nil
}

// ConfigFromEnv builds a configuration from environment variables, for
// deployments that run without a config file.
func ConfigFromEnv() (SiteConfig, error) {
	cfg := SiteConfig{
		Name:          os.Getenv("SITE_NAME"),
		URL:           os.Getenv("SITE_URL"),
		Description:   os.Getenv("SITE_DESCRIPTION"),
		Author:        os.Getenv("SITE_AUTHOR"),
		Addr:          os.Getenv("ADDR"),
		DatabasePath:  os.Getenv("DATABASE_PATH"),
		UploadsDir:    os.Getenv("UPLOADS_DIR"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		SessionSecret: os.Getenv("ADMIN_SESSION_SECRET"),
		CookieSecure:  os.Getenv("COOKIE_SECURE") == "true",
		LogLevel:      os.Getenv("LOG_LEVEL"),
		AssetsDir:     os.Getenv("ASSETS_DIR"),
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("drakkar: config validation failed: %w", err)
	}
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithShortcode registers an extra content shortcode.
func WithShortcode(name string, sc content.Shortcode) Option {
	return func(a *App) {
		a.shortcodes[name] = sc
	}
}
