package drakkar

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "drakkar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigExpandsEnvAndAppliesDefaults(t *testing.T) {
	t.Setenv("TEST_ADMIN_PASSWORD", "hunter2")
	path := writeConfig(t, `
url: https://drakkar.example/
admin_password: ${TEST_ADMIN_PASSWORD}
session_secret: 0123456789abcdef0123
breadcrumbs:
  home_label: Início
  hide_current: true
post_types:
  case:
    label: Cases
`)
	var cfg SiteConfig
	require.NoError(t, LoadConfig(path, &cfg))

	assert.Equal(t, "hunter2", cfg.AdminPassword)
	assert.Equal(t, "https://drakkar.example", cfg.URL)
	assert.Equal(t, "Drakkar", cfg.Name)
	assert.Equal(t, "Drakkar", cfg.Author)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, 5*time.Minute, cfg.ContentCacheTTL)
	assert.Equal(t, Version, cfg.ThemeVersion)

	opts := cfg.BreadcrumbOptions()
	assert.Equal(t, "Início", opts.HomeLabel)
	assert.True(t, opts.ShowHome)
	assert.False(t, opts.ShowCurrent)
}

func TestLoadConfigValidation(t *testing.T) {
	cases := map[string]string{
		"short secret":     "admin_password: x\nsession_secret: short\n",
		"missing password": "session_secret: 0123456789abcdef\n",
		"bad log level":    "admin_password: x\nsession_secret: 0123456789abcdef\nlog_level: loud\n",
		"reserved type":    "admin_password: x\nsession_secret: 0123456789abcdef\npost_types:\n  page:\n    label: Pages\n",
		"type label":       "admin_password: x\nsession_secret: 0123456789abcdef\npost_types:\n  case: {}\n",
		"archive on blog":  "admin_password: x\nsession_secret: 0123456789abcdef\npost_types:\n  case:\n    label: Cases\n    archive: blog\n",
		"nested on search": "admin_password: x\nsession_secret: 0123456789abcdef\npost_types:\n  case:\n    label: Cases\n    archive: /search/cases/\n",
		"type as route":    "admin_password: x\nsession_secret: 0123456789abcdef\npost_types:\n  category:\n    label: Categories\n",
		"shared archive":   "admin_password: x\nsession_secret: 0123456789abcdef\npost_types:\n  case:\n    label: Cases\n    archive: historias\n  story:\n    label: Stories\n    archive: /historias/\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			var cfg SiteConfig
			assert.Error(t, LoadConfig(writeConfig(t, body), &cfg))
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SITE_NAME", "Drakkar Agro")
	t.Setenv("SITE_URL", "https://drakkar.example")
	t.Setenv("ADMIN_PASSWORD", "hunter2")
	t.Setenv("ADMIN_SESSION_SECRET", "0123456789abcdef")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "Drakkar Agro", cfg.Name)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, "pt-BR", cfg.Language)
}
