package drakkar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drakkar-agro/drakkar/menu"
	"github.com/drakkar-agro/drakkar/options"
)

func TestSeedApply(t *testing.T) {
	s := setupTestStore(t)
	seed, err := LoadSeed("testdata/seed.yaml")
	require.NoError(t, err)

	stats, err := seed.Apply(s)
	require.NoError(t, err)
	assert.Equal(t, SeedStats{Categories: 2, Posts: 2, Pages: 3, MenuItems: 3, Options: 2}, stats)

	post, err := s.GetPost("mapas-de-fertilidade")
	require.NoError(t, err)
	assert.Equal(t, []string{"tecnologia", "solo"}, post.Categories)
	assert.Equal(t, []string{"mapas", "solo"}, post.Tags)

	_, err = s.GetPost("rascunho")
	assert.True(t, errors.Is(err, ErrNotFound), "drafts are not public")

	pages, err := s.ListPages(true)
	require.NoError(t, err)
	var solucoes, drones Page
	for _, p := range pages {
		switch p.Slug {
		case "solucoes":
			solucoes = p
		case "drones":
			drones = p
		}
	}
	assert.Equal(t, solucoes.ID, drones.ParentID)

	items, err := s.MenuItems(menu.Primary)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "primary", items[len(items)-1].ButtonStyle)

	opts, err := s.Options()
	require.NoError(t, err)
	assert.Equal(t, "1", opts["whatsapp_widget_enable"])
	assert.Equal(t, "100", opts["image_quality"], "ranges are clamped")
}

func TestSeedApplyTwiceUpdatesInPlace(t *testing.T) {
	s := setupTestStore(t)
	seed, err := LoadSeed("testdata/seed.yaml")
	require.NoError(t, err)

	_, err = seed.Apply(s)
	require.NoError(t, err)
	_, err = seed.Apply(s)
	require.NoError(t, err)

	pages, err := s.ListPages(true)
	require.NoError(t, err)
	assert.Len(t, pages, 3)

	items, err := s.MenuItems(menu.Primary)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestSeedValidate(t *testing.T) {
	cases := map[string]*Seed{
		"bad date":      {Posts: []SeedPost{{Title: "x", Date: "10/02/2025"}}},
		"missing title": {Pages: []SeedPage{{Slug: "x"}}},
		"bad location":  {Menus: map[menu.Location][]SeedMenu{"sidebar": nil}},
		"bad option":    {Options: map[string]string{"no_such_option": "1"}},
	}
	for name, seed := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, seed.Validate())
		})
	}

	err := (&Seed{Options: map[string]string{"nope": "1"}}).Validate()
	assert.ErrorIs(t, err, options.ErrUnknownOption)
}

func TestSeedParentMustComeFirst(t *testing.T) {
	s := setupTestStore(t)
	seed := &Seed{Pages: []SeedPage{
		{Slug: "drones", Title: "Drones", Parent: "solucoes"},
		{Slug: "solucoes", Title: "Soluções"},
	}}
	_, err := seed.Apply(s)
	assert.ErrorContains(t, err, "must be listed before it")
}
