package emotion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/contextual/internal/domain"
)

const sampleCatalog = `
categories:
  Coding:
    anchors: [code, bug, compile, deploy]
    suggestions: [hacker typing, it works]
  joy:
    anchors: [happy, yay]
    suggestions: [happy dance]
  standup:
    anchors: [meeting, standup]
    suggestions: [zoom fatigue]
trending: [vibing, cat, ""]
`

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)

	assert.Equal(t, []domain.Category{domain.CategoryCoding, domain.CategoryJoy, "standup"}, c.Categories())
	assert.Equal(t, []string{"hacker typing", "it works"}, c.Suggestions(domain.CategoryCoding))
	assert.Equal(t, []string{"zoom fatigue"}, c.Suggestions("standup"))
	assert.Equal(t, []string{"meeting", "standup"}, c.Anchors("standup"))
	assert.Equal(t, []string{"vibing", "cat"}, c.Trending())
}

func TestParseCatalog_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"duplicate after normalization", "categories:\n  joy: {}\n  ' JOY': {}\n"},
		{"empty name", "categories:\n  '  ': {}\n"},
		{"categories not a mapping", "categories: [joy]\n"},
		{"bad yaml", "categories: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadCatalog_MissingFileIsEmpty(t *testing.T) {
	c, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, c.Categories())
	assert.Equal(t, []string{}, c.Suggestions(domain.CategoryJoy))
	assert.Equal(t, []string{}, c.Trending())
}

func TestLoadCatalog_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emotions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.True(t, c.Has(domain.CategoryCoding))
	assert.False(t, c.Has(domain.CategoryAnger))
}

func TestSuggestions_UnknownAndCopy(t *testing.T) {
	c := NewCatalog(map[domain.Category]CategoryConfig{
		domain.CategoryLove: {Suggestions: []string{"heart"}},
	}, nil)

	assert.Equal(t, []string{}, c.Suggestions("mystery"))

	got := c.Suggestions(domain.CategoryLove)
	got[0] = "mutated"
	assert.Equal(t, []string{"heart"}, c.Suggestions(domain.CategoryLove))
}

func TestNewCatalog_Order(t *testing.T) {
	c := NewCatalog(map[domain.Category]CategoryConfig{
		"zeta":                {},
		domain.CategoryCoding: {},
		"alpha":               {},
		domain.CategoryAnger:  {},
	}, nil)
	assert.Equal(t, []domain.Category{domain.CategoryAnger, domain.CategoryCoding, "alpha", "zeta"}, c.Categories())
}
