package emotion

import "github.com/timmy/contextual/internal/domain"

// Suggestions returns the search suggestions for a category, or an empty
// slice when the category is unknown.
func (c *Catalog) Suggestions(name domain.Category) []string {
	cfg, ok := c.categories[name]
	if !ok {
		return []string{}
	}
	return append([]string{}, cfg.Suggestions...)
}

// Trending returns the global trending suggestions.
func (c *Catalog) Trending() []string {
	return append([]string{}, c.trending...)
}
