// Package emotion classifies the tone of a conversation and maps the
// resulting category to GIF search suggestions.
package emotion

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/timmy/contextual/internal/domain"
	"github.com/timmy/contextual/internal/logger"
	"gopkg.in/yaml.v3"
)

// CategoryConfig is the per-category section of the emotion configuration.
type CategoryConfig struct {
	Anchors     []string `yaml:"anchors"`
	Suggestions []string `yaml:"suggestions"`
}

// Catalog is the validated emotion configuration. Read-only after load.
type Catalog struct {
	order      []domain.Category
	categories map[domain.Category]CategoryConfig
	trending   []string
}

type catalogFile struct {
	Categories yaml.Node `yaml:"categories"`
	Trending   []string  `yaml:"trending"`
}

// EmptyCatalog returns a catalog with no categories and no trending list.
func EmptyCatalog() *Catalog {
	return &Catalog{categories: make(map[domain.Category]CategoryConfig)}
}

// LoadCatalog reads the emotion configuration at path. A missing file
// yields an empty catalog.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("Emotion configuration not found, using empty mapping: path=%s", path)
		return EmptyCatalog(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read emotion configuration: %w", err)
	}

	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Info("Emotion configuration loaded: path=%s, categories=%d", path, len(c.order))
	return c, nil
}

// ParseCatalog decodes and validates a YAML emotion configuration.
// Category names are trimmed and lower-cased; names outside the built-in
// set are kept as custom categories.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid emotion configuration: %w", err)
	}

	c := EmptyCatalog()
	c.trending = nonEmpty(f.Trending)

	if f.Categories.Kind == 0 {
		return c, nil
	}
	if f.Categories.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("categories must be a mapping, got line %d", f.Categories.Line)
	}

	nodes := f.Categories.Content
	for i := 0; i+1 < len(nodes); i += 2 {
		keyNode, valNode := nodes[i], nodes[i+1]

		name := domain.NormalizeCategory(keyNode.Value)
		if name == "" {
			return nil, fmt.Errorf("line %d: empty category name", keyNode.Line)
		}
		if _, dup := c.categories[name]; dup {
			return nil, fmt.Errorf("line %d: duplicate category %q", keyNode.Line, name)
		}

		var cfg CategoryConfig
		if err := valNode.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}
		cfg.Anchors = nonEmpty(cfg.Anchors)
		cfg.Suggestions = nonEmpty(cfg.Suggestions)

		if !name.IsBuiltin() {
			logger.Info("Custom emotion category: name=%s, anchors=%d", name, len(cfg.Anchors))
		}

		c.order = append(c.order, name)
		c.categories[name] = cfg
	}

	return c, nil
}

// NewCatalog builds a catalog in code. Categories keep the order given by
// Categories(); used by tests and embedders of the package.
func NewCatalog(categories map[domain.Category]CategoryConfig, trending []string) *Catalog {
	c := EmptyCatalog()
	for name := range categories {
		c.order = append(c.order, name)
	}
	sort.Slice(c.order, func(i, j int) bool { return categoryLess(c.order[i], c.order[j]) })
	for name, cfg := range categories {
		c.categories[name] = cfg
	}
	c.trending = trending
	return c
}

// categoryLess orders built-ins by their canonical position, then custom names alphabetically.
func categoryLess(a, b domain.Category) bool {
	ia, ib := builtinIndex(a), builtinIndex(b)
	if ia != ib {
		return ia < ib
	}
	return a < b
}

func builtinIndex(c domain.Category) int {
	for i, b := range domain.BuiltinCategories {
		if b == c {
			return i
		}
	}
	return len(domain.BuiltinCategories)
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Categories returns every configured category in configuration order.
func (c *Catalog) Categories() []domain.Category {
	return append([]domain.Category(nil), c.order...)
}

// Has reports whether the category is configured.
func (c *Catalog) Has(name domain.Category) bool {
	_, ok := c.categories[name]
	return ok
}

// Anchors returns the anchor keywords of a category.
func (c *Catalog) Anchors(name domain.Category) []string {
	return c.categories[name].Anchors
}
