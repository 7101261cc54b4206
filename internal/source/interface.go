package source

import (
	"context"

	"github.com/timmy/contextual/internal/domain"
)

// Item is a raw provider result. Provider payloads are loosely structured,
// so fields are read defensively during normalization.
type Item map[string]interface{}

// ContentProvider is an external keyword-search backend for GIFs.
type ContentProvider interface {
	// GetSourceID returns the unique identifier for this provider.
	GetSourceID() string

	// Search runs a keyword search. Auth failures yield an empty slice, not an error.
	Search(ctx context.Context, query string, limit int) ([]Item, error)

	// Featured returns the provider's currently trending items.
	Featured(ctx context.Context, limit int) ([]Item, error)

	// Normalize converts a raw item into a MediaResult. ok is false when the
	// item has no usable id.
	Normalize(item Item) (media domain.MediaResult, ok bool)
}

// String returns item[key] when it is a string, else "".
func (i Item) String(key string) string {
	s, _ := i[key].(string)
	return s
}

// Map returns item[key] when it is an object, else nil.
func (i Item) Map(key string) Item {
	switch m := i[key].(type) {
	case map[string]interface{}:
		return Item(m)
	case Item:
		return m
	}
	return nil
}

// Ints reads item[key] as a list of integers. JSON numbers decode as float64.
func (i Item) Ints(key string) []int {
	raw, ok := i[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, v := range raw {
		switch n := v.(type) {
		case float64:
			out = append(out, int(n))
		case int:
			out = append(out, n)
		default:
			return nil
		}
	}
	return out
}
