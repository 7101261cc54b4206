package domain

import "strings"

// Category is an emotion/context bucket a conversation can be classified into.
type Category string

// Built-in categories. Configuration may add custom ones.
const (
	CategoryAnger     Category = "anger"
	CategoryJoy       Category = "joy"
	CategoryConfusion Category = "confusion"
	CategoryWaiting   Category = "waiting"
	CategoryTired     Category = "tired"
	CategoryCoding    Category = "coding"
	CategoryFunny     Category = "funny"
	CategoryLove      Category = "love"
	CategorySadness   Category = "sadness"
	CategoryShock     Category = "shock"
	CategoryNeutral   Category = "neutral"
)

// BuiltinCategories lists the fixed category set in a stable order.
var BuiltinCategories = []Category{
	CategoryAnger,
	CategoryJoy,
	CategoryConfusion,
	CategoryWaiting,
	CategoryTired,
	CategoryCoding,
	CategoryFunny,
	CategoryLove,
	CategorySadness,
	CategoryShock,
	CategoryNeutral,
}

// EmotionMapping folds the classifier's GoEmotions labels onto categories.
// Labels missing from the table resolve to neutral.
var EmotionMapping = map[string]Category{
	"admiration":     CategoryLove,
	"amusement":      CategoryFunny,
	"anger":          CategoryAnger,
	"annoyance":      CategoryAnger,
	"approval":       CategoryJoy,
	"caring":         CategoryLove,
	"confusion":      CategoryConfusion,
	"curiosity":      CategoryConfusion,
	"desire":         CategoryLove,
	"disappointment": CategorySadness,
	"disapproval":    CategoryAnger,
	"disgust":        CategoryAnger,
	"embarrassment":  CategorySadness,
	"excitement":     CategoryJoy,
	"fear":           CategoryShock,
	"gratitude":      CategoryLove,
	"grief":          CategorySadness,
	"joy":            CategoryJoy,
	"love":           CategoryLove,
	"nervousness":    CategoryShock,
	"optimism":       CategoryJoy,
	"pride":          CategoryJoy,
	"realization":    CategoryShock,
	"relief":         CategoryJoy,
	"remorse":        CategorySadness,
	"sadness":        CategorySadness,
	"surprise":       CategoryShock,
	"neutral":        CategoryNeutral,
}

// NormalizeCategory trims and lower-cases a category name.
func NormalizeCategory(name string) Category {
	return Category(strings.ToLower(strings.TrimSpace(name)))
}

// IsBuiltin reports whether c belongs to the fixed category set.
func (c Category) IsBuiltin() bool {
	for _, b := range BuiltinCategories {
		if b == c {
			return true
		}
	}
	return false
}

// MapLabel resolves a raw classifier label to a category.
func MapLabel(label string) Category {
	if c, ok := EmotionMapping[strings.ToLower(strings.TrimSpace(label))]; ok {
		return c
	}
	return CategoryNeutral
}
