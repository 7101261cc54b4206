package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmotionMappingTargetsAreBuiltin(t *testing.T) {
	for label, c := range EmotionMapping {
		assert.Truef(t, c.IsBuiltin(), "label %q maps to unknown category %q", label, c)
	}
}

func TestMapLabel(t *testing.T) {
	tests := []struct {
		label string
		want  Category
	}{
		{"annoyance", CategoryAnger},
		{"excitement", CategoryJoy},
		{"  Amusement ", CategoryFunny},
		{"neutral", CategoryNeutral},
		{"something-new", CategoryNeutral},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, MapLabel(tt.label))
		})
	}
}

func TestProviderErrorsUnwrap(t *testing.T) {
	for _, err := range []error{ErrEmbeddingUnavailable, ErrIndexUnavailable, ErrClassifierUnavailable} {
		assert.ErrorIs(t, err, ErrProviderUnavailable)
	}
	assert.NotErrorIs(t, ErrNotFound, ErrProviderUnavailable)
}
