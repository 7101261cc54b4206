package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextFieldsReachOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(&EnvConfig{Level: "debug", Format: "json", ServiceName: "test", Output: &buf})

	ctx := l.WithContext(context.Background())
	ctx = WithFields(ctx, Fields{FieldRequestID: "req-1", FieldComponent: "search"})
	With(Fields{FieldCount: 3}).Info(ctx, "Search completed: query=%q", "hi")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-1", line[FieldRequestID])
	assert.Equal(t, "search", line[FieldComponent])
	assert.Equal(t, float64(3), line[FieldCount])
	assert.Equal(t, "test", line["service"])
	assert.Equal(t, `Search completed: query="hi"`, line["message"])
	assert.Equal(t, "req-1", GetRequestID(ctx))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, GetDefault(), FromContext(context.Background()))
	assert.Same(t, GetDefault(), FromContext(nil)) //nolint:staticcheck // nil context is handled
}
