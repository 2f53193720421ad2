package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONPlainObject(t *testing.T) {
	raw, ok := extractJSON(`{"type":"Enfermedad","name":"Roya"}`)
	require.True(t, ok)
	assert.Equal(t, `{"type":"Enfermedad","name":"Roya"}`, raw)
}

func TestExtractJSONStripsMarkdownFence(t *testing.T) {
	raw, ok := extractJSON("```json\n{\"type\":\"Plaga\"}\n```")
	require.True(t, ok)
	assert.Equal(t, `{"type":"Plaga"}`, raw)
}

func TestExtractJSONIgnoresSurroundingProse(t *testing.T) {
	raw, ok := extractJSON(`Claro, aquí está el resultado: {"name":"Antracnosis"} espero que ayude`)
	require.True(t, ok)
	assert.Equal(t, `{"name":"Antracnosis"}`, raw)
}

func TestExtractJSONNoObject(t *testing.T) {
	_, ok := extractJSON("no puedo analizar esta imagen")
	assert.False(t, ok)
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, clamp01(-0.3))
	assert.Equal(t, 1.0, clamp01(1.7))
	assert.Equal(t, 0.42, clamp01(0.42))
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), "", "")
	assert.Error(t, err)
}
