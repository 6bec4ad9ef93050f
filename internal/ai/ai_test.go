package ai

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samanainn/internal/chat"
)

func TestParseCompletion(t *testing.T) {
	t.Run("fenced json", func(t *testing.T) {
		res, err := ParseCompletion("```json\n{\"message\":\"Hola\",\"intent\":{\"type\":\"activities\",\"confidence\":0.7},\"suggestedQuestions\":[\"a\",\"b\"],\"userPreferences\":{\"budget\":\"bajo\"}}\n```")
		require.NoError(t, err)
		assert.Equal(t, "Hola", res.Message)
		require.NotNil(t, res.Intent)
		assert.Equal(t, chat.TopicActivities, res.Intent.Type)
		assert.Equal(t, []string{"a", "b"}, res.SuggestedQuestions)
		require.NotNil(t, res.UserPreferences)
		assert.Equal(t, "bajo", res.UserPreferences.Budget)
	})

	t.Run("plain text", func(t *testing.T) {
		res, err := ParseCompletion("Samaná es preciosa.")
		require.NoError(t, err)
		assert.Equal(t, "Samaná es preciosa.", res.Message)
		assert.Nil(t, res.Intent)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseCompletion("   ")
		assert.True(t, errors.Is(err, ErrNoCandidates))
	})

	t.Run("json without message", func(t *testing.T) {
		_, err := ParseCompletion(`{"suggestedQuestions":["x"]}`)
		assert.True(t, errors.Is(err, ErrNoCandidates))
	})
}

func TestSystemInstruction(t *testing.T) {
	got := SystemInstruction(chat.TopicTransport, "- Presupuesto: bajo")
	assert.Contains(t, got, "especialista en transporte")
	assert.Contains(t, got, "- Presupuesto: bajo")
	assert.Contains(t, got, `"suggestedQuestions"`)

	fallback := SystemInstruction(chat.TopicGeneral, "")
	assert.True(t, strings.HasPrefix(fallback, "Eres un asistente de viajes"))
	assert.NotContains(t, fallback, "Contexto de la conversación")
}

func TestContextSnippet(t *testing.T) {
	c := chat.Context{
		Intent:          &chat.Intent{Type: chat.TopicAccommodation},
		UserPreferences: chat.Preferences{Budget: "alto", Interests: []string{"playa", "buceo"}},
		LastSearch:      &chat.LastSearch{Type: "accommodation", ResultCount: 4},
	}
	assert.Equal(t,
		"- Intención: accommodation\n- Presupuesto: alto\n- Intereses: playa, buceo\n- Última búsqueda: accommodation, 4 resultados",
		ContextSnippet(c))
	assert.Empty(t, ContextSnippet(chat.Context{}))
}

func TestNewGeminiProviderWithoutKey(t *testing.T) {
	_, err := NewGeminiProvider(t.Context(), "", "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
