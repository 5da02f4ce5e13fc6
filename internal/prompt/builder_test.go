package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuilder(t *testing.T) {
	b, err := NewBuilder()
	require.NoError(t, err)
	assert.Contains(t, b.Languages(), "en")
	assert.Contains(t, b.Languages(), "fr")
	assert.Contains(t, b.Languages(), "jp")
}

func TestNewBuilderWithTemplates_Validation(t *testing.T) {
	tests := []struct {
		name      string
		templates map[string]string
		wantErr   bool
	}{
		{
			name:      "Valid",
			templates: map[string]string{"en": "C: {context} Q: {question}"},
		},
		{
			name:      "Missing Context Hole",
			templates: map[string]string{"en": "Q: {question}"},
			wantErr:   true,
		},
		{
			name:      "Missing Question Hole",
			templates: map[string]string{"en": "C: {context}"},
			wantErr:   true,
		},
		{
			name: "Malformed Non-Default Language",
			templates: map[string]string{
				"en": "C: {context} Q: {question}",
				"fr": "no holes at all",
			},
			wantErr: true,
		},
		{
			name:      "No Fallback Template",
			templates: map[string]string{"fr": "C: {context} Q: {question}"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilderWithTemplates(tt.templates)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadTemplate)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuild_Substitution(t *testing.T) {
	b, err := NewBuilder()
	require.NoError(t, err)

	out := b.Build("en", "THE CONTEXT", "What is Casper?")
	assert.Contains(t, out, "THE CONTEXT")
	assert.Contains(t, out, "What is Casper?")
	assert.NotContains(t, out, "{context}")
	assert.NotContains(t, out, "{question}")
}

func TestBuild_LanguageSelection(t *testing.T) {
	b, err := NewBuilder()
	require.NoError(t, err)

	t.Run("French Template", func(t *testing.T) {
		out := b.Build("fr", "ctx", "q")
		assert.Contains(t, out, "CONTEXTE FOURNI")
		assert.Contains(t, out, "Question de l'utilisateur")
	})

	t.Run("Unknown Language Falls Back To English", func(t *testing.T) {
		unknown := b.Build("xx-unknown", "ctx", "q")
		english := b.Build("en", "ctx", "q")
		assert.Equal(t, english, unknown)
	})

	t.Run("Aliased Language Uses English Text", func(t *testing.T) {
		out := b.Build("de", "ctx", "q")
		assert.True(t, strings.Contains(out, "PROVIDED CONTEXT"))
	})
}
