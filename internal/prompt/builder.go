package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadTemplate marks a template missing a required substitution point.
// This is a corpus/config integrity failure, caught at construction.
var ErrBadTemplate = errors.New("prompt template missing required placeholder")

const (
	contextHole  = "{context}"
	questionHole = "{question}"

	// FallbackLanguage serves any language without a template of its own.
	FallbackLanguage = "en"
)

// Builder selects a language-specific instruction template and fills its
// {context} and {question} holes. The template map is built once and never
// mutated afterwards.
type Builder struct {
	templates map[string]string
}

func NewBuilder() (*Builder, error) {
	return NewBuilderWithTemplates(defaultTemplates())
}

func NewBuilderWithTemplates(templates map[string]string) (*Builder, error) {
	if _, ok := templates[FallbackLanguage]; !ok {
		return nil, fmt.Errorf("%w: no %q template to fall back to", ErrBadTemplate, FallbackLanguage)
	}
	for lang, tmpl := range templates {
		if !strings.Contains(tmpl, contextHole) {
			return nil, fmt.Errorf("%w: %q lacks %s", ErrBadTemplate, lang, contextHole)
		}
		if !strings.Contains(tmpl, questionHole) {
			return nil, fmt.Errorf("%w: %q lacks %s", ErrBadTemplate, lang, questionHole)
		}
	}

	owned := make(map[string]string, len(templates))
	for k, v := range templates {
		owned[k] = v
	}
	return &Builder{templates: owned}, nil
}

// Build substitutes context and question into the template for language.
// Unknown languages fall back to English; that is deliberate, not an error.
func (b *Builder) Build(language, context, question string) string {
	tmpl, ok := b.templates[language]
	if !ok {
		tmpl = b.templates[FallbackLanguage]
	}

	out := strings.ReplaceAll(tmpl, contextHole, context)
	return strings.ReplaceAll(out, questionHole, question)
}

// Languages lists the codes with a dedicated or aliased template.
func (b *Builder) Languages() []string {
	langs := make([]string, 0, len(b.templates))
	for lang := range b.templates {
		langs = append(langs, lang)
	}
	return langs
}
