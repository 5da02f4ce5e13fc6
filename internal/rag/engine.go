// Package rag composes retrieval, context assembly, prompt building and
// the LLM provider into one ask(question) -> answer+sources operation.
package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"casperlearn/backend/internal/llm"
	"casperlearn/backend/internal/prompt"
	"casperlearn/backend/internal/retrieval"
)

// Stage wrappers let the boundary layer tell "no relevant docs" apart
// from "LLM unavailable".
var (
	ErrRetrieval  = errors.New("retrieval stage failed")
	ErrGeneration = errors.New("generation stage failed")
)

const (
	DefaultLanguage = "en"
	DefaultNContext = 5

	systemMessage = "You are an expert assistant for Casper Network development."

	answerTemperature = 0.3
	answerMaxTokens   = 2048
)

// Retriever is the retrieval capability the engine depends on.
type Retriever interface {
	Retrieve(ctx context.Context, query string, nResults int) ([]retrieval.RetrievedContext, error)
	Count(ctx context.Context) (int, error)
}

type Source struct {
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	Relevance float64 `json:"relevance"`
}

// AnswerResult is returned to the caller and never persisted by the engine.
type AnswerResult struct {
	Answer   string   `json:"answer"`
	Sources  []Source `json:"sources"`
	Language string   `json:"language"`
}

type Stats struct {
	TotalDocuments int    `json:"total_documents"`
	CollectionName string `json:"collection_name"`
}

// Engine is stateless between requests; each call may run concurrently
// with others. All collaborators are read-only after construction.
type Engine struct {
	retriever  Retriever
	assembler  *prompt.Assembler
	builder    *prompt.Builder
	provider   llm.Provider
	collection string
}

func NewEngine(retriever Retriever, assembler *prompt.Assembler, builder *prompt.Builder, provider llm.Provider, collection string) *Engine {
	return &Engine{
		retriever:  retriever,
		assembler:  assembler,
		builder:    builder,
		provider:   provider,
		collection: collection,
	}
}

// Ask retrieves nContext chunks, assembles them into a prompt for language,
// and asks the configured provider for a grounded answer. Sources mirror
// the retrieved contexts 1:1 in retrieval order.
func (e *Engine) Ask(ctx context.Context, question, language string, nContext int) (*AnswerResult, error) {
	contexts, language, err := e.prepare(ctx, question, language, &nContext)
	if err != nil {
		return nil, err
	}

	messages := e.messages(language, contexts, question)

	answer, err := e.provider.Complete(ctx, messages, answerTemperature, answerMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	slog.InfoContext(ctx, "answer generated",
		"question_len", len(question), "language", language,
		"contexts", len(contexts), "answer_len", len(answer))

	return &AnswerResult{
		Answer:   answer,
		Sources:  sourcesFrom(contexts),
		Language: language,
	}, nil
}

// AskStream is Ask with a streamed answer. The caller owns the stream and
// must Close it; sources are available before the first segment arrives.
func (e *Engine) AskStream(ctx context.Context, question, language string, nContext int) (*llm.Stream, []Source, error) {
	contexts, language, err := e.prepare(ctx, question, language, &nContext)
	if err != nil {
		return nil, nil, err
	}

	stream, err := e.provider.StreamComplete(ctx, e.messages(language, contexts, question), answerTemperature)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	return stream, sourcesFrom(contexts), nil
}

// Search is retrieval-only, no generation.
func (e *Engine) Search(ctx context.Context, query string, nResults int) ([]retrieval.RetrievedContext, error) {
	if nResults <= 0 {
		nResults = DefaultNContext
	}
	contexts, err := e.retriever.Retrieve(ctx, query, nResults)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}
	return contexts, nil
}

func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	count, err := e.retriever.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}
	return &Stats{TotalDocuments: count, CollectionName: e.collection}, nil
}

func (e *Engine) prepare(ctx context.Context, question, language string, nContext *int) ([]retrieval.RetrievedContext, string, error) {
	if language == "" {
		language = DefaultLanguage
	}
	if *nContext <= 0 {
		*nContext = DefaultNContext
	}

	contexts, err := e.retriever.Retrieve(ctx, question, *nContext)
	if err != nil {
		return nil, language, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}
	return contexts, language, nil
}

func (e *Engine) messages(language string, contexts []retrieval.RetrievedContext, question string) []llm.Message {
	userPrompt := e.builder.Build(language, e.assembler.Format(contexts), question)
	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemMessage},
		{Role: llm.RoleUser, Content: userPrompt},
	}
}

func sourcesFrom(contexts []retrieval.RetrievedContext) []Source {
	sources := make([]Source, 0, len(contexts))
	for _, c := range contexts {
		sources = append(sources, Source{Title: c.Title, URL: c.URL, Relevance: c.Relevance})
	}
	return sources
}
