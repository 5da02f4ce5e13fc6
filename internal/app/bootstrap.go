package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	"casperlearn/backend/internal/adapter/gemini"
	wstore "casperlearn/backend/internal/adapter/weaviate"
	"casperlearn/backend/internal/config"
	"casperlearn/backend/internal/llm"
	"casperlearn/backend/internal/prompt"
	"casperlearn/backend/internal/rag"
	"casperlearn/backend/internal/retrieval"
	"casperlearn/backend/internal/text"
	"casperlearn/backend/internal/vector"
)

// Runtime holds the wired collaborators for one process. Construction
// failures split two ways: configuration and credential problems are
// returned as errors and abort startup, while an unreachable vector
// store yields a degraded Readiness so the server can still come up and
// report its own state.
type Runtime struct {
	Readiness rag.Readiness

	Store    *wstore.Store
	Embedder *gemini.Embedder
	Chunker  *text.Chunker

	EmbeddingModel string
	LLMModel       string
}

func Bootstrap(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	chunker, err := text.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	embedder, err := gemini.NewEmbedder(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("gemini embedder: %w", err)
	}

	provider, model, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}

	builder, err := prompt.NewBuilder()
	if err != nil {
		return nil, err
	}

	wClient, err := weaviate.NewClient(weaviate.Config{
		Host:   cfg.WeaviateHost,
		Scheme: cfg.WeaviateScheme,
	})
	if err != nil {
		return nil, fmt.Errorf("weaviate client: %w", err)
	}

	className := vector.ClassName(cfg.CollectionName)
	store := wstore.NewStore(wClient, embedder, className)

	rt := &Runtime{
		Store:          store,
		Embedder:       embedder,
		Chunker:        chunker,
		EmbeddingModel: embedder.Model(),
		LLMModel:       model,
	}

	if err := ensureSchemaWithRetry(ctx, cfg, wClient, className); err != nil {
		slog.Error("vector store unavailable, starting degraded", "error", err)
		rt.Readiness = rag.Degraded("vector store unreachable")
		return rt, nil
	}

	queryLogger, err := retrieval.NewFileQueryLogger(cfg.QueryLogPath)
	if err != nil {
		slog.Warn("failed to create query logger, falling back to stdout", "error", err)
		queryLogger = retrieval.NewQueryLogger(os.Stdout)
	}

	retriever := retrieval.NewService(store, queryLogger)
	assembler := prompt.NewAssembler(cfg.MaxContextChars)
	engine := rag.NewEngine(retriever, assembler, builder, provider, cfg.CollectionName)

	rt.Readiness = rag.Ready(engine)
	return rt, nil
}

func newProvider(cfg *config.Config) (llm.Provider, string, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		p, err := llm.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			return nil, "", fmt.Errorf("openai provider: %w", err)
		}
		return p, cfg.OpenAIModel, nil
	default:
		p, err := llm.NewGroq(cfg.GroqAPIKey, cfg.GroqModel)
		if err != nil {
			return nil, "", fmt.Errorf("groq provider: %w", err)
		}
		return p, cfg.GroqModel, nil
	}
}

func ensureSchemaWithRetry(ctx context.Context, cfg *config.Config, client *weaviate.Client, className string) error {
	adapter := vector.NewWeaviateClientAdapter(client)
	delay := time.Duration(cfg.BootstrapRetryDelaySeconds) * time.Second

	var err error
	for attempt := 1; attempt <= cfg.BootstrapRetryAttempts; attempt++ {
		if err = vector.EnsureSchema(ctx, adapter, className); err == nil {
			slog.Info("weaviate schema ensured", "class", className)
			return nil
		}
		slog.Warn("failed to ensure weaviate schema, retrying...",
			"attempt", attempt, "max_attempts", cfg.BootstrapRetryAttempts, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}
