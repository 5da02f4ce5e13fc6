package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"casperlearn/backend/internal/app"
	"casperlearn/backend/internal/config"
	"casperlearn/backend/internal/index"
	"casperlearn/backend/internal/logger"
)

func main() {
	runIndex := flag.Bool("index", false, "index the documentation corpus and exit")
	flag.Parse()

	handler := logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(slog.New(handler))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		slog.Error("failed to bootstrap", "error", err)
		os.Exit(1)
	}
	defer rt.Embedder.Close()

	if *runIndex {
		if err := indexCorpus(ctx, cfg, rt); err != nil {
			slog.Error("indexing failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := app.New(cfg, rt).Run(ctx); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// indexCorpus loads the scraped documentation and code example corpora
// and writes their chunks into the vector store.
func indexCorpus(ctx context.Context, cfg *config.Config, rt *app.Runtime) error {
	if _, ready := rt.Readiness.Engine(); !ready {
		return fmt.Errorf("cannot index: %s", rt.Readiness.Reason())
	}

	docs, err := index.LoadDocuments(cfg.DocsPath)
	if err != nil {
		return err
	}
	slog.Info("documentation corpus loaded", "path", cfg.DocsPath, "documents", len(docs))

	docIndexer := index.NewIndexer(rt.Chunker, rt.Store, "docs")
	n, err := docIndexer.Index(ctx, docs)
	if err != nil {
		return err
	}
	slog.Info("documentation indexed", "chunks", n)

	codeFiles, err := index.LoadCodeFiles(cfg.CodeDocsPath)
	if err != nil {
		return err
	}
	slog.Info("code corpus loaded", "path", cfg.CodeDocsPath, "files", len(codeFiles))

	codeIndexer := index.NewIndexer(rt.Chunker, rt.Store, "code")
	n, err = codeIndexer.Index(ctx, index.AsDocuments(codeFiles))
	if err != nil {
		return err
	}
	slog.Info("code examples indexed", "chunks", n)
	return nil
}
