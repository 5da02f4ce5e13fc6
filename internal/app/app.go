package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"casperlearn/backend/features/ask"
	"casperlearn/backend/features/search"
	"casperlearn/backend/features/stats"
	"casperlearn/backend/internal/config"
	"casperlearn/backend/internal/middleware"
	"casperlearn/backend/internal/rag"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	server    *http.Server
	readiness rag.Readiness
}

func New(cfg *config.Config, rt *Runtime) *App {
	askHandler := ask.NewHandler(rt.Readiness)
	searchHandler := search.NewHandler(rt.Readiness)
	statsHandler := stats.NewHandler(rt.Readiness, rt.EmbeddingModel, rt.LLMModel)

	mux := http.NewServeMux()
	mux.Handle("POST /ask", middleware.CorrelationID(enableCORS(askHandler.Ask)))
	mux.Handle("POST /ask/stream", middleware.CorrelationID(enableCORS(askHandler.AskStream)))
	mux.Handle("POST /search", middleware.CorrelationID(enableCORS(searchHandler.Search)))
	mux.Handle("GET /stats", middleware.CorrelationID(enableCORS(statsHandler.GetStats)))
	mux.Handle("OPTIONS /", enableCORS(func(w http.ResponseWriter, r *http.Request) {}))
	mux.HandleFunc("GET /health", healthHandler(rt.Readiness))

	return &App{
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
			Handler: mux,
		},
		readiness: rt.Readiness,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.server.Shutdown(shutdownCtx)
}

func healthHandler(readiness rag.Readiness) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, ready := readiness.Engine(); !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"degraded","reason":%q}`, readiness.Reason())
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next(w, r)
	}
}
