package search

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"casperlearn/backend/internal/middleware"
	"casperlearn/backend/internal/rag"
	"casperlearn/backend/internal/retrieval"
)

const defaultNResults = 5

type Request struct {
	Query    string `json:"query"`
	NResults int    `json:"n_results"`
}

type Response struct {
	Results []retrieval.RetrievedContext `json:"results"`
	Total   int                          `json:"total"`
}

type Handler struct {
	readiness rag.Readiness
}

func NewHandler(readiness rag.Readiness) *Handler {
	return &Handler{readiness: readiness}
}

// Search runs retrieval only: no prompt, no generation. Useful for
// exploring what the index would ground an answer on.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, "INVALID_REQUEST", "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		writeError(ctx, w, "INVALID_REQUEST", "query is required", http.StatusBadRequest)
		return
	}
	if req.NResults <= 0 {
		req.NResults = defaultNResults
	}

	engine, ready := h.readiness.Engine()
	if !ready {
		slog.WarnContext(ctx, "search rejected, engine degraded", "reason", h.readiness.Reason())
		writeError(ctx, w, "SERVICE_DEGRADED", h.readiness.Reason(), http.StatusServiceUnavailable)
		return
	}

	results, err := engine.Search(ctx, req.Query, req.NResults)
	if err != nil {
		slog.ErrorContext(ctx, "search failed", "error", err)
		if errors.Is(err, retrieval.ErrIndexUnavailable) {
			writeError(ctx, w, "INDEX_UNAVAILABLE", "documentation index is unavailable", http.StatusServiceUnavailable)
			return
		}
		writeError(ctx, w, "RETRIEVAL_FAILED", "failed to search documentation", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(Response{Results: results, Total: len(results)}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
