package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"casperlearn/backend/internal/middleware"
	"casperlearn/backend/internal/rag"
)

type Response struct {
	TotalDocuments int    `json:"total_documents"`
	CollectionName string `json:"collection_name"`
	EmbeddingModel string `json:"embedding_model"`
	LLMModel       string `json:"llm_model"`
}

type Handler struct {
	readiness      rag.Readiness
	embeddingModel string
	llmModel       string
}

func NewHandler(readiness rag.Readiness, embeddingModel, llmModel string) *Handler {
	return &Handler{
		readiness:      readiness,
		embeddingModel: embeddingModel,
		llmModel:       llmModel,
	}
}

// GetStats reports the size of the index and the models behind it.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	engine, ready := h.readiness.Engine()
	if !ready {
		writeError(ctx, w, "SERVICE_DEGRADED", h.readiness.Reason(), http.StatusServiceUnavailable)
		return
	}

	stats, err := engine.Stats(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to collect stats", "error", err)
		writeError(ctx, w, "INTERNAL_ERROR", "failed to collect stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	resp := Response{
		TotalDocuments: stats.TotalDocuments,
		CollectionName: stats.CollectionName,
		EmbeddingModel: h.embeddingModel,
		LLMModel:       h.llmModel,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
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
