package ask

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"casperlearn/backend/internal/middleware"
	"casperlearn/backend/internal/rag"
	"casperlearn/backend/internal/retrieval"
)

const (
	maxNContext     = 10
	defaultNContext = 5
)

type Request struct {
	Question string `json:"question"`
	Language string `json:"language"`
	NContext int    `json:"n_context"`
}

type Response struct {
	Answer  string       `json:"answer"`
	Sources []rag.Source `json:"sources"`
	Success bool         `json:"success"`
}

type Handler struct {
	readiness rag.Readiness
}

func NewHandler(readiness rag.Readiness) *Handler {
	return &Handler{readiness: readiness}
}

// Ask answers a developer question grounded in the indexed documentation.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, engine, ok := h.prepare(ctx, w, r)
	if !ok {
		return
	}

	result, err := engine.Ask(ctx, req.Question, req.Language, req.NContext)
	if err != nil {
		writeStageError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, Response{
		Answer:  result.Answer,
		Sources: result.Sources,
		Success: true,
	})
}

// AskStream streams the answer over server-sent events. The first event
// carries the source list; subsequent events carry answer segments.
func (h *Handler) AskStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, engine, ok := h.prepare(ctx, w, r)
	if !ok {
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		writeError(ctx, w, "STREAMING_UNSUPPORTED", "response writer does not support streaming", http.StatusInternalServerError)
		return
	}

	stream, sources, err := engine.AskStream(ctx, req.Question, req.Language, req.NContext)
	if err != nil {
		writeStageError(ctx, w, err)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	writeEvent(w, map[string]interface{}{"sources": sources})
	flusher.Flush()

	for {
		segment, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.ErrorContext(ctx, "answer stream interrupted", "error", err)
			break
		}
		writeEvent(w, map[string]interface{}{"delta": segment})
		flusher.Flush()
	}

	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func (h *Handler) prepare(ctx context.Context, w http.ResponseWriter, r *http.Request) (Request, *rag.Engine, bool) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, "INVALID_REQUEST", "invalid JSON body", http.StatusBadRequest)
		return req, nil, false
	}
	if req.Question == "" {
		writeError(ctx, w, "INVALID_REQUEST", "question is required", http.StatusBadRequest)
		return req, nil, false
	}
	if req.NContext <= 0 {
		req.NContext = defaultNContext
	}
	if req.NContext > maxNContext {
		req.NContext = maxNContext
	}

	engine, ready := h.readiness.Engine()
	if !ready {
		slog.WarnContext(ctx, "ask rejected, engine degraded", "reason", h.readiness.Reason())
		writeError(ctx, w, "SERVICE_DEGRADED", h.readiness.Reason(), http.StatusServiceUnavailable)
		return req, nil, false
	}
	return req, engine, true
}

func writeStageError(ctx context.Context, w http.ResponseWriter, err error) {
	correlationID := middleware.GetCorrelationID(ctx)
	slog.ErrorContext(ctx, "ask failed", "error", err, "correlationId", correlationID)

	switch {
	case errors.Is(err, retrieval.ErrIndexUnavailable):
		writeError(ctx, w, "INDEX_UNAVAILABLE", "documentation index is unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, rag.ErrRetrieval):
		writeError(ctx, w, "RETRIEVAL_FAILED", "failed to retrieve documentation context", http.StatusServiceUnavailable)
	case errors.Is(err, rag.ErrGeneration):
		writeError(ctx, w, "GENERATION_FAILED", "language model backend failed", http.StatusBadGateway)
	default:
		writeError(ctx, w, "INTERNAL_ERROR", "internal error", http.StatusInternalServerError)
	}
}

func writeEvent(w http.ResponseWriter, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to encode stream event", "error", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
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
