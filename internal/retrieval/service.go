package retrieval

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrIndexUnavailable signals a missing or empty vector collection. The
// boundary layer reports it as service degradation, not a crash.
var ErrIndexUnavailable = errors.New("vector index unavailable or empty")

const (
	MinResults = 1
	MaxResults = 20
)

// RetrievedContext is one ranked chunk returned for a query. Ephemeral:
// produced per request, never persisted.
type RetrievedContext struct {
	Content   string  `json:"content"`
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	Relevance float64 `json:"relevance"`
}

// Match is a raw nearest-neighbor hit from the vector-store collaborator,
// paired with its native distance.
type Match struct {
	Content  string
	Title    string
	URL      string
	Distance float64
}

// VectorStore is the slice of the collaborator the retriever needs.
// The store performs its own embedding; the distance metric is its own.
type VectorStore interface {
	Query(ctx context.Context, query string, topK int) ([]Match, error)
	Count(ctx context.Context) (int, error)
}

type Service struct {
	store  VectorStore
	logger *QueryLogger
}

func NewService(store VectorStore, logger *QueryLogger) *Service {
	return &Service{store: store, logger: logger}
}

// Retrieve returns up to nResults chunks ranked by relevance descending.
// Relevance normalizes the collaborator's distance as 1-distance, clamped
// to [0,1]; the collaborator's native order is preserved, no re-ranking.
// Fewer matches than requested is not an error.
func (s *Service) Retrieve(ctx context.Context, query string, nResults int) ([]RetrievedContext, error) {
	start := time.Now()

	if nResults < MinResults {
		nResults = MinResults
	}
	if nResults > MaxResults {
		nResults = MaxResults
	}

	count, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexUnavailable, err)
	}
	if count == 0 {
		return nil, ErrIndexUnavailable
	}

	matches, err := s.store.Query(ctx, query, nResults)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}

	contexts := make([]RetrievedContext, 0, len(matches))
	for _, m := range matches {
		contexts = append(contexts, RetrievedContext{
			Content:   m.Content,
			Title:     m.Title,
			URL:       m.URL,
			Relevance: clamp01(1 - m.Distance),
		})
	}

	if s.logger != nil {
		s.logger.Log(QueryLogEntry{
			Query:      query,
			NumResults: len(contexts),
			Duration:   time.Since(start),
		})
	}

	return contexts, nil
}

// Count reports the number of chunks in the collection.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
