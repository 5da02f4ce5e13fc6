package weaviate

import (
	"context"
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"casperlearn/backend/internal/index"
	"casperlearn/backend/internal/retrieval"
)

// Embedder supplies vectors for stored chunks and queries; the store itself
// is vectorizer-less.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Store is the vector-store collaborator: it owns all persisted chunk
// state and answers nearest-neighbor queries. Safe for concurrent
// read-only queries.
type Store struct {
	client   *weaviate.Client
	embedder Embedder
	class    string
}

func NewStore(client *weaviate.Client, embedder Embedder, class string) *Store {
	return &Store{client: client, embedder: embedder, class: class}
}

// AddBatch embeds and upserts one batch of chunk records. Object ids are
// derived deterministically from the chunk id, so re-indexing the same
// corpus overwrites in place instead of duplicating.
func (s *Store) AddBatch(ctx context.Context, records []index.ChunkRecord) error {
	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}

	objects := make([]*models.Object, len(records))
	for i, rec := range records {
		id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(rec.ID))
		objects[i] = &models.Object{
			Class: s.class,
			ID:    strfmt.UUID(id.String()),
			Properties: map[string]interface{}{
				"content":     rec.Text,
				"chunkId":     rec.ID,
				"title":       rec.Metadata.Title,
				"url":         rec.Metadata.URL,
				"chunkIndex":  rec.Metadata.ChunkIndex,
				"totalChunks": rec.Metadata.TotalChunks,
				"source":      rec.Metadata.Source,
				"type":        string(rec.Metadata.Type),
			},
			Vector: vectors[i],
		}
	}

	resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return err
	}
	for _, obj := range resp {
		if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
			return fmt.Errorf("batch object %s: %s", obj.ID, obj.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

// Query embeds the query text and returns the topK nearest chunks with
// their raw distances.
func (s *Store) Query(ctx context.Context, query string, topK int) ([]retrieval.Match, error) {
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "title"},
		{Name: "url"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(s.class).
		WithNearVector(nearVector).
		WithLimit(topK).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors[0].Message)
	}

	var matches []retrieval.Match
	data, ok := res.Data["Get"].(map[string]interface{})
	if !ok {
		return matches, nil
	}
	hits, ok := data[s.class].([]interface{})
	if !ok {
		return matches, nil
	}

	for _, h := range hits {
		props, ok := h.(map[string]interface{})
		if !ok {
			continue
		}

		var m retrieval.Match
		if content, ok := props["content"].(string); ok {
			m.Content = content
		}
		if title, ok := props["title"].(string); ok {
			m.Title = title
		}
		if url, ok := props["url"].(string); ok {
			m.URL = url
		}
		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			if distance, ok := additional["distance"].(float64); ok {
				m.Distance = distance
			}
		}
		matches = append(matches, m)
	}

	return matches, nil
}

// Count reports the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	res, err := s.client.GraphQL().Aggregate().
		WithClassName(s.class).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(res.Errors) > 0 {
		return 0, fmt.Errorf("graphql error: %v", res.Errors[0].Message)
	}

	agg, ok := res.Data["Aggregate"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("unexpected aggregate response shape")
	}
	rows, ok := agg[s.class].([]interface{})
	if !ok || len(rows) == 0 {
		return 0, nil
	}
	row, ok := rows[0].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("unexpected aggregate response shape")
	}
	meta, ok := row["meta"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("unexpected aggregate response shape")
	}
	count, ok := meta["count"].(float64)
	if !ok {
		return 0, fmt.Errorf("unexpected aggregate response shape")
	}
	return int(count), nil
}
