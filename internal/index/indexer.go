package index

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"casperlearn/backend/internal/text"
)

const (
	// Chunks below these floors carry too little signal to embed.
	minProseChunkLen = 50
	minCodeChunkLen  = 20

	// codeMarker lets the LLM tell code apart from prose in retrieved context.
	codeMarker = "Code example:\n"

	defaultBatchSize = 100
)

// ChunkMetadata travels with every chunk into the vector store and comes
// back verbatim on retrieval for source attribution.
type ChunkMetadata struct {
	URL         string         `json:"url"`
	Title       string         `json:"title"`
	ChunkIndex  int            `json:"chunk_index"`
	TotalChunks int            `json:"total_chunks,omitempty"`
	Source      string         `json:"source"`
	Type        text.ChunkType `json:"type"`
}

// ChunkRecord is the unit submitted to the vector store. IDs are
// deterministic from document and chunk position, so re-indexing the same
// corpus produces the same ids and an upsert-capable store deduplicates.
type ChunkRecord struct {
	ID       string
	Text     string
	Metadata ChunkMetadata
}

// VectorStore is the slice of the vector-store collaborator the indexer
// needs: batch submission with upsert semantics keyed by record id.
type VectorStore interface {
	AddBatch(ctx context.Context, records []ChunkRecord) error
}

type Indexer struct {
	chunker   *text.Chunker
	store     VectorStore
	source    string
	batchSize int
}

func NewIndexer(chunker *text.Chunker, store VectorStore, source string) *Indexer {
	return &Indexer{
		chunker:   chunker,
		store:     store,
		source:    source,
		batchSize: defaultBatchSize,
	}
}

// Index chunks every document (prose via the chunker, one chunk per code
// example) and submits the records in fixed-size batches. A batch failure
// aborts the run; the error names the failed batch. Returns the number of
// chunks submitted.
func (ix *Indexer) Index(ctx context.Context, docs []Document) (int, error) {
	records := ix.Records(docs)

	for i := 0; i < len(records); i += ix.batchSize {
		end := i + ix.batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := i / ix.batchSize
		if err := ix.store.AddBatch(ctx, records[i:end]); err != nil {
			return i, fmt.Errorf("index batch %d (%d records): %w", batch, end-i, err)
		}
		slog.InfoContext(ctx, "indexed batch", "batch", batch, "records", end-i)
	}

	slog.InfoContext(ctx, "indexing complete", "documents", len(docs), "chunks", len(records))
	return len(records), nil
}

// Records produces the chunk records for a corpus without submitting them.
func (ix *Indexer) Records(docs []Document) []ChunkRecord {
	var records []ChunkRecord

	for docIdx, doc := range docs {
		chunks := ix.chunker.Chunk(doc.Content)

		for chunkIdx, chunk := range chunks {
			if len(strings.TrimSpace(chunk)) < minProseChunkLen {
				continue
			}
			records = append(records, ChunkRecord{
				ID:   fmt.Sprintf("doc_%d_chunk_%d", docIdx, chunkIdx),
				Text: chunk,
				Metadata: ChunkMetadata{
					URL:         doc.URL,
					Title:       doc.Title,
					ChunkIndex:  chunkIdx,
					TotalChunks: len(chunks),
					Source:      ix.source,
					Type:        text.ChunkTypeProse,
				},
			})
		}

		// Code examples are indexed as standalone chunks so a query can
		// land directly on a snippet.
		for codeIdx, code := range doc.CodeExamples {
			if len(strings.TrimSpace(code)) < minCodeChunkLen {
				continue
			}
			records = append(records, ChunkRecord{
				ID:   fmt.Sprintf("doc_%d_code_%d", docIdx, codeIdx),
				Text: codeMarker + code,
				Metadata: ChunkMetadata{
					URL:        doc.URL,
					Title:      doc.Title + " - Code Example",
					ChunkIndex: codeIdx,
					Source:     ix.source,
					Type:       text.ChunkTypeCode,
				},
			})
		}
	}

	return records
}
