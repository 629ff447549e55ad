package services

import (
	"context"

	"autofill-platform/internal/index"
)

// ScoredChunk is a retrieval result ready for prompt assembly
type ScoredChunk struct {
	Text     string
	Score    float64
	Filename string
	DocID    string
	ChunkID  string
	Index    int
}

// Querier is the similarity search surface the retriever depends on
type Querier interface {
	Query(ctx context.Context, ownerID string, vector []float32, topK int) ([]index.Match, error)
}

// Retriever embeds a query and returns the owner's most similar chunks.
// Chat answering and field matching share this path.
type Retriever struct {
	embedder Embedder
	querier  Querier
}

func NewRetriever(embedder Embedder, querier Querier) *Retriever {
	return &Retriever{embedder: embedder, querier: querier}
}

// Retrieve returns up to topK chunks with score >= minScore, descending by
// score. An empty result is not an error.
func (r *Retriever) Retrieve(ctx context.Context, ownerID, query string, topK int, minScore float64) ([]ScoredChunk, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	matches, err := r.querier.Query(ctx, ownerID, vector, topK)
	if err != nil {
		return nil, err
	}

	chunks := make([]ScoredChunk, 0, len(matches))
	for _, m := range matches {
		if m.Score < minScore {
			continue
		}
		chunks = append(chunks, ScoredChunk{
			Text:     m.Text,
			Score:    m.Score,
			Filename: m.Filename,
			DocID:    m.DocID,
			ChunkID:  m.ChunkID,
			Index:    m.Index,
		})
	}
	return chunks, nil
}
