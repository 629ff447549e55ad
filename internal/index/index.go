// Package index provides owner-namespaced storage and similarity search
// over chunk embedding vectors.
package index

import "context"

// ChunkVector is one chunk's embedding plus the fields needed to present a
// retrieval result without a second lookup.
type ChunkVector struct {
	ChunkID  string
	DocID    string
	Index    int
	Text     string
	Filename string
	Page     int
	Vector   []float32
}

// Match is a scored retrieval result. Score is raw cosine similarity.
type Match struct {
	ChunkID  string
	DocID    string
	Index    int
	Text     string
	Filename string
	Score    float64
}

// Store is the persistence backend for chunk vectors. Every operation is
// scoped to a single owner namespace.
type Store interface {
	Upsert(ctx context.Context, ownerID string, vectors []ChunkVector) error
	Query(ctx context.Context, ownerID string, vector []float32, topK int) ([]Match, error)
	DeleteDocument(ctx context.Context, ownerID, docID string) error
}
