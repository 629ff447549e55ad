package services

import (
	"context"

	"autofill-platform/internal/ai"
	"autofill-platform/models"
)

// Embedder produces embedding vectors for text
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces text completions from the language model
type Generator interface {
	Generate(ctx context.Context, prompt string, contextBlocks []string) (string, error)
	ExtractValue(ctx context.Context, prompt string) (string, error)
	GenerateStream(ctx context.Context, prompt string, contextBlocks []string) (<-chan ai.StreamChunk, error)
}

// ChunkRetriever returns scored chunks relevant to a query, scoped to one
// owner
type ChunkRetriever interface {
	Retrieve(ctx context.Context, ownerID, query string, topK int, minScore float64) ([]ScoredChunk, error)
}

// FieldMatchingService matches form fields against indexed documents
type FieldMatchingService interface {
	MatchField(ctx context.Context, ownerID string, field models.FieldDescriptor) models.FieldMatch
	MatchFields(ctx context.Context, ownerID string, fields []models.FieldDescriptor) models.BulkMatchResult
}
