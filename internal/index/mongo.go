package index

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"autofill-platform/models"
)

// MongoStore keeps chunk vectors in a denormalized chunks collection and
// ranks candidates with in-process cosine similarity over the owner's
// namespace.
type MongoStore struct {
	col *mongo.Collection
	dim int
}

func NewMongoStore(db *mongo.Database, dim int) *MongoStore {
	return &MongoStore{
		col: db.Collection("chunks"),
		dim: dim,
	}
}

// Upsert writes all vectors for a document in one unordered bulk write.
// Re-running the same batch is idempotent.
func (s *MongoStore) Upsert(ctx context.Context, ownerID string, vectors []ChunkVector) error {
	if len(vectors) == 0 {
		return nil
	}

	batch := make([]mongo.WriteModel, 0, len(vectors))
	now := time.Now()
	for _, v := range vectors {
		if s.dim > 0 && len(v.Vector) != s.dim {
			return fmt.Errorf("%w: chunk %s has %d dims, want %d", models.ErrDimensionMismatch, v.ChunkID, len(v.Vector), s.dim)
		}
		doc := bson.M{
			"owner_id":   ownerID,
			"doc_id":     v.DocID,
			"chunk_id":   v.ChunkID,
			"index":      v.Index,
			"text":       v.Text,
			"filename":   v.Filename,
			"page":       v.Page,
			"vector":     v.Vector,
			"created_at": now,
		}
		batch = append(batch, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"owner_id": ownerID, "chunk_id": v.ChunkID}).
			SetUpdate(bson.M{"$set": doc}).
			SetUpsert(true))
	}

	_, err := s.col.BulkWrite(ctx, batch, options.BulkWrite().SetOrdered(false))
	return err
}

// Query scans the owner's chunks and returns the topK most similar,
// descending by score.
func (s *MongoStore) Query(ctx context.Context, ownerID string, vector []float32, topK int) ([]Match, error) {
	if s.dim > 0 && len(vector) != s.dim {
		return nil, fmt.Errorf("%w: query has %d dims, want %d", models.ErrDimensionMismatch, len(vector), s.dim)
	}

	cursor, err := s.col.Find(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var matches []Match
	for cursor.Next(ctx) {
		var chunk models.Chunk
		if err := cursor.Decode(&chunk); err != nil {
			return nil, err
		}
		matches = append(matches, Match{
			ChunkID:  chunk.ChunkID,
			DocID:    chunk.DocID,
			Index:    chunk.Index,
			Text:     chunk.Text,
			Filename: chunk.Filename,
			Score:    CosineSimilarity(vector, chunk.Vector),
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// DeleteDocument removes every chunk of a document from the owner's
// namespace.
func (s *MongoStore) DeleteDocument(ctx context.Context, ownerID, docID string) error {
	_, err := s.col.DeleteMany(ctx, bson.M{"owner_id": ownerID, "doc_id": docID})
	return err
}
