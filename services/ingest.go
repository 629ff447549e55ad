package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"autofill-platform/internal/config"
	"autofill-platform/internal/index"
	"autofill-platform/internal/logger"
	"autofill-platform/internal/telemetry"
	"autofill-platform/models"
)

// IngestService drives a document through the pipeline:
// extract -> chunk -> embed -> index, with the status lifecycle
// pending -> processing -> completed|failed. Indexing is atomic per
// document: a failure past the first upsert rolls the namespace back so
// retrieval never sees a half-indexed document.
type IngestService struct {
	cfg       *config.Config
	documents *mongo.Collection
	extractor *Extractor
	embedder  Embedder
	index     *index.Gateway
	metrics   *telemetry.Metrics
}

func NewIngestService(cfg *config.Config, db *mongo.Database, extractor *Extractor, embedder Embedder, gateway *index.Gateway, metrics *telemetry.Metrics) *IngestService {
	return &IngestService{
		cfg:       cfg,
		documents: db.Collection("documents"),
		extractor: extractor,
		embedder:  embedder,
		index:     gateway,
		metrics:   metrics,
	}
}

// Process runs the full pipeline for one uploaded document
func (s *IngestService) Process(ctx context.Context, ownerID, docID string) error {
	start := time.Now()

	doc, err := s.findDocument(ctx, ownerID, docID)
	if err != nil {
		return err
	}

	if err := s.setStatus(ctx, ownerID, docID, models.StatusProcessing, ""); err != nil {
		return err
	}

	data, err := os.ReadFile(doc.FilePath)
	if err != nil {
		s.fail(ctx, ownerID, docID, fmt.Sprintf("read failed: %v", err))
		return err
	}

	extraction, err := s.extractor.Extract(ctx, data, doc.MimeType, doc.Filename)
	if err != nil {
		s.fail(ctx, ownerID, docID, err.Error())
		s.recordIngest(start, models.StatusFailed)
		return err
	}

	chunks := ChunkText(extraction.Text, s.cfg.MaxChunkSize, s.cfg.ChunkOverlap)
	if len(chunks) == 0 {
		err := fmt.Errorf("%w: no chunks produced for %s", models.ErrExtractionFailure, doc.Filename)
		s.fail(ctx, ownerID, docID, err.Error())
		s.recordIngest(start, models.StatusFailed)
		return err
	}

	vectors, err := s.embedChunks(ctx, docID, doc.Filename, chunks)
	if err != nil {
		s.fail(ctx, ownerID, docID, fmt.Sprintf("embedding failed: %v", err))
		s.recordIngest(start, models.StatusFailed)
		return err
	}

	if err := s.index.Upsert(ctx, ownerID, vectors); err != nil {
		// Partial batches must not be left behind
		if delErr := s.index.DeleteDocument(ctx, ownerID, docID); delErr != nil {
			logger.Error("Rollback of partial index batch failed",
				"doc_id", docID, "error", delErr.Error())
		}
		s.fail(ctx, ownerID, docID, fmt.Sprintf("indexing failed: %v", err))
		s.recordIngest(start, models.StatusFailed)
		return err
	}

	now := time.Now()
	metadata := models.DocumentMetadata{
		Pages:            extraction.Pages,
		ExtractionMethod: extraction.Method,
		WordCount:        extraction.WordCount,
		CharacterCount:   extraction.CharacterCount,
		ChunkCount:       len(chunks),
		ProcessingTime:   time.Since(start),
	}

	_, err = s.documents.UpdateOne(ctx,
		bson.M{"_id": docID, "owner_id": ownerID},
		bson.M{"$set": bson.M{
			"status":       models.StatusCompleted,
			"processed_at": now,
			"updated_at":   now,
			"metadata":     metadata,
		}},
	)
	if err != nil {
		return err
	}

	s.recordIngest(start, models.StatusCompleted)
	logger.Info("Document ingested",
		"doc_id", docID, "chunks", len(chunks), "method", extraction.Method)
	return nil
}

// Delete removes a document and cascades to its chunks and index vectors
func (s *IngestService) Delete(ctx context.Context, ownerID, docID string) error {
	doc, err := s.findDocument(ctx, ownerID, docID)
	if err != nil {
		return err
	}

	if err := s.index.DeleteDocument(ctx, ownerID, docID); err != nil {
		return err
	}

	if _, err := s.documents.DeleteOne(ctx, bson.M{"_id": docID, "owner_id": ownerID}); err != nil {
		return err
	}

	if doc.FilePath != "" {
		if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to remove stored file", "path", doc.FilePath, "error", err.Error())
		}
	}

	logger.Info("Document deleted", "doc_id", docID, "owner_id", ownerID)
	return nil
}

func (s *IngestService) embedChunks(ctx context.Context, docID, filename string, chunks []string) ([]index.ChunkVector, error) {
	batchSize := s.cfg.EmbedBatchSize
	if batchSize <= 0 {
		batchSize = 16
	}

	vectors := make([]index.ChunkVector, 0, len(chunks))
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		embedded, err := s.embedder.EmbedBatch(ctx, chunks[start:end])
		if err != nil {
			return nil, err
		}

		for i, vec := range embedded {
			order := start + i
			vectors = append(vectors, index.ChunkVector{
				ChunkID:  fmt.Sprintf("%s_chunk_%d", docID, order),
				DocID:    docID,
				Index:    order,
				Text:     chunks[order],
				Filename: filename,
				Vector:   vec,
			})
		}
	}
	return vectors, nil
}

func (s *IngestService) findDocument(ctx context.Context, ownerID, docID string) (*models.Document, error) {
	var doc models.Document
	err := s.documents.FindOne(ctx, bson.M{"_id": docID, "owner_id": ownerID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: document %s", models.ErrNotFound, docID)
		}
		return nil, err
	}
	return &doc, nil
}

func (s *IngestService) setStatus(ctx context.Context, ownerID, docID, status, errMsg string) error {
	update := bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}
	if errMsg != "" {
		update["error_message"] = errMsg
	}

	_, err := s.documents.UpdateOne(ctx,
		bson.M{"_id": docID, "owner_id": ownerID},
		bson.M{"$set": update},
	)
	return err
}

func (s *IngestService) fail(ctx context.Context, ownerID, docID, reason string) {
	if err := s.setStatus(ctx, ownerID, docID, models.StatusFailed, reason); err != nil {
		logger.Error("Failed to mark document failed", "doc_id", docID, "error", err.Error())
	}
}

func (s *IngestService) recordIngest(start time.Time, status string) {
	if s.metrics != nil {
		s.metrics.RecordIngest(time.Since(start).Seconds(), status)
	}
}
