package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"autofill-platform/internal/logger"
	"autofill-platform/models"
)

// ReaperService periodically fails documents stuck in processing, e.g.
// after a worker crash mid-ingest. Their chunks were either never written
// or rolled back, so failing the record is safe.
type ReaperService struct {
	documents *mongo.Collection
	maxAge    time.Duration
	interval  time.Duration
	stopChan  chan struct{}
}

func NewReaperService(db *mongo.Database, maxAge time.Duration) *ReaperService {
	return &ReaperService{
		documents: db.Collection("documents"),
		maxAge:    maxAge,
		interval:  5 * time.Minute,
		stopChan:  make(chan struct{}),
	}
}

func (r *ReaperService) Start() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	logger.Info("Starting stuck-document reaper", "max_age", r.maxAge.String())

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if err := r.sweep(ctx); err != nil {
				logger.Error("Reaper sweep failed", "error", err.Error())
			}
			cancel()

		case <-r.stopChan:
			logger.Info("Stopping stuck-document reaper")
			return
		}
	}
}

func (r *ReaperService) Stop() {
	close(r.stopChan)
}

func (r *ReaperService) sweep(ctx context.Context) error {
	cutoff := time.Now().Add(-r.maxAge)

	result, err := r.documents.UpdateMany(ctx,
		bson.M{
			"status":     models.StatusProcessing,
			"updated_at": bson.M{"$lt": cutoff},
		},
		bson.M{"$set": bson.M{
			"status":        models.StatusFailed,
			"error_message": "processing timed out",
			"updated_at":    time.Now(),
		}},
	)
	if err != nil {
		return err
	}

	if result.ModifiedCount > 0 {
		logger.Warn("Reaped stuck documents", "count", result.ModifiedCount)
	}
	return nil
}
