package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"autofill-platform/internal/logger"
	"autofill-platform/models"
	"autofill-platform/services"
)

const TaskIngestDocument = "document:ingest"

// IngestPayload identifies one uploaded document to process
type IngestPayload struct {
	OwnerID  string `json:"owner_id"`
	DocID    string `json:"doc_id"`
	Filename string `json:"filename"`
}

// NewIngestTask creates the background task for a freshly uploaded
// document
func NewIngestTask(p IngestPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskIngestDocument,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("critical"),
	), nil
}

// Processor handles queued ingestion tasks
type Processor struct {
	ingest *services.IngestService
}

func NewProcessor(ingest *services.IngestService) *Processor {
	return &Processor{ingest: ingest}
}

func (p *Processor) HandleIngest(ctx context.Context, t *asynq.Task) error {
	var payload IngestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}

	logger.Info("Processing document", "owner_id", payload.OwnerID, "doc_id", payload.DocID)

	err := p.ingest.Process(ctx, payload.OwnerID, payload.DocID)
	if err != nil {
		// Deterministic failures will not improve on retry
		if errors.Is(err, models.ErrUnsupportedFormat) ||
			errors.Is(err, models.ErrExtractionFailure) ||
			errors.Is(err, models.ErrNotFound) {
			logger.Warn("Ingestion failed permanently", "doc_id", payload.DocID, "error", err.Error())
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	return nil
}
