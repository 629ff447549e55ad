package index

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"autofill-platform/internal/logger"
	"autofill-platform/internal/telemetry"
	"autofill-platform/models"
)

// Gateway fronts a Store with bounded exponential backoff. When retries
// are exhausted the error wraps models.ErrIndexUnavailable so callers can
// degrade instead of failing hard.
type Gateway struct {
	store        Store
	metrics      *telemetry.Metrics
	maxTries     uint
	initialDelay time.Duration
}

func NewGateway(store Store, maxTries int, metrics *telemetry.Metrics) *Gateway {
	if maxTries < 1 {
		maxTries = 1
	}
	return &Gateway{
		store:        store,
		metrics:      metrics,
		maxTries:     uint(maxTries),
		initialDelay: 200 * time.Millisecond,
	}
}

func (g *Gateway) Upsert(ctx context.Context, ownerID string, vectors []ChunkVector) error {
	return g.retry(ctx, "upsert", func() error {
		return g.store.Upsert(ctx, ownerID, vectors)
	})
}

func (g *Gateway) Query(ctx context.Context, ownerID string, vector []float32, topK int) ([]Match, error) {
	var matches []Match
	err := g.retry(ctx, "query", func() error {
		var qErr error
		matches, qErr = g.store.Query(ctx, ownerID, vector, topK)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (g *Gateway) DeleteDocument(ctx context.Context, ownerID, docID string) error {
	return g.retry(ctx, "delete_document", func() error {
		return g.store.DeleteDocument(ctx, ownerID, docID)
	})
}

func (g *Gateway) retry(ctx context.Context, op string, fn func() error) error {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = g.initialDelay

	operation := func() (struct{}, error) {
		err := fn()
		if err != nil {
			// Dimension mismatches will never succeed on retry
			if errors.Is(err, models.ErrDimensionMismatch) {
				return struct{}{}, backoff.Permanent(err)
			}
			logger.Warn("Index operation failed, retrying", "op", op, "error", err.Error())
		}
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(g.maxTries),
	)
	if g.metrics != nil {
		g.metrics.RecordIndexOperation(op, err == nil)
	}
	if err == nil {
		return nil
	}
	if errors.Is(err, models.ErrDimensionMismatch) {
		return err
	}
	return fmt.Errorf("%w: %s failed after %d attempts: %v", models.ErrIndexUnavailable, op, g.maxTries, err)
}
