package index

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"autofill-platform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyStore struct {
	failures int
	calls    int
	err      error
	matches  []Match
}

func (s *flakyStore) attempt() error {
	s.calls++
	if s.calls <= s.failures {
		return s.err
	}
	return nil
}

func (s *flakyStore) Upsert(ctx context.Context, ownerID string, vectors []ChunkVector) error {
	return s.attempt()
}

func (s *flakyStore) Query(ctx context.Context, ownerID string, vector []float32, topK int) ([]Match, error) {
	if err := s.attempt(); err != nil {
		return nil, err
	}
	return s.matches, nil
}

func (s *flakyStore) DeleteDocument(ctx context.Context, ownerID, docID string) error {
	return s.attempt()
}

func newTestGateway(store Store) *Gateway {
	g := NewGateway(store, 3, nil)
	g.initialDelay = 0 // keep tests fast
	return g
}

func TestGatewayRecoversFromTransientFailure(t *testing.T) {
	store := &flakyStore{failures: 2, err: errors.New("connection reset")}
	g := newTestGateway(store)

	err := g.Upsert(context.Background(), "owner-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, store.calls)
}

func TestGatewayExhaustedRetriesReportUnavailable(t *testing.T) {
	store := &flakyStore{failures: 10, err: errors.New("connection reset")}
	g := newTestGateway(store)

	err := g.Upsert(context.Background(), "owner-1", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrIndexUnavailable)
	assert.Equal(t, 3, store.calls)
}

func TestGatewayQueryPassesThroughMatches(t *testing.T) {
	store := &flakyStore{matches: []Match{{ChunkID: "c1", Score: 0.8}}}
	g := newTestGateway(store)

	matches, err := g.Query(context.Background(), "owner-1", []float32{1}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "c1", matches[0].ChunkID)
}

func TestGatewayDimensionMismatchIsPermanent(t *testing.T) {
	store := &flakyStore{failures: 10, err: fmt.Errorf("%w: got 512 want 768", models.ErrDimensionMismatch)}
	g := newTestGateway(store)

	err := g.Upsert(context.Background(), "owner-1", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrDimensionMismatch)
	assert.NotErrorIs(t, err, models.ErrIndexUnavailable)
	assert.Equal(t, 1, store.calls, "permanent errors must not be retried")
}

func TestGatewayDeleteDocument(t *testing.T) {
	store := &flakyStore{}
	g := newTestGateway(store)

	require.NoError(t, g.DeleteDocument(context.Background(), "owner-1", "doc-1"))
	assert.Equal(t, 1, store.calls)
}
