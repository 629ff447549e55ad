package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"autofill-platform/internal/ai"
	"autofill-platform/internal/config"
	"autofill-platform/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRetriever struct {
	chunks []ScoredChunk
	err    error
	delay  time.Duration
}

func (f *fakeRetriever) Retrieve(ctx context.Context, ownerID, query string, topK int, minScore float64) ([]ScoredChunk, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks, nil
}

type fakeGenerator struct {
	answer  string
	extract string
	err     error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, contextBlocks []string) (string, error) {
	return f.answer, f.err
}

func (f *fakeGenerator) ExtractValue(ctx context.Context, prompt string) (string, error) {
	return f.extract, f.err
}

func (f *fakeGenerator) GenerateStream(ctx context.Context, prompt string, contextBlocks []string) (<-chan ai.StreamChunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(chan ai.StreamChunk, 1)
	out <- ai.StreamChunk{Text: f.answer}
	close(out)
	return out, nil
}

func matcherConfig() *config.Config {
	return &config.Config{
		MatchThreshold:     0.3,
		FieldMinSimilarity: 0.3,
		RetrievalTopK:      5,
		FieldTimeout:       10,
		FieldWorkers:       4,
	}
}

func resumeChunks() []ScoredChunk {
	return []ScoredChunk{
		{Text: "Jane Doe, jane@example.com, (415) 555-0132, San Francisco CA 94107", Score: 0.82, Filename: "resume.pdf", DocID: "doc-1", ChunkID: "doc-1_chunk_0"},
		{Text: "Education: BSc Computer Science, Stanford University, 2019", Score: 0.64, Filename: "resume.pdf", DocID: "doc-1", ChunkID: "doc-1_chunk_1"},
	}
}

func TestMatchFieldPatternExtraction(t *testing.T) {
	m := NewFieldMatcher(matcherConfig(), &fakeRetriever{chunks: resumeChunks()}, &fakeGenerator{}, nil)

	result := m.MatchField(context.Background(), "owner-1", models.FieldDescriptor{Name: "email", Label: "Email Address"})

	assert.True(t, result.Matched)
	assert.Equal(t, "jane@example.com", result.Value)
	assert.Equal(t, PurposeEmail, result.FieldType)
	assert.Equal(t, "resume.pdf", result.Source)
	assert.Equal(t, "doc-1", result.DocID)
	assert.Equal(t, "doc-1_chunk_0", result.ChunkID)
	assert.Greater(t, result.Confidence, 0.8)
}

func TestMatchFieldGenerativeExtraction(t *testing.T) {
	gen := &fakeGenerator{extract: "BSc Computer Science, Stanford University"}
	m := NewFieldMatcher(matcherConfig(), &fakeRetriever{chunks: resumeChunks()}, gen, nil)

	result := m.MatchField(context.Background(), "owner-1", models.FieldDescriptor{Name: "education", Label: "Education"})

	assert.True(t, result.Matched)
	assert.Equal(t, "BSc Computer Science, Stanford University", result.Value)
	assert.Equal(t, PurposeEducation, result.FieldType)
}

func TestMatchFieldNotFoundSentinel(t *testing.T) {
	gen := &fakeGenerator{extract: "NOT_FOUND"}
	m := NewFieldMatcher(matcherConfig(), &fakeRetriever{chunks: resumeChunks()}, gen, nil)

	result := m.MatchField(context.Background(), "owner-1", models.FieldDescriptor{Name: "fax"})

	assert.False(t, result.Matched)
	assert.Empty(t, result.Value)
	assert.Less(t, result.Confidence, 0.3)
}

func TestMatchFieldNoRelevantChunks(t *testing.T) {
	m := NewFieldMatcher(matcherConfig(), &fakeRetriever{}, &fakeGenerator{}, nil)

	result := m.MatchField(context.Background(), "owner-1", models.FieldDescriptor{Name: "email"})

	assert.False(t, result.Matched)
	assert.Empty(t, result.Value)
	assert.Zero(t, result.Confidence)
	assert.Empty(t, result.Error)
}

func TestMatchFieldRetrievalError(t *testing.T) {
	retrieverErr := fmt.Errorf("%w: query failed after 3 attempts", models.ErrIndexUnavailable)
	m := NewFieldMatcher(matcherConfig(), &fakeRetriever{err: retrieverErr}, &fakeGenerator{}, nil)

	result := m.MatchField(context.Background(), "owner-1", models.FieldDescriptor{Name: "email"})

	assert.False(t, result.Matched)
	assert.Equal(t, "vector index unavailable", result.Error)
}

func TestMatchFieldSubThresholdValueStillReturned(t *testing.T) {
	cfg := matcherConfig()
	cfg.MatchThreshold = 0.99
	m := NewFieldMatcher(cfg, &fakeRetriever{chunks: resumeChunks()}, &fakeGenerator{}, nil)

	result := m.MatchField(context.Background(), "owner-1", models.FieldDescriptor{Name: "email"})

	assert.False(t, result.Matched)
	assert.Equal(t, "jane@example.com", result.Value)
	assert.Greater(t, result.Confidence, 0.0)
}

func TestMatchFieldsBulk(t *testing.T) {
	gen := &fakeGenerator{extract: "NOT_FOUND"}
	m := NewFieldMatcher(matcherConfig(), &fakeRetriever{chunks: resumeChunks()}, gen, nil)

	fields := []models.FieldDescriptor{
		{Name: "email", Label: "Email"},
		{Name: "phone", Label: "Phone"},
		{Name: "fax"},
	}

	result := m.MatchFields(context.Background(), "owner-1", fields)

	require.Len(t, result.MatchedFields, 3)
	assert.Equal(t, 3, result.TotalFields)
	assert.Equal(t, 2, result.MatchedCount)

	// Results are keyed by field name
	assert.Equal(t, "jane@example.com", result.MatchedFields["email"].Value)
	assert.Equal(t, "(415) 555-0132", result.MatchedFields["phone"].Value)
	assert.False(t, result.MatchedFields["fax"].Matched)

	// Fields without a match are called out so the caller can prompt for them
	assert.Equal(t, []string{"fax"}, result.MissingFields)
}

func TestMatchFieldsOneFailureDoesNotAbortBatch(t *testing.T) {
	// The retriever fails every call, yet every field still gets a result
	m := NewFieldMatcher(matcherConfig(), &fakeRetriever{err: errors.New("boom")}, &fakeGenerator{}, nil)

	fields := []models.FieldDescriptor{{Name: "email"}, {Name: "phone"}}
	result := m.MatchFields(context.Background(), "owner-1", fields)

	require.Len(t, result.MatchedFields, 2)
	assert.Equal(t, 0, result.MatchedCount)
	assert.Equal(t, []string{"email", "phone"}, result.MissingFields)
	for _, r := range result.MatchedFields {
		assert.False(t, r.Matched)
		assert.NotEmpty(t, r.Error)
	}
}

func TestMatchFieldsPerFieldTimeout(t *testing.T) {
	cfg := matcherConfig()
	cfg.FieldTimeout = 1
	slow := &fakeRetriever{chunks: resumeChunks(), delay: 2 * time.Second}
	m := NewFieldMatcher(cfg, slow, &fakeGenerator{}, nil)

	result := m.MatchFields(context.Background(), "owner-1", []models.FieldDescriptor{{Name: "email"}})

	require.Len(t, result.MatchedFields, 1)
	assert.False(t, result.MatchedFields["email"].Matched)
	assert.Equal(t, "field match timed out", result.MatchedFields["email"].Error)
}

func TestComputeConfidence(t *testing.T) {
	// Pattern hit with a valid value on a strong chunk
	high := computeConfidence(0.9, PurposeEmail, false, true)
	assert.InDelta(t, 0.9, high, 0.01)

	// Generative answers score lower than pattern hits
	gen := computeConfidence(0.9, PurposeEducation, true, true)
	assert.Less(t, gen, high)

	// Invalid values and the generic text purpose are dampened
	assert.Less(t, computeConfidence(0.9, PurposeEmail, false, false), high)
	assert.Less(t, computeConfidence(0.9, PurposeText, true, true), gen)
}

func TestNormalizeScore(t *testing.T) {
	assert.Equal(t, 1.0, normalizeScore(1))
	assert.Equal(t, 0.5, normalizeScore(0))
	assert.Equal(t, 0.0, normalizeScore(-1))
	assert.Equal(t, 1.0, normalizeScore(1.5))
}
