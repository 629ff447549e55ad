package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"autofill-platform/internal/config"
	"autofill-platform/internal/telemetry"
	"autofill-platform/models"
)

const notFoundSentinel = "NOT_FOUND"

// FieldMatcher resolves form fields to values found in the owner's
// indexed documents. Structured purposes (email, phone, ...) are
// synthesized by pattern extraction; open-ended purposes go through the
// generative model constrained to retrieved context.
type FieldMatcher struct {
	retriever ChunkRetriever
	generator Generator
	metrics   *telemetry.Metrics

	threshold     float64
	minSimilarity float64
	topK          int
	timeout       time.Duration
	workers       int
}

func NewFieldMatcher(cfg *config.Config, retriever ChunkRetriever, generator Generator, metrics *telemetry.Metrics) *FieldMatcher {
	workers := cfg.FieldWorkers
	if workers < 1 {
		workers = 1
	}
	timeout := time.Duration(cfg.FieldTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FieldMatcher{
		retriever:     retriever,
		generator:     generator,
		metrics:       metrics,
		threshold:     cfg.MatchThreshold,
		minSimilarity: cfg.FieldMinSimilarity,
		topK:          cfg.RetrievalTopK,
		timeout:       timeout,
		workers:       workers,
	}
}

// MatchField matches a single field. It never panics or propagates an
// error; failures come back as an unmatched result with Error set.
func (m *FieldMatcher) MatchField(ctx context.Context, ownerID string, field models.FieldDescriptor) models.FieldMatch {
	purpose := ClassifyField(field)
	result := models.FieldMatch{
		FieldName: field.Name,
		FieldType: purpose,
	}

	query := BuildFieldQuery(field, purpose)
	chunks, err := m.retriever.Retrieve(ctx, ownerID, query, m.topK, m.minSimilarity)
	if err != nil {
		result.Error = matchErrorMessage(err)
		m.record(purpose, false)
		return result
	}
	if len(chunks) == 0 {
		m.record(purpose, false)
		return result
	}

	value, source, generative := m.synthesize(ctx, purpose, field, chunks)
	if ctx.Err() != nil {
		result.Error = matchErrorMessage(ctx.Err())
		m.record(purpose, false)
		return result
	}

	topScore := normalizeScore(source.Score)
	result.Source = source.Filename
	result.DocID = source.DocID
	result.ChunkID = source.ChunkID

	if value == "" {
		// Nothing synthesized; keep the similarity evidence but stay
		// below the match threshold.
		result.Confidence = clamp01(0.3 * topScore)
		m.record(purpose, false)
		return result
	}

	result.Value = value
	result.Confidence = computeConfidence(topScore, purpose, generative, ValidateValue(purpose, value))
	// Sub-threshold values are still returned; the caller decides what to
	// do with low-confidence suggestions.
	result.Matched = result.Confidence >= m.threshold
	m.record(purpose, result.Matched)
	return result
}

// MatchFields matches a batch concurrently with a bounded worker pool and
// a per-field timeout. One field's failure never aborts the batch; the
// result always contains exactly one entry per requested field.
func (m *FieldMatcher) MatchFields(ctx context.Context, ownerID string, fields []models.FieldDescriptor) models.BulkMatchResult {
	results := make([]models.FieldMatch, len(fields))

	var g errgroup.Group
	g.SetLimit(m.workers)
	for i, field := range fields {
		i, field := i, field
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, m.timeout)
			defer cancel()
			results[i] = m.MatchField(fctx, ownerID, field)
			return nil
		})
	}
	g.Wait()

	byName := make(map[string]models.FieldMatch, len(results))
	missing := make([]string, 0)
	matched := 0
	for _, r := range results {
		byName[r.FieldName] = r
		if r.Matched {
			matched++
		} else {
			missing = append(missing, r.FieldName)
		}
	}
	sort.Strings(missing)

	return models.BulkMatchResult{
		MatchedFields: byName,
		MissingFields: missing,
		MatchedCount:  matched,
		TotalFields:   len(fields),
	}
}

// synthesize picks a value for the purpose from the retrieved chunks. The
// returned chunk is the one the value came from (or the top chunk), and
// the bool reports whether the generative path produced it.
func (m *FieldMatcher) synthesize(ctx context.Context, purpose string, field models.FieldDescriptor, chunks []ScoredChunk) (string, ScoredChunk, bool) {
	top := chunks[0]

	if patternPurposes[purpose] {
		for _, chunk := range chunks {
			if value, ok := ExtractPattern(purpose, chunk.Text); ok {
				return value, chunk, false
			}
		}
		// No pattern hit; a generative attempt may still recover the value
	}

	value := m.generativeExtract(ctx, purpose, field, chunks)
	return value, top, true
}

func (m *FieldMatcher) generativeExtract(ctx context.Context, purpose string, field models.FieldDescriptor, chunks []ScoredChunk) string {
	var sb strings.Builder
	for i, chunk := range chunks {
		if i >= 3 {
			break
		}
		sb.WriteString(chunk.Text)
		sb.WriteString("\n\n")
	}

	label := field.Label
	if label == "" {
		label = field.Name
	}

	prompt := fmt.Sprintf(
		"Using only the document excerpts below, produce the value for the form field %q (field kind: %s).\n"+
			"Reply with the value alone, no explanation. If the excerpts do not contain it, reply with exactly %s.\n\nDocument excerpts:\n%s",
		label, purpose, notFoundSentinel, sb.String())

	value, err := m.generator.ExtractValue(ctx, prompt)
	if err != nil {
		return ""
	}
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, notFoundSentinel) {
		return ""
	}
	return value
}

// computeConfidence combines synthesis certainty with retrieval
// similarity. Pattern hits weigh 0.9, generative answers 0.6; the generic
// text purpose is further dampened because its query carries no signal.
func computeConfidence(topScore float64, purpose string, generative, valid bool) float64 {
	matchConf := 0.9
	if generative {
		matchConf = 0.6
	}
	if purpose == PurposeText {
		matchConf *= 0.5
	}
	if !valid {
		matchConf *= 0.5
	}

	return clamp01(0.7*matchConf + 0.3*topScore)
}

// normalizeScore maps cosine similarity from [-1,1] to [0,1]
func normalizeScore(score float64) float64 {
	return clamp01((score + 1) / 2)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func matchErrorMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "field match timed out"
	case errors.Is(err, models.ErrIndexUnavailable):
		return "vector index unavailable"
	default:
		return err.Error()
	}
}

func (m *FieldMatcher) record(purpose string, matched bool) {
	if m.metrics != nil {
		m.metrics.RecordFieldMatch(purpose, matched)
	}
}
