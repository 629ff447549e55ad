package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"autofill-platform/internal/logger"
	"autofill-platform/internal/telemetry"
	"autofill-platform/models"

	genai "github.com/google/generative-ai-go/genai"
)

// Client wraps the Gemini API with a circuit breaker and a client-side
// rate limiter shared by all callers.
type Client struct {
	breaker         *gobreaker.CircuitBreaker
	rateLimiter     *rate.Limiter
	client          *genai.Client
	metrics         *telemetry.Metrics
	generationModel string
}

// StreamChunk is one piece of a streamed generation. A non-nil Err
// terminates the stream.
type StreamChunk struct {
	Text string
	Err  error
}

const fallbackAnswer = "I'm experiencing high demand right now. Please try again in a moment."

func NewClient(ctx context.Context, apiKey, generationModel string, metrics *telemetry.Metrics) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			if metrics != nil {
				metrics.RecordCircuitBreakerState(name, to.String())
			}
		},
	})

	// Conservative default: 10 requests per minute with a small burst
	rateLimiter := rate.NewLimiter(rate.Limit(10.0*0.9/60.0), 2)

	return &Client{
		breaker:         breaker,
		rateLimiter:     rateLimiter,
		client:          client,
		metrics:         metrics,
		generationModel: generationModel,
	}, nil
}

// Generate produces a grounded answer for the prompt using the given
// context blocks. When the circuit breaker is open a fallback answer is
// returned instead of an error.
func (c *Client) Generate(ctx context.Context, prompt string, contextBlocks []string) (string, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.generate")
	defer span.End()

	span.SetAttributes(
		attribute.Int("gemini.context_blocks", len(contextBlocks)),
		attribute.String("gemini.model", c.generationModel),
	)

	if err := c.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return "", err
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		model := c.client.GenerativeModel(c.generationModel)
		model.SetTemperature(0.7)
		model.SetMaxOutputTokens(2048)

		fullPrompt := buildPromptWithContext(prompt, contextBlocks)

		resp, err := model.GenerateContent(ctx, genai.Text(fullPrompt))
		if err != nil {
			span.SetAttributes(attribute.Bool("gemini.error", true))
			return nil, err
		}
		return resp, nil
	})

	if err != nil {
		if err == gobreaker.ErrOpenState {
			span.SetAttributes(attribute.Bool("gemini.circuit_breaker_open", true))
			return fallbackAnswer, nil
		}
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return "", err
	}

	resp := result.(*genai.GenerateContentResponse)
	span.SetAttributes(
		attribute.Int("gemini.actual_tokens", tokenUsage(resp)),
		attribute.Bool("gemini.success", true),
	)
	c.recordTokens(resp)
	return responseText(resp), nil
}

// ExtractValue runs a low-temperature completion intended to return a
// single short value (or a sentinel) rather than prose.
func (c *Client) ExtractValue(ctx context.Context, prompt string) (string, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.extract_value")
	defer span.End()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", err
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		model := c.client.GenerativeModel(c.generationModel)
		model.SetTemperature(0.0)
		model.SetMaxOutputTokens(256)

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			span.SetAttributes(attribute.Bool("gemini.error", true))
			return nil, err
		}
		return resp, nil
	})

	if err != nil {
		span.SetAttributes(attribute.Bool("gemini.error", true))
		return "", fmt.Errorf("%w: %v", models.ErrFieldSynthesis, err)
	}

	resp := result.(*genai.GenerateContentResponse)
	c.recordTokens(resp)
	return strings.TrimSpace(responseText(resp)), nil
}

// GenerateStream streams an answer as it is produced. The returned channel
// is closed after the last chunk; consumer cancellation via ctx stops the
// upstream request.
func (c *Client) GenerateStream(ctx context.Context, prompt string, contextBlocks []string) (<-chan StreamChunk, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	model := c.client.GenerativeModel(c.generationModel)
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(2048)

	fullPrompt := buildPromptWithContext(prompt, contextBlocks)
	iter := model.GenerateContentStream(ctx, genai.Text(fullPrompt))

	out := make(chan StreamChunk)
	go func() {
		defer close(out)
		for {
			resp, err := iter.Next()
			if err == iterator.Done {
				return
			}
			if err != nil {
				select {
				case out <- StreamChunk{Err: err}:
				case <-ctx.Done():
				}
				return
			}
			text := responseText(resp)
			if text == "" {
				continue
			}
			select {
			case out <- StreamChunk{Text: text}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// responseText concatenates all text parts of a response
func responseText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return sb.String()
}

func tokenUsage(resp *genai.GenerateContentResponse) int {
	if resp.UsageMetadata != nil {
		return int(resp.UsageMetadata.TotalTokenCount)
	}
	return 0
}

func (c *Client) recordTokens(resp *genai.GenerateContentResponse) {
	if c.metrics == nil {
		return
	}
	if tokens := tokenUsage(resp); tokens > 0 {
		c.metrics.RecordTokensUsed(int64(tokens), c.generationModel)
	}
}

// buildPromptWithContext frames the question with retrieved chunks
func buildPromptWithContext(prompt string, contextBlocks []string) string {
	if len(contextBlocks) == 0 {
		return prompt
	}

	contextStr := ""
	for i, block := range contextBlocks {
		contextStr += fmt.Sprintf("Context %d:\n%s\n\n", i+1, block)
	}

	return fmt.Sprintf("Based on the following context:\n\n%s\n\nPlease answer this question: %s", contextStr, prompt)
}

// Close the client
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
