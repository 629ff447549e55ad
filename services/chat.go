package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"autofill-platform/internal/logger"
	"autofill-platform/models"
)

// ChatService answers questions grounded in the owner's indexed
// documents. Generation failures degrade to an apologetic answer instead
// of an error; an unavailable index degrades to answering without context.
type ChatService struct {
	retriever ChunkRetriever
	generator Generator
	topK      int
	minScore  float64
}

const degradedAnswer = "I couldn't generate an answer right now. Please try again in a moment."

func NewChatService(retriever ChunkRetriever, generator Generator, topK int, minScore float64) *ChatService {
	return &ChatService{
		retriever: retriever,
		generator: generator,
		topK:      topK,
		minScore:  minScore,
	}
}

// Answer produces a complete answer with source attribution
func (s *ChatService) Answer(ctx context.Context, ownerID, question string) (*models.ChatResponse, error) {
	chunks, blocks, sources := s.gatherContext(ctx, ownerID, question)

	answer, err := s.generator.Generate(ctx, question, blocks)
	if err != nil {
		logger.Error("Answer generation failed", "owner_id", ownerID, "error", err.Error())
		return &models.ChatResponse{
			Answer:      degradedAnswer,
			Sources:     []models.ChatSource{},
			ContextUsed: false,
		}, nil
	}

	return &models.ChatResponse{
		Answer:      answer,
		Sources:     sources,
		ContextUsed: len(chunks) > 0,
	}, nil
}

// AnswerStream streams an answer as ordered events: one metadata, then
// content chunks, then done or error. Cancelling ctx stops the upstream
// generation.
func (s *ChatService) AnswerStream(ctx context.Context, ownerID, question string) <-chan models.ChatEvent {
	out := make(chan models.ChatEvent)

	go func() {
		defer close(out)

		_, blocks, sources := s.gatherContext(ctx, ownerID, question)

		if !send(ctx, out, models.ChatEvent{Type: models.EventMetadata, Sources: sources}) {
			return
		}

		stream, err := s.generator.GenerateStream(ctx, question, blocks)
		if err != nil {
			send(ctx, out, models.ChatEvent{Type: models.EventError, Message: streamErrorMessage(err)})
			return
		}

		var full strings.Builder
		for chunk := range stream {
			if chunk.Err != nil {
				send(ctx, out, models.ChatEvent{Type: models.EventError, Message: streamErrorMessage(chunk.Err)})
				return
			}
			full.WriteString(chunk.Text)
			if !send(ctx, out, models.ChatEvent{Type: models.EventContent, Content: chunk.Text, Accumulated: full.String()}) {
				return
			}
		}

		send(ctx, out, models.ChatEvent{Type: models.EventDone, Content: full.String(), Sources: sources})
	}()

	return out
}

// gatherContext retrieves relevant chunks and formats the prompt blocks.
// An unavailable index yields empty context rather than an error.
func (s *ChatService) gatherContext(ctx context.Context, ownerID, question string) ([]ScoredChunk, []string, []models.ChatSource) {
	chunks, err := s.retriever.Retrieve(ctx, ownerID, question, s.topK, s.minScore)
	if err != nil {
		if errors.Is(err, models.ErrIndexUnavailable) {
			logger.Warn("Index unavailable, answering without context", "owner_id", ownerID)
		} else {
			logger.Error("Context retrieval failed", "owner_id", ownerID, "error", err.Error())
		}
		return nil, nil, []models.ChatSource{}
	}

	blocks := make([]string, 0, len(chunks))
	sources := make([]models.ChatSource, 0, len(chunks))
	for _, chunk := range chunks {
		blocks = append(blocks, fmt.Sprintf("Source: %s (relevance %.2f)\n%s", chunk.Filename, chunk.Score, chunk.Text))
		sources = append(sources, models.ChatSource{Filename: chunk.Filename, Score: chunk.Score})
	}
	return chunks, blocks, sources
}

func send(ctx context.Context, out chan<- models.ChatEvent, ev models.ChatEvent) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func streamErrorMessage(err error) string {
	if errors.Is(err, context.Canceled) {
		return "stream cancelled"
	}
	return fmt.Sprintf("%v: %v", models.ErrGenerationFailure, err)
}
