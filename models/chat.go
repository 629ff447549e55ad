package models

// ChatRequest is a question asked against the owner's documents
type ChatRequest struct {
	Message string `json:"message" binding:"required,min=1,max=2000"`
}

// ChatSource identifies a document chunk that informed an answer
type ChatSource struct {
	Filename string  `json:"filename"`
	Score    float64 `json:"score"`
}

// ChatResponse is a complete (non-streaming) answer
type ChatResponse struct {
	Answer      string       `json:"answer"`
	Sources     []ChatSource `json:"sources"`
	ContextUsed bool         `json:"context_used"`
}

// ChatEvent is a single event in a streaming answer. Events arrive in
// order: one metadata, zero or more content, then exactly one done or
// error. Content events carry the increment plus the text accumulated so
// far; the done event carries the full answer and its sources.
type ChatEvent struct {
	Type        string       `json:"type"`
	Content     string       `json:"content,omitempty"`
	Accumulated string       `json:"accumulated,omitempty"`
	Sources     []ChatSource `json:"sources,omitempty"`
	Message     string       `json:"message,omitempty"`
}

// Streaming event types
const (
	EventMetadata = "metadata"
	EventContent  = "content"
	EventDone     = "done"
	EventError    = "error"
)
