package models

import "errors"

// Domain sentinel errors. Callers wrap these with fmt.Errorf("...: %w", err)
// and branch with errors.Is.
var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrExtractionFailure = errors.New("text extraction produced no content")
	ErrIndexUnavailable  = errors.New("vector index unavailable")
	ErrFieldSynthesis    = errors.New("field value synthesis failed")
	ErrGenerationFailure = errors.New("answer generation failed")
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
