package models

import "time"

// Document represents an uploaded source document tracked through the
// ingestion pipeline
type Document struct {
	ID           string           `bson:"_id" json:"id"`
	OwnerID      string           `bson:"owner_id" json:"owner_id"`
	Filename     string           `bson:"filename" json:"filename"`
	MimeType     string           `bson:"mime_type" json:"mime_type"`
	FilePath     string           `bson:"file_path" json:"-"`
	Size         int64            `bson:"size" json:"size"`
	Status       string           `bson:"status" json:"status"` // pending, processing, completed, failed
	ErrorMessage string           `bson:"error_message,omitempty" json:"error_message,omitempty"`
	UploadedAt   time.Time        `bson:"uploaded_at" json:"uploaded_at"`
	UpdatedAt    time.Time        `bson:"updated_at" json:"updated_at"`
	ProcessedAt  *time.Time       `bson:"processed_at,omitempty" json:"processed_at,omitempty"`
	Metadata     DocumentMetadata `bson:"metadata" json:"metadata"`
}

// DocumentMetadata contains processing metadata recorded after ingestion
type DocumentMetadata struct {
	Pages            int           `bson:"pages" json:"pages"`
	ExtractionMethod string        `bson:"extraction_method" json:"extraction_method"`
	WordCount        int           `bson:"word_count" json:"word_count"`
	CharacterCount   int           `bson:"character_count" json:"character_count"`
	ChunkCount       int           `bson:"chunk_count" json:"chunk_count"`
	ProcessingTime   time.Duration `bson:"processing_time" json:"processing_time"`
}

// UploadAck is the per-file response entry returned after an upload request
type UploadAck struct {
	ID       string `json:"id,omitempty"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
	TaskID   string `json:"task_id,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Document status constants
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusRejected   = "rejected"
)

// Extraction methods
const (
	ExtractionMethodNative      = "native"
	ExtractionMethodOCR         = "ocr"
	ExtractionMethodSpreadsheet = "spreadsheet"
	ExtractionMethodPlain       = "plain"
)
