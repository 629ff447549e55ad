package models

import "time"

// Chunk is a denormalized per-chunk index row stored in the chunks
// collection. One row per chunk, owner-scoped for isolation.
type Chunk struct {
	ChunkID   string    `bson:"chunk_id" json:"chunk_id"`
	DocID     string    `bson:"doc_id" json:"doc_id"`
	OwnerID   string    `bson:"owner_id" json:"owner_id"`
	Index     int       `bson:"index" json:"index"`
	Text      string    `bson:"text" json:"text"`
	Vector    []float32 `bson:"vector" json:"-"`
	Page      int       `bson:"page,omitempty" json:"page,omitempty"`
	Filename  string    `bson:"filename" json:"filename"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
