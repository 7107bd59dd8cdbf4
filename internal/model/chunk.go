package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// EmbedStatus tracks the ingestion state of one uploaded PDF.
type EmbedStatus string

const (
	EmbedStatusProcessing EmbedStatus = "processing"
	EmbedStatusDone       EmbedStatus = "done"
	EmbedStatusError      EmbedStatus = "error"
	EmbedStatusUnknown    EmbedStatus = "unknown"
)

// Chunk is one embedded span of PDF text, stored as a point in the vector index.
// The ID is generated fresh on every ingestion so re-ingesting a file never
// collides with earlier points.
type Chunk struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Content   string          `gorm:"type:text;not null" json:"content"`
	Page      int             `gorm:"default:0" json:"page"`
	Source    string          `gorm:"size:1000" json:"source"`
	Filename  string          `gorm:"size:500;index" json:"filename"`
	Embedding pgvector.Vector `gorm:"type:vector(384)" json:"-"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Chunk) TableName() string {
	return "pdf_chunks"
}
