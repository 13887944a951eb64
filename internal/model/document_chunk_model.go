package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type DocumentChunk struct {
	Id         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Filename   string          `gorm:"type:text;not null;index"`
	FileType   string          `gorm:"type:varchar(64)"`
	ChunkIndex int             `gorm:"default:0"` // 0-based index for ordering
	Content    string          `gorm:"type:text;not null"`
	CharCount  int             `gorm:"default:0"`
	Embedding  *pgvector.Vector `gorm:"type:vector(768)"` // nomic-embed-text uses 768 dimensions; NULL until indexed
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
