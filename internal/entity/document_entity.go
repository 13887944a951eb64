package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentChunk is one slice of an uploaded document. A document has no table
// of its own: it is the set of chunks sharing a filename.
type DocumentChunk struct {
	Id         uuid.UUID
	Filename   string
	FileType   string
	ChunkIndex int
	Content    string
	CharCount  int
	Embedding  []float32 // empty until the indexing consumer has run
	CreatedAt  time.Time
}
