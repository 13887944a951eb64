package dto

import "github.com/google/uuid"

// PublishIndexChunksMessage is the payload of the chunk-indexing event. The
// consumer embeds each listed chunk and stores the vector.
type PublishIndexChunksMessage struct {
	Filename string      `json:"filename"`
	ChunkIds []uuid.UUID `json:"chunk_ids"`
}
