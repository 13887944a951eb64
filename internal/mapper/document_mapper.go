package mapper

import (
	"spinach-be/internal/entity"
	"spinach-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(c *model.DocumentChunk) *entity.DocumentChunk {
	if c == nil {
		return nil
	}

	var embedding []float32
	if c.Embedding != nil {
		embedding = c.Embedding.Slice()
	}

	return &entity.DocumentChunk{
		Id:         c.Id,
		Filename:   c.Filename,
		FileType:   c.FileType,
		ChunkIndex: c.ChunkIndex,
		Content:    c.Content,
		CharCount:  c.CharCount,
		Embedding:  embedding,
		CreatedAt:  c.CreatedAt,
	}
}

func (m *DocumentMapper) ToModel(c *entity.DocumentChunk) *model.DocumentChunk {
	if c == nil {
		return nil
	}

	// A chunk without an embedding stays NULL so vector search skips it until
	// the indexer has run.
	var embedding *pgvector.Vector
	if len(c.Embedding) > 0 {
		v := pgvector.NewVector(c.Embedding)
		embedding = &v
	}

	return &model.DocumentChunk{
		Id:         c.Id,
		Filename:   c.Filename,
		FileType:   c.FileType,
		ChunkIndex: c.ChunkIndex,
		Content:    c.Content,
		CharCount:  c.CharCount,
		Embedding:  embedding,
		CreatedAt:  c.CreatedAt,
	}
}
