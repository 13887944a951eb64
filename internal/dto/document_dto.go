package dto

import "time"

type UploadTextRequest struct {
	Text     string `json:"text" validate:"required"`
	Filename string `json:"filename" validate:"required"`
}

type DocumentUploadResponse struct {
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
}

type DocumentInfoResponse struct {
	Filename   string    `json:"filename"`
	FileType   string    `json:"file_type"`
	ChunkCount int       `json:"chunk_count"`
	TotalChars int       `json:"total_chars"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type ChunkDTO struct {
	ChunkIndex int    `json:"chunk_index"`
	Content    string `json:"content"`
	CharCount  int    `json:"char_count"`
}

type DocumentContentResponse struct {
	Filename    string     `json:"filename"`
	TotalChunks int        `json:"total_chunks"`
	Chunks      []ChunkDTO `json:"chunks"`
}

type DocumentDeleteResponse struct {
	Filename      string `json:"filename"`
	ChunksDeleted int64  `json:"chunks_deleted"`
}

type DocumentCountResponse struct {
	TotalChunks int64 `json:"total_chunks"`
}

type SearchRequest struct {
	Query     string  `json:"query" validate:"required"`
	TopK      int     `json:"top_k" validate:"gte=0,lte=50"`
	Threshold float64 `json:"threshold" validate:"gte=0,lte=1"`
}

type TemplateResponse struct {
	Id       string `json:"id"`
	Name     string `json:"name"`
	Filename string `json:"filename"`
}

type TemplateContentResponse struct {
	Id       string `json:"id"`
	Content  string `json:"content"`
	Filename string `json:"filename"`
}
