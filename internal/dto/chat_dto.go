package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Title string `json:"title"`
}

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type SessionResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type RenameSessionRequest struct {
	Id    uuid.UUID `json:"-"`
	Title string    `json:"title" validate:"required"`
}

type ChatHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatCompletionRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	Message       string    `json:"message" validate:"required"`
	UseRag        bool      `json:"use_rag"`
	Temperature   float64   `json:"temperature" validate:"gte=0,lte=2"`
}

type ChatMessageDTO struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SourceDTO is one retrieved chunk that made it into the prompt.
type SourceDTO struct {
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

type ChatCompletionResponse struct {
	ChatSessionId uuid.UUID       `json:"chat_session_id"`
	Sent          *ChatMessageDTO `json:"sent"`
	Reply         *ChatMessageDTO `json:"reply"`
	Sources       []SourceDTO     `json:"sources,omitempty"`
}
