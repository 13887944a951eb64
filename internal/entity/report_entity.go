package entity

import (
	"time"

	"github.com/google/uuid"
)

type ReportUser struct {
	Id         uuid.UUID
	Name       string
	Department string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}

// ReportMessage is one turn of the form-driven report conversation.
type ReportMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type DailyReport struct {
	Id           uuid.UUID
	ReportUserId uuid.UUID
	ReportDate   time.Time // date only, unique per user
	Messages     []ReportMessage
	Summary      map[string]string // nil until extracted
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
