package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateReportUserRequest struct {
	Name       string `json:"name" validate:"required"`
	Department string `json:"department"`
}

type UpdateReportUserRequest struct {
	Id         uuid.UUID `json:"-"`
	Name       string    `json:"name" validate:"required"`
	Department string    `json:"department"`
}

type ReportUserResponse struct {
	Id         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReportMessageDTO struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required"`
}

type UpsertReportRequest struct {
	ReportUserId uuid.UUID          `json:"report_user_id" validate:"required"`
	ReportDate   string             `json:"report_date" validate:"required"` // YYYY-MM-DD
	Messages     []ReportMessageDTO `json:"messages" validate:"required,min=1,dive"`
}

type ReportResponse struct {
	Id           uuid.UUID          `json:"id"`
	ReportUserId uuid.UUID          `json:"report_user_id"`
	ReportDate   string             `json:"report_date"`
	Messages     []ReportMessageDTO `json:"messages"`
	Summary      map[string]string  `json:"summary,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    *time.Time         `json:"updated_at"`
}
