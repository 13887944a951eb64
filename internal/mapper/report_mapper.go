package mapper

import (
	"encoding/json"
	"time"

	"spinach-be/internal/entity"
	"spinach-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ReportMapper struct{}

func NewReportMapper() *ReportMapper {
	return &ReportMapper{}
}

// User Mappers

func (m *ReportMapper) UserToEntity(u *model.ReportUser) *entity.ReportUser {
	if u == nil {
		return nil
	}

	var deletedAt *time.Time
	if u.DeletedAt.Valid {
		t := u.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !u.UpdatedAt.IsZero() {
		t := u.UpdatedAt
		updatedAt = &t
	}

	return &entity.ReportUser{
		Id:         u.Id,
		Name:       u.Name,
		Department: u.Department,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
		IsDeleted:  u.DeletedAt.Valid,
	}
}

func (m *ReportMapper) UserToModel(u *entity.ReportUser) *model.ReportUser {
	if u == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if u.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *u.DeletedAt, Valid: true}
	} else if u.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if u.UpdatedAt != nil {
		updatedAt = *u.UpdatedAt
	}

	return &model.ReportUser{
		Id:         u.Id,
		Name:       u.Name,
		Department: u.Department,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  updatedAt,
		DeletedAt:  deletedAt,
	}
}

// Report Mappers
//
// Messages and Summary live in JSON columns, so mapping marshals them.
// Unreadable JSON maps to an empty conversation rather than an error: the
// column is written by us and a poisoned row should not take listing down.

func (m *ReportMapper) ReportToEntity(r *model.DailyReport) *entity.DailyReport {
	if r == nil {
		return nil
	}

	var messages []entity.ReportMessage
	if len(r.Messages) > 0 {
		_ = json.Unmarshal(r.Messages, &messages)
	}

	var summary map[string]string
	if len(r.Summary) > 0 {
		_ = json.Unmarshal(r.Summary, &summary)
	}

	var updatedAt *time.Time
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		updatedAt = &t
	}

	return &entity.DailyReport{
		Id:           r.Id,
		ReportUserId: r.ReportUserId,
		ReportDate:   time.Time(r.ReportDate),
		Messages:     messages,
		Summary:      summary,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *ReportMapper) ReportToModel(r *entity.DailyReport) *model.DailyReport {
	if r == nil {
		return nil
	}

	messages, _ := json.Marshal(r.Messages)

	var summary datatypes.JSON
	if r.Summary != nil {
		summary, _ = json.Marshal(r.Summary)
	}

	var updatedAt time.Time
	if r.UpdatedAt != nil {
		updatedAt = *r.UpdatedAt
	}

	return &model.DailyReport{
		Id:           r.Id,
		ReportUserId: r.ReportUserId,
		ReportDate:   datatypes.Date(r.ReportDate),
		Messages:     messages,
		Summary:      summary,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}
