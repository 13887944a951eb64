package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type DailyReport struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	ReportUserId uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_report_user_date"`
	ReportDate   datatypes.Date `gorm:"not null;uniqueIndex:idx_report_user_date"`
	Messages     datatypes.JSON `gorm:"not null"`
	Summary      datatypes.JSON // null until extraction has run
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
}

func (DailyReport) TableName() string {
	return "daily_reports"
}
