package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportUser struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name       string         `gorm:"type:text;not null"`
	Department string         `gorm:"type:text"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (ReportUser) TableName() string {
	return "report_users"
}
