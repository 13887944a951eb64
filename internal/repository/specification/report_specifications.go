package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ByReportUserID struct {
	ReportUserID uuid.UUID
}

func (s ByReportUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("report_user_id = ?", s.ReportUserID)
}

type ByReportDate struct {
	Date time.Time
}

func (s ByReportDate) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("report_date = ?", datatypes.Date(s.Date))
}
