package specification

import "gorm.io/gorm"

type ByFilename struct {
	Filename string
}

func (s ByFilename) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("filename = ?", s.Filename)
}
