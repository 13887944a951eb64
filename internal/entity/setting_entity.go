package entity

import "time"

type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
