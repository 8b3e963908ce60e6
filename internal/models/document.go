package models

import "time"

// Document is a file reference attached to a parcelle (title deed, survey
// report, ...). Only the reference is stored; the file itself lives outside
// this service.
type Document struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	ParcelleID uint      `gorm:"index;not null" json:"parcelle_id"`
	Document   string    `gorm:"size:100;not null" json:"document"`
}
