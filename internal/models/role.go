package models

import "time"

// Role is a named group a user may belong to. Membership is the sole
// authorization mechanism beyond the superuser flag.
type Role struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"uniqueIndex;size:100;not null" json:"name"`

	Users []User `gorm:"many2many:user_roles;" json:"-"`
}
