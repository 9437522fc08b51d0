package models

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the authentication principal. Profile data lives in
// UserProfile; this row only carries credentials and provider fields.
type Identity struct {
	UID          uuid.UUID  `gorm:"column:uid;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string     `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	DisplayName  string     `gorm:"column:display_name;not null"`
	PhotoURL     *string    `gorm:"column:photo_url"`
	Phone        *string    `gorm:"column:phone"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at"`
}

func (Identity) TableName() string {
	return "identities"
}
