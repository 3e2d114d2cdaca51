package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Member is a staff member in the directory. The core stores member ids
// only; display-name resolution happens in the UI layer.
type Member struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	Name       string `gorm:"not null" json:"name"`
	Role       string `json:"role"`
	Department string `gorm:"index" json:"department"`
	Avatar     string `json:"avatar"`
	// Bcrypt hash of the login PIN. Never serialized.
	PINHash string `gorm:"column:pin_hash" json:"-"`
	Active  bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Member) TableName() string {
	return "members"
}

func (m *Member) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
